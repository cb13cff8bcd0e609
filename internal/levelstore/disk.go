package levelstore

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"sentinel/internal/grid"
)

const (
	diskOpDelete byte = 0
	diskOpSet    byte = 1

	// op, level, config hash, payload size
	diskHeaderSize = 1 + 4 + 4 + 4
)

type diskRecordMeta struct {
	offset int64
	size   uint32
}

// DiskStore is an append-only log of gob-encoded snapshots. The latest
// record for a key wins; deletes are tombstones.
type DiskStore struct {
	file    *os.File
	mu      sync.RWMutex
	records map[Key]diskRecordMeta
}

// OpenDiskStore opens or creates the log at path and indexes it.
func OpenDiskStore(path string) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create level store directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open level store: %w", err)
	}
	store := &DiskStore{
		file:    f,
		records: make(map[Key]diskRecordMeta),
	}
	if err := store.loadIndex(); err != nil {
		f.Close()
		return nil, err
	}
	return store, nil
}

func (s *DiskStore) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind level store: %w", err)
	}

	header := make([]byte, diskHeaderSize)
	var offset int64
	for {
		if _, err := io.ReadFull(s.file, header); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("truncated level store header: %w", err)
			}
			return fmt.Errorf("read level store header: %w", err)
		}
		op, key, size := decodeHeader(header)
		recordOffset := offset
		offset += int64(len(header)) + int64(size)

		if _, err := s.file.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("seek past payload: %w", err)
		}
		if op == diskOpSet {
			s.records[key] = diskRecordMeta{offset: recordOffset, size: size}
		} else {
			delete(s.records, key)
		}
	}
	return nil
}

func encodeHeader(op byte, key Key, size int) []byte {
	header := make([]byte, diskHeaderSize)
	header[0] = op
	binary.LittleEndian.PutUint32(header[1:5], uint32(int32(key.Level)))
	binary.LittleEndian.PutUint32(header[5:9], key.ConfigHash)
	binary.LittleEndian.PutUint32(header[9:13], uint32(size))
	return header
}

func decodeHeader(header []byte) (byte, Key, uint32) {
	key := Key{
		Level:      int(int32(binary.LittleEndian.Uint32(header[1:5]))),
		ConfigHash: binary.LittleEndian.Uint32(header[5:9]),
	}
	return header[0], key, binary.LittleEndian.Uint32(header[9:13])
}

func (s *DiskStore) Load(key Key) (grid.Snapshot, bool, error) {
	s.mu.RLock()
	meta, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return grid.Snapshot{}, false, nil
	}

	header := make([]byte, diskHeaderSize)
	if _, err := s.file.ReadAt(header, meta.offset); err != nil {
		return grid.Snapshot{}, false, fmt.Errorf("read header at %d: %w", meta.offset, err)
	}
	op, _, size := decodeHeader(header)
	if op != diskOpSet {
		return grid.Snapshot{}, false, nil
	}
	payload := make([]byte, size)
	if _, err := s.file.ReadAt(payload, meta.offset+int64(len(header))); err != nil {
		return grid.Snapshot{}, false, fmt.Errorf("read payload: %w", err)
	}
	var snap grid.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&snap); err != nil {
		return grid.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *DiskStore) Save(key Key, snap grid.Snapshot) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	header := encodeHeader(diskOpSet, key, payload.Len())

	s.mu.Lock()
	defer s.mu.Unlock()

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek level store end: %w", err)
	}
	if _, err := s.file.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := s.file.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync level store: %w", err)
	}
	s.records[key] = diskRecordMeta{offset: offset, size: uint32(payload.Len())}
	return nil
}

func (s *DiskStore) Delete(key Key) error {
	header := encodeHeader(diskOpDelete, key, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek level store end: %w", err)
	}
	if _, err := s.file.Write(header); err != nil {
		return fmt.Errorf("write delete header: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync level store: %w", err)
	}
	delete(s.records, key)
	return nil
}

// ForEach visits stored snapshots ordered by level, then config hash.
func (s *DiskStore) ForEach(fn func(key Key, snap grid.Snapshot) bool) error {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Level == keys[j].Level {
			return keys[i].ConfigHash < keys[j].ConfigHash
		}
		return keys[i].Level < keys[j].Level
	})
	for _, key := range keys {
		snap, ok, err := s.Load(key)
		if err != nil {
			log.Printf("level store load %v: %v", key, err)
			continue
		}
		if !ok {
			continue
		}
		if !fn(key, snap) {
			break
		}
	}
	return nil
}

func (s *DiskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
