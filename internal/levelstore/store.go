// Package levelstore keeps generated level snapshots so a level is carved
// once per configuration.
package levelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"

	"sentinel/internal/config"
	"sentinel/internal/grid"
)

// ErrNotFound is returned by Get when no snapshot is stored under a key.
var ErrNotFound = errors.New("level snapshot not found")

// Key identifies a level generated under one levels configuration.
type Key struct {
	Level      int
	ConfigHash uint32
}

func (k Key) String() string { return fmt.Sprintf("level-%d-%08x", k.Level, k.ConfigHash) }

// KeyFor derives the key of level under cfg. Any change to cfg changes the
// key.
func KeyFor(cfg config.LevelsConfig, level int) (Key, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return Key{}, fmt.Errorf("hash levels config: %w", err)
	}
	return Key{Level: level, ConfigHash: crc32.ChecksumIEEE(data)}, nil
}

// Store persists level snapshots.
type Store interface {
	Load(key Key) (grid.Snapshot, bool, error)
	Save(key Key, snap grid.Snapshot) error
	Delete(key Key) error
	ForEach(fn func(key Key, snap grid.Snapshot) bool) error
	Close() error
}

// Get is Load with a missing snapshot reported as ErrNotFound.
func Get(s Store, key Key) (grid.Snapshot, error) {
	snap, ok, err := s.Load(key)
	if err != nil {
		return grid.Snapshot{}, err
	}
	if !ok {
		return grid.Snapshot{}, fmt.Errorf("%v: %w", key, ErrNotFound)
	}
	return snap, nil
}

func cloneSnapshot(s grid.Snapshot) grid.Snapshot {
	dup := s
	dup.Pieces = append([]grid.Piece(nil), s.Pieces...)
	dup.Trees = append([]grid.Point(nil), s.Trees...)
	dup.Rocks = append([]grid.RockStack(nil), s.Rocks...)
	dup.Synthoids = append([]grid.Point(nil), s.Synthoids...)
	dup.Sentries = append([]grid.Point(nil), s.Sentries...)
	return dup
}
