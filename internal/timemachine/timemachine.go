// Package timemachine runs timed behaviours cooperatively: the caller pumps
// Handle once per tick and at most one due behaviour runs per call.
package timemachine

import (
	"io"
	"log"
	"time"
)

// ID identifies a registered behaviour.
type ID int

// Behavior is invoked with the tick time, the caller's context and the value
// it returned last time (nil on the first run). Its return value is kept for
// the next run.
type Behavior func(now time.Duration, ctx any, last any) any

type entry struct {
	id        ID
	interval  time.Duration
	behavior  Behavior
	offset    time.Duration
	scheduled bool
	next      time.Duration
	last      any
	runs      int
}

// TimeMachine is not safe for concurrent use.
type TimeMachine struct {
	entries []*entry
	started bool
	logger  *log.Logger
}

func New(logger *log.Logger) *TimeMachine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &TimeMachine{logger: logger}
}

// Add registers a behaviour. Registration is only allowed while stopped.
func (m *TimeMachine) Add(interval time.Duration, behavior Behavior) (ID, bool) {
	if m.started {
		m.logger.Printf("timemachine: rejected registration after start")
		return 0, false
	}
	if interval <= 0 || behavior == nil {
		m.logger.Printf("timemachine: rejected registration with interval %v", interval)
		return 0, false
	}
	id := ID(len(m.entries))
	m.entries = append(m.entries, &entry{id: id, interval: interval, behavior: behavior})
	return id, true
}

// Start spreads first firings across one interval and begins ticking.
// Entries that were already scheduled before a Stop keep their schedule.
func (m *TimeMachine) Start() {
	if m.started {
		return
	}
	count := time.Duration(len(m.entries))
	for i, e := range m.entries {
		if !e.scheduled {
			e.offset = e.interval * time.Duration(i) / count
		}
	}
	m.started = true
}

// Stop pauses ticking without clearing registrations or schedules.
func (m *TimeMachine) Stop() { m.started = false }

func (m *TimeMachine) Started() bool { return m.started }

// Handle advances the machine to now. It returns the ID of the behaviour it
// ran, if any.
func (m *TimeMachine) Handle(now time.Duration, ctx any) (ID, bool) {
	if !m.started {
		return 0, false
	}
	for _, e := range m.entries {
		if !e.scheduled {
			e.next = now + e.offset
			e.scheduled = true
			continue
		}
		if now < e.next {
			continue
		}
		e.last = e.behavior(now, ctx, e.last)
		e.runs++
		e.next = now + e.interval
		return e.id, true
	}
	return 0, false
}

// Last returns the value behaviour id returned on its most recent run.
func (m *TimeMachine) Last(id ID) any {
	if id < 0 || int(id) >= len(m.entries) {
		return nil
	}
	return m.entries[id].last
}

// Runs reports how many times behaviour id has run.
func (m *TimeMachine) Runs(id ID) int {
	if id < 0 || int(id) >= len(m.entries) {
		return 0
	}
	return m.entries[id].runs
}

func (m *TimeMachine) Len() int { return len(m.entries) }
