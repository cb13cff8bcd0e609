package timemachine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firing struct {
	id ID
	at time.Duration
}

func fairnessMachine(t *testing.T) *TimeMachine {
	t.Helper()
	m := New(nil)
	for _, interval := range []time.Duration{1200 * time.Millisecond, 800 * time.Millisecond, 400 * time.Millisecond} {
		_, ok := m.Add(interval, func(now time.Duration, ctx any, last any) any { return now })
		require.True(t, ok)
	}
	return m
}

func pump(m *TimeMachine, from, to, step time.Duration) []firing {
	var out []firing
	for now := from; now <= to; now += step {
		if id, ok := m.Handle(now, nil); ok {
			out = append(out, firing{id: id, at: now})
		}
	}
	return out
}

func ids(fs []firing) []ID {
	out := make([]ID, len(fs))
	for i, f := range fs {
		out[i] = f.id
	}
	return out
}

func TestFiringSequenceIsFair(t *testing.T) {
	m := fairnessMachine(t)
	m.Start()

	got := pump(m, 0, 1300*time.Millisecond, 100*time.Millisecond)
	assert.Equal(t, []ID{0, 1, 2, 2, 1, 2, 0}, ids(got))

	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	want := []time.Duration{ms(100), ms(300), ms(400), ms(800), ms(1100), ms(1200), ms(1300)}
	for i, f := range got {
		assert.Equal(t, want[i], f.at, "firing %d", i)
	}
}

func TestAtMostOneBehaviorPerHandle(t *testing.T) {
	m := New(nil)
	for i := 0; i < 5; i++ {
		m.Add(time.Millisecond, func(now time.Duration, ctx any, last any) any { return nil })
	}
	m.Start()
	m.Handle(0, nil)

	// Every entry is overdue; each call still runs only one.
	fired := 0
	for i := 0; i < 5; i++ {
		if _, ok := m.Handle(time.Second, nil); ok {
			fired++
		}
	}
	assert.Equal(t, 5, fired)
	for id := ID(0); id < 5; id++ {
		assert.Equal(t, 1, m.Runs(id))
	}
}

func TestBehaviorReceivesContextAndPreviousResult(t *testing.T) {
	m := New(nil)
	var seen []any
	id, ok := m.Add(time.Second, func(now time.Duration, ctx any, last any) any {
		assert.Equal(t, "render", ctx)
		seen = append(seen, last)
		if last == nil {
			return 1
		}
		return last.(int) + 1
	})
	require.True(t, ok)
	m.Start()

	for now := time.Duration(0); now <= 3*time.Second; now += time.Second {
		m.Handle(now, "render")
	}
	assert.Equal(t, []any{nil, 1, 2}, seen)
	assert.Equal(t, 3, m.Last(id))
}

func TestRegistrationRejectedAfterStart(t *testing.T) {
	m := New(nil)
	_, ok := m.Add(time.Second, func(time.Duration, any, any) any { return nil })
	require.True(t, ok)
	m.Start()

	_, ok = m.Add(time.Second, func(time.Duration, any, any) any { return nil })
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())

	m.Stop()
	_, ok = m.Add(time.Second, func(time.Duration, any, any) any { return nil })
	assert.True(t, ok, "stopped machines accept registrations again")
}

func TestRejectsInvalidRegistration(t *testing.T) {
	m := New(nil)
	_, ok := m.Add(0, func(time.Duration, any, any) any { return nil })
	assert.False(t, ok)
	_, ok = m.Add(time.Second, nil)
	assert.False(t, ok)
}

func TestStoppedMachineDoesNothing(t *testing.T) {
	m := fairnessMachine(t)
	assert.Empty(t, pump(m, 0, time.Second, 100*time.Millisecond))
	assert.Zero(t, m.Runs(0))
}

func TestStopThenStartResumesSchedule(t *testing.T) {
	m := fairnessMachine(t)
	m.Start()
	first := pump(m, 0, 400*time.Millisecond, 100*time.Millisecond)
	require.Equal(t, []ID{0, 1, 2}, ids(first))

	m.Stop()
	assert.Empty(t, pump(m, 500*time.Millisecond, 700*time.Millisecond, 100*time.Millisecond))
	m.Start()

	rest := pump(m, 800*time.Millisecond, 1300*time.Millisecond, 100*time.Millisecond)
	assert.Equal(t, []ID{2, 1, 2, 0}, ids(rest), "resumes where it left off")
}

func TestUnknownIDs(t *testing.T) {
	m := New(nil)
	assert.Nil(t, m.Last(3))
	assert.Zero(t, m.Runs(-1))
}
