package config

import (
	"testing"
	"time"
)

func TestForLevelIsPure(t *testing.T) {
	levels := Default().Levels
	if a, b := levels.ForLevel(17), levels.ForLevel(17); a != b {
		t.Fatalf("ForLevel should be deterministic:\n%#v\n%#v", a, b)
	}
}

func TestForLevelInterpolatesToCap(t *testing.T) {
	levels := Default().Levels

	easy := levels.ForLevel(0)
	if easy.SentryCount != levels.SentryCount.Base {
		t.Fatalf("level 0 sentries: got %d want %d", easy.SentryCount, levels.SentryCount.Base)
	}
	if easy.TreeCount != (Range{Min: levels.TreeCount.Min, Max: levels.TreeCount.Max}) {
		t.Fatalf("level 0 tree count: %+v", easy.TreeCount)
	}

	capped := levels.ForLevel(levels.DifficultyCap)
	beyond := levels.ForLevel(levels.DifficultyCap * 3)
	beyond.Number = capped.Number
	if capped != beyond {
		t.Fatalf("levels beyond the cap should play like the cap")
	}
	if capped.SentryCount != levels.SentryCount.Cap {
		t.Fatalf("capped sentries: got %d want %d", capped.SentryCount, levels.SentryCount.Cap)
	}
	if capped.RotationTime != 5*time.Second {
		t.Fatalf("capped rotation time: %v", capped.RotationTime)
	}
}

func TestForLevelMonotonicUpToCap(t *testing.T) {
	levels := Default().Levels
	prev := levels.ForLevel(0)
	for n := 1; n <= levels.DifficultyCap; n++ {
		cur := levels.ForLevel(n)
		if cur.SentryCount < prev.SentryCount {
			t.Fatalf("sentry count decreased at level %d", n)
		}
		if cur.PlatformHeight < prev.PlatformHeight {
			t.Fatalf("platform height decreased at level %d", n)
		}
		if cur.TreeCount.Max > prev.TreeCount.Max {
			t.Fatalf("tree count grew at level %d", n)
		}
		if cur.RotationInterval() > prev.RotationInterval() {
			t.Fatalf("rotation interval grew at level %d", n)
		}
		prev = cur
	}
}

func TestForLevelClampsNegativeLevels(t *testing.T) {
	levels := Default().Levels
	if got := levels.ForLevel(-4); got.Number != 0 || got != levels.ForLevel(0) {
		t.Fatalf("negative levels should clamp to level 0, got %#v", got)
	}
}
