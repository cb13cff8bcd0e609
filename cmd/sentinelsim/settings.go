package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"sentinel/internal/config"
)

// settings describe one headless run. Environment variables provide the
// defaults so a batch of runs can be scripted without editing flags.
type settings struct {
	Level  int
	Ticks  int
	Step   time.Duration
	Energy int // 0 keeps simulation.startingEnergy
}

func defaultSettings() settings {
	return settings{Ticks: 600, Step: 100 * time.Millisecond}
}

// settingsFromEnv overlays SENTINEL_LEVEL, SENTINEL_TICKS, SENTINEL_STEP and
// SENTINEL_ENERGY on base.
func settingsFromEnv(base settings) (settings, error) {
	s := base
	ints := []struct {
		name string
		dst  *int
	}{
		{"SENTINEL_LEVEL", &s.Level},
		{"SENTINEL_TICKS", &s.Ticks},
		{"SENTINEL_ENERGY", &s.Energy},
	}
	for _, v := range ints {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return base, fmt.Errorf("parse %s: %w", v.name, err)
		}
		*v.dst = n
	}
	if raw := os.Getenv("SENTINEL_STEP"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return base, fmt.Errorf("parse SENTINEL_STEP: %w", err)
		}
		s.Step = d
	}
	return s, nil
}

// apply checks s against cfg and folds the energy override into it. The step
// may not exceed any opponent interval of the chosen level, or behaviours
// would fall behind their schedule.
func (s settings) apply(cfg *config.Config) error {
	if s.Level < 0 {
		return fmt.Errorf("level %d cannot be negative", s.Level)
	}
	if s.Ticks <= 0 {
		return errors.New("ticks must be positive")
	}
	if s.Step <= 0 {
		return errors.New("step must be positive")
	}
	if s.Energy < 0 {
		return fmt.Errorf("energy %d cannot be negative", s.Energy)
	}
	if s.Energy > 0 {
		cfg.Simulation.StartingEnergy = s.Energy
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	lv := cfg.Levels.ForLevel(s.Level)
	for _, limit := range []struct {
		name     string
		interval time.Duration
	}{
		{"absorb", cfg.Simulation.AbsorbInterval.Duration()},
		{"detection", cfg.Simulation.DetectionInterval.Duration()},
		{"rotation", lv.RotationInterval()},
	} {
		if s.Step > limit.interval {
			return fmt.Errorf("step %v exceeds the %s interval %v of level %d", s.Step, limit.name, limit.interval, s.Level)
		}
	}
	return nil
}
