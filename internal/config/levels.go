package config

import (
	"errors"
	"math"
	"time"
)

// Range is an inclusive integer range.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Bounds reports the inclusive limits of the range.
func (r Range) Bounds() (int, int) { return r.Min, r.Max }

// ScaledRange describes a range at level 0 (Min/Max) and at the difficulty
// cap (CapMin/CapMax).
type ScaledRange struct {
	Min    int `json:"min" yaml:"min"`
	Max    int `json:"max" yaml:"max"`
	CapMin int `json:"capMin" yaml:"capMin"`
	CapMax int `json:"capMax" yaml:"capMax"`
}

func (r ScaledRange) validate() error {
	if r.Min < 0 || r.CapMin < 0 {
		return errors.New("cannot be negative")
	}
	if r.Max < r.Min || r.CapMax < r.CapMin {
		return errors.New("max must be >= min")
	}
	return nil
}

func (r ScaledRange) at(fraction float64) Range {
	out := Range{
		Min: lerp(r.Min, r.CapMin, fraction),
		Max: lerp(r.Max, r.CapMax, fraction),
	}
	if out.Max < out.Min {
		out.Max = out.Min
	}
	return out
}

// ScaledValue is a single integer at level 0 and at the difficulty cap.
type ScaledValue struct {
	Base int `json:"base" yaml:"base"`
	Cap  int `json:"cap" yaml:"cap"`
}

func (v ScaledValue) at(fraction float64) int { return lerp(v.Base, v.Cap, fraction) }

// ScaledDuration is a duration at level 0 and at the difficulty cap.
type ScaledDuration struct {
	Base Duration `json:"base" yaml:"base"`
	Cap  Duration `json:"cap" yaml:"cap"`
}

func (v ScaledDuration) at(fraction float64) time.Duration {
	base := float64(v.Base)
	return time.Duration(math.Round(base + (float64(v.Cap)-base)*fraction))
}

// Level is the concrete, per-level configuration consumed by the terrain
// generator and the opponents.
type Level struct {
	Number int
	Width  int
	Depth  int

	LargePlateauCount Range
	LargePlateauSize  Range
	SmallPlateauCount Range
	SmallPlateauSize  Range

	LargePeakCount  Range
	MediumPeakCount Range
	SmallPeakCount  Range
	LargePeakSize   int
	MediumPeakSize  int
	SmallPeakSize   int

	TreeCount      Range
	SentryCount    int
	PlatformHeight int

	RotationSteps int
	RotationTime  time.Duration
	RotationPause time.Duration
}

// RotationInterval is the time between two opponent rotation steps.
func (l Level) RotationInterval() time.Duration {
	return l.RotationTime + l.RotationPause
}

// Difficulty returns the fraction of the difficulty cap reached by level n.
// Levels beyond the cap play like the cap.
func (c LevelsConfig) Difficulty(n int) float64 {
	if c.DifficultyCap <= 0 || n <= 0 {
		return 0
	}
	if n >= c.DifficultyCap {
		return 1
	}
	return float64(n) / float64(c.DifficultyCap)
}

// ForLevel derives the configuration of level n. It is a pure function of the
// receiver and n.
func (c LevelsConfig) ForLevel(n int) Level {
	if n < 0 {
		n = 0
	}
	f := c.Difficulty(n)
	steps := c.RotationSteps.at(f)
	if steps <= 0 {
		steps = 1
	}
	return Level{
		Number:            n,
		Width:             c.Width,
		Depth:             c.Depth,
		LargePlateauCount: c.LargePlateauCount.at(f),
		LargePlateauSize:  c.LargePlateauSize.at(f),
		SmallPlateauCount: c.SmallPlateauCount.at(f),
		SmallPlateauSize:  c.SmallPlateauSize.at(f),
		LargePeakCount:    c.LargePeakCount.at(f),
		MediumPeakCount:   c.MediumPeakCount.at(f),
		SmallPeakCount:    c.SmallPeakCount.at(f),
		LargePeakSize:     c.LargePeakSize,
		MediumPeakSize:    c.MediumPeakSize,
		SmallPeakSize:     c.SmallPeakSize,
		TreeCount:         c.TreeCount.at(f),
		SentryCount:       c.SentryCount.at(f),
		PlatformHeight:    c.PlatformHeight.at(f),
		RotationSteps:     steps,
		RotationTime:      c.RotationTime.at(f),
		RotationPause:     c.RotationPause.at(f),
	}
}

func lerp(from, to int, fraction float64) int {
	return int(math.Round(float64(from) + float64(to-from)*fraction))
}
