package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned when a configuration path has an extension
// that is neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Duration is a JSON and YAML friendly wrapper around time.Duration that
// accepts human readable strings such as "150ms" in configuration files while
// still allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML encodes the duration as its canonical string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML scalars.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected scalar at line %d", node.Line)
	}
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: decode int: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	if node.Tag == "!!null" {
		*d = 0
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures every tunable needed to generate levels and run the
// opponent/economy simulation.
type Config struct {
	Levels     LevelsConfig     `json:"levels" yaml:"levels"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// LevelsConfig holds the easy (level 0) and capped values of every
// level-derived range. ForLevel interpolates between them.
type LevelsConfig struct {
	Width         int `json:"width" yaml:"width"`
	Depth         int `json:"depth" yaml:"depth"`
	DifficultyCap int `json:"difficultyCap" yaml:"difficultyCap"`

	LargePlateauCount ScaledRange `json:"largePlateauCount" yaml:"largePlateauCount"`
	LargePlateauSize  ScaledRange `json:"largePlateauSize" yaml:"largePlateauSize"`
	SmallPlateauCount ScaledRange `json:"smallPlateauCount" yaml:"smallPlateauCount"`
	SmallPlateauSize  ScaledRange `json:"smallPlateauSize" yaml:"smallPlateauSize"`

	LargePeakCount  ScaledRange `json:"largePeakCount" yaml:"largePeakCount"`
	MediumPeakCount ScaledRange `json:"mediumPeakCount" yaml:"mediumPeakCount"`
	SmallPeakCount  ScaledRange `json:"smallPeakCount" yaml:"smallPeakCount"`
	LargePeakSize   int         `json:"largePeakSize" yaml:"largePeakSize"`
	MediumPeakSize  int         `json:"mediumPeakSize" yaml:"mediumPeakSize"`
	SmallPeakSize   int         `json:"smallPeakSize" yaml:"smallPeakSize"`

	TreeCount      ScaledRange `json:"treeCount" yaml:"treeCount"`
	SentryCount    ScaledValue `json:"sentryCount" yaml:"sentryCount"`
	PlatformHeight ScaledValue `json:"platformHeight" yaml:"platformHeight"`

	RotationSteps ScaledValue    `json:"rotationSteps" yaml:"rotationSteps"`
	RotationTime  ScaledDuration `json:"rotationTime" yaml:"rotationTime"`
	RotationPause ScaledDuration `json:"rotationPause" yaml:"rotationPause"`
}

// SimulationConfig controls the opponent scheduler and the player economy.
type SimulationConfig struct {
	AbsorbInterval    Duration `json:"absorbInterval" yaml:"absorbInterval"`       // opponent absorb scan
	DetectionInterval Duration `json:"detectionInterval" yaml:"detectionInterval"` // player detection scan
	StartingEnergy    int      `json:"startingEnergy" yaml:"startingEnergy"`
}

// Load reads configuration from a JSON or YAML file if provided. An empty path
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("load %s: %w", path, ErrUnsupportedFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to the provided path as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func Default() *Config {
	return &Config{
		Levels: LevelsConfig{
			Width:             32,
			Depth:             32,
			DifficultyCap:     64,
			LargePlateauCount: ScaledRange{Min: 1, Max: 3, CapMin: 2, CapMax: 4},
			LargePlateauSize:  ScaledRange{Min: 8, Max: 12, CapMin: 6, CapMax: 10},
			SmallPlateauCount: ScaledRange{Min: 2, Max: 4, CapMin: 3, CapMax: 6},
			SmallPlateauSize:  ScaledRange{Min: 3, Max: 6, CapMin: 3, CapMax: 5},
			LargePeakCount:    ScaledRange{Min: 0, Max: 1, CapMin: 1, CapMax: 3},
			MediumPeakCount:   ScaledRange{Min: 1, Max: 2, CapMin: 2, CapMax: 4},
			SmallPeakCount:    ScaledRange{Min: 2, Max: 4, CapMin: 3, CapMax: 6},
			LargePeakSize:     3,
			MediumPeakSize:    2,
			SmallPeakSize:     1,
			TreeCount:         ScaledRange{Min: 40, Max: 60, CapMin: 12, CapMax: 24},
			SentryCount:       ScaledValue{Base: 0, Cap: 3},
			PlatformHeight:    ScaledValue{Base: 1, Cap: 3},
			RotationSteps:     ScaledValue{Base: 12, Cap: 16},
			RotationTime:      ScaledDuration{Base: Duration(10 * time.Second), Cap: Duration(5 * time.Second)},
			RotationPause:     ScaledDuration{Base: Duration(2 * time.Second), Cap: Duration(500 * time.Millisecond)},
		},
		Simulation: SimulationConfig{
			AbsorbInterval:    Duration(3 * time.Second),
			DetectionInterval: Duration(1500 * time.Millisecond),
			StartingEnergy:    10,
		},
	}
}

func (c *Config) Validate() error {
	l := c.Levels
	if l.Width < 2 || l.Depth < 2 {
		return errors.New("levels.width and levels.depth must be at least 2")
	}
	if l.DifficultyCap <= 0 {
		return errors.New("levels.difficultyCap must be positive")
	}
	ranges := []struct {
		key string
		r   ScaledRange
	}{
		{"largePlateauCount", l.LargePlateauCount},
		{"largePlateauSize", l.LargePlateauSize},
		{"smallPlateauCount", l.SmallPlateauCount},
		{"smallPlateauSize", l.SmallPlateauSize},
		{"largePeakCount", l.LargePeakCount},
		{"mediumPeakCount", l.MediumPeakCount},
		{"smallPeakCount", l.SmallPeakCount},
		{"treeCount", l.TreeCount},
	}
	for _, entry := range ranges {
		if err := entry.r.validate(); err != nil {
			return fmt.Errorf("levels.%s %w", entry.key, err)
		}
	}
	if l.LargePeakSize <= 0 || l.MediumPeakSize <= 0 || l.SmallPeakSize <= 0 {
		return errors.New("levels peak sizes must be positive")
	}
	if l.SentryCount.Base < 0 || l.SentryCount.Cap < 0 {
		return errors.New("levels.sentryCount cannot be negative")
	}
	if l.PlatformHeight.Base < 0 || l.PlatformHeight.Cap < 0 {
		return errors.New("levels.platformHeight cannot be negative")
	}
	if l.RotationSteps.Base <= 0 || l.RotationSteps.Cap <= 0 {
		return errors.New("levels.rotationSteps must be positive")
	}
	if l.RotationTime.Base <= 0 || l.RotationTime.Cap <= 0 {
		return errors.New("levels.rotationTime must be positive")
	}
	if l.RotationPause.Base < 0 || l.RotationPause.Cap < 0 {
		return errors.New("levels.rotationPause cannot be negative")
	}
	if c.Simulation.AbsorbInterval <= 0 || c.Simulation.DetectionInterval <= 0 {
		return errors.New("simulation intervals must be positive")
	}
	if c.Simulation.StartingEnergy <= 0 {
		return errors.New("simulation.startingEnergy must be positive")
	}
	return nil
}
