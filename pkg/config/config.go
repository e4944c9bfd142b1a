// Package config loads the YAML configuration shared by the engine and the
// csgq command.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Color modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the top-level configuration document.
type Config struct {
	World  World  `yaml:"world"`
	Eval   Eval   `yaml:"eval"`
	Log    Log    `yaml:"log"`
	Output Output `yaml:"output"`
}

// World is the candidate box used for bounding-box queries.
type World struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// Box returns the world as an sdf.Box3.
func (w World) Box() sdf.Box3 {
	return aabb.New(
		v3.Vec{X: w.Min[0], Y: w.Min[1], Z: w.Min[2]},
		v3.Vec{X: w.Max[0], Y: w.Max[1], Z: w.Max[2]},
	)
}

// Eval configures DSL evaluation.
type Eval struct {
	// Timeout is a Go duration string such as "5s".
	Timeout string `yaml:"timeout"`
}

// Duration returns the parsed timeout. Validate guarantees it parses.
func (e Eval) Duration() time.Duration {
	d, _ := time.ParseDuration(e.Timeout)
	return d
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Output configures terminal rendering.
type Output struct {
	Color string `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		World: World{
			Min: [3]float64{-1000, -1000, -1000},
			Max: [3]float64{1000, 1000, 1000},
		},
		Eval:   Eval{Timeout: "5s"},
		Log:    Log{Level: "info"},
		Output: Output{Color: ColorAuto},
	}
}

// Load reads and validates the file at path. Keys absent from the file
// keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and joins all findings.
func (c Config) Validate() error {
	var errs []error
	axes := [3]string{"x", "y", "z"}
	for i, axis := range axes {
		if c.World.Min[i] > c.World.Max[i] {
			errs = append(errs, fmt.Errorf("%w: world min %s %g exceeds max %g",
				ErrInvalid, axis, c.World.Min[i], c.World.Max[i]))
		}
	}

	if d, err := time.ParseDuration(c.Eval.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("%w: eval timeout %q: %v", ErrInvalid, c.Eval.Timeout, err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("%w: eval timeout %q must be positive", ErrInvalid, c.Eval.Timeout))
	}

	if _, err := c.Log.level(); err != nil {
		errs = append(errs, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level))
	}

	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("%w: output color %q (want auto, always or never)", ErrInvalid, c.Output.Color))
	}
	return errors.Join(errs...)
}

func (l Log) level() (zapcore.Level, error) {
	var lvl zapcore.Level
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}

// NewLogger builds a zap logger from the log section.
func (l Log) NewLogger() (*zap.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, fmt.Errorf("config: logger: %w", err)
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
