// Package config loads gsg settings from a TOML file. Every field has a
// default, so a missing file or a partial file is fine.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Limits shared with the factory.
const (
	MaxSubdivisions = 7
	MinSegments     = 3
	MaxSegments     = 4096
)

// Config is the root of the settings tree.
type Config struct {
	Log     Log     `toml:"log"`
	Factory Factory `toml:"factory"`
	Mesh    Mesh    `toml:"mesh"`
	Script  Script  `toml:"script"`
}

// Log selects the log level ("debug", "info", "warn", "error") and format
// ("text" or "json").
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Factory holds the tessellation values Factory.Params starts from. The
// script and CLI build primitives from those params; values a caller passes
// to MakePrimitive are used as given.
type Factory struct {
	Subdivisions int `toml:"subdivisions"`
	Segments     int `toml:"segments"`
}

// Mesh controls meshing. Source is "kernel" to mesh analytic primitives
// through the geometry kernel, or "geometry" to use the factory's own
// triangles where a shape has them. Kernel picks "sdfx" or "manifold";
// Cells is the sdfx marching cubes resolution.
type Mesh struct {
	Source string `toml:"source"`
	Kernel string `toml:"kernel"`
	Cells  int    `toml:"cells"`
}

// Script bounds scene script evaluation.
type Script struct {
	Timeout Duration `toml:"timeout"`
}

// Duration is a time.Duration that reads and writes as a string such as
// "5s" in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:     Log{Level: "info", Format: "text"},
		Factory: Factory{Subdivisions: 3, Segments: 32},
		Mesh:    Mesh{Source: "kernel", Kernel: "sdfx", Cells: 200},
		Script:  Script{Timeout: Duration(5 * time.Second)},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML into cfg, keeping fields the document does not set,
// and validates the result. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("parse config at %d:%d: %w", row, col, err)
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return cfg.Validate()
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	if c.Factory.Subdivisions < 0 || c.Factory.Subdivisions > MaxSubdivisions {
		return fmt.Errorf("factory.subdivisions %d: want 0..%d", c.Factory.Subdivisions, MaxSubdivisions)
	}
	if c.Factory.Segments < MinSegments || c.Factory.Segments > MaxSegments {
		return fmt.Errorf("factory.segments %d: want %d..%d", c.Factory.Segments, MinSegments, MaxSegments)
	}
	switch c.Mesh.Source {
	case "kernel", "geometry":
	default:
		return fmt.Errorf("mesh.source %q: want kernel or geometry", c.Mesh.Source)
	}
	switch c.Mesh.Kernel {
	case "sdfx", "manifold":
	default:
		return fmt.Errorf("mesh.kernel %q: want sdfx or manifold", c.Mesh.Kernel)
	}
	if c.Mesh.Cells < 8 {
		return fmt.Errorf("mesh.cells %d: want at least 8", c.Mesh.Cells)
	}
	if c.Script.Timeout <= 0 {
		return fmt.Errorf("script.timeout %s: must be positive", time.Duration(c.Script.Timeout))
	}
	return nil
}
