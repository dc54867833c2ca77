// Package config loads rtlgen.toml project files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project file looked up from the working directory upwards.
const FileName = "rtlgen.toml"

// Config holds the settings of one project. Zero values fall back to the
// defaults returned by Default.
type Config struct {
	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`

	Generate    Generate    `toml:"generate"`
	Analyze     Analyze     `toml:"analyze"`
	Diagnostics Diagnostics `toml:"diagnostics"`
}

// Generate configures VHDL emission.
type Generate struct {
	// Standard is "2002" or "2008".
	Standard string `toml:"standard"`
	// OutDir receives one .vhd file per emitted unit, relative to the
	// project file.
	OutDir string `toml:"out_dir"`
	// ArchName names architectures that have no name of their own.
	ArchName string `toml:"arch_name"`
	// Jobs bounds how many design files are generated in parallel.
	Jobs int `toml:"jobs"`
}

// Analyze configures the optional GHDL analysis of emitted files.
type Analyze struct {
	Enabled bool `toml:"enabled"`
	// GHDL overrides the ghdl binary; empty looks it up on PATH.
	GHDL string `toml:"ghdl"`
}

// Diagnostics configures reporter output.
type Diagnostics struct {
	// Format is "text" or "json".
	Format string `toml:"format"`
	// Color is "auto", "on" or "off".
	Color string `toml:"color"`
}

// Default returns the configuration used without a project file.
func Default() Config {
	return Config{
		Generate: Generate{
			Standard: "2002",
			OutDir:   "vhdl",
			ArchName: "rtl",
			Jobs:     4,
		},
		Diagnostics: Diagnostics{
			Format: "text",
			Color:  "auto",
		},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("config: stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest project file above startDir, or the defaults
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("generate", "out_dir") && strings.TrimSpace(cfg.Generate.OutDir) == "" {
		return Config{}, fmt.Errorf("%s: [generate].out_dir must not be empty", path)
	}
	if meta.IsDefined("analyze", "ghdl") && !meta.IsDefined("analyze", "enabled") {
		cfg.Analyze.Enabled = true
	}
	cfg.Path = path
	if !filepath.IsAbs(cfg.Generate.OutDir) {
		cfg.Generate.OutDir = filepath.Join(filepath.Dir(path), cfg.Generate.OutDir)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Generate.Standard {
	case "2002", "02", "2008", "08":
	default:
		return fmt.Errorf("[generate].standard must be 2002 or 2008, got %q", c.Generate.Standard)
	}
	if c.Generate.Jobs < 1 {
		return fmt.Errorf("[generate].jobs must be positive, got %d", c.Generate.Jobs)
	}
	switch c.Diagnostics.Format {
	case "text", "json":
	default:
		return fmt.Errorf("[diagnostics].format must be text or json, got %q", c.Diagnostics.Format)
	}
	switch c.Diagnostics.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("[diagnostics].color must be auto, on or off, got %q", c.Diagnostics.Color)
	}
	return nil
}
