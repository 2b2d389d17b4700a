package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the per-project configuration manifest.
const ConfigFileName = "drift.toml"

// Config holds driver settings read from drift.toml, overridable by CLI
// flags.
type Config struct {
	Analyze AnalyzeConfig `toml:"analyze"`
	Trace   TraceConfig   `toml:"trace"`
}

// AnalyzeConfig configures the analysis run itself.
type AnalyzeConfig struct {
	Jobs           int    `toml:"jobs"`            // 0 = GOMAXPROCS
	MaxDiagnostics int    `toml:"max_diagnostics"` // per-file diagnostic cap
	Color          string `toml:"color"`           // auto|always|never
	Cache          bool   `toml:"cache"`           // reuse results for unchanged artifacts
}

// TraceConfig mirrors the --trace* flag group.
type TraceConfig struct {
	Output string `toml:"output"` // "" = disabled, "-" = stderr
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
}

// DefaultConfig returns the settings used when no manifest is present.
func DefaultConfig() Config {
	return Config{
		Analyze: AnalyzeConfig{
			MaxDiagnostics: 100,
			Color:          "auto",
		},
		Trace: TraceConfig{
			Level: "off",
			Mode:  "ring",
		},
	}
}

// LoadConfig reads drift.toml from dir. A missing manifest is not an
// error; defaults are returned.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Analyze.MaxDiagnostics <= 0 {
		cfg.Analyze.MaxDiagnostics = 100
	}
	switch cfg.Analyze.Color {
	case "", "auto", "always", "never":
	default:
		return cfg, fmt.Errorf("%s: invalid color mode %q (expected: auto|always|never)", path, cfg.Analyze.Color)
	}
	return cfg, nil
}
