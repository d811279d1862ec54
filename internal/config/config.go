// Package config holds the code generator configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// Config holds the code generator configuration.
type Config struct {
	ProtocolDirs []string // minecraft-data version directories, e.g. ./scheme/pc-1.12.2
	OutDir       string
	Package      string // package name override; derived from the version when empty
	Concurrency  int    // protocol dirs generated in parallel
	LogLevel     string // "debug", "info", "warn" or "error"
	LogFormat    string // "text" or "json"
}

type fileConfig struct {
	ProtocolDirs []string `toml:"protocol_dirs"`
	OutDir       string   `toml:"out_dir"`
	Package      string   `toml:"package"`
	Concurrency  int      `toml:"concurrency"`
	LogLevel     string   `toml:"log_level"`
	LogFormat    string   `toml:"log_format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutDir:      "./gen",
		Concurrency: 4,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// LoadFile returns DefaultConfig overlaid with the keys defined in the TOML
// file at path.
func LoadFile(fsys afero.Fs, path string) (*Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	var raw fileConfig
	meta, err := toml.NewDecoder(f).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("protocol_dirs") {
		cfg.ProtocolDirs = normalizeDirs(raw.ProtocolDirs)
	}
	if meta.IsDefined("out_dir") {
		cfg.OutDir = strings.TrimSpace(raw.OutDir)
	}
	if meta.IsDefined("package") {
		cfg.Package = strings.TrimSpace(raw.Package)
	}
	if meta.IsDefined("concurrency") {
		cfg.Concurrency = raw.Concurrency
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.TrimSpace(raw.LogFormat)
	}
	return cfg, nil
}

func normalizeDirs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, dir := range in {
		v := strings.TrimSpace(dir)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if len(cfg.ProtocolDirs) == 0 {
		cfg.ProtocolDirs = fromFile.ProtocolDirs
	}
	if !explicitFlags["out"] {
		cfg.OutDir = fromFile.OutDir
	}
	if !explicitFlags["pkg"] {
		cfg.Package = fromFile.Package
	}
	if !explicitFlags["concurrency"] {
		cfg.Concurrency = fromFile.Concurrency
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["log-format"] {
		cfg.LogFormat = fromFile.LogFormat
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.OutDir == "" {
		return errors.New("out dir is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Package != "" && len(c.ProtocolDirs) > 1 {
		return errors.New("package override needs exactly one protocol dir")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}

// NewLogger builds the logger described by LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
}

// PackageFor returns the package name generated for a protocol dir: the
// override if set, otherwise the sanitized directory name.
func (c *Config) PackageFor(dir string) string {
	if c.Package != "" {
		return c.Package
	}
	return SanitizePackageName(filepath.Base(filepath.Clean(dir)))
}

// SanitizePackageName turns a directory name such as "pc-1.12.2" into a Go
// package name.
func SanitizePackageName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ToLower(name)
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "v" + name
	}
	return name
}
