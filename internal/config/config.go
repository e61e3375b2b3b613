// Package config loads transmit's settings.
//
// Precedence, lowest to highest: built-in defaults, transmit.yaml, TRANSMIT_*
// environment variables, then flags that were set on the command line.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/Makepad-fr/transmit/internal/listing"
)

const (
	// FileName is looked up in the working directory when --config is not given.
	FileName  = "transmit.yaml"
	envPrefix = "TRANSMIT_"
)

// Data sources.
const (
	SourceMock   = "mock"
	SourceFile   = "file"
	SourceRemote = "remote"
)

var (
	sources = []string{SourceMock, SourceFile, SourceRemote}
	themes  = []string{"classic", "neon", "mono"}
)

// Config is the resolved configuration.
type Config struct {
	Source         string        `koanf:"source"`
	BackendURL     string        `koanf:"backend_url"`
	DataFile       string        `koanf:"data_file"`
	PageSize       int           `koanf:"page_size"`
	PageStep       int           `koanf:"page_step"`
	ServerPageSize int           `koanf:"server_page_size"`
	Sort           string        `koanf:"sort"`
	Timeout        time.Duration `koanf:"timeout"`
	LoadDelay      time.Duration `koanf:"load_delay"`
	LogLevel       string        `koanf:"log_level"`
	LogFile        string        `koanf:"log_file"`
	Theme          string        `koanf:"theme"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"source":           SourceMock,
		"backend_url":      "http://localhost:8001",
		"data_file":        "",
		"page_size":        listing.DefaultInitial,
		"page_step":        listing.DefaultStep,
		"server_page_size": 6,
		"sort":             string(listing.DefaultSortKey),
		"timeout":          "10s",
		"load_delay":       "800ms",
		"log_level":        "info",
		"log_file":         "",
		"theme":            "classic",
	}
}

// Load resolves the configuration. cfgFile may be empty, in which case
// transmit.yaml in the working directory is used when present. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(FileName); err == nil {
			used = FileName
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// TRANSMIT_BACKEND_URL -> backend_url
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if !slices.Contains(sources, c.Source) {
		return fmt.Errorf("source %q: must be one of %s", c.Source, strings.Join(sources, ", "))
	}
	if c.Source == SourceRemote && c.BackendURL == "" {
		return fmt.Errorf("backend_url is required for the remote source")
	}
	if c.PageSize <= 0 || c.PageStep <= 0 || c.ServerPageSize <= 0 {
		return fmt.Errorf("page_size, page_step and server_page_size must be positive")
	}
	if _, err := listing.ParseSortKey(c.Sort); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.LoadDelay < 0 {
		return fmt.Errorf("load_delay must not be negative")
	}
	if !slices.Contains(themes, strings.ToLower(c.Theme)) {
		return fmt.Errorf("theme %q: must be one of %s", c.Theme, strings.Join(themes, ", "))
	}
	return nil
}

// ServerPaged reports whether "load more" goes back to the data source.
func (c *Config) ServerPaged() bool { return c.Source == SourceRemote }
