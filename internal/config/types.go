// Package config holds the jsondiff configuration model and its embedded
// defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jsondiff/internal/filter"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultConfigYAML))
	copy(out, defaultConfigYAML)
	return out
}

// Config is the full configuration file.
type Config struct {
	Server  ServerConfig   `yaml:"server" json:"server"`
	History HistoryConfig  `yaml:"history" json:"history"`
	Fetch   FetchConfig    `yaml:"fetch" json:"fetch"`
	Ignore  filter.Options `yaml:"ignore" json:"ignore"`
	Display DisplayConfig  `yaml:"display" json:"display"`
}

// ServerConfig configures `jsondiff serve`.
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

// HistoryConfig selects where fetch attempts are recorded. RemoteURL, when
// set, wins over DBPath.
type HistoryConfig struct {
	DBPath       string `yaml:"db_path" json:"db_path"`
	RemoteURL    string `yaml:"remote_url" json:"remote_url"`
	DefaultLimit int    `yaml:"default_limit" json:"default_limit"`
}

// FetchConfig configures remote document loading.
type FetchConfig struct {
	RelayURL string        `yaml:"relay_url" json:"relay_url"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// DisplayConfig controls terminal output and locate scroll math.
type DisplayConfig struct {
	LineHeight   float64     `yaml:"line_height" json:"line_height"`
	VisibleLines int         `yaml:"visible_lines" json:"visible_lines"`
	NoColor      bool        `yaml:"no_color" json:"no_color"`
	Context      int         `yaml:"context" json:"context"`
	Theme        ThemeConfig `yaml:"theme" json:"theme"`
}

// ThemeConfig holds ANSI or hex color strings. Empty means the built-in
// default.
type ThemeConfig struct {
	HeaderFG  string `yaml:"header_fg,omitempty" json:"header_fg,omitempty"`
	HeaderBG  string `yaml:"header_bg,omitempty" json:"header_bg,omitempty"`
	Key       string `yaml:"key,omitempty" json:"key,omitempty"`
	Value     string `yaml:"value,omitempty" json:"value,omitempty"`
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`
	Added     string `yaml:"added,omitempty" json:"added,omitempty"`
	Removed   string `yaml:"removed,omitempty" json:"removed,omitempty"`
	Context   string `yaml:"context,omitempty" json:"context,omitempty"`
}

// Default decodes the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(defaultConfigYAML) == 0 {
		return cfg, fmt.Errorf("embedded default config is empty")
	}
	if err := cfg.Merge(defaultConfigYAML); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Merge decodes data on top of c. Keys absent from data keep their current
// values; lists present in data replace the current list.
func (c *Config) Merge(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks ranges that would otherwise fail later in less obvious
// places.
func (c Config) Validate() error {
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must be non-negative, got %s", c.Fetch.Timeout)
	}
	if c.History.DefaultLimit < 0 {
		return fmt.Errorf("history.default_limit must be non-negative, got %d", c.History.DefaultLimit)
	}
	if c.Display.LineHeight < 0 {
		return fmt.Errorf("display.line_height must be non-negative, got %v", c.Display.LineHeight)
	}
	if _, err := filter.Compile(c.Ignore); err != nil {
		return fmt.Errorf("ignore: %w", err)
	}
	return nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
