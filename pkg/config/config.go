// Package config loads pngctl defaults from a YAML file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk"
)

// Config is the pngctl configuration file (~/.config/pngctl/config.yaml).
// Zero values mean "not set".
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	MaxChunkSize int    `yaml:"max_chunk_size"`
	TextEncoding string `yaml:"text_encoding"`
}

// DefaultPath returns the per user config location, empty if it cannot be determined
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pngctl", "config.yaml")
}

// Load reads path; a missing file yields an empty Config
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated fields
func (c Config) Validate() error {
	if _, err := ParseTextEncoding(c.TextEncoding); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.MaxChunkSize < 0 || c.MaxChunkSize > pngchunk.LimitChunkSize {
		return fmt.Errorf("max_chunk_size %d outside 0..%d", c.MaxChunkSize, pngchunk.LimitChunkSize)
	}
	return nil
}

// ParseTextEncoding maps utf8 (the default) or latin1 to a text encoding
func ParseTextEncoding(s string) (pngchunk.TextEncoding, error) {
	switch strings.ToLower(s) {
	case "", "utf8", "utf-8":
		return pngchunk.TextUTF8, nil
	case "latin1", "iso-8859-1":
		return pngchunk.TextLatin1, nil
	}
	return 0, fmt.Errorf("text_encoding must be utf8 or latin1, got %q", s)
}

// DecoderOptions turns the configured limits into decoder options
func (c Config) DecoderOptions() []pngchunk.Option {
	var opts []pngchunk.Option
	if c.MaxChunkSize > 0 {
		opts = append(opts, pngchunk.WithMaxChunkSize(c.MaxChunkSize))
	}
	if te, err := ParseTextEncoding(c.TextEncoding); err == nil {
		opts = append(opts, pngchunk.WithTextEncoding(te))
	}
	return opts
}
