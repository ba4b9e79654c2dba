package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/obc/oberon"
)

// Config file names, in lookup order.
const (
	ConfigYAML = "obc.yaml"
	ConfigTOML = "obc.toml"
)

// DefaultSources matches every Oberon module below the project root.
const DefaultSources = "**/*.Mod"

// Config is the contents of obc.yaml or obc.toml.
type Config struct {
	Sources  []string `yaml:"sources" toml:"sources"`
	Exclude  []string `yaml:"exclude" toml:"exclude"`
	MaxDepth int      `yaml:"max_depth" toml:"max_depth"`
	Entry    string   `yaml:"entry" toml:"entry"`
	Jobs     int      `yaml:"jobs" toml:"jobs"`
}

// DefaultConfig is used when a project has no config file.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Sources) == 0 {
		c.Sources = []string{DefaultSources}
	}
	if c.Entry == "" {
		c.Entry = oberon.EntryRule
	}
	if c.Jobs <= 0 {
		c.Jobs = runtime.NumCPU()
	}
}

// Validate reports malformed patterns and out-of-range numbers.
func (c *Config) Validate() error {
	for _, p := range slices.Concat(c.Sources, c.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern %q", p)
		}
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}

// LoadConfig reads a config file. The format follows the extension: .yaml
// or .yml for YAML, anything else is TOML. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document decodes to io.EOF
		if err := dec.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("parse %s: unknown key %s", path, undecoded[0])
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig returns the path of the config file in dir, or "" if there is
// none.
func FindConfig(dir string) string {
	for _, name := range []string{ConfigYAML, ConfigTOML} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
