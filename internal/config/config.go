// Package config loads the optional docxfix YAML configuration. Every field
// has a usable zero value, so running without a config file is the normal
// case.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aerissecure/docxfix/internal/logging"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given.
const EnvConfigPath = "DOCXFIX_CONFIG"

// DefaultConfigYAML is printed by `docxfix config` and documents every key.
const DefaultConfigYAML = `# docxfix configuration

# Parent directory for the per-process scratch directory. Empty means the
# system temp directory.
work_dir: ""

# Suppress progress and summary output.
quiet: false

# After fixing, compare input and output package entries and fail if anything
# other than word/document.xml changed.
verify: false

log:
  level: warn   # debug | info | warn | error
  format: text  # text | json
`

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config models the docxfix YAML file.
type Config struct {
	WorkDir string    `yaml:"work_dir"`
	Quiet   bool      `yaml:"quiet"`
	Verify  bool      `yaml:"verify"`
	Log     LogConfig `yaml:"log"`

	// Path is where the config was loaded from; empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the config at path. An empty path falls back to $DOCXFIX_CONFIG;
// when neither is set the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config: %s does not exist", path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("config: log.format: %w", err)
	}
	if c.WorkDir != "" {
		info, err := os.Stat(c.WorkDir)
		if err != nil {
			return fmt.Errorf("config: work_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: work_dir %s is not a directory", c.WorkDir)
		}
	}
	return nil
}

// ApplyLogging initialises the global logger from the log section.
func (c Config) ApplyLogging(w io.Writer) {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	logging.InitLogger(level, format, w)
}
