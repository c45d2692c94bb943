package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// AppName is the application name used for keyring and config
const AppName = "famtree"

// Defaults used when neither flags, env nor config provide a value.
const (
	DefaultInput      = "data/gyllencreutz_tree_ascii.txt"
	DefaultOutput     = "data/family.json"
	DefaultIndent     = 4
	DefaultListenAddr = "127.0.0.1:8080"
)

// Config holds CLI configuration
type Config struct {
	Input          string `yaml:"input,omitempty" toml:"input,omitempty"`
	Output         string `yaml:"output,omitempty" toml:"output,omitempty"`
	OutputFormat   string `yaml:"output_format,omitempty" toml:"output_format,omitempty"`     // text, json, yaml, table
	Indent         int    `yaml:"indent,omitempty" toml:"indent,omitempty"`                   // spaces in written JSON
	LevelMode      string `yaml:"level_mode,omitempty" toml:"level_mode,omitempty"`           // count, column
	IndentWidth    int    `yaml:"indent_width,omitempty" toml:"indent_width,omitempty"`       // columns per generation (column mode)
	ListenAddr     string `yaml:"listen_addr,omitempty" toml:"listen_addr,omitempty"`         // serve
	KeyringBackend string `yaml:"keyring_backend,omitempty" toml:"keyring_backend,omitempty"` // auto, keychain, file
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureKeyringDir ensures the keyring directory exists and returns its path
func EnsureKeyringDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	keyringDir := filepath.Join(dir, "keyring")
	if err := os.MkdirAll(keyringDir, 0o700); err != nil {
		return "", fmt.Errorf("creating keyring directory: %w", err)
	}
	return keyringDir, nil
}

// ReadConfig reads the config file from the default location
func ReadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads config from the given path. Files ending in .toml are decoded
// as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save saves config to the given path
func (c *Config) Save(path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		out, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		data = out
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
