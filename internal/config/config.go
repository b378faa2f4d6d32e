// Package config loads avm's YAML configuration file: the data directory
// tools are installed under, HTTP mirror rewrite rules, and the path to a
// delegated rustup binary.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "CONFIG_PATH"

// Mirror is one URL-prefix rewrite rule.
type Mirror struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Rustup configures delegation to an external rustup binary.
type Rustup struct {
	Path string `yaml:"path,omitempty"`
}

// Config is avm's on-disk configuration. All fields are optional; a missing
// config file yields the zero value resolved through Defaulted.
type Config struct {
	DataPath string   `yaml:"data_path,omitempty"`
	Mirror   []Mirror `yaml:"mirror,omitempty"`
	Rustup   Rustup   `yaml:"rustup,omitempty"`
}

// Path resolves the config file location: CONFIG_PATH if set, else the
// platform user config directory joined with "avm/config.yaml".
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving user config dir: %w", err)
	}
	return filepath.Join(dir, "avm", "config.yaml"), nil
}

// Load reads and parses the config file at Path(). A missing file is not
// an error — it yields a zero Config, same as an empty file would.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Defaulted fills in the platform defaults for any field the user left
// unset: DataPath falls back to the platform user data directory joined
// with "avm".
func (c Config) Defaulted() (Config, error) {
	if c.DataPath != "" {
		return c, nil
	}

	dataDir, err := defaultDataDir()
	if err != nil {
		return Config{}, err
	}
	c.DataPath = dataDir
	return c, nil
}

// ToolsBase is data_path/tools, where every tool's tag-store directory
// lives.
func (c Config) ToolsBase() string {
	return filepath.Join(c.DataPath, "tools")
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home dir: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "avm"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "avm"), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "avm"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "avm"), nil
		}
		return filepath.Join(home, ".local", "share", "avm"), nil
	}
}
