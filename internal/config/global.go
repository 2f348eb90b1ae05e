// Package config handles repository and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/bjf/config.yml.
type GlobalConfig struct {
	WorkspacePath      string  `yaml:"workspace_path,omitempty"`
	YouTubeRateLimit   float64 `yaml:"youtube_rate_limit,omitempty"`
	HTTPTimeoutSeconds int     `yaml:"http_timeout_seconds,omitempty"`
	ListenAddr         string  `yaml:"listen_addr,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bjf"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// DefaultListenAddr is used by `bjf serve` when listen_addr is unset.
	DefaultListenAddr = "127.0.0.1:8765"
)

// GlobalKeys lists the keys accepted by GetGlobalValue and SetGlobalValue.
var GlobalKeys = []string{"workspace_path", "youtube_rate_limit", "http_timeout_seconds", "listen_addr"}

// ErrUnknownKey is returned for a global config key that doesn't exist.
var ErrUnknownKey = errors.New("unknown config key")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bjf/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	// Expand tilde in workspace_path
	if cfg.WorkspacePath != "" {
		cfg.WorkspacePath = ExpandPath(cfg.WorkspacePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes cfg to the global config file and refreshes the cache.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine global config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = nil
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable envKey if set, else fallback.
func GetConfigValue(envKey, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

// GetWorkspacePath returns the configured default workspace root.
// BJF_WORKSPACE_PATH overrides the config file.
func GetWorkspacePath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return GetConfigValue("BJF_WORKSPACE_PATH", "")
	}
	return ExpandPath(GetConfigValue("BJF_WORKSPACE_PATH", cfg.WorkspacePath))
}

// GetListenAddr returns the HTTP listen address for `bjf serve`.
func GetListenAddr() string {
	cfg, _ := LoadGlobalConfig()
	if cfg != nil && cfg.ListenAddr != "" {
		return GetConfigValue("BJF_LISTEN_ADDR", cfg.ListenAddr)
	}
	return GetConfigValue("BJF_LISTEN_ADDR", DefaultListenAddr)
}

// GetYouTubeRateLimit returns the configured video request rate, or 0 for the default.
func GetYouTubeRateLimit() float64 {
	cfg, _ := LoadGlobalConfig()
	if cfg == nil {
		return 0
	}
	return cfg.YouTubeRateLimit
}

// GetHTTPTimeout returns the configured HTTP timeout, or 0 for the default.
func GetHTTPTimeout() time.Duration {
	cfg, _ := LoadGlobalConfig()
	if cfg == nil || cfg.HTTPTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
}

// GetGlobalValue returns the string form of a global config key.
func (c *GlobalConfig) GetGlobalValue(key string) (string, error) {
	switch key {
	case "workspace_path":
		return c.WorkspacePath, nil
	case "youtube_rate_limit":
		if c.YouTubeRateLimit == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.YouTubeRateLimit, 'g', -1, 64), nil
	case "http_timeout_seconds":
		if c.HTTPTimeoutSeconds == 0 {
			return "", nil
		}
		return strconv.Itoa(c.HTTPTimeoutSeconds), nil
	case "listen_addr":
		return c.ListenAddr, nil
	}
	return "", fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(GlobalKeys, ", "))
}

// SetGlobalValue parses value and stores it under key.
func (c *GlobalConfig) SetGlobalValue(key, value string) error {
	switch key {
	case "workspace_path":
		c.WorkspacePath = value
	case "youtube_rate_limit":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid youtube_rate_limit: %q", value)
		}
		c.YouTubeRateLimit = v
	case "http_timeout_seconds":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid http_timeout_seconds: %q", value)
		}
		c.HTTPTimeoutSeconds = v
	case "listen_addr":
		c.ListenAddr = value
	default:
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(GlobalKeys, ", "))
	}
	return nil
}

// HelpfulConfigMessage returns a helpful message when no workspace is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No bjjflow workspace found.

Run 'bjf init' in a directory to create one, or create %s
to set a default workspace:
  mkdir -p %s
  echo 'workspace_path: /path/to/your/workspace' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
