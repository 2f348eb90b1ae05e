// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents repository configuration stored in .bjjflow/config.json.
type Config struct {
	BundledPath    string  `json:"bundled_path,omitempty"`    // Workspace file loaded before local state
	ViewportWidth  float64 `json:"viewport_width,omitempty"`  // Minimum canvas width
	ViewportHeight float64 `json:"viewport_height,omitempty"` // Minimum canvas height
}

const (
	BjjflowDir = ".bjjflow"
	ConfigFile = "config.json"
	StateFile  = "state.json"
	CacheDir   = "cache"
	DBFile     = "nodes.db"
)

// Viewport bounds accepted by Validate.
const (
	MinViewport = 200.0
	MaxViewport = 20000.0
)

// BjjflowPath returns the path to the .bjjflow directory from a root path.
func BjjflowPath(root string) string {
	return filepath.Join(root, BjjflowDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, BjjflowDir, ConfigFile)
}

// StatePath returns the path to the persisted workspace state from a root path.
func StatePath(root string) string {
	return filepath.Join(root, BjjflowDir, StateFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, BjjflowDir, CacheDir)
}

// DBPath returns the path to the search index from a root path.
func DBPath(root string) string {
	return filepath.Join(root, BjjflowDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a bjjflow workspace.
func IsRepository(root string) bool {
	info, err := os.Stat(BjjflowPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a bjjflow workspace.
// Returns the workspace root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a bjjflow workspace (no .bjjflow directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ResolveBundledPath returns the bundled workspace path relative to root,
// or "" when none is configured.
func (c *Config) ResolveBundledPath(root string) string {
	if c.BundledPath == "" {
		return ""
	}
	path := ExpandPath(c.BundledPath)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// ValidateBundledPath checks that the bundled workspace path, if set, is a file.
func ValidateBundledPath(path string) error {
	if path == "" {
		return nil // Empty is allowed (no bundled workspace)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", expandedPath)
	}

	return nil
}

// ValidateViewport checks a viewport dimension. Zero means "use the default".
func ValidateViewport(v float64) error {
	if v == 0 {
		return nil
	}
	if v < MinViewport || v > MaxViewport {
		return fmt.Errorf("invalid viewport size: %g (valid: %g-%g)", v, MinViewport, MaxViewport)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
