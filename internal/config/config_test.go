package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"BjjflowPath", BjjflowPath, "/test/repo/.bjjflow"},
		{"ConfigPath", ConfigPath, "/test/repo/.bjjflow/config.json"},
		{"StatePath", StatePath, "/test/repo/.bjjflow/state.json"},
		{"CachePath", CachePath, "/test/repo/.bjjflow/cache"},
		{"DBPath", DBPath, "/test/repo/.bjjflow/cache/nodes.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	// Not a repository initially
	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	// Create .bjjflow directory
	if err := os.Mkdir(filepath.Join(tmpDir, BjjflowDir), 0755); err != nil {
		t.Fatalf("Failed to create .bjjflow: %v", err)
	}

	// Now it should be a repository
	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for repo directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	// Create .bjjflow as a file, not directory
	if err := os.WriteFile(filepath.Join(tmpDir, BjjflowDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .bjjflow file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .bjjflow is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.Mkdir(filepath.Join(tmpDir, BjjflowDir), 0755); err != nil {
		t.Fatalf("Failed to create .bjjflow: %v", err)
	}

	subDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdirectories: %v", err)
	}

	// Resolve symlinks so macOS /var vs /private/var doesn't matter
	want, _ := filepath.EvalSymlinks(tmpDir)

	got, err := FindRepository(subDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	got, _ = filepath.EvalSymlinks(got)
	if got != want {
		t.Errorf("FindRepository() = %q, want %q", got, want)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := FindRepository(tmpDir)
	if err == nil {
		t.Error("FindRepository() should return error when no repo found")
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.Mkdir(filepath.Join(tmpDir, BjjflowDir), 0755); err != nil {
		t.Fatalf("Failed to create .bjjflow: %v", err)
	}

	cfg := &Config{
		BundledPath:    "bjj-flowchart-workspace.json",
		ViewportWidth:  1600,
		ViewportHeight: 900,
	}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", *loaded, *cfg)
	}
}

func TestLoad_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	// Create .bjjflow directory but no config
	if err := os.Mkdir(filepath.Join(tmpDir, BjjflowDir), 0755); err != nil {
		t.Fatalf("Failed to create .bjjflow: %v", err)
	}

	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Load() should return error when config not found")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.Mkdir(filepath.Join(tmpDir, BjjflowDir), 0755); err != nil {
		t.Fatalf("Failed to create .bjjflow: %v", err)
	}

	// Write invalid JSON
	if err := os.WriteFile(ConfigPath(tmpDir), []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestResolveBundledPath(t *testing.T) {
	tests := []struct {
		name    string
		bundled string
		want    string
	}{
		{"unset", "", ""},
		{"relative", "data/workspace.json", "/repo/data/workspace.json"},
		{"absolute", "/srv/workspace.json", "/srv/workspace.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BundledPath: tt.bundled}
			if got := cfg.ResolveBundledPath("/repo"); got != tt.want {
				t.Errorf("ResolveBundledPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateBundledPath(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "workspace.json")
	if err := os.WriteFile(tmpFile, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", false},
		{"valid file", tmpFile, false},
		{"directory", tmpDir, true},
		{"nonexistent", "/nonexistent/path/workspace.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBundledPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBundledPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		value   float64
		wantErr bool
	}{
		{0, false},
		{200, false},
		{1600, false},
		{199, true},
		{-5, true},
		{20001, true},
	}

	for _, tt := range tests {
		err := ValidateViewport(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateViewport(%g) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	if got := ExpandPath("~/bjj"); got != filepath.Join(home, "bjj") {
		t.Errorf("ExpandPath(~/bjj) = %q, want %q", got, filepath.Join(home, "bjj"))
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q, want unchanged", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q, want empty", got)
	}
}

func TestConstants(t *testing.T) {
	// Verify constants have expected values
	if BjjflowDir != ".bjjflow" {
		t.Errorf("BjjflowDir = %q, want .bjjflow", BjjflowDir)
	}
	if ConfigFile != "config.json" {
		t.Errorf("ConfigFile = %q, want config.json", ConfigFile)
	}
	if StateFile != "state.json" {
		t.Errorf("StateFile = %q, want state.json", StateFile)
	}
	if DBFile != "nodes.db" {
		t.Errorf("DBFile = %q, want nodes.db", DBFile)
	}
}
