package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DebounceMS != 1100 {
		t.Errorf("DebounceMS = %d, want 1100", cfg.DebounceMS)
	}
	if cfg.ContainerRetryMS != 2000 {
		t.Errorf("ContainerRetryMS = %d, want 2000", cfg.ContainerRetryMS)
	}
	if cfg.DefaultFolder != "Unsorted" {
		t.Errorf("DefaultFolder = %q, want Unsorted", cfg.DefaultFolder)
	}
	if cfg.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want 127.0.0.1", cfg.WebBind)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"debounce_ms": 500, "default_folder": "Inbox"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DebounceMS != 500 {
		t.Errorf("DebounceMS = %d, want 500", cfg.DebounceMS)
	}
	if cfg.DefaultFolder != "Inbox" {
		t.Errorf("DefaultFolder = %q, want Inbox", cfg.DefaultFolder)
	}
	// Unset scalar keeps default
	if cfg.ContainerRetryMS != 2000 {
		t.Errorf("ContainerRetryMS = %d, want default 2000", cfg.ContainerRetryMS)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestLoadWithRepoOverlay(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalContent := `{"debounce_ms": 900, "disabled_tools": ["turn_export"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalContent), 0600); err != nil {
		t.Fatalf("write global config: %v", err)
	}

	repoCfgDir := filepath.Join(repoRoot, ".chatstash")
	if err := os.MkdirAll(repoCfgDir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	repoContent := `{"debounce_ms": 300, "disabled_tools": ["turn_import"]}`
	if err := os.WriteFile(filepath.Join(repoCfgDir, "config.json"), []byte(repoContent), 0600); err != nil {
		t.Fatalf("write repo config: %v", err)
	}

	// Start from a nested dir; repo config should be found by walking up.
	nested := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo failed: %v", err)
	}
	if cfg.DebounceMS != 300 {
		t.Errorf("repo overlay should win: DebounceMS = %d, want 300", cfg.DebounceMS)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools should merge: %v", cfg.DisabledTools)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Debounce() != 1100*time.Millisecond {
		t.Errorf("Debounce() = %v", cfg.Debounce())
	}
	if cfg.ContainerRetry() != 2*time.Second {
		t.Errorf("ContainerRetry() = %v", cfg.ContainerRetry())
	}
	if cfg.PollInterval() != 1500*time.Millisecond {
		t.Errorf("PollInterval() = %v", cfg.PollInterval())
	}
}

func TestMergeBooleansAndArrays(t *testing.T) {
	base := &Config{AllowUnsafePaths: false, AllowedPaths: []string{"/a", "/b"}}
	overlay := &Config{AllowUnsafePaths: true, AllowedPaths: []string{"/b", " /c "}}

	merged := Merge(base, overlay)
	if !merged.AllowUnsafePaths {
		t.Error("overlay true should win for AllowUnsafePaths")
	}
	want := []string{"/a", "/b", "/c"}
	if len(merged.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", merged.AllowedPaths, want)
	}
	for i, p := range want {
		if merged.AllowedPaths[i] != p {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, merged.AllowedPaths[i], p)
		}
	}
}
