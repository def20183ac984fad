package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // for import (read file)
	PathCheckWrite                      // for export (write file)
)

// ValidatePath validates an import/export path: no traversal sequences,
// .json extension, and the file must sit directly in baseDir/exports or one
// of cfg.AllowedPaths unless unsafe paths are enabled. Symlinks are
// rejected in every mode.
func ValidatePath(path string, mode PathCheckMode, baseDir string, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".json" {
		return errors.NewInvalidRequest("path must have .json extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewInvalidRequest(fmt.Sprintf("file not found: %s", path))
		}
	}

	// Symlink restriction applies even with unsafe paths enabled.
	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
	}

	if cfg != nil && cfg.AllowUnsafePaths {
		return nil
	}

	allowedDirs := []string{filepath.Join(baseDir, "exports")}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				allowedDirs = append(allowedDirs, filepath.Clean(p))
			}
		}
	}

	parentDir := filepath.Dir(absPath)
	for _, dir := range allowedDirs {
		if parentDir == dir {
			return nil
		}
	}
	return errors.NewInvalidRequest(
		fmt.Sprintf("file must be directly in an allowed directory; allowed: %v", allowedDirs))
}

// containsTraversal reports whether any path element is "..".
func containsTraversal(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
