// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
)

// ResolveWorkspaceRoot resolves the bot workspace root from user input.
// It normalizes the input and, when the given directory carries no
// Cargo.toml of its own, walks up toward the filesystem root looking for
// one. This lets pitcrew be launched from anywhere inside a workspace,
// including src/bin/ while editing a bot.
//
// Input normalization:
//   - "" -> current directory
//   - "/path/to/workspace" -> "/path/to/workspace"
//   - "/path/to/workspace/src/bin" -> "/path/to/workspace"
//
// If no Cargo.toml is found anywhere up the tree, the normalized input is
// returned unchanged; the reconciler then reports the missing manifest.
func ResolveWorkspaceRoot(path string) string {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	dir := abs
	for {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}
