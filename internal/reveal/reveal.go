// Package reveal opens a file's location in the host file manager.
package reveal

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Revealer opens paths in the platform file manager.
type Revealer struct {
	// goos overrides runtime.GOOS in tests.
	goos string
}

// New creates a Revealer for the current platform.
func New() *Revealer {
	return &Revealer{goos: runtime.GOOS}
}

// Reveal surfaces path in the file manager. On macOS the file itself is
// selected; elsewhere the containing directory is opened.
func (r *Revealer) Reveal(path string) error {
	name, args := r.command(path)

	//nolint:gosec // G204: command name is platform-fixed, path is local
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, stderr.String())
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (r *Revealer) command(path string) (string, []string) {
	switch r.goos {
	case "darwin":
		return "open", []string{"-R", path}
	case "windows":
		return "explorer", []string{"/select,", path}
	default:
		return "xdg-open", []string{filepath.Dir(path)}
	}
}
