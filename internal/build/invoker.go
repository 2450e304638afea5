// Package build wraps cargo invocation for bot binaries.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"pitcrew/internal/log"
)

// Invoker compiles bot binaries via the cargo CLI.
type Invoker struct {
	target string
}

// NewInvoker creates an invoker for the given target triple.
func NewInvoker(target string) *Invoker {
	return &Invoker{target: target}
}

// Target returns the configured target triple.
func (i *Invoker) Target() string {
	return i.target
}

// Build compiles the named binary in release mode for the configured target.
// Cargo's stderr is folded into the returned error on failure.
func (i *Invoker) Build(ctx context.Context, root, name string) error {
	cmd := exec.CommandContext(ctx, "cargo", "build",
		"--release", "--bin", name, "--target", i.target)
	cmd.Dir = root

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Info(log.CatBuild, "Building binary", "name", name, "target", i.target)

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("cargo build failed: %s", stderr.String())
		}
		return fmt.Errorf("cargo build failed: %w", err)
	}
	return nil
}

// OutputPath returns where cargo places the built binary. The location is a
// pure function of (root, name) for a fixed target triple; bot payloads are
// bare images with no file extension.
func (i *Invoker) OutputPath(root, name string) string {
	return filepath.Join(root, "target", i.target, "release", name)
}
