// Package testutil provides builders and scripted stubs shared across the
// package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pitcrew/internal/registry"
	"pitcrew/internal/workspace"
)

// NewArtifact builds a registry artifact with sensible defaults: owned by
// the caller, private, owner "me".
func NewArtifact(id int64, name string, opts ...ArtifactOption) registry.Artifact {
	a := registry.Artifact{
		ID:        id,
		Name:      name,
		Owner:     "me",
		OwnedByMe: true,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// NewBinary builds a workspace binary rooted at root with the conventional
// source path.
func NewBinary(root, name string) workspace.Binary {
	return workspace.Binary{
		Name:       name,
		Root:       root,
		SourcePath: filepath.Join(root, "src", "bin", name+".rs"),
	}
}

// WorkspaceBuilder lays out a bot workspace on disk for inspector and
// watcher tests.
type WorkspaceBuilder struct {
	t    *testing.T
	root string
	bins []string
}

// NewWorkspace starts a workspace under a fresh temp dir.
func NewWorkspace(t *testing.T) *WorkspaceBuilder {
	t.Helper()
	return &WorkspaceBuilder{t: t, root: t.TempDir()}
}

// WithBinary adds a src/bin source file for name.
func (b *WorkspaceBuilder) WithBinary(name string) *WorkspaceBuilder {
	b.bins = append(b.bins, name)
	return b
}

// Build writes the manifest and sources and returns the workspace root.
func (b *WorkspaceBuilder) Build() string {
	b.t.Helper()

	manifest := "[package]\nname = \"bots\"\nversion = \"0.1.0\"\n"
	require.NoError(b.t, os.WriteFile(filepath.Join(b.root, "Cargo.toml"), []byte(manifest), 0o644))

	binDir := filepath.Join(b.root, "src", "bin")
	require.NoError(b.t, os.MkdirAll(binDir, 0o755))
	for _, name := range b.bins {
		src := filepath.Join(binDir, name+".rs")
		require.NoError(b.t, os.WriteFile(src, []byte("fn main() {}\n"), 0o644))
	}
	return b.root
}
