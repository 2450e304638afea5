package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const manifestWithBins = `[package]
name = "bots"
version = "0.1.0"

[[bin]]
name = "car"

[[bin]]
name = "tuned"
path = "custom/tuned.rs"
`

func TestHasManifest(t *testing.T) {
	root := t.TempDir()
	assert.False(t, NewInspector().HasManifest(root))

	writeFile(t, filepath.Join(root, "Cargo.toml"), manifestWithBins)
	assert.True(t, NewInspector().HasManifest(root))
}

func TestHasManifestRejectsUnparseable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[[bin\nname =")

	assert.False(t, NewInspector().HasManifest(root))
}

func TestListBinariesFromManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), manifestWithBins)

	binaries, err := NewInspector().ListBinaries(root)
	require.NoError(t, err)
	require.Len(t, binaries, 2)

	assert.Equal(t, "car", binaries[0].Name)
	assert.Empty(t, binaries[0].SourcePath, "declaration without path override")
	assert.Equal(t, root, binaries[0].Root)

	assert.Equal(t, "tuned", binaries[1].Name)
	assert.Equal(t, filepath.Join(root, "custom", "tuned.rs"), binaries[1].SourcePath)
}

func TestListBinariesConventionDiscovery(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[package]\nname = \"bots\"\n")
	writeFile(t, filepath.Join(root, "src", "bin", "bottles.rs"), "fn main() {}")
	writeFile(t, filepath.Join(root, "src", "bin", "notes.txt"), "not a binary")

	binaries, err := NewInspector().ListBinaries(root)
	require.NoError(t, err)
	require.Len(t, binaries, 1)
	assert.Equal(t, "bottles", binaries[0].Name)
	assert.Equal(t, filepath.Join(root, "src", "bin", "bottles.rs"), binaries[0].SourcePath)
}

func TestListBinariesManifestWinsOverConvention(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), manifestWithBins)
	writeFile(t, filepath.Join(root, "src", "bin", "car.rs"), "fn main() {}")
	writeFile(t, filepath.Join(root, "src", "bin", "bottles.rs"), "fn main() {}")

	binaries, err := NewInspector().ListBinaries(root)
	require.NoError(t, err)
	require.Len(t, binaries, 3)

	// Sorted: bottles, car, tuned. The manifest "car" entry (no source
	// path) wins over the discovered src/bin/car.rs.
	assert.Equal(t, "bottles", binaries[0].Name)
	assert.Equal(t, "car", binaries[1].Name)
	assert.Empty(t, binaries[1].SourcePath)
	assert.Equal(t, "tuned", binaries[2].Name)
}

func TestListBinariesEmptyWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[package]\nname = \"bots\"\n")

	binaries, err := NewInspector().ListBinaries(root)
	require.NoError(t, err)
	assert.Empty(t, binaries)
}

func TestListBinariesMissingManifest(t *testing.T) {
	_, err := NewInspector().ListBinaries(t.TempDir())
	assert.Error(t, err)
}
