// Package workspace inspects a bot workspace: manifest presence and the set
// of locally buildable binaries.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"pitcrew/internal/log"
)

// Binary is a locally buildable bot binary.
type Binary struct {
	// Name is the binary name as declared or discovered.
	Name string
	// Root is the workspace root the binary belongs to.
	Root string
	// SourcePath is the path of the binary's source file, when known.
	// Manifest declarations without a path override leave it empty.
	SourcePath string
}

// Inspector determines manifest validity and enumerates buildable binaries.
// It is stateless; every call re-reads the filesystem.
type Inspector struct{}

// NewInspector creates a workspace inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// HasManifest reports whether root contains a parseable Cargo.toml.
func (i *Inspector) HasManifest(root string) bool {
	manifestPath := filepath.Join(root, "Cargo.toml")
	if _, err := os.Stat(manifestPath); err != nil {
		return false
	}
	if _, err := readManifest(manifestPath); err != nil {
		log.Warn(log.CatWorkspace, "Manifest present but unreadable", "path", manifestPath, "error", err)
		return false
	}
	return true
}

// ListBinaries enumerates the workspace's buildable binaries: explicit
// `[[bin]]` manifest declarations (with optional path override) plus
// convention discovery under src/bin. Results are deduplicated by name
// with manifest declarations winning, and sorted by name.
func (i *Inspector) ListBinaries(root string) ([]Binary, error) {
	manifestPath := filepath.Join(root, "Cargo.toml")
	manifest, err := readManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	seen := make(map[string]Binary)

	for _, declared := range manifest.bins {
		if declared.name == "" {
			continue
		}
		bin := Binary{Name: declared.name, Root: root}
		if declared.path != "" {
			bin.SourcePath = filepath.Join(root, filepath.FromSlash(declared.path))
		}
		seen[declared.name] = bin
	}

	for _, discovered := range discoverConventionBinaries(root) {
		if _, exists := seen[discovered.Name]; exists {
			continue
		}
		seen[discovered.Name] = discovered
	}

	binaries := make([]Binary, 0, len(seen))
	for _, bin := range seen {
		binaries = append(binaries, bin)
	}
	sort.Slice(binaries, func(a, b int) bool { return binaries[a].Name < binaries[b].Name })

	log.Debug(log.CatWorkspace, "Enumerated binaries", "root", root, "count", len(binaries))
	return binaries, nil
}

type declaredBin struct {
	name string
	path string
}

type manifest struct {
	bins []declaredBin
}

// readManifest parses Cargo.toml and extracts the `[[bin]]` declarations.
func readManifest(path string) (*manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var m manifest
	raw, ok := v.Get("bin").([]any)
	if !ok {
		// No [[bin]] section; convention discovery still applies.
		return &m, nil
	}

	for _, entry := range raw {
		table, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		bin := declaredBin{}
		if name, ok := table["name"].(string); ok {
			bin.name = name
		}
		if path, ok := table["path"].(string); ok {
			bin.path = path
		}
		m.bins = append(m.bins, bin)
	}
	return &m, nil
}

// discoverConventionBinaries finds src/bin/*.rs entries; each file is a
// binary named after its stem.
func discoverConventionBinaries(root string) []Binary {
	binDir := filepath.Join(root, "src", "bin")
	entries, err := os.ReadDir(binDir)
	if err != nil {
		return nil
	}

	var binaries []Binary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rs") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".rs")
		binaries = append(binaries, Binary{
			Name:       name,
			Root:       root,
			SourcePath: filepath.Join(binDir, entry.Name()),
		})
	}
	return binaries
}
