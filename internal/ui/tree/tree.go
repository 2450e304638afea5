// Package tree renders the reconciled snapshot as a two-section list: local
// workspace binaries on top, registry artifacts below. Non-ready statuses
// render as a banner instead of rows.
package tree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pitcrew/internal/engine"
	"pitcrew/internal/registry"
	"pitcrew/internal/ui/styles"
	"pitcrew/internal/workspace"
)

// NodeKind discriminates row types in the flattened list.
type NodeKind int

const (
	// NodeHeader is a non-selectable section title.
	NodeHeader NodeKind = iota
	// NodeBinary is a selectable local binary row.
	NodeBinary
	// NodeArtifact is a selectable registry artifact row.
	NodeArtifact
	// NodePlaceholder is a non-selectable empty-section hint.
	NodePlaceholder
)

// Node is one row of the tree.
type Node struct {
	Kind     NodeKind
	Title    string
	Binary   workspace.Binary
	Artifact registry.Artifact
}

// Model holds the tree view state.
type Model struct {
	status     engine.ViewStatus
	nodes      []Node
	cursor     int
	showOwners bool
	width      int
	height     int
	scrollTop  int
}

// New creates an empty tree model.
func New(showOwners bool) *Model {
	return &Model{showOwners: showOwners}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSnapshot rebuilds the rows from a published status/snapshot pair. The
// cursor is preserved when it still points at a selectable row.
func (m *Model) SetSnapshot(status engine.ViewStatus, snap engine.Snapshot) {
	m.status = status

	if !status.IsReady() {
		m.nodes = nil
		m.cursor = 0
		m.scrollTop = 0
		return
	}

	var nodes []Node
	nodes = append(nodes, Node{Kind: NodeHeader, Title: "LOCAL BOTS"})
	for _, bin := range snap.LocalBinaries {
		nodes = append(nodes, Node{Kind: NodeBinary, Title: bin.Name, Binary: bin})
	}

	nodes = append(nodes, Node{Kind: NodeHeader, Title: "REGISTRY"})
	if len(snap.Artifacts) == 0 {
		nodes = append(nodes, Node{Kind: NodePlaceholder, Title: "registry is empty"})
	}
	for _, art := range snap.Artifacts {
		nodes = append(nodes, Node{Kind: NodeArtifact, Title: art.Name, Artifact: art})
	}

	m.nodes = nodes
	if m.cursor >= len(nodes) || !selectable(nodes[m.cursor].Kind) {
		m.cursor = m.firstSelectable()
	}
	m.ensureCursorVisible()
}

func selectable(k NodeKind) bool {
	return k == NodeBinary || k == NodeArtifact
}

func (m *Model) firstSelectable() int {
	for i, n := range m.nodes {
		if selectable(n.Kind) {
			return i
		}
	}
	return 0
}

// MoveCursor moves the cursor by delta, skipping headers and placeholders.
func (m *Model) MoveCursor(delta int) {
	if len(m.nodes) == 0 {
		return
	}

	step := 1
	if delta < 0 {
		step = -1
		delta = -delta
	}

	pos := m.cursor
	for moved := 0; moved < delta; moved++ {
		next := pos
		for {
			next += step
			if next < 0 || next >= len(m.nodes) {
				next = pos
				break
			}
			if selectable(m.nodes[next].Kind) {
				break
			}
		}
		if next == pos {
			break
		}
		pos = next
	}

	m.cursor = pos
	m.ensureCursorVisible()
}

// SelectedBinary returns the binary under the cursor, if any.
func (m *Model) SelectedBinary() (workspace.Binary, bool) {
	if m.cursor < len(m.nodes) && m.nodes[m.cursor].Kind == NodeBinary {
		return m.nodes[m.cursor].Binary, true
	}
	return workspace.Binary{}, false
}

// SelectedArtifact returns the artifact under the cursor, if any.
func (m *Model) SelectedArtifact() (registry.Artifact, bool) {
	if m.cursor < len(m.nodes) && m.nodes[m.cursor].Kind == NodeArtifact {
		return m.nodes[m.cursor].Artifact, true
	}
	return registry.Artifact{}, false
}

func (m *Model) ensureCursorVisible() {
	viewportHeight := m.viewportHeight()
	if viewportHeight <= 0 {
		return
	}

	if m.cursor >= m.scrollTop+viewportHeight {
		m.scrollTop = m.cursor - viewportHeight + 1
	}
	if m.cursor < m.scrollTop {
		m.scrollTop = m.cursor
	}

	maxScroll := max(len(m.nodes)-viewportHeight, 0)
	m.scrollTop = min(m.scrollTop, maxScroll)
	m.scrollTop = max(m.scrollTop, 0)
}

func (m *Model) viewportHeight() int {
	reserved := 1
	if m.height > reserved {
		return m.height - reserved
	}
	return 1
}

// View renders the tree or, for non-ready statuses, a banner.
func (m *Model) View() string {
	if !m.status.IsReady() {
		return m.renderBanner()
	}

	var sb strings.Builder

	viewportHeight := m.viewportHeight()
	endIdx := min(m.scrollTop+viewportHeight, len(m.nodes))

	if m.scrollTop > 0 {
		sb.WriteString(styles.HintStyle.Render(fmt.Sprintf("  ↑ %d more above", m.scrollTop)))
		sb.WriteString("\n")
	}

	for i := m.scrollTop; i < endIdx; i++ {
		sb.WriteString(m.renderNode(m.nodes[i], i == m.cursor))
		sb.WriteString("\n")
	}

	if remaining := len(m.nodes) - endIdx; remaining > 0 {
		sb.WriteString(styles.HintStyle.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m *Model) renderBanner() string {
	var lines []string
	switch m.status.Detail() {
	case engine.DetailNotLoggedIn:
		lines = []string{
			"This registry requires a login.",
			"Run `pitcrew login` in another terminal, then press r.",
		}
	case engine.DetailSessionExpired:
		lines = []string{
			"Your session expired and has been cleared.",
			"Run `pitcrew login` again, then press r.",
		}
	case engine.DetailRequestError:
		lines = []string{
			"The registry could not be reached.",
			"Check the registry URL in your config, then press r to retry.",
		}
	case engine.DetailWorkspaceMissing:
		lines = []string{
			"No Cargo.toml found in the workspace.",
			"Point the workspace setting at your bot crate.",
		}
	case engine.DetailNoBinaries:
		lines = []string{
			"The workspace declares no binaries.",
			"Add a src/bin/<name>.rs or a [[bin]] entry to Cargo.toml.",
		}
	default:
		lines = []string{"Reconciling..."}
	}

	banner := styles.HintStyle.Render(strings.Join(lines, "\n"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, banner)
	}
	return banner
}

func (m *Model) renderNode(n Node, isSelected bool) string {
	switch n.Kind {
	case NodeHeader:
		return " " + styles.SectionHeaderStyle.Render(n.Title)
	case NodePlaceholder:
		return "   " + styles.HintStyle.Render(n.Title)
	case NodeBinary:
		return m.renderBinary(n, isSelected)
	default:
		return m.renderArtifact(n, isSelected)
	}
}

func (m *Model) renderBinary(n Node, isSelected bool) string {
	var sb strings.Builder
	sb.WriteString(m.cursorPrefix(isSelected))
	sb.WriteString("  ")
	sb.WriteString(n.Binary.Name)

	src := strings.TrimPrefix(n.Binary.SourcePath, n.Binary.Root+string(filepath.Separator))
	meta := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Render(src)
	return m.padRight(sb.String(), meta)
}

func (m *Model) renderArtifact(n Node, isSelected bool) string {
	var sb strings.Builder
	sb.WriteString(m.cursorPrefix(isSelected))
	sb.WriteString("  ")

	name := n.Artifact.Name
	if n.Artifact.OwnedByMe {
		name = lipgloss.NewStyle().Bold(true).Render(name)
	}
	sb.WriteString(name)

	var metaParts []string
	if m.showOwners && n.Artifact.Owner != "" {
		metaParts = append(metaParts,
			lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Render(n.Artifact.Owner))
	}
	metaParts = append(metaParts, styles.FormatVisibility(n.Artifact.IsPublic))

	return m.padRight(sb.String(), strings.Join(metaParts, " "))
}

func (m *Model) cursorPrefix(isSelected bool) string {
	if isSelected {
		return styles.SelectionIndicatorStyle.Render(">")
	}
	return " "
}

// padRight right-aligns meta against the viewport edge, truncating the left
// side first when the row does not fit.
func (m *Model) padRight(left, meta string) string {
	if m.width <= 0 {
		return left + "  " + meta
	}

	leftWidth := lipgloss.Width(left)
	metaWidth := lipgloss.Width(meta)
	minPadding := 2

	// Drop metadata entirely when the row does not fit.
	if leftWidth+minPadding+metaWidth > m.width {
		return left
	}

	return left + strings.Repeat(" ", max(m.width-leftWidth-metaWidth, minPadding)) + meta
}
