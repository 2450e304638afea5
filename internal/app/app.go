// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pitcrew/internal/config"
	"pitcrew/internal/engine"
	"pitcrew/internal/keys"
	"pitcrew/internal/log"
	"pitcrew/internal/pubsub"
	"pitcrew/internal/registry"
	"pitcrew/internal/ui/overlay"
	"pitcrew/internal/ui/prompt"
	"pitcrew/internal/ui/styles"
	"pitcrew/internal/ui/toaster"
	"pitcrew/internal/ui/tree"
	"pitcrew/internal/watcher"
	"pitcrew/internal/workspace"
)

const maxLogLines = 12

// workflowDoneMsg reports a finished (or failed) workflow back to the UI.
type workflowDoneMsg struct {
	name       string
	artifactID int64
	warning    string
	err        error
}

// refreshDoneMsg signals that an async refresh pass completed.
type refreshDoneMsg struct{}

// Model is the root application state.
type Model struct {
	engine *engine.Engine
	cfg    config.Config
	keys   keys.KeyMap

	tree    *tree.Model
	toaster toaster.Model
	prompt  prompt.Model

	width  int
	height int

	showHelp  bool
	debugMode bool
	logLines  []string

	listenCtx      context.Context
	listenCancel   context.CancelFunc
	engineListener *pubsub.ContinuousListener[engine.ChangeNotice]

	watcherHandle   *watcher.Watcher
	watcherListener *pubsub.ContinuousListener[watcher.WatcherEvent]

	logListener *log.LogListener
}

// New creates the root model and wires it to a running engine. The watcher is
// started here when auto-refresh is enabled; failures to start it are logged
// and otherwise ignored since the app works fine with manual refresh.
func New(eng *engine.Engine, cfg config.Config, debugMode bool) Model {
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		engine:         eng,
		cfg:            cfg,
		keys:           keys.DefaultKeyMap(),
		tree:           tree.New(cfg.UI.ShowOwners),
		toaster:        toaster.New(),
		prompt:         prompt.New(),
		debugMode:      debugMode,
		listenCtx:      ctx,
		listenCancel:   cancel,
		engineListener: pubsub.NewContinuousListener(ctx, eng.Events()),
	}

	if cfg.AutoRefresh {
		w, err := watcher.New(watcher.Config{
			Root:        cfg.Workspace,
			DebounceDur: cfg.AutoRefreshDebounce,
		})
		if err == nil {
			m.watcherListener = pubsub.NewContinuousListener(ctx, w.Broker())
			if err := w.Start(); err == nil {
				m.watcherHandle = w
			} else {
				log.ErrorErr(log.CatWatcher, "watcher start failed", err)
				_ = w.Stop()
				m.watcherListener = nil
			}
		} else {
			log.ErrorErr(log.CatWatcher, "watcher init failed", err)
		}
	}

	if debugMode {
		m.logListener = log.NewListener(ctx)
	}

	return m
}

// Init implements tea.Model. It kicks off the first refresh and starts the
// event listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.refreshCmd(),
		m.engineListener.Listen(),
	}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tree.SetSize(msg.Width, m.contentHeight())
		m.toaster = m.toaster.SetSize(msg.Width, msg.Height)
		m.prompt = m.prompt.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case prompt.RequestMsg:
		m.prompt = m.prompt.Open(msg.Request)
		return m, nil

	case pubsub.Event[engine.ChangeNotice]:
		m.tree.SetSnapshot(m.engine.CurrentStatus(), m.engine.CurrentSnapshot())
		return m, m.engineListener.Listen()

	case pubsub.Event[watcher.WatcherEvent]:
		return m.handleWatcherEvent(msg)

	case pubsub.Event[string]:
		// Debug log feed
		m.logLines = append(m.logLines, strings.TrimRight(msg.Payload, "\n"))
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		return m, m.logListener.Listen()

	case workflowDoneMsg:
		return m.handleWorkflowDone(msg)

	case refreshDoneMsg:
		return m, nil

	case toaster.DismissMsg:
		m.toaster = m.toaster.Hide()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending prompt captures all input.
	if m.prompt.Active() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case msg.String() == "ctrl+x" && m.debugMode:
		m.logLines = nil
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.tree.MoveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.tree.MoveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Upload):
		if bin, ok := m.tree.SelectedBinary(); ok {
			return m, m.buildAndUploadCmd(bin)
		}
		return m, nil

	case key.Matches(msg, m.keys.Replace):
		if art, ok := m.tree.SelectedArtifact(); ok {
			return m, m.replaceCmd(art)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if art, ok := m.tree.SelectedArtifact(); ok {
			return m, m.deleteCmd(art)
		}
		return m, nil

	case key.Matches(msg, m.keys.Visibility):
		if art, ok := m.tree.SelectedArtifact(); ok {
			return m, m.toggleVisibilityCmd(art)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reveal):
		if bin, ok := m.tree.SelectedBinary(); ok {
			if err := m.engine.RevealBuildOutput(bin); err != nil {
				return m.toast(err.Error(), toaster.StyleWarn)
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleWatcherEvent(msg pubsub.Event[watcher.WatcherEvent]) (tea.Model, tea.Cmd) {
	switch msg.Payload.Kind {
	case watcher.WorkspaceChanged:
		log.Debug(log.CatWatcher, "workspace changed, refreshing")
		return m, tea.Batch(m.refreshCmd(), m.watcherListener.Listen())
	case watcher.WatcherError:
		log.ErrorErr(log.CatWatcher, "watcher error", msg.Payload.Error)
	}
	return m, m.watcherListener.Listen()
}

func (m Model) handleWorkflowDone(msg workflowDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil && msg.warning != "":
		return m.toast(msg.warning, toaster.StyleWarn)
	case msg.err == nil:
		text := msg.name + " complete"
		if msg.artifactID != 0 {
			text = fmt.Sprintf("%s complete (artifact #%d)", msg.name, msg.artifactID)
		}
		return m.toast(text, toaster.StyleSuccess)
	case engine.IsAborted(msg.err):
		return m, nil
	case engine.IsPrecondition(msg.err):
		return m.toast(msg.err.Error(), toaster.StyleWarn)
	default:
		log.ErrorErr(log.CatUI, msg.name+" failed", msg.err)
		return m.toast(msg.name+" failed: "+msg.err.Error(), toaster.StyleError)
	}
}

func (m Model) toast(text string, style toaster.Style) (tea.Model, tea.Cmd) {
	m.toaster = m.toaster.Show(text, style)
	return m, toaster.ScheduleDismiss(toaster.DefaultDuration)
}

func (m Model) refreshCmd() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		eng.Refresh(context.Background())
		return refreshDoneMsg{}
	}
}

func (m Model) buildAndUploadCmd(bin workspace.Binary) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		id, err := eng.BuildAndUpload(context.Background(), bin)
		return workflowDoneMsg{name: "build & upload", artifactID: id, err: err}
	}
}

func (m Model) replaceCmd(art registry.Artifact) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		res, err := eng.Replace(context.Background(), art)
		return workflowDoneMsg{name: "replace", artifactID: res.ArtifactID, warning: res.Warning, err: err}
	}
}

func (m Model) deleteCmd(art registry.Artifact) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		err := eng.Delete(context.Background(), art)
		return workflowDoneMsg{name: "delete", err: err}
	}
}

func (m Model) toggleVisibilityCmd(art registry.Artifact) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		err := eng.ToggleVisibility(context.Background(), art)
		return workflowDoneMsg{name: "visibility toggle", err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var sections []string

	if m.cfg.UI.ShowStatusBar {
		sections = append(sections, m.statusBar())
	}

	sections = append(sections, m.tree.View())

	if m.debugMode && len(m.logLines) > 0 {
		sections = append(sections, styles.HintStyle.Render(strings.Join(m.logLines, "\n")))
	}

	sections = append(sections, m.footer())
	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.showHelp {
		view = m.helpOverlay(view)
	}
	view = m.prompt.Overlay(view)
	return m.toaster.Overlay(view, m.width, m.height)
}

func (m Model) statusBar() string {
	status := m.engine.CurrentStatus()

	var dot string
	switch status.State() {
	case engine.StateReady:
		dot = lipgloss.NewStyle().Foreground(styles.StatusSuccessColor).Render("●")
	case engine.StateNeedsWorkspace:
		dot = lipgloss.NewStyle().Foreground(styles.StatusWarningColor).Render("●")
	default:
		dot = lipgloss.NewStyle().Foreground(styles.StatusErrorColor).Render("●")
	}

	return fmt.Sprintf(" %s %s  %s", dot, status.Detail(),
		styles.HintStyle.Render(m.cfg.RegistryURL))
}

func (m Model) footer() string {
	hints := []string{"j/k move", "r refresh", "u upload", "? help", "q quit"}
	return " " + styles.HintStyle.Render(strings.Join(hints, " · "))
}

func (m Model) helpOverlay(bg string) string {
	bindings := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.Refresh, m.keys.Upload,
		m.keys.Replace, m.keys.Delete, m.keys.Visibility, m.keys.Reveal,
		m.keys.Escape, m.keys.Quit,
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).Render("Keybindings"))
	sb.WriteString("\n\n")
	for _, b := range bindings {
		h := b.Help()
		sb.WriteString(fmt.Sprintf("%-8s %s\n", h.Key, h.Desc))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(sb.String())

	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, box, bg)
}

func (m Model) contentHeight() int {
	reserved := 1 // footer
	if m.cfg.UI.ShowStatusBar {
		reserved++
	}
	if m.height > reserved {
		return m.height - reserved
	}
	return 1
}

// Close tears down listeners and the watcher. Call after the program exits.
func (m Model) Close() {
	m.listenCancel()
	if m.watcherHandle != nil {
		_ = m.watcherHandle.Stop()
	}
}
