package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitcrew/internal/config"
	"pitcrew/internal/engine"
	"pitcrew/internal/pubsub"
	"pitcrew/internal/registry"
	"pitcrew/internal/testutil"
	"pitcrew/internal/ui/prompt"
	"pitcrew/internal/ui/toaster"
	"pitcrew/internal/workspace"
)

func newTestModel(t *testing.T) (Model, *testutil.StubRegistry) {
	t.Helper()

	reg := &testutil.StubRegistry{}
	reg.ListFn = func(context.Context, string) ([]registry.Artifact, error) {
		return []registry.Artifact{testutil.NewArtifact(1, "veteran")}, nil
	}

	eng := engine.New(engine.Options{
		Registry:  reg,
		Sessions:  &testutil.StubSessions{},
		Inspector: &testutil.StubInspector{Manifest: true, Binaries: []workspace.Binary{testutil.NewBinary("/ws", "alpha")}},
		Builder:   &testutil.StubBuilder{},
		Prompter:  &testutil.StubPrompter{},
		Revealer:  &testutil.StubRevealer{},
		Workspace: "/ws",
	})
	t.Cleanup(eng.Close)

	cfg := config.Defaults()
	cfg.AutoRefresh = false

	m := New(eng, cfg, false)
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model), reg
}

func TestEngineEventUpdatesTree(t *testing.T) {
	m, _ := newTestModel(t)
	m.engine.Refresh(context.Background())

	updated, cmd := m.Update(pubsub.Event[engine.ChangeNotice]{
		Type:    pubsub.RefreshedEvent,
		Payload: engine.ChangeNotice{Status: engine.Ready()},
	})
	m = updated.(Model)

	require.NotNil(t, cmd, "must re-arm the listener")
	assert.Contains(t, m.View(), "veteran")
	assert.Contains(t, m.View(), "alpha")
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWorkflowDoneSuccessToasts(t *testing.T) {
	m, _ := newTestModel(t)

	updated, cmd := m.Update(workflowDoneMsg{name: "build & upload", artifactID: 7})
	m = updated.(Model)

	assert.True(t, m.toaster.Visible())
	assert.Contains(t, m.toaster.Message(), "#7")
	assert.NotNil(t, cmd, "dismiss must be scheduled")
}

func TestWorkflowDoneAbortedIsSilent(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(workflowDoneMsg{name: "delete", err: engine.ErrAborted})
	m = updated.(Model)

	assert.False(t, m.toaster.Visible())
}

func TestWorkflowDoneWarningToastsWarn(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(workflowDoneMsg{name: "replace", artifactID: 3, warning: "could not delete old artifact"})
	m = updated.(Model)

	assert.True(t, m.toaster.Visible())
	assert.Contains(t, m.toaster.Message(), "could not delete")
}

func TestWorkflowDoneFailureToastsError(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(workflowDoneMsg{name: "delete", err: errors.New("boom")})
	m = updated.(Model)

	assert.True(t, m.toaster.Visible())
	assert.Contains(t, m.toaster.Message(), "failed")
}

func TestPromptCapturesKeys(t *testing.T) {
	m, _ := newTestModel(t)

	msgs := make(chan tea.Msg, 1)
	confirmed := make(chan bool, 1)
	go func() {
		b := prompt.NewBridge(func(msg tea.Msg) { msgs <- msg })
		ok, err := b.Confirm(context.Background(), "Delete?")
		require.NoError(t, err)
		confirmed <- ok
	}()

	updated, _ := m.Update(<-msgs)
	m = updated.(Model)
	require.True(t, m.prompt.Active())

	// Movement keys belong to the modal while it is open.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = updated.(Model)

	assert.True(t, <-confirmed)
	assert.False(t, m.prompt.Active())
}

func TestToastDismiss(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(workflowDoneMsg{name: "delete"})
	m = updated.(Model)
	require.True(t, m.toaster.Visible())

	updated, _ = m.Update(toaster.DismissMsg{})
	m = updated.(Model)
	assert.False(t, m.toaster.Visible())
}
