package engine_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pgregory.net/rapid"

	"pitcrew/internal/engine"
	"pitcrew/internal/registry"
	"pitcrew/internal/testutil"
)

// TestRefreshAlwaysPublishesLegalStatus drives a refresh through arbitrary
// combinations of collaborator outcomes and checks the published pair is
// always one of the six legal pairings, with the snapshot populated exactly
// when the engine is ready.
func TestRefreshAlwaysPublishesLegalStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture()

		authRequired := rapid.Bool().Draw(t, "authRequired")
		capsFail := rapid.Bool().Draw(t, "capsFail")
		f.registry.CapabilitiesFn = func(context.Context) (registry.Capabilities, error) {
			if capsFail {
				return registry.Capabilities{}, errors.New("unreachable")
			}
			return registry.Capabilities{AuthRequired: authRequired}, nil
		}

		f.sessions.Has = rapid.Bool().Draw(t, "hasSession")
		f.sessions.Token = "tok"

		f.inspector.Manifest = rapid.Bool().Draw(t, "hasManifest")
		binCount := rapid.IntRange(0, 3).Draw(t, "binCount")
		for i := 0; i < binCount; i++ {
			f.inspector.Binaries = append(f.inspector.Binaries, testutil.NewBinary("/ws", rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "binName")))
		}

		listOutcome := rapid.SampledFrom([]string{"ok", "unauthorized", "error"}).Draw(t, "listOutcome")
		f.registry.ListFn = func(context.Context, string) ([]registry.Artifact, error) {
			switch listOutcome {
			case "unauthorized":
				return nil, &registry.APIError{Code: "unauthorized", StatusCode: http.StatusUnauthorized}
			case "error":
				return nil, errors.New("boom")
			default:
				return []registry.Artifact{testutil.NewArtifact(1, "a")}, nil
			}
		}

		e := engine.New(engine.Options{
			Registry:  f.registry,
			Sessions:  f.sessions,
			Inspector: f.inspector,
			Builder:   f.builder,
			Prompter:  f.prompter,
			Revealer:  f.revealer,
			Workspace: "/ws",
		})
		defer e.Close()

		e.Refresh(context.Background())

		status := e.CurrentStatus()
		legal := false
		for _, d := range engine.DetailsFor(status.State()) {
			if d == status.Detail() {
				legal = true
			}
		}
		if !legal {
			t.Fatalf("illegal pair published: %s", status)
		}

		snap := e.CurrentSnapshot()
		if status.IsReady() {
			if len(snap.LocalBinaries) == 0 {
				t.Fatalf("ready with no local binaries")
			}
		} else if len(snap.LocalBinaries) != 0 || len(snap.Artifacts) != 0 {
			t.Fatalf("non-ready status %s published a populated snapshot", status)
		}
	})
}
