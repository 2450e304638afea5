package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pitcrew/internal/engine"
)

func TestViewStatusPairs(t *testing.T) {
	tests := []struct {
		status engine.ViewStatus
		state  engine.State
		detail engine.Detail
	}{
		{engine.NotLoggedIn(), engine.StateLoggedOut, engine.DetailNotLoggedIn},
		{engine.SessionExpired(), engine.StateLoggedOut, engine.DetailSessionExpired},
		{engine.RequestError(), engine.StateLoggedOut, engine.DetailRequestError},
		{engine.WorkspaceMissing(), engine.StateNeedsWorkspace, engine.DetailWorkspaceMissing},
		{engine.NoBinaries(), engine.StateNeedsWorkspace, engine.DetailNoBinaries},
		{engine.Ready(), engine.StateReady, engine.DetailNone},
	}
	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.state, tc.status.State())
			assert.Equal(t, tc.detail, tc.status.Detail())
			assert.Contains(t, engine.DetailsFor(tc.state), tc.detail)
		})
	}
}

func TestViewStatusIsReady(t *testing.T) {
	assert.True(t, engine.Ready().IsReady())
	assert.False(t, engine.NotLoggedIn().IsReady())
	assert.False(t, engine.NoBinaries().IsReady())
}

func TestViewStatusZeroValueIsLegal(t *testing.T) {
	var v engine.ViewStatus
	assert.Contains(t, engine.DetailsFor(v.State()), v.Detail())
}
