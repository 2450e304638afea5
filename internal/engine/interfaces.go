package engine

import (
	"context"

	"pitcrew/internal/registry"
	"pitcrew/internal/workspace"
)

// RegistryAPI is the slice of the registry client the engine consumes.
type RegistryAPI interface {
	Capabilities(ctx context.Context) (registry.Capabilities, error)
	ListArtifacts(ctx context.Context, token string) ([]registry.Artifact, error)
	Upload(ctx context.Context, token string, req registry.UploadRequest) (registry.UploadResponse, error)
	Delete(ctx context.Context, token string, id int64) error
	SetVisibility(ctx context.Context, token string, id int64, isPublic bool) error
}

// SessionStore resolves and clears the stored session token for the
// configured registry. Get returns ok=false when no session exists, which is
// a normal condition rather than an error.
type SessionStore interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Clear(ctx context.Context) error
}

// WorkspaceInspector reads the local bot workspace.
type WorkspaceInspector interface {
	HasManifest(root string) bool
	ListBinaries(root string) ([]workspace.Binary, error)
}

// Builder compiles a binary and knows where its output lands.
type Builder interface {
	Build(ctx context.Context, root, name string) error
	OutputPath(root, name string) string
}

// Prompter gathers operator input mid-workflow. Implementations return
// ok=false when the operator dismisses the prompt, which aborts the workflow
// without side effects.
type Prompter interface {
	InputName(ctx context.Context, defaultName string) (value string, ok bool, err error)
	InputNote(ctx context.Context) (value string, ok bool, err error)
	Confirm(ctx context.Context, message string) (bool, error)
	PickBinary(ctx context.Context, binaries []workspace.Binary) (workspace.Binary, bool, error)
}

// Revealer surfaces a file in the host file manager.
type Revealer interface {
	Reveal(path string) error
}
