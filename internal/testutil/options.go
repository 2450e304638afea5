package testutil

import "pitcrew/internal/registry"

// ArtifactOption configures an artifact built by NewArtifact.
type ArtifactOption func(*registry.Artifact)

// Owner sets the owning username.
func Owner(name string) ArtifactOption {
	return func(a *registry.Artifact) { a.Owner = name }
}

// Public marks the artifact publicly visible.
func Public() ArtifactOption {
	return func(a *registry.Artifact) { a.IsPublic = true }
}

// NotMine marks the artifact as owned by someone else.
func NotMine() ArtifactOption {
	return func(a *registry.Artifact) { a.OwnedByMe = false }
}
