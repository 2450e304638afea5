package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"pitcrew/internal/registry"
	"pitcrew/internal/workspace"
)

// StubRegistry scripts registry responses per method and counts calls. The
// zero value answers every call successfully with empty data.
type StubRegistry struct {
	mu sync.Mutex

	CapabilitiesFn  func(ctx context.Context) (registry.Capabilities, error)
	ListFn          func(ctx context.Context, token string) ([]registry.Artifact, error)
	UploadFn        func(ctx context.Context, token string, req registry.UploadRequest) (registry.UploadResponse, error)
	DeleteFn        func(ctx context.Context, token string, id int64) error
	SetVisibilityFn func(ctx context.Context, token string, id int64, isPublic bool) error

	CapabilitiesCalls  int
	ListCalls          int
	UploadCalls        int
	DeleteCalls        int
	SetVisibilityCalls int

	// Uploads records every upload request received.
	Uploads []registry.UploadRequest
	// Deleted records every artifact ID passed to Delete.
	Deleted []int64
}

// CapabilitiesCallCount reads the probe counter safely from other goroutines.
func (s *StubRegistry) CapabilitiesCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CapabilitiesCalls
}

func (s *StubRegistry) Capabilities(ctx context.Context) (registry.Capabilities, error) {
	s.mu.Lock()
	s.CapabilitiesCalls++
	fn := s.CapabilitiesFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return registry.Capabilities{}, nil
}

func (s *StubRegistry) ListArtifacts(ctx context.Context, token string) ([]registry.Artifact, error) {
	s.mu.Lock()
	s.ListCalls++
	fn := s.ListFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, token)
	}
	return nil, nil
}

func (s *StubRegistry) Upload(ctx context.Context, token string, req registry.UploadRequest) (registry.UploadResponse, error) {
	s.mu.Lock()
	s.UploadCalls++
	s.Uploads = append(s.Uploads, req)
	fn := s.UploadFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, token, req)
	}
	return registry.UploadResponse{ArtifactID: 1}, nil
}

func (s *StubRegistry) Delete(ctx context.Context, token string, id int64) error {
	s.mu.Lock()
	s.DeleteCalls++
	s.Deleted = append(s.Deleted, id)
	fn := s.DeleteFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, token, id)
	}
	return nil
}

func (s *StubRegistry) SetVisibility(ctx context.Context, token string, id int64, isPublic bool) error {
	s.mu.Lock()
	s.SetVisibilityCalls++
	fn := s.SetVisibilityFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, token, id, isPublic)
	}
	return nil
}

// StubSessions is an in-memory session store.
type StubSessions struct {
	mu    sync.Mutex
	Token string
	Has   bool
	Err   error

	ClearCalls int
}

func (s *StubSessions) Get(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	return s.Token, s.Has, nil
}

func (s *StubSessions) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClearCalls++
	s.Has = false
	s.Token = ""
	return nil
}

// StubInspector answers workspace probes from fixed data.
type StubInspector struct {
	Manifest bool
	Binaries []workspace.Binary
	ListErr  error
}

func (s *StubInspector) HasManifest(string) bool { return s.Manifest }

func (s *StubInspector) ListBinaries(string) ([]workspace.Binary, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.Binaries, nil
}

// StubBuilder fakes a compiler. Build writes Output under out/<name> inside
// the binary's root so the engine can read it back; OutputPath points there.
type StubBuilder struct {
	Output   []byte
	BuildErr error
	// SkipWrite leaves the output file absent even on a successful build.
	SkipWrite bool

	BuildCalls int
}

func (s *StubBuilder) Build(_ context.Context, root, name string) error {
	s.BuildCalls++
	if s.BuildErr != nil {
		return s.BuildErr
	}
	if s.SkipWrite {
		return nil
	}
	path := s.OutputPath(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, s.Output, 0o644)
}

func (s *StubBuilder) OutputPath(root, name string) string {
	return filepath.Join(root, "out", name)
}

// StubPrompter answers prompts from scripted values. Each Cancel* flag makes
// the corresponding prompt report a dismissal.
type StubPrompter struct {
	Name       string
	CancelName bool
	Note       string
	CancelNote bool
	Confirmed  bool
	Pick       int
	CancelPick bool

	ConfirmMessages []string
}

func (s *StubPrompter) InputName(_ context.Context, defaultName string) (string, bool, error) {
	if s.CancelName {
		return "", false, nil
	}
	if s.Name == "" {
		return defaultName, true, nil
	}
	return s.Name, true, nil
}

func (s *StubPrompter) InputNote(context.Context) (string, bool, error) {
	if s.CancelNote {
		return "", false, nil
	}
	return s.Note, true, nil
}

func (s *StubPrompter) Confirm(_ context.Context, message string) (bool, error) {
	s.ConfirmMessages = append(s.ConfirmMessages, message)
	return s.Confirmed, nil
}

func (s *StubPrompter) PickBinary(_ context.Context, bins []workspace.Binary) (workspace.Binary, bool, error) {
	if s.CancelPick || len(bins) == 0 {
		return workspace.Binary{}, false, nil
	}
	return bins[s.Pick], true, nil
}

// StubRevealer records reveal requests.
type StubRevealer struct {
	Paths []string
	Err   error
}

func (s *StubRevealer) Reveal(path string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Paths = append(s.Paths, path)
	return nil
}
