package engine

import (
	"pitcrew/internal/registry"
	"pitcrew/internal/workspace"
)

// Snapshot holds the data backing a rendered view. Both slices are populated
// only while the engine is ready; any non-ready status publishes an empty
// snapshot so stale rows never outlive the state that produced them.
type Snapshot struct {
	LocalBinaries []workspace.Binary
	Artifacts     []registry.Artifact
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{}
	if len(s.LocalBinaries) > 0 {
		out.LocalBinaries = make([]workspace.Binary, len(s.LocalBinaries))
		copy(out.LocalBinaries, s.LocalBinaries)
	}
	if len(s.Artifacts) > 0 {
		out.Artifacts = make([]registry.Artifact, len(s.Artifacts))
		copy(out.Artifacts, s.Artifacts)
	}
	return out
}

// ChangeNotice is published on the engine's broker after every refresh and
// after every completed workflow. It carries the new status; subscribers pull
// the snapshot with CurrentSnapshot when they are ready to render. Workflow
// is set only on workflow-completion notices.
type ChangeNotice struct {
	Status   ViewStatus
	Workflow string
}
