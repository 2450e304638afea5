// Package engine owns the reconciliation loop between the local bot
// workspace, the artifact registry, and the stored session. It publishes an
// immutable status/snapshot pair that presentation layers pull on demand.
package engine

// State is the coarse phase the engine is in. Exactly one state is published
// at a time.
type State int

const (
	// StateLoggedOut means no usable session exists for an auth-required
	// registry, or the registry could not be reached at all.
	StateLoggedOut State = iota
	// StateNeedsWorkspace means the registry side is fine but the local
	// workspace cannot produce anything uploadable.
	StateNeedsWorkspace
	// StateReady means both sides reconciled and the snapshot is populated.
	StateReady
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged-out"
	case StateNeedsWorkspace:
		return "needs-workspace"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Detail qualifies a State with the specific cause that produced it.
type Detail int

// The zero detail pairs with the zero state so the zero ViewStatus is the
// legal NotLoggedIn pair.
const (
	// DetailNotLoggedIn means auth is required and no session is stored.
	DetailNotLoggedIn Detail = iota
	// DetailSessionExpired means the stored session was rejected by the
	// registry and has been cleared.
	DetailSessionExpired
	// DetailRequestError means a registry call failed for a reason other
	// than authentication.
	DetailRequestError
	// DetailWorkspaceMissing means no bot manifest was found at the
	// workspace root.
	DetailWorkspaceMissing
	// DetailNoBinaries means a manifest exists but declares no binaries.
	DetailNoBinaries
	// DetailNone is the only detail legal for StateReady.
	DetailNone
)

// String implements fmt.Stringer.
func (d Detail) String() string {
	switch d {
	case DetailNone:
		return "none"
	case DetailNotLoggedIn:
		return "not-logged-in"
	case DetailSessionExpired:
		return "session-expired"
	case DetailRequestError:
		return "request-error"
	case DetailWorkspaceMissing:
		return "workspace-missing"
	case DetailNoBinaries:
		return "no-binaries"
	default:
		return "unknown"
	}
}

// ViewStatus is a state/detail pair. The fields are unexported and the only
// way to obtain one is through the constructors below, so an illegal pairing
// cannot be represented.
type ViewStatus struct {
	state  State
	detail Detail
}

// NotLoggedIn reports an auth-required registry with no stored session.
func NotLoggedIn() ViewStatus {
	return ViewStatus{state: StateLoggedOut, detail: DetailNotLoggedIn}
}

// SessionExpired reports a stored session the registry rejected.
func SessionExpired() ViewStatus {
	return ViewStatus{state: StateLoggedOut, detail: DetailSessionExpired}
}

// RequestError reports a registry call that failed for a non-auth reason.
func RequestError() ViewStatus {
	return ViewStatus{state: StateLoggedOut, detail: DetailRequestError}
}

// WorkspaceMissing reports a workspace root with no bot manifest.
func WorkspaceMissing() ViewStatus {
	return ViewStatus{state: StateNeedsWorkspace, detail: DetailWorkspaceMissing}
}

// NoBinaries reports a manifest that declares no binaries.
func NoBinaries() ViewStatus {
	return ViewStatus{state: StateNeedsWorkspace, detail: DetailNoBinaries}
}

// Ready reports a fully reconciled engine.
func Ready() ViewStatus {
	return ViewStatus{state: StateReady, detail: DetailNone}
}

// State returns the coarse phase.
func (v ViewStatus) State() State { return v.state }

// Detail returns the qualifying cause.
func (v ViewStatus) Detail() Detail { return v.detail }

// IsReady reports whether the engine reconciled successfully.
func (v ViewStatus) IsReady() bool { return v.state == StateReady }

// String implements fmt.Stringer.
func (v ViewStatus) String() string {
	return v.state.String() + "/" + v.detail.String()
}

// DetailsFor returns the details that may legally accompany a state.
func DetailsFor(s State) []Detail {
	switch s {
	case StateLoggedOut:
		return []Detail{DetailNotLoggedIn, DetailSessionExpired, DetailRequestError}
	case StateNeedsWorkspace:
		return []Detail{DetailWorkspaceMissing, DetailNoBinaries}
	case StateReady:
		return []Detail{DetailNone}
	default:
		return nil
	}
}
