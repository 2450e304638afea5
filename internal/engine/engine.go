package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"pitcrew/internal/cachemanager"
	"pitcrew/internal/log"
	"pitcrew/internal/pubsub"
	"pitcrew/internal/registry"
	"pitcrew/internal/tracing"
)

const capabilityCacheKey = "capabilities"

// Options wires an Engine to its collaborators. Registry, Sessions,
// Inspector, Builder, Prompter and Workspace are required; the rest have
// working defaults.
type Options struct {
	Registry  RegistryAPI
	Sessions  SessionStore
	Inspector WorkspaceInspector
	Builder   Builder
	Prompter  Prompter
	Revealer  Revealer

	// Workspace is the bot workspace root to reconcile against.
	Workspace string
	// Target is the build target triple reported with uploads.
	Target string
	// CapabilityTTL bounds how long a capability probe result is reused.
	// Zero disables the cache and probes on every refresh.
	CapabilityTTL time.Duration
	// Tracer receives refresh and workflow spans. Defaults to a noop tracer.
	Tracer trace.Tracer
}

// Engine reconciles the workspace, registry and session into a published
// status/snapshot pair. All exported methods are safe for concurrent use.
type Engine struct {
	registry  RegistryAPI
	sessions  SessionStore
	inspector WorkspaceInspector
	builder   Builder
	prompter  Prompter
	revealer  Revealer

	workspace string
	target    string
	tracer    trace.Tracer
	broker    *pubsub.Broker[ChangeNotice]
	capCache  *cachemanager.ReadThroughCache[string, registry.Capabilities, struct{}]
	capTTL    time.Duration

	// mu guards the published pair. Status and snapshot always change
	// together, never one without the other.
	mu       sync.Mutex
	status   ViewStatus
	snapshot Snapshot

	// flightMu guards the single-flight refresh bookkeeping.
	flightMu sync.Mutex
	inFlight bool
	queued   bool
}

// New builds an Engine. The initial published status is NotLoggedIn with an
// empty snapshot until the first Refresh completes.
func New(opts Options) *Engine {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("pitcrew/engine")
	}

	e := &Engine{
		registry:  opts.Registry,
		sessions:  opts.Sessions,
		inspector: opts.Inspector,
		builder:   opts.Builder,
		prompter:  opts.Prompter,
		revealer:  opts.Revealer,
		workspace: opts.Workspace,
		target:    opts.Target,
		tracer:    tracer,
		broker:    pubsub.NewBroker[ChangeNotice](),
		capTTL:    opts.CapabilityTTL,
		status:    NotLoggedIn(),
	}

	e.capCache = cachemanager.NewReadThroughCache[string, registry.Capabilities, struct{}](
		cachemanager.NewInMemoryCacheManager[string, registry.Capabilities]("capabilities", opts.CapabilityTTL, time.Minute),
		func(ctx context.Context, _ struct{}) (registry.Capabilities, error) {
			return e.registry.Capabilities(ctx)
		},
		opts.CapabilityTTL == 0,
	)

	return e
}

// Events exposes the broker carrying ChangeNotice publications.
func (e *Engine) Events() *pubsub.Broker[ChangeNotice] {
	return e.broker
}

// CurrentStatus returns the last published status.
func (e *Engine) CurrentStatus() ViewStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// CurrentSnapshot returns a copy of the last published snapshot.
func (e *Engine) CurrentSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot.clone()
}

// Close shuts the broker down. Pending subscribers are released.
func (e *Engine) Close() {
	e.broker.Close()
}

// Refresh re-derives the status and snapshot from scratch. Concurrent calls
// coalesce: while a refresh is running, further calls mark it dirty and
// return, and the running refresh re-runs once more before finishing. At most
// one extra pass is queued no matter how many calls arrive.
func (e *Engine) Refresh(ctx context.Context) {
	e.flightMu.Lock()
	if e.inFlight {
		e.queued = true
		e.flightMu.Unlock()
		return
	}
	e.inFlight = true
	e.flightMu.Unlock()

	for {
		e.refreshOnce(ctx)

		e.flightMu.Lock()
		if e.queued {
			e.queued = false
			e.flightMu.Unlock()
			continue
		}
		e.inFlight = false
		e.flightMu.Unlock()
		return
	}
}

func (e *Engine) refreshOnce(ctx context.Context) {
	ctx, span := e.tracer.Start(ctx, tracing.SpanRefresh)
	defer span.End()

	status, snap := e.reconcile(ctx, span)

	span.SetAttributes(
		attribute.String(tracing.AttrViewState, status.State().String()),
		attribute.String(tracing.AttrViewDetail, status.Detail().String()),
		attribute.Int(tracing.AttrLocalCount, len(snap.LocalBinaries)),
		attribute.Int(tracing.AttrRemoteCount, len(snap.Artifacts)),
	)

	e.publish(status, snap)
}

// reconcile walks the probe chain in order: capabilities, session, manifest,
// binaries, artifact listing. The first failed step determines the status and
// every failure publishes an empty snapshot.
func (e *Engine) reconcile(ctx context.Context, span trace.Span) (ViewStatus, Snapshot) {
	caps, err := e.capCache.Get(ctx, capabilityCacheKey, struct{}{}, e.capTTL)
	if err != nil {
		log.ErrorErr(log.CatEngine, "capability probe failed", err)
		return e.classifyRegistryFailure(ctx, err), Snapshot{}
	}
	span.AddEvent(tracing.EventCapabilityProbe)

	token := ""
	if caps.AuthRequired {
		tok, ok, err := e.sessions.Get(ctx)
		if err != nil {
			log.ErrorErr(log.CatEngine, "session lookup failed", err)
			return RequestError(), Snapshot{}
		}
		if !ok {
			return NotLoggedIn(), Snapshot{}
		}
		token = tok
		span.AddEvent(tracing.EventSessionResolved)
	}

	if !e.inspector.HasManifest(e.workspace) {
		return WorkspaceMissing(), Snapshot{}
	}

	bins, err := e.inspector.ListBinaries(e.workspace)
	if err != nil {
		log.ErrorErr(log.CatEngine, "binary enumeration failed", err)
		return WorkspaceMissing(), Snapshot{}
	}
	if len(bins) == 0 {
		return NoBinaries(), Snapshot{}
	}

	artifacts, err := e.registry.ListArtifacts(ctx, token)
	if err != nil {
		log.ErrorErr(log.CatEngine, "artifact listing failed", err)
		return e.classifyRegistryFailure(ctx, err), Snapshot{}
	}

	return Ready(), Snapshot{LocalBinaries: bins, Artifacts: artifacts}
}

// classifyRegistryFailure maps a registry error to a status. A rejected token
// clears the stored session so the next refresh asks for a fresh login
// instead of replaying a dead credential.
func (e *Engine) classifyRegistryFailure(ctx context.Context, err error) ViewStatus {
	if registry.IsUnauthorized(err) {
		if clearErr := e.sessions.Clear(ctx); clearErr != nil {
			log.ErrorErr(log.CatEngine, "clearing expired session failed", clearErr)
		}
		return SessionExpired()
	}
	return RequestError()
}

func (e *Engine) publish(status ViewStatus, snap Snapshot) {
	e.mu.Lock()
	e.status = status
	e.snapshot = snap
	e.mu.Unlock()

	log.Info(log.CatEngine, fmt.Sprintf("published %s (%d local, %d remote)",
		status, len(snap.LocalBinaries), len(snap.Artifacts)))

	e.broker.Publish(pubsub.RefreshedEvent, ChangeNotice{Status: status})
}

// sessionToken resolves the stored token, tolerating absence. Unauthenticated
// registries never store one, so "" is a normal return.
func (e *Engine) sessionToken(ctx context.Context) string {
	token, ok, err := e.sessions.Get(ctx)
	if err != nil || !ok {
		return ""
	}
	return token
}
