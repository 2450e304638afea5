package tracing

// Span attribute keys for reconciliation tracing.
const (
	// Refresh attributes
	AttrViewState  = "view.state"
	AttrViewDetail = "view.detail"
	AttrLocalCount = "snapshot.local_count"
	AttrRemoteCount = "snapshot.remote_count"

	// Workflow attributes
	AttrWorkflowName = "workflow.name"
	AttrBinaryName   = "binary.name"
	AttrArtifactID   = "artifact.id"
	AttrArtifactName = "artifact.name"

	// Error attributes
	AttrErrorMessage = "error.message"
	AttrErrorType    = "error.type"
)

// Span names for the engine's traced operations.
const (
	SpanRefresh          = "engine.refresh"
	SpanBuildAndUpload   = "workflow.build_and_upload"
	SpanReplace          = "workflow.replace"
	SpanDelete           = "workflow.delete"
	SpanToggleVisibility = "workflow.toggle_visibility"
)

// Event names for span events.
const (
	EventCapabilityProbe   = "capability.probed"
	EventSessionResolved   = "session.resolved"
	EventBuildFinished     = "build.finished"
	EventUploadFinished    = "upload.finished"
	EventCompensationFault = "compensation.failed"
)
