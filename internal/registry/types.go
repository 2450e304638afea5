// Package registry implements the HTTP client for the bot artifact registry.
package registry

// Capabilities is the response of the capability probe.
type Capabilities struct {
	// AuthRequired reports whether the registry demands a session token
	// for artifact operations. Registries running in open mode accept
	// anonymous uploads.
	AuthRequired bool `json:"auth_required"`
}

// Artifact is a stored bot binary as listed by the registry.
type Artifact struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	IsPublic  bool   `json:"is_public"`
	OwnedByMe bool   `json:"owned_by_me"`
}

// UploadRequest is the payload for uploading a new artifact.
// Content is base64-encoded on the wire by the JSON codec.
type UploadRequest struct {
	Name    string `json:"name"`
	Note    string `json:"note,omitempty"`
	Target  string `json:"target"`
	Content []byte `json:"content"`
}

// UploadResponse carries the identifier assigned to an uploaded artifact.
type UploadResponse struct {
	ArtifactID int64 `json:"artifact_id"`
}

type visibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

// LoginRequest is the credential payload for session creation.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the opaque session token issued by the registry.
type LoginResponse struct {
	Token string `json:"token"`
}
