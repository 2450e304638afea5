package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pitcrew/internal/log"
)

// maxResponseBytes bounds how much of a registry response is read.
// Artifact listings are small; this guards against a misbehaving server.
const maxResponseBytes = 4 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the artifact registry (e.g., "http://localhost:8780").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// Client talks to the bot artifact registry. A session token is passed per
// call; an empty token means anonymous access.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a registry client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("registry: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("registry: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Capabilities probes what the registry requires from clients.
// This is an unauthenticated endpoint.
func (c *Client) Capabilities(ctx context.Context) (Capabilities, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/capabilities", "", nil)
	if err != nil {
		return Capabilities{}, fmt.Errorf("registry: capability probe failed: %w", err)
	}

	var caps Capabilities
	if err := json.Unmarshal(body, &caps); err != nil {
		return Capabilities{}, fmt.Errorf("registry: failed to parse capabilities response: %w", err)
	}
	return caps, nil
}

// ListArtifacts returns every artifact visible to the caller, in server order.
func (c *Client) ListArtifacts(ctx context.Context, token string) ([]Artifact, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/artifacts", token, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: list artifacts failed: %w", err)
	}

	var artifacts []Artifact
	if err := json.Unmarshal(body, &artifacts); err != nil {
		return nil, fmt.Errorf("registry: failed to parse artifact list: %w", err)
	}
	return artifacts, nil
}

// Upload stores a new artifact and returns its identifier.
func (c *Client) Upload(ctx context.Context, token string, request UploadRequest) (UploadResponse, error) {
	if request.Name == "" {
		return UploadResponse{}, fmt.Errorf("registry: artifact name is required")
	}
	if len(request.Content) == 0 {
		return UploadResponse{}, fmt.Errorf("registry: artifact content is empty")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/artifacts", token, request)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("registry: upload failed: %w", err)
	}

	var response UploadResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return UploadResponse{}, fmt.Errorf("registry: failed to parse upload response: %w", err)
	}
	log.Info(log.CatRegistry, "Uploaded artifact", "name", request.Name, "id", response.ArtifactID)
	return response, nil
}

// Delete removes an artifact by id.
func (c *Client) Delete(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/api/artifacts/%d", id)
	if _, err := c.doRequest(ctx, http.MethodDelete, path, token, nil); err != nil {
		return fmt.Errorf("registry: delete artifact %d failed: %w", id, err)
	}
	return nil
}

// SetVisibility flips an artifact's public flag.
func (c *Client) SetVisibility(ctx context.Context, token string, id int64, isPublic bool) error {
	path := fmt.Sprintf("/api/artifacts/%d/visibility", id)
	if _, err := c.doRequest(ctx, http.MethodPut, path, token, visibilityRequest{IsPublic: isPublic}); err != nil {
		return fmt.Errorf("registry: set visibility on artifact %d failed: %w", id, err)
	}
	return nil
}

// Login exchanges credentials for an opaque session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("registry: username is required")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", fmt.Errorf("registry: login failed: %w", err)
	}

	var response LoginResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("registry: failed to parse login response: %w", err)
	}
	if response.Token == "" {
		return "", fmt.Errorf("registry: login response carried no token")
	}
	return response.Token, nil
}

// doRequest performs an HTTP request against the registry and returns the body.
// On 2xx, returns the body. On 4xx/5xx, returns a *APIError.
// token may be empty for anonymous endpoints.
func (c *Client) doRequest(ctx context.Context, method, path, token string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug(log.CatRegistry, "Registry request", "method", method, "path", path)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer func() { _ = response.Body.Close() }()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// All registry error responses share the same JSON shape.
	var apiErr APIError
	if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil || apiErr.Code == "" {
		// Non-JSON error body; still surface the structured status code.
		apiErr = APIError{
			Code:    http.StatusText(response.StatusCode),
			Message: strings.TrimSpace(string(responseBody)),
		}
	}
	apiErr.StatusCode = response.StatusCode

	log.Warn(log.CatRegistry, "Registry request rejected",
		"method", method, "path", path, "status", response.StatusCode, "code", apiErr.Code)

	return responseBody, &apiErr
}
