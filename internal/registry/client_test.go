package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.ErrorContains(t, err, "BaseURL")
}

func TestCapabilities(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/capabilities", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(Capabilities{AuthRequired: true})
	}))

	caps, err := client.Capabilities(context.Background())
	require.NoError(t, err)
	assert.True(t, caps.AuthRequired)
}

func TestListArtifactsSendsBearerToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]Artifact{
			{ID: 1, Name: "car", Owner: "alice", IsPublic: true, OwnedByMe: true},
			{ID: 2, Name: "bottles", Owner: "bob"},
		})
	}))

	artifacts, err := client.ListArtifacts(context.Background(), "tok-123")
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "car", artifacts[0].Name)
	assert.True(t, artifacts[0].OwnedByMe)
	assert.False(t, artifacts[1].OwnedByMe)
}

func TestListArtifactsAnonymous(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("[]"))
	}))

	artifacts, err := client.ListArtifacts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestUploadEncodesContentAsBase64(t *testing.T) {
	payload := []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/artifacts", r.URL.Path)

		var wire map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		assert.Equal(t, "car", wire["name"])
		assert.Equal(t, "riscv32i-unknown-none-elf", wire["target"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(payload), wire["content"])
		_, hasNote := wire["note"]
		assert.False(t, hasNote, "empty note must be omitted")

		_ = json.NewEncoder(w).Encode(UploadResponse{ArtifactID: 42})
	}))

	response, err := client.Upload(context.Background(), "tok", UploadRequest{
		Name:    "car",
		Target:  "riscv32i-unknown-none-elf",
		Content: payload,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), response.ArtifactID)
}

func TestUploadRejectsEmptyContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued")
	}))

	_, err := client.Upload(context.Background(), "", UploadRequest{Name: "car"})
	assert.ErrorContains(t, err, "content is empty")
}

func TestDelete(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/artifacts/7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Delete(context.Background(), "tok", 7))
}

func TestSetVisibility(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/artifacts/7/visibility", r.URL.Path)

		var wire visibilityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		assert.True(t, wire.IsPublic)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.SetVisibility(context.Background(), "tok", 7, true))
}

func TestStructuredErrorResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"token expired"}`))
	}))

	_, err := client.ListArtifacts(context.Background(), "stale")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unauthorized", apiErr.Code)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, IsUnauthorized(err))
}

func TestNonJSONErrorBodyStillClassified(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("401 unauthorized\n"))
	}))

	err := client.Delete(context.Background(), "stale", 1)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err), "classification must work without a JSON body")
}

func TestServerErrorIsNotUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"internal","message":"boom"}`))
	}))

	_, err := client.ListArtifacts(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)

		var wire LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		assert.Equal(t, "alice", wire.Username)
		_ = json.NewEncoder(w).Encode(LoginResponse{Token: "tok-abc"})
	}))

	token, err := client.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}
