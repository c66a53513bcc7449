package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTokens is an in-memory TokenSource for tests.
type memoryTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared bool
}

func (m *memoryTokens) AccessToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, nil
}

func (m *memoryTokens) RefreshToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh, nil
}

func (m *memoryTokens) Store(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	return nil
}

func (m *memoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	m.cleared = true
	return nil
}

func (m *memoryTokens) wasCleared() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

func newTestClient(serverURL string, tokens TokenSource) *Client {
	return NewClient(serverURL, tokens, 5*time.Second)
}

func TestGetAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	tokens := &memoryTokens{access: "tok-1", refresh: "ref-1"}
	client := newTestClient(server.URL, tokens)

	var resp map[string]string
	err := client.Get(context.Background(), "/health", nil, &resp)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "ok", resp["status"])
}

func TestDoRefreshesOnceOn401(t *testing.T) {
	var requestIDs []string
	var refreshCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body["refreshToken"])
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "tok-2",
			"refreshToken": "ref-2",
		})
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, r.Header.Get("X-Request-ID"))
		if r.Header.Get("Authorization") != "Bearer tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"emails": []interface{}{}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &memoryTokens{access: "tok-1", refresh: "ref-1"}
	client := newTestClient(server.URL, tokens)

	var resp map[string]interface{}
	err := client.Get(context.Background(), "/emails", nil, &resp)

	require.NoError(t, err)
	assert.Equal(t, 1, refreshCalls)

	// The retried request reuses the original correlation ID.
	require.Len(t, requestIDs, 2)
	assert.Equal(t, requestIDs[0], requestIDs[1])

	// The refreshed pair was persisted.
	access, _ := tokens.AccessToken()
	refresh, _ := tokens.RefreshToken()
	assert.Equal(t, "tok-2", access)
	assert.Equal(t, "ref-2", refresh)
}

func TestDoEscalatesWhenRetryIsRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "tok-2",
			"refreshToken": "ref-2",
		})
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &memoryTokens{access: "tok-1", refresh: "ref-1"}
	client := newTestClient(server.URL, tokens)

	err := client.Get(context.Background(), "/emails", nil, nil)

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.True(t, tokens.wasCleared())
}

func TestDoEscalatesWhenRefreshFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &memoryTokens{access: "tok-1", refresh: "ref-1"}
	client := newTestClient(server.URL, tokens)

	err := client.Get(context.Background(), "/emails", nil, nil)

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.True(t, tokens.wasCleared())
}

func TestDoEscalatesWithoutRefreshToken(t *testing.T) {
	var refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &memoryTokens{access: "tok-1"}
	client := newTestClient(server.URL, tokens)

	err := client.Get(context.Background(), "/emails", nil, nil)

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Zero(t, refreshCalls)
}

func TestDoClassifiesBackendErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "account already exists"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, &memoryTokens{access: "tok-1"})

	err := client.Post(context.Background(), "/email-accounts", map[string]string{}, nil)

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "account already exists", apiErr.Message)
	assert.Equal(t, "account already exists", ErrorMessage(err))
}

func TestDoWrapsNetworkFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(server.URL, &memoryTokens{})

	err := client.Get(context.Background(), "/health", nil, nil)

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.False(t, IsAuthError(err))
}

func TestErrorBodyFallbacks(t *testing.T) {
	assert.Equal(t, "boom", errorBody([]byte(`{"error":"boom"}`), 500))
	assert.Equal(t, "slow down", errorBody([]byte(`{"message":"slow down"}`), 429))
	assert.Equal(t, "plain text", errorBody([]byte("plain text"), 500))
	assert.Equal(t, "Internal Server Error", errorBody(nil, 500))
}
