package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource provides the bearer tokens the gateway attaches to every
// call and persists refreshed tokens. Implementations are expected to be
// backed by the system keyring (see internal/credential).
type TokenSource interface {
	// AccessToken returns the current access token, or "" when none is stored.
	AccessToken() (string, error)

	// RefreshToken returns the current refresh token, or "" when none is stored.
	RefreshToken() (string, error)

	// Store persists a new token pair after a successful refresh.
	Store(access, refresh string) error

	// Clear removes all persisted tokens. Called when a refresh fails.
	Clear() error
}

// Client is the request gateway for the mail-sync backend: it performs
// authenticated JSON calls, attaches bearer tokens, refreshes an expired
// token exactly once per original request, and classifies failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a gateway for the backend rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

// Put performs an HTTP PUT request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Put(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

// Delete performs an HTTP DELETE request and unmarshals the JSON
// response when result is non-nil.
func (c *Client) Delete(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, result)
}

// do is the core HTTP method: request construction, bearer auth, the
// single refresh-and-retry on 401, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	result interface{},
) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	// Correlation ID shared by the original attempt and its retry so the
	// backend can tie them together.
	requestID := uuid.NewString()

	status, respBody, err := c.send(ctx, method, endpoint, payload, requestID)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		// One refresh-and-retry per original request.
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			return refreshErr
		}
		status, respBody, err = c.send(ctx, method, endpoint, payload, requestID)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			_ = c.tokens.Clear()
			return &AuthError{
				Message: fmt.Sprintf("token rejected after refresh on %s %s", method, path),
			}
		}
	}

	if status < 200 || status >= 300 {
		return &APIError{
			Status:   status,
			Endpoint: method + " " + path,
			Message:  errorBody(respBody, status),
		}
	}

	if result == nil || status == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}

// send performs one HTTP round trip and returns the status and body.
// Network-level failures are wrapped as *APIError with Status 0.
func (c *Client) send(
	ctx context.Context,
	method string,
	endpoint string,
	payload []byte,
	requestID string,
) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.AccessToken()
	if err != nil {
		return 0, nil, fmt.Errorf("loading access token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &APIError{
			Endpoint: method + " " + endpoint,
			Message:  err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// refresh exchanges the stored refresh token for a new token pair.
// Failure is terminal: tokens are cleared and an AuthError is returned.
func (c *Client) refresh(ctx context.Context) error {
	refreshToken, err := c.tokens.RefreshToken()
	if err != nil || refreshToken == "" {
		_ = c.tokens.Clear()
		return &AuthError{Message: "no refresh token available"}
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return fmt.Errorf("marshaling refresh request: %w", err)
	}

	status, respBody, err := c.send(
		ctx, http.MethodPost, c.baseURL+"/auth/refresh", body, uuid.NewString(),
	)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		_ = c.tokens.Clear()
		return &AuthError{
			Message: fmt.Sprintf("token refresh rejected (%d)", status),
		}
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(respBody, &tokens); err != nil {
		_ = c.tokens.Clear()
		return &AuthError{Message: "malformed token refresh response"}
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}

	if err := c.tokens.Store(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("storing refreshed tokens: %w", err)
	}

	return nil
}

// errorBody extracts a human-readable message from an error response body.
func errorBody(body []byte, status int) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return http.StatusText(status)
}
