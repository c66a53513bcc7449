package api

import (
	"errors"
	"fmt"
)

// APIError is a transport-level failure: a network error, a timeout, or a
// non-2xx response from the backend. Status is zero when no HTTP response
// was received.
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api error on %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("api error (%d) on %s: %s", e.Status, e.Endpoint, e.Message)
}

// AuthError indicates that authentication has failed terminally: the
// access token was rejected and the one permitted refresh attempt did not
// recover it. All locally persisted tokens have been cleared by the time
// this error is returned.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ErrorMessage extracts the backend-supplied message from an APIError, or
// falls back to the plain error text. Used where raw backend wording must
// be surfaced verbatim.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
