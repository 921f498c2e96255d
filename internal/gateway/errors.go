package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AuthError indicates the credential is missing, expired, or insufficient.
// The gateway raises it after triggering session invalidation.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authorization denied (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("authorization denied (%d)", e.Status)
}

// ValidationError indicates the backend (or a client-side precheck) rejected
// the input. Fields carries the backend's per-field messages verbatim.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d field errors)", e.Message, len(e.Fields))
}

// ServerError indicates any other non-success response, carrying the status
// and the backend-provided message for local display.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// NetworkError indicates the request never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// apiError is the backend's error payload shape.
type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// errorFromResponse maps a non-2xx response to the gateway error taxonomy.
func errorFromResponse(status int, body []byte) error {
	var payload apiError
	_ = json.Unmarshal(body, &payload)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status, Message: payload.Error}
	case status == http.StatusBadRequest && len(payload.Fields) > 0:
		return &ValidationError{Message: payload.Error, Fields: payload.Fields}
	default:
		return &ServerError{Status: status, Message: payload.Error}
	}
}
