package portainer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RemoteAPIError is returned for any non-2xx response. The command that
// triggered it is aborted; requests are never retried.
type RemoteAPIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *RemoteAPIError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	if detail := e.Message(); detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return msg
}

// Message extracts the server's error message. Portainer answers with
// {"message": ..., "details": ...}; anything else is returned verbatim.
func (e *RemoteAPIError) Message() string {
	var payload struct {
		Message string `json:"message"`
		Details string `json:"details"`
		Err     string `json:"err"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		switch {
		case payload.Message != "" && payload.Details != "" && payload.Details != payload.Message:
			return payload.Message + " (" + payload.Details + ")"
		case payload.Message != "":
			return payload.Message
		case payload.Err != "":
			return payload.Err
		}
	}
	return strings.TrimSpace(string(e.Body))
}

// IsNotFound reports whether err is a 404 RemoteAPIError.
func IsNotFound(err error) bool {
	var apiErr *RemoteAPIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// StackNotFoundError is returned when an operation needs an existing stack.
type StackNotFoundError struct {
	ID         int
	Name       string
	EndpointID int
	Err        error
}

func (e *StackNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("stack %q not found on endpoint %d", e.Name, e.EndpointID)
	}
	return fmt.Sprintf("stack %d not found on endpoint %d", e.ID, e.EndpointID)
}

func (e *StackNotFoundError) Unwrap() error {
	return e.Err
}

// AmbiguousOrMissingTargetError is returned when a command does not
// identify exactly one stack.
type AmbiguousOrMissingTargetError struct {
	Reason string
}

func (e *AmbiguousOrMissingTargetError) Error() string {
	return "invalid stack target: " + e.Reason
}
