package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNetwork           = errors.New("gateway: network error")
	ErrUnauthorized      = errors.New("gateway: unauthorized")
	ErrNotFound          = errors.New("gateway: not found")
	ErrMalformedResponse = errors.New("gateway: malformed response")
)

// StatusError is returned for every non-2xx response. Body holds whatever the
// gateway sent back, JSON or not.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message())
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Message prefers the gateway's own `message` field, then the raw body, then
// the status text.
func (e *StatusError) Message() string {
	body := strings.TrimSpace(e.Body)
	if body != "" {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(body), &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		} else if len(body) <= 300 {
			return body
		}
	}
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = e.Status
	}
	return fmt.Sprintf("Error %d: %s", e.StatusCode, text)
}

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

type GraphQLError struct {
	Op       string
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("%s: graphql: %s", e.Op, strings.Join(e.Messages, "; "))
}

func malformed(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
}

// Message renders err for a human.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message()
	}
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return strings.Join(gqlErr.Messages, "; ")
	}
	switch {
	case errors.Is(err, ErrNetwork):
		return "Could not reach the gateway. Check your connection and try again."
	case errors.Is(err, ErrMalformedResponse):
		return "The gateway returned an unexpected response."
	case errors.Is(err, ErrNotFound):
		return "The requested resource does not exist."
	}
	return err.Error()
}
