package whirlwatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNetworkFailure means the backend could not be reached
	ErrNetworkFailure = errors.New("backend unreachable")
	// ErrUnauthorized means the session is missing, expired or was refused
	ErrUnauthorized = errors.New("not signed in")
	// ErrNotFound means the record or list no longer exists on the backend
	ErrNotFound = errors.New("not found")
)

// RejectedError is any other non-success answer of the backend
type RejectedError struct {
	Status int
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Reason)
}

// statusError maps a non-2xx response to the client's error taxonomy
func statusError(status int, body []byte) error {
	reason := errorReason(status, body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, reason)
	case status == http.StatusInternalServerError && strings.HasPrefix(reason, "404 Not Found"):
		// the backend turns get_or_404 aborts into 500s carrying the original message
		return fmt.Errorf("%w: %s", ErrNotFound, reason)
	}
	return &RejectedError{Status: status, Reason: reason}
}

func errorReason(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, s := range []string{payload.Error, payload.Msg, payload.Message} {
			if s != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}

// retryable reports whether a GET may be attempted again
func retryable(err error) bool {
	if errors.Is(err, ErrNetworkFailure) {
		return true
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		switch rejected.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// Classify returns a short label for an error of this package
func Classify(err error) string {
	var rejected *RejectedError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNetworkFailure):
		return "network"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &rejected):
		return "rejected"
	}
	return "error"
}
