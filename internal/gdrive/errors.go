// Package gdrive provides an HTTP client for the Google Drive v3 API
// with automatic retry, rate-limit handling, and error classification.
package gdrive

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, gdrive.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("gdrive: bad request")
	ErrUnauthorized = errors.New("gdrive: unauthorized")
	ErrForbidden    = errors.New("gdrive: forbidden")
	ErrNotFound     = errors.New("gdrive: not found")
	ErrThrottled    = errors.New("gdrive: rate limited")
	ErrServerError  = errors.New("gdrive: server error")
)

// Rate-limit reasons the Drive API reports inside 403 responses. Drive
// signals per-user quota exhaustion as 403 with one of these reasons rather
// than 429, so status-code classification alone is not enough.
const (
	reasonRateLimit     = "rateLimitExceeded"
	reasonUserRateLimit = "userRateLimitExceeded"
)

// APIError wraps a sentinel error with HTTP status code, the Drive error
// reason, and the API error message for debugging.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("gdrive: HTTP %d (%s): %s", e.StatusCode, e.Reason, e.Message)
	}

	return fmt.Sprintf("gdrive: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// driveErrorBody mirrors the Drive API error envelope:
//
//	{"error": {"code": 403, "message": "...", "errors": [{"reason": "..."}]}}
type driveErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// parseErrorBody extracts the Drive reason and message from an error
// response body. Returns the raw body as message when it is not the
// standard envelope.
func parseErrorBody(body []byte) (reason, message string) {
	var parsed driveErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		return "", string(body)
	}

	if len(parsed.Error.Errors) > 0 {
		reason = parsed.Error.Errors[0].Reason
	}

	return reason, parsed.Error.Message
}

// classify maps an HTTP status code plus Drive reason to a sentinel error.
// 403 with a rate-limit reason classifies as ErrThrottled, not ErrForbidden.
func classify(code int, reason string) error {
	if code == http.StatusForbidden && isRateLimitReason(reason) {
		return ErrThrottled
	}

	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

// isRateLimitReason reports whether a Drive 403 reason indicates throttling.
func isRateLimitReason(reason string) bool {
	return reason == reasonRateLimit || reason == reasonUserRateLimit
}

// isRetryable reports whether a response should be retried.
func isRetryable(code int, reason string) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	case http.StatusForbidden:
		return isRateLimitReason(reason)
	default:
		return false
	}
}
