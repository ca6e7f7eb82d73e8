package dic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// Sentinel errors for DIC backend failures. Every error returned by HTTPClient
// matches exactly one of them under errors.Is.
var (
	ErrNetwork        = errors.New("dic backend unreachable")
	ErrServer         = errors.New("dic backend error")
	ErrNotFound       = errors.New("analysis not found")
	ErrUnauthorized   = errors.New("dic backend unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
)

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Op         string
	StatusCode int
	// Detail is the backend-supplied message, empty when the body was not
	// a JSON object with a detail or error field.
	Detail string
	// Body is the raw response body, truncated to 64KiB.
	Body string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return ErrServer
	}
}

// newAPIError drains resp.Body into an APIError.
func newAPIError(op string, resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Detail:     parseDetail(raw),
		Body:       string(raw),
	}
}

// parseDetail extracts the message DRF puts in "detail", or the "error" key the
// custom actions use.
func parseDetail(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return strings.TrimSpace(body.Detail)
	}
	return strings.TrimSpace(body.Error)
}

// Message turns err into text for the user: the backend detail when there is
// one, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// classifyError maps transport-level errors to ErrNetwork, keeping the cause.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out: %w", ErrNetwork, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: request timed out: %w", ErrNetwork, err)
	}

	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
