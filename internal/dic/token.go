package dic

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
)

const (
	csrfHeader    = "X-CSRFToken"
	csrfFormField = "csrfmiddlewaretoken"
)

// transport is the body encoding of a mutating request. It decides where the
// anti-forgery token travels.
type transport int

const (
	transportJSON transport = iota
	transportMultipart
)

// attachToken puts token on the channel the backend reads for t: the
// X-CSRFToken header for JSON requests, the csrfmiddlewaretoken form field for
// multipart uploads. Only one channel is ever used. form may be nil for JSON.
func attachToken(t transport, token string, header http.Header, form *multipart.Writer) error {
	if token == "" {
		return nil
	}
	switch t {
	case transportMultipart:
		if form == nil {
			return fmt.Errorf("attach token: multipart transport without form writer")
		}
		return form.WriteField(csrfFormField, token)
	case transportJSON:
		header.Set(csrfHeader, token)
		return nil
	default:
		return fmt.Errorf("attach token: unknown transport %d", t)
	}
}

// freshToken fetches a new token for one mutating call. A failed fetch is
// logged and yields an empty token; the backend then rejects the call itself.
func (c *HTTPClient) freshToken(ctx context.Context, op string) string {
	token, err := c.FetchToken(ctx)
	if err != nil {
		slog.Warn("failed to fetch csrf token", "op", op, "error", err)
		return ""
	}
	return token
}
