package frontdoor

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/response"
)

// forwardingHeaders are dropped from the outbound request by ReverseProxy
// before Rewrite runs. The client's own values are put back; none are added.
var forwardingHeaders = []string{"Forwarded", "X-Forwarded-For", "X-Forwarded-Host", "X-Forwarded-Proto"}

// NewProxy forwards requests verbatim to the backend at target: method, path,
// query, headers (Host included) and body. Responses stream back unmodified.
// timeout bounds the wait for response headers.
func NewProxy(target string, timeout time.Duration) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse backend URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend URL must be an absolute http(s) URL, got %q", target)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.Out.Host = pr.In.Host
			for _, h := range forwardingHeaders {
				if v, ok := pr.In.Header[h]; ok {
					pr.Out.Header[h] = v
				}
			}
		},
		Transport:     transport,
		FlushInterval: -1,
		ErrorHandler:  proxyError,
	}, nil
}

func proxyError(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		// client went away
		slog.Debug("proxy request canceled", "path", r.URL.Path, "error", err)
		return
	}
	slog.Error("proxy error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	response.Error(w, http.StatusInternalServerError,
		"PROXY_ERROR", "Backend request failed", nil)
}
