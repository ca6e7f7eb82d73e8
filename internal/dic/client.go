package dic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

// Client is the interface for talking to the DIC backend REST API.
type Client interface {
	FetchToken(ctx context.Context) (string, error)

	ListAnalyses(ctx context.Context, params ListParams) (*models.ListResponse, error)
	GetAnalysis(ctx context.Context, id string) (*models.Analysis, error)
	CreateAnalysis(ctx context.Context, req models.CreateRequest) (*models.Analysis, error)
	CancelAnalysis(ctx context.Context, id string) (*models.CancelResult, error)
	BulkDelete(ctx context.Context, ids []string) (*models.BulkDeleteResult, error)

	DownloadResults(ctx context.Context, id string) (*Blob, error)
	DownloadReport(ctx context.Context, id string) (*Blob, error)
	FetchImage(ctx context.Context, id string, variant ImageVariant) (*Blob, error)

	FetchStats(ctx context.Context) (*models.Stats, error)
	FetchSummary(ctx context.Context) (*models.Summary, error)
	FetchRecent(ctx context.Context) ([]models.Analysis, error)
}

// Blob is a binary artifact downloaded from the backend.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// HTTPClient implements Client over the backend's HTTP API.
type HTTPClient struct {
	baseURL  string
	prefix   string
	client   *http.Client
	validate *validator.Validate
}

// NewHTTPClient creates a client for the backend at baseURL whose API lives
// under prefix (normally "/api"). timeout bounds every request; there are no
// retries. The cookie jar keeps the CSRF cookie that pairs with fetched tokens.
func NewHTTPClient(baseURL, prefix string, timeout time.Duration) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		prefix:   "/" + strings.Trim(prefix, "/"),
		client:   &http.Client{Timeout: timeout, Jar: jar},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (c *HTTPClient) FetchToken(ctx context.Context) (string, error) {
	var tok models.CSRFToken
	if err := c.getJSON(ctx, "fetch csrf token", "/get-csrf-token/", nil, &tok); err != nil {
		return "", err
	}
	return tok.CSRFToken, nil
}

func (c *HTTPClient) ListAnalyses(ctx context.Context, params ListParams) (*models.ListResponse, error) {
	var resp models.ListResponse
	if err := c.getJSON(ctx, "list analyses", "/analyses/", params.Query(), &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []models.Analysis{}
	}
	return &resp, nil
}

func (c *HTTPClient) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	path, err := analysisPath(id, "")
	if err != nil {
		return nil, err
	}
	var a models.Analysis
	if err := c.getJSON(ctx, "get analysis", path, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) CancelAnalysis(ctx context.Context, id string) (*models.CancelResult, error) {
	path, err := analysisPath(id, "cancel/")
	if err != nil {
		return nil, err
	}
	var res models.CancelResult
	if err := c.postJSON(ctx, "cancel analysis", path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) BulkDelete(ctx context.Context, ids []string) (*models.BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("bulk delete: %w: no ids given", ErrInvalidRequest)
	}
	body := struct {
		TaskIDs []string `json:"task_ids"`
	}{TaskIDs: ids}

	var res models.BulkDeleteResult
	if err := c.postJSON(ctx, "bulk delete analyses", "/analyses/bulk_delete/", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) DownloadResults(ctx context.Context, id string) (*Blob, error) {
	path, err := analysisPath(id, "download/")
	if err != nil {
		return nil, err
	}
	return c.getBlob(ctx, "download results", path, nil, fmt.Sprintf("dic_results_%s.zip", id))
}

func (c *HTTPClient) DownloadReport(ctx context.Context, id string) (*Blob, error) {
	path, err := analysisPath(id, "pdf_generate/")
	if err != nil {
		return nil, err
	}
	return c.getBlob(ctx, "download report", path, nil, fmt.Sprintf("dic_report_%s.pdf", id))
}

func (c *HTTPClient) FetchImage(ctx context.Context, id string, variant ImageVariant) (*Blob, error) {
	if variant == "" {
		variant = ImageDisplacement
	}
	if !variant.Valid() {
		return nil, fmt.Errorf("fetch image: %w: unknown image type %q", ErrInvalidRequest, variant)
	}
	path, err := analysisPath(id, "image/")
	if err != nil {
		return nil, err
	}
	q := url.Values{"type": {string(variant)}}
	return c.getBlob(ctx, "fetch image", path, q, fmt.Sprintf("%s_%s.png", variant, id))
}

func (c *HTTPClient) FetchStats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	if err := c.getJSON(ctx, "fetch stats", "/analyses/stats/", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) FetchSummary(ctx context.Context) (*models.Summary, error) {
	var s models.Summary
	if err := c.getJSON(ctx, "fetch summary", "/analyses/summary/", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) FetchRecent(ctx context.Context) ([]models.Analysis, error) {
	var recent []models.Analysis
	if err := c.getJSON(ctx, "fetch recent analyses", "/analyses/recent/", nil, &recent); err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.Analysis{}
	}
	return recent, nil
}

// --- request plumbing ---

func (c *HTTPClient) url(path string, q url.Values) string {
	u := c.baseURL + c.prefix + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *HTTPClient) getJSON(ctx context.Context, op, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), nil)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decoding response: %v", op, ErrServer, err)
	}
	return nil
}

// postJSON sends a state-mutating JSON request with a fresh token in the header.
func (c *HTTPClient) postJSON(ctx context.Context, op, path string, body, out any) error {
	token := c.freshToken(ctx, op)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), reader)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := attachToken(transportJSON, token, req.Header, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s: %w: decoding response: %v", op, ErrServer, err)
	}
	return nil
}

func (c *HTTPClient) getBlob(ctx context.Context, op, path string, q url.Values, defaultName string) (*Blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", op, err)
	}

	resp, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classifyError(err))
	}
	return &Blob{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    attachmentName(resp.Header.Get("Content-Disposition"), defaultName),
	}, nil
}

// do executes req. Non-2xx responses are drained into an *APIError and the
// body is closed; on success the caller owns resp.Body.
func (c *HTTPClient) do(op string, req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classifyError(err))
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := newAPIError(op, resp)
	if resp.StatusCode == http.StatusUnauthorized {
		slog.Warn("unauthorized response", "op", op, "path", req.URL.Path)
	}
	return nil, apiErr
}

func analysisPath(id, action string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: analysis id is required", ErrInvalidRequest)
	}
	return "/analyses/" + url.PathEscape(id) + "/" + action, nil
}

func attachmentName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
