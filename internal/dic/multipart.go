package dic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

// CreateAnalysis uploads the image pair as multipart form data. The token is
// fetched first and travels as the csrfmiddlewaretoken form field, never as a
// header.
func (c *HTTPClient) CreateAnalysis(ctx context.Context, req models.CreateRequest) (*models.Analysis, error) {
	const op = "create analysis"

	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidRequest, describeValidation(err))
	}

	token := c.freshToken(ctx, op)

	body, contentType, err := encodeCreateForm(req, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/analyses/", nil), body)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.do(op, httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created models.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("%s: %w: decoding response: %v", op, ErrServer, err)
	}
	return &created, nil
}

// encodeCreateForm serializes req in the field order the backend serializer
// expects, with the token as the final field.
func encodeCreateForm(req models.CreateRequest, token string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if err := w.WriteField("name", req.Name); err != nil {
		return nil, "", err
	}
	if err := writeImage(w, "image_before", req.ImageBefore); err != nil {
		return nil, "", err
	}
	if err := writeImage(w, "image_after", req.ImageAfter); err != nil {
		return nil, "", err
	}

	fields := []struct {
		name  string
		value string
	}{
		{"subset_size", formatInt(req.SubsetSize)},
		{"step", formatInt(req.Step)},
		{"max_iter", formatInt(req.MaxIter)},
		{"min_correlation", formatFloat(req.MinCorrelation)},
		{"sample_name", req.SampleName},
		{"material", req.Material},
		{"manufacture", req.Manufacture},
		{"test_date", req.TestDate},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if err := attachToken(transportMultipart, token, nil, w); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeImage(w *multipart.Writer, field string, img *models.ImageFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(img.Filename))))
	h.Set("Content-Type", imageContentType(img.Filename))

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, img.Content); err != nil {
		return fmt.Errorf("reading %s: %w", field, err)
	}
	return nil
}

func imageContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}
