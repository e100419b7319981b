// Package blob uploads user files to a Cloudinary-compatible unsigned
// upload endpoint.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"hire_server/pkg/apperr"
	"hire_server/pkg/logger"

	"github.com/sony/gobreaker"
)

// Config holds the upload endpoint settings.
type Config struct {
	UploadURL    string
	UploadPreset string
	Folder       string
}

// Adapter implements out.BlobStore over HTTP.
type Adapter struct {
	cfg    Config
	client *http.Client
	cb     *gobreaker.CircuitBreaker
}

// NewAdapter creates a new blob adapter.
func NewAdapter(cfg Config) *Adapter {
	cbSettings := gobreaker.Settings{
		Name:        "blob-upload",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends the file as multipart form data and returns its public
// URL. Calls go through a circuit breaker so a dead upload endpoint
// fails fast instead of tying up request handlers.
func (a *Adapter) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	result, err := a.cb.Execute(func() (interface{}, error) {
		return a.doUpload(ctx, filename, content)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return "", apperr.ExternalError("blob store", err)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (a *Adapter) doUpload(ctx context.Context, filename string, content []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := writer.WriteField("upload_preset", a.cfg.UploadPreset); err != nil {
		return "", fmt.Errorf("failed to write preset field: %w", err)
	}
	if a.cfg.Folder != "" {
		if err := writer.WriteField("folder", a.cfg.Folder); err != nil {
			return "", fmt.Errorf("failed to write folder field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.UploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", apperr.ExternalError("blob store", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.ExternalError("blob store",
			fmt.Errorf("upload returned status %d: %s", resp.StatusCode, data))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	url := parsed.SecureURL
	if url == "" {
		url = parsed.URL
	}
	if url == "" {
		return "", apperr.ExternalError("blob store", fmt.Errorf("upload response carried no url"))
	}
	return url, nil
}
