package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"partner-media-backend/internal/models"
)

// TokenFunc supplies the current bearer token for API calls.
type TokenFunc func() string

// EdgeClient calls the media endpoints of the backend service.
type EdgeClient struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client

	// uploadClient has no global timeout. Large video bodies can take
	// minutes; cancellation is the caller's context.
	uploadClient *http.Client
}

func NewEdgeClient(baseURL string, token TokenFunc) *EdgeClient {
	return &EdgeClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		uploadClient: &http.Client{},
	}
}

// GetUploadURL asks the backend for signed upload URLs and a draft record.
func (c *EdgeClient) GetUploadURL(ctx context.Context, req models.GetUploadURLRequest) (*models.GetUploadURLResponse, error) {
	var resp models.GetUploadURLResponse
	if err := c.postJSON(ctx, "/get-upload-url", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveTmp deletes a pending or rejected media item and its stored files.
func (c *EdgeClient) RemoveTmp(ctx context.Context, mediaID uuid.UUID) error {
	return c.postJSON(ctx, "/remove-tmp", models.RemoveTmpRequest{MediaID: mediaID}, nil)
}

// Reorder persists new sort positions for a profile's media. The call is
// idempotent, so transient failures are retried before the caller rolls
// back its optimistic state.
func (c *EdgeClient) Reorder(ctx context.Context, req models.ReorderRequest) error {
	return c.RetryWithBackoff(ctx, func() error {
		return c.postJSON(ctx, "/reorder", req, nil)
	}, 2)
}

func (c *EdgeClient) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody models.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil {
			apiErr.Code = errBody.Error
			apiErr.Message = errBody.Message
		}
		if resp.StatusCode == http.StatusConflict {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Error())
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// UploadToSignedURL PUTs the content to a signed URL, reporting bytes sent
// through progress as the body is consumed.
func (c *EdgeClient) UploadToSignedURL(ctx context.Context, url, contentType string, content []byte, progress func(sent, total int64)) error {
	total := int64(len(content))
	var body io.Reader = bytes.NewReader(content)
	if progress != nil {
		body = &progressReader{r: body, total: total, report: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: string(raw)}
	}
	if progress != nil {
		progress(total, total)
	}
	return nil
}

// RetryWithBackoff executes fn with exponential backoff between attempts.
// Client errors (4xx) are returned immediately; retrying them cannot help.
func (c *EdgeClient) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return err
		}

		lastErr = err
		if i < len(backoffs) {
			select {
			case <-time.After(backoffs[i]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
