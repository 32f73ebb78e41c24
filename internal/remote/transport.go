package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// Caller performs one JSON request against a remote service. Facades
// depend on this interface so tests can substitute the transport.
type Caller interface {
	DoJSON(ctx context.Context, method, path string, body, out any) error
}

// HTTPCaller is the production Caller: JSON over HTTP against one
// service base URL. Timeouts are owned by the Operation wrapper, so
// the underlying client carries none of its own.
type HTTPCaller struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCaller creates a caller bound to a service base URL.
func NewHTTPCaller(baseURL string) *HTTPCaller {
	return &HTTPCaller{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// DoJSON issues the request and decodes a 2xx response body into out.
// Non-2xx statuses are mapped onto the service error taxonomy.
func (c *HTTPCaller) DoJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport error calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
		return nil
	}

	// Drain so the connection can be reused.
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("Remote call returned error status")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.NewNotFoundError("remote resource", path)
	case resp.StatusCode == http.StatusBadRequest:
		return models.NewValidationError("request", strings.TrimSpace(string(payload)), nil)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return models.NewAuthorizationError("remote call rejected")
	case resp.StatusCode >= 500:
		return fmt.Errorf("remote service error %d calling %s", resp.StatusCode, path)
	default:
		return fmt.Errorf("unexpected status %d calling %s", resp.StatusCode, path)
	}
}
