package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/davidbz/hearth/internal/domain"
)

const maxErrorBodyBytes = 2048

// PostJSON sends a JSON payload to a backend endpoint and decodes the JSON
// reply into out. Network and HTTP-status failures surface as TransportError;
// an undecodable reply surfaces as ProtocolError. Both are retried via the
// router's fallback chain.
func PostJSON(
	ctx context.Context,
	client *http.Client,
	backend domain.Backend,
	url string,
	headers map[string]string,
	payload any,
	out any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.ProtocolError{Backend: backend, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &domain.TransportError{Backend: backend, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &domain.TransportError{Backend: backend, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &domain.TransportError{
			Backend: backend,
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(detail)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ProtocolError{Backend: backend, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}
