// Package client holds the typed HTTP/JSON clients for the two backend
// services. Each client validates its local preconditions before building a
// request; everything the backend rejects comes back as a RemoteError with
// the status and raw body.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"commerce-console/internal/errs"
)

// DefaultHTTPClient is used when a client is constructed without one.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// doJSON performs one request/response round trip. A non-empty token is
// attached as a bearer credential; in and out may be nil for bodyless
// exchanges.
func doJSON(ctx context.Context, hc *http.Client, service, method, url, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", service, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", service, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &errs.TransportError{Service: service, Op: method + " " + url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return errs.Remote(service, resp.StatusCode, string(bytes.TrimSpace(raw)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", service, err)
		}
	}
	return nil
}
