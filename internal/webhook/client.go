package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout applies when a client is built with a non-positive timeout
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes int64 = 1 << 20

// maxBodyInError caps how much of a response body is echoed in errors and logs
const maxBodyInError = 512

// HTTPDoer abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns the client used by both endpoints
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// response is the raw outcome of a completed HTTP exchange
type response struct {
	StatusCode int
	Body       []byte

	// Truncated is set when the body was cut at maxResponseBytes
	Truncated bool
}

// postJSON marshals payload, POSTs it to endpoint and reads the response body.
// An error is returned only when the exchange could not complete; a body over
// maxResponseBytes is cut and flagged as Truncated.
func postJSON(ctx context.Context, client HTTPDoer, timeout time.Duration, endpoint string, payload any, header http.Header) (response, error) {
	// answers are sent verbatim, '<' and '>' included
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return response{}, fmt.Errorf("failed to encode request body: %w", err)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes+1))
	if err != nil {
		return response{}, fmt.Errorf("failed to read response body: %w", err)
	}
	truncated := int64(len(data)) > maxResponseBytes
	if truncated {
		data = data[:maxResponseBytes]
	}

	return response{StatusCode: res.StatusCode, Body: data, Truncated: truncated}, nil
}

// RedactURL strips userinfo and query values so an endpoint can be logged
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.User = nil
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	return u.String()
}

// truncate shortens s for inclusion in errors and logs
func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxBodyInError {
		return s
	}
	cut := maxBodyInError
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
