package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kula-app/webhook-qualifier/internal/answer"
)

// Result is the remote response to a submission, reported verbatim
type Result struct {
	StatusCode int
	Body       string

	// Truncated is set when Body holds only the first part of a larger response
	Truncated bool
}

// OK reports whether the webhook accepted the submission with a 2xx status
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SubmissionClient posts answers to an issued webhook
type SubmissionClient struct {
	client  HTTPDoer
	logger  *slog.Logger
	timeout time.Duration
}

// NewSubmissionClient creates a submission client
func NewSubmissionClient(client HTTPDoer, logger *slog.Logger, timeout time.Duration) *SubmissionClient {
	return &SubmissionClient{
		client:  client,
		logger:  logger,
		timeout: timeout,
	}
}

// Submit posts ans to the credential's webhook with bearer authentication.
// Any HTTP status is returned as a Result; an error wrapping ErrSubmissionTransport
// means the exchange itself did not complete.
func (c *SubmissionClient) Submit(ctx context.Context, credential Credential, ans answer.Answer) (Result, error) {
	endpoint := RedactURL(credential.WebhookURL)
	c.logger.Debug("sending submission request",
		"endpoint", endpoint,
		"credential", credential)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+credential.AccessToken)

	res, err := postJSON(ctx, c.client, c.timeout, credential.WebhookURL, ans, header)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrSubmissionTransport, endpoint, err)
	}

	if res.Truncated {
		c.logger.Warn("submission response body truncated",
			"endpoint", endpoint,
			"status_code", res.StatusCode,
			"limit_bytes", maxResponseBytes)
	}

	return Result{
		StatusCode: res.StatusCode,
		Body:       string(res.Body),
		Truncated:  res.Truncated,
	}, nil
}
