package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kula-app/webhook-qualifier/internal/config"
)

// registrationResponse distinguishes absent fields from present ones
type registrationResponse struct {
	Webhook     *string `json:"webhook"`
	AccessToken *string `json:"accessToken"`
}

// RegistrationClient obtains a webhook credential for an identity
type RegistrationClient struct {
	client   HTTPDoer
	logger   *slog.Logger
	endpoint string
	timeout  time.Duration
}

// NewRegistrationClient creates a client for the registration endpoint
func NewRegistrationClient(client HTTPDoer, logger *slog.Logger, endpoint string, timeout time.Duration) *RegistrationClient {
	return &RegistrationClient{
		client:   client,
		logger:   logger,
		endpoint: endpoint,
		timeout:  timeout,
	}
}

// Register sends identity to the registration endpoint and returns the issued credential.
// Every failure wraps ErrRegistrationFailed and yields a zero Credential.
func (c *RegistrationClient) Register(ctx context.Context, identity config.Identity) (Credential, error) {
	endpoint := RedactURL(c.endpoint)
	c.logger.Debug("sending registration request",
		"endpoint", endpoint,
		"name", identity.Name,
		"reg_no", identity.RegNo)

	res, err := postJSON(ctx, c.client, c.timeout, c.endpoint, identity, nil)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %s: %w", ErrRegistrationFailed, endpoint, err)
	}

	if res.StatusCode != http.StatusOK {
		return Credential{}, &StatusError{
			Endpoint:   endpoint,
			StatusCode: res.StatusCode,
			Body:       truncate(string(res.Body)),
		}
	}

	if res.Truncated {
		return Credential{}, fmt.Errorf("%w: %s: response body exceeds limit of %d bytes", ErrRegistrationFailed, endpoint, maxResponseBytes)
	}

	credential, err := decodeCredential(res.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %s: %w", ErrRegistrationFailed, endpoint, err)
	}

	c.logger.Debug("registration response decoded",
		"endpoint", endpoint,
		"status_code", res.StatusCode,
		"credential", credential)

	return credential, nil
}

// decodeCredential parses a registration body, requiring both fields
func decodeCredential(body []byte) (Credential, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return Credential{}, errors.New("empty response body")
	}

	var payload registrationResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Credential{}, fmt.Errorf("failed to decode response body: %w", err)
	}

	var missing []string
	if payload.Webhook == nil || strings.TrimSpace(*payload.Webhook) == "" {
		missing = append(missing, "webhook")
	}
	if payload.AccessToken == nil || strings.TrimSpace(*payload.AccessToken) == "" {
		missing = append(missing, "accessToken")
	}
	if len(missing) > 0 {
		return Credential{}, fmt.Errorf("response is missing %s", strings.Join(missing, ", "))
	}

	return Credential{
		WebhookURL:  *payload.Webhook,
		AccessToken: *payload.AccessToken,
	}, nil
}
