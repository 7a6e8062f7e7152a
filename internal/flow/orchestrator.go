// Package flow runs the register, select, submit sequence exactly once.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kula-app/webhook-qualifier/internal/answer"
	"github.com/kula-app/webhook-qualifier/internal/config"
	"github.com/kula-app/webhook-qualifier/internal/webhook"
)

// Registrar obtains a webhook credential for an identity
type Registrar interface {
	Register(ctx context.Context, identity config.Identity) (webhook.Credential, error)
}

// Submitter posts an answer to an issued webhook
type Submitter interface {
	Submit(ctx context.Context, credential webhook.Credential, ans answer.Answer) (webhook.Result, error)
}

// Option customises an Orchestrator
type Option func(*options)

type options struct {
	httpClient webhook.HTTPDoer
	registrar  Registrar
	submitter  Submitter
	runID      string
	now        func() time.Time
}

// WithHTTPClient replaces the HTTP client shared by both endpoints
func WithHTTPClient(client webhook.HTTPDoer) Option {
	return func(o *options) { o.httpClient = client }
}

// WithRegistrar replaces the registration client
func WithRegistrar(r Registrar) Option {
	return func(o *options) { o.registrar = r }
}

// WithSubmitter replaces the submission client
func WithSubmitter(s Submitter) Option {
	return func(o *options) { o.submitter = s }
}

// WithClock replaces the time source used for durations and token expiry checks
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRunID sets the identifier attached to every log record of the run
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// Orchestrator owns the end-to-end qualifier sequence
type Orchestrator struct {
	logger    *slog.Logger
	config    *config.Config
	registrar Registrar
	submitter Submitter
	now       func() time.Time
}

// New creates an orchestrator for cfg
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.httpClient == nil {
		o.httpClient = webhook.NewHTTPClient(cfg.RequestTimeout)
	}

	logger = logger.With("run_id", o.runID)
	if o.registrar == nil {
		o.registrar = webhook.NewRegistrationClient(o.httpClient, logger, cfg.RegistrationURL, cfg.RequestTimeout)
	}
	if o.submitter == nil {
		o.submitter = webhook.NewSubmissionClient(o.httpClient, logger, cfg.RequestTimeout)
	}

	return &Orchestrator{
		logger:    logger,
		config:    cfg,
		registrar: o.registrar,
		submitter: o.submitter,
		now:       o.now,
	}
}

// Run executes the flow once and reports its terminal state.
// Every failure, including a panic in a step, ends the run in StateFailed.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	startTime := o.now()
	outcome := Outcome{State: StateStart, Trace: []State{StateStart}}

	o.logger.Info("flow started",
		"registration_endpoint", webhook.RedactURL(o.config.RegistrationURL),
		"name", o.config.Identity.Name,
		"reg_no", o.config.Identity.RegNo)

	// 1. Register the identity to obtain the webhook credential
	credential, err := guard(func() (webhook.Credential, error) {
		return o.registrar.Register(ctx, o.config.Identity)
	})
	if err != nil {
		err = ensureKind(err, webhook.ErrRegistrationFailed)
		o.logger.Error("registration failed",
			"endpoint", webhook.RedactURL(o.config.RegistrationURL),
			"status_code", webhook.StatusCode(err),
			"error", err)
		outcome.fail(err)
		return o.finish(outcome, startTime)
	}
	outcome.transition(StateRegistered)
	o.logger.Info("registration succeeded", "credential", credential)
	if info, ok := webhook.InspectToken(credential.AccessToken); ok {
		o.logger.Debug("access token claims", "token", info)
		if info.Expired(o.now()) {
			o.logger.Warn("access token is already expired", "expires_at", info.ExpiresAt)
		}
	}

	// 2. Select the answer from the registration number's parity
	selection, err := guard(func() (answer.Selection, error) {
		return answer.Choose(o.config.Identity.RegNo, o.config.Answers)
	})
	if err != nil {
		err = ensureKind(err, answer.ErrMalformedIdentifier)
		o.logger.Error("answer selection failed",
			"reg_no", o.config.Identity.RegNo,
			"error", err)
		outcome.fail(err)
		return o.finish(outcome, startTime)
	}
	outcome.transition(StateAnswerComputed)
	ans := selection.Answer
	o.logger.Info("answer selected",
		"reg_no_suffix", selection.Suffix,
		"question", selection.Question,
		"query_length", len(ans.Query))

	// 3. Submit the answer to the issued webhook
	result, err := guard(func() (webhook.Result, error) {
		return o.submitter.Submit(ctx, credential, ans)
	})
	if err != nil {
		err = ensureKind(err, webhook.ErrSubmissionTransport)
		o.logger.Error("submission failed",
			"endpoint", webhook.RedactURL(credential.WebhookURL),
			"error", err)
		outcome.fail(err)
		return o.finish(outcome, startTime)
	}
	outcome.Result = result
	outcome.transition(StateSubmitted)
	if result.OK() {
		o.logger.Info("submission accepted",
			"status_code", result.StatusCode,
			"response", result.Body)
	} else {
		// The remote status is reported, not treated as a flow failure
		o.logger.Warn("submission returned non-success status",
			"status_code", result.StatusCode,
			"response", result.Body)
	}

	// 4. Done
	outcome.transition(StateDone)
	return o.finish(outcome, startTime)
}

func (o *Orchestrator) finish(outcome Outcome, startTime time.Time) Outcome {
	outcome.Duration = o.now().Sub(startTime)
	if outcome.State == StateDone {
		o.logger.Info("flow completed", "outcome", outcome)
	} else {
		o.logger.Error("flow failed", "outcome", outcome)
	}
	return outcome
}

// guard runs fn and converts a panic into an error
func guard[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// ensureKind wraps err with kind unless it already carries it
func ensureKind(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
