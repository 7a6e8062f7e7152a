// Package webhook talks to the two remote endpoints of the qualifier flow.
//
// RegistrationClient exchanges an identity for a one-time Credential: a
// webhook URL and an opaque bearer token. SubmissionClient posts the
// selected answer to that webhook with the token as bearer credential.
// Both clients issue exactly one request per call and never retry.
//
// Access tokens are never written to logs in cleartext; Credential and
// TokenInfo implement slog.LogValuer and mask the token themselves.
package webhook
