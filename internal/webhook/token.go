package webhook

import (
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the one-time webhook URL and bearer token issued on registration
type Credential struct {
	WebhookURL  string `json:"webhook"`
	AccessToken string `json:"accessToken"`
}

// String masks the access token and redacts the webhook URL
func (c Credential) String() string {
	return "Credential{webhook=" + RedactURL(c.WebhookURL) + ", accessToken=" + MaskToken(c.AccessToken) + "}"
}

// LogValue masks the access token in structured logs
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("webhook", RedactURL(c.WebhookURL)),
		slog.String("access_token", MaskToken(c.AccessToken)),
	)
}

// MaskToken hides all but the first and last four characters of long tokens.
// Short tokens are hidden completely.
func MaskToken(token string) string {
	const visible = 4
	switch {
	case token == "":
		return ""
	case len(token) <= 3*visible:
		return strings.Repeat("*", len(token))
	default:
		return token[:visible] + strings.Repeat("*", len(token)-2*visible) + token[len(token)-visible:]
	}
}

// TokenInfo holds the non-secret claims of a JWT access token
type TokenInfo struct {
	Algorithm string
	Subject   string
	Issuer    string
	ExpiresAt time.Time
}

// LogValue renders the claims without the token itself
func (i TokenInfo) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("alg", i.Algorithm)}
	if i.Subject != "" {
		attrs = append(attrs, slog.String("sub", i.Subject))
	}
	if i.Issuer != "" {
		attrs = append(attrs, slog.String("iss", i.Issuer))
	}
	if !i.ExpiresAt.IsZero() {
		attrs = append(attrs, slog.Time("exp", i.ExpiresAt))
	}
	return slog.GroupValue(attrs...)
}

// Expired reports whether the token carried an expiry that lies before now
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// InspectToken decodes the claims of token without verifying its signature.
// The token is opaque to the flow; ok is false when it is not a JWT.
func InspectToken(token string) (info TokenInfo, ok bool) {
	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return TokenInfo{}, false
	}

	info.Algorithm = parsed.Method.Alg()
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
