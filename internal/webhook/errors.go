package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistrationFailed reports that no credential could be obtained
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrSubmissionTransport reports that the submission request could not complete
	ErrSubmissionTransport = errors.New("submission transport error")
)

// StatusError is returned when the registration endpoint answers with a non-200 status
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s returned status %d", ErrRegistrationFailed, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s returned status %d: %s", ErrRegistrationFailed, e.Endpoint, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrRegistrationFailed
}

// StatusCode extracts the HTTP status carried by err, or 0 if there is none
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
