package scoring

import (
	"errors"
)

var (
	// ErrQuotaExceeded is returned once the account reached its ceiling of
	// distinct configurations in the rolling 24 hour window
	ErrQuotaExceeded = errors.New("spot placement score configuration quota exceeded")

	// ErrTransient marks failures worth retrying: throttling, timeouts,
	// server side faults and network errors
	ErrTransient = errors.New("transient scoring service error")

	// ErrInvalidRequest marks requests the service rejected as malformed
	ErrInvalidRequest = errors.New("invalid scoring request")
)

// Kind classifies a scoring error
type Kind string

const (
	KindQuotaExceeded  Kind = "QuotaExceeded"
	KindTransient      Kind = "Transient"
	KindInvalidRequest Kind = "InvalidRequest"
)

// Classify maps an error returned by a Client to its kind. Unknown errors are
// treated as transient.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	default:
		return KindTransient
	}
}
