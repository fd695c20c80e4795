package qobuz

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication indicates invalid login credentials or an
	// expired token. Fatal: the session cannot proceed.
	ErrAuthentication = errors.New("authentication failed")

	// ErrIneligible indicates the account lacks a streaming
	// entitlement (e.g. a free tier). Fatal.
	ErrIneligible = errors.New("account is not eligible for streaming")

	// ErrInvalidAppID indicates the configured app id was rejected.
	// Fatal; the credentials need re-provisioning.
	ErrInvalidAppID = errors.New("invalid app id")

	// ErrInvalidAppSecret indicates no configured app secret was
	// accepted by the server. Fatal; the credentials need
	// re-provisioning.
	ErrInvalidAppSecret = errors.New("invalid or expired app secret")

	// ErrInvalidQuality indicates a quality id outside {5, 6, 7, 27}.
	// Raised before any network call is made.
	ErrInvalidQuality = errors.New("invalid quality id: choose from 5, 6, 7 or 27")

	// ErrNonStreamable indicates the item is not available for
	// streaming. Recoverable: skip the item, continue with others.
	ErrNonStreamable = errors.New("item is not streamable")
)

// APIError is a non-2xx response from an endpoint that has no more
// specific classification. Treated as a recoverable per-item failure.
type APIError struct {
	Endpoint string
	Status   int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("qobuz: %s returned HTTP %d", e.Endpoint, e.Status)
}

// IsFatal reports whether err belongs to the error categories that must
// abort the whole session rather than a single item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrIneligible) ||
		errors.Is(err, ErrInvalidAppID) ||
		errors.Is(err, ErrInvalidAppSecret) ||
		errors.Is(err, ErrInvalidQuality)
}
