package auth

import "errors"

// Failure reasons are kept distinct internally for logs and audit; the
// HTTP layer collapses all of them into the same 401 message so that
// responses cannot be used to enumerate users or probe token handling.
var (
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrBadCredentials     = errors.New("auth: bad credentials")
	ErrMissingCredentials = errors.New("auth: missing credentials")

	ErrTokenMalformed = errors.New("auth: malformed token")
	ErrTokenSignature = errors.New("auth: bad token signature")
	ErrTokenExpired   = errors.New("auth: token expired")

	ErrForbidden = errors.New("auth: forbidden")
)
