package auth

import (
	"context"
	"errors"
	"strings"
)

// CredentialVerifier checks a username/password pair against the user
// store and resolves the user's current authority set. Authorities are
// read fresh on every login so a new token always reflects the latest
// role assignments.
type CredentialVerifier struct {
	users UserStore
}

// NewCredentialVerifier constructs a verifier over the given store.
func NewCredentialVerifier(users UserStore) (*CredentialVerifier, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	return &CredentialVerifier{users: users}, nil
}

// Verify returns the user's identity when the credential is valid.
// Failures are ErrUserNotFound or ErrBadCredentials; callers must not
// expose which of the two occurred.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrBadCredentials
	}
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrBadCredentials
	}
	return &Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Authorities: normalizeAuthorities(user.Authorities),
	}, nil
}
