package auth

import "context"

// StoredUser is the persisted view of a user that the credential
// verifier needs. Authorities already include role tags and the
// permissions granted through role membership.
type StoredUser struct {
	ID           string
	Username     string
	PasswordHash string
	Authorities  []string
}

// UserStore looks up users for credential verification. Implementations
// return ErrUserNotFound when no user matches.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*StoredUser, error)
}
