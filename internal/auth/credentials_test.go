package auth

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type stubUserStore struct {
	users map[string]*StoredUser
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*StoredUser, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func newVerifierWithUser(t *testing.T, username, password string, authorities []string) *CredentialVerifier {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store := &stubUserStore{users: map[string]*StoredUser{
		username: {ID: "id-" + username, Username: username, PasswordHash: hash, Authorities: authorities},
	}}
	v, err := NewCredentialVerifier(store)
	if err != nil {
		t.Fatalf("NewCredentialVerifier: %v", err)
	}
	return v
}

func TestVerifyValidCredential(t *testing.T) {
	v := newVerifierWithUser(t, "alice", "correct horse", []string{"ROLE_ADMIN", "PERM_READ_ROLE", "ROLE_ADMIN"})

	id, err := v.Verify(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != "id-alice" || id.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	want := []string{"PERM_READ_ROLE", "ROLE_ADMIN"}
	if !reflect.DeepEqual(id.Authorities, want) {
		t.Fatalf("authorities not normalized: %v", id.Authorities)
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	v := newVerifierWithUser(t, "alice", "correct horse", nil)
	if _, err := v.Verify(context.Background(), "alice", "correct horsf"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestVerifyUnknownUser(t *testing.T) {
	v := newVerifierWithUser(t, "alice", "correct horse", nil)
	if _, err := v.Verify(context.Background(), "mallory", "whatever"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestVerifyEmptyInputs(t *testing.T) {
	v := newVerifierWithUser(t, "alice", "correct horse", nil)
	if _, err := v.Verify(context.Background(), "", "pw"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for empty username, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "alice", ""); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for empty password, got %v", err)
	}
}
