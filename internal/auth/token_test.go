package auth

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func newTestTokenService(t *testing.T, opts ...TokenOption) *TokenService {
	t.Helper()
	svc, err := NewTokenService([]byte("unit-test-secret"), opts...)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	id := &Identity{
		UserID:      "user-42",
		Username:    "alice",
		Authorities: []string{"PERM_READ_ROLE", "ROLE_ADMIN", "PERM_READ_ROLE"},
	}

	token, expiresAt, err := svc.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UserID != "user-42" || got.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	want := []string{"PERM_READ_ROLE", "ROLE_ADMIN"}
	if !reflect.DeepEqual(got.Authorities, want) {
		t.Fatalf("authorities not preserved: %v", got.Authorities)
	}

	// Verification has no side effects: a second pass yields the same result.
	again, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Fatalf("verification not idempotent: %+v vs %+v", got, again)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	svc := newTestTokenService(t,
		WithTTL(10*time.Minute),
		WithClock(func() time.Time { return now }),
	)

	token, expiresAt, err := svc.Issue(&Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// One instant before expiry the token is still good.
	now = expiresAt.Add(-time.Second)
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("token should be valid before expiry: %v", err)
	}

	// At exactly the expiry instant the token is already expired.
	now = expiresAt
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at boundary, got %v", err)
	}

	now = expiresAt.Add(time.Second)
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired past boundary, got %v", err)
	}
}

func TestVerifyClassifiesFailures(t *testing.T) {
	svc := newTestTokenService(t)
	token, _, err := svc.Issue(&Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrTokenMalformed},
		{"garbage", "not-a-token", ErrTokenMalformed},
		{"two segments", "abc.def", ErrTokenMalformed},
		{"tampered signature", token[:len(token)-2] + "xx", ErrTokenSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Verify(tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService([]byte("a-different-secret"))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	token, _, err := other.Issue(&Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	svc := newTestTokenService(t, WithIssuer("authd-a"))
	other := newTestTokenService(t, WithIssuer("authd-b"))
	token, _, err := other.Issue(&Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected rejection of foreign issuer, got %v", err)
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	svc := newTestTokenService(t)
	if _, _, err := svc.Issue(nil); err == nil {
		t.Fatal("expected error for nil identity")
	}
	if _, _, err := svc.Issue(&Identity{}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}
