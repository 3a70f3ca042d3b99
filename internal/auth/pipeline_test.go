package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func newTestPipeline(t *testing.T) (*Pipeline, *TokenService) {
	t.Helper()
	tokens := newTestTokenService(t)
	verifier := newVerifierWithUser(t, "alice", "correct horse", []string{"ROLE_ADMIN"})
	matcher := NewPathMatcher([]string{"/healthz"}, []string{"/ping"})
	p := NewPipeline(
		PublicBypass(matcher),
		CredentialLogin("/login", verifier, tokens),
		BearerToken(tokens),
	)
	return p, tokens
}

func TestPipelinePublicBypass(t *testing.T) {
	p, _ := newTestPipeline(t)

	// Public bypass wins even when a (bogus) token is attached.
	d := p.Authenticate(context.Background(), Request{
		Method:      http.MethodGet,
		Path:        "/ping/deep",
		BearerToken: "garbage",
	})
	if d.Outcome != OutcomeAnonymous {
		t.Fatalf("expected anonymous outcome, got %v (reason %v)", d.Outcome, d.Reason)
	}
	if d.Identity != nil {
		t.Fatalf("public bypass must not attach an identity: %+v", d.Identity)
	}
}

func TestPipelineLoginIssuesToken(t *testing.T) {
	p, tokens := newTestPipeline(t)

	d := p.Authenticate(context.Background(), Request{
		Method:     http.MethodPost,
		Path:       "/login",
		Credential: &Credential{Username: "alice", Password: "correct horse"},
	})
	if d.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected authenticated, got %v (reason %v)", d.Outcome, d.Reason)
	}
	if d.Token == "" {
		t.Fatal("expected issued token")
	}
	id, err := tokens.Verify(d.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.Username != "alice" {
		t.Fatalf("unexpected subject: %+v", id)
	}
}

func TestPipelineLoginFailureIsTerminal(t *testing.T) {
	p, tokens := newTestPipeline(t)

	// A valid token on a failed login submission must not rescue the
	// request: exactly one strategy runs.
	good, _, err := tokens.Issue(&Identity{UserID: "u1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	d := p.Authenticate(context.Background(), Request{
		Method:      http.MethodPost,
		Path:        "/login",
		BearerToken: good,
		Credential:  &Credential{Username: "alice", Password: "wrong"},
	})
	if d.Outcome != OutcomeRejected {
		t.Fatalf("expected rejection, got %v", d.Outcome)
	}
	if !errors.Is(d.Reason, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", d.Reason)
	}
}

func TestPipelineLoginWithoutPayload(t *testing.T) {
	p, _ := newTestPipeline(t)
	d := p.Authenticate(context.Background(), Request{Method: http.MethodPost, Path: "/login"})
	if d.Outcome != OutcomeRejected || !errors.Is(d.Reason, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v / %v", d.Outcome, d.Reason)
	}
}

func TestPipelineBearerToken(t *testing.T) {
	p, tokens := newTestPipeline(t)
	token, _, err := tokens.Issue(&Identity{UserID: "u1", Username: "alice", Authorities: []string{"ROLE_ADMIN"}})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	d := p.Authenticate(context.Background(), Request{
		Method:      http.MethodGet,
		Path:        "/v1",
		BearerToken: token,
	})
	if d.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected authenticated, got %v (reason %v)", d.Outcome, d.Reason)
	}
	if d.Identity == nil || !d.Identity.HasAuthority("ROLE_ADMIN") {
		t.Fatalf("identity not restored from claims: %+v", d.Identity)
	}
	if d.Token != "" {
		t.Fatal("token verification must not mint a new token")
	}
}

func TestPipelineBearerTokenFailureReasons(t *testing.T) {
	p, _ := newTestPipeline(t)
	d := p.Authenticate(context.Background(), Request{
		Method:      http.MethodGet,
		Path:        "/v1",
		BearerToken: "bogus",
	})
	if d.Outcome != OutcomeRejected || !errors.Is(d.Reason, ErrTokenMalformed) {
		t.Fatalf("expected malformed token rejection, got %v / %v", d.Outcome, d.Reason)
	}
}

func TestPipelineRejectsBareRequest(t *testing.T) {
	p, _ := newTestPipeline(t)
	d := p.Authenticate(context.Background(), Request{Method: http.MethodGet, Path: "/v1"})
	if d.Outcome != OutcomeRejected || !errors.Is(d.Reason, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v / %v", d.Outcome, d.Reason)
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatal("unexpected identity on empty context")
	}
	id := &Identity{UserID: "u1", Username: "alice"}
	ctx = ContextWithIdentity(ctx, id)
	got, ok := IdentityFromContext(ctx)
	if !ok || got.UserID != "u1" {
		t.Fatalf("identity not recovered: %+v ok=%v", got, ok)
	}
}
