package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Outcome tags the result of running the authentication pipeline.
type Outcome int

const (
	// OutcomeAuthenticated means an identity was established, or a
	// login succeeded and a fresh token was issued.
	OutcomeAuthenticated Outcome = iota + 1
	// OutcomeAnonymous means the path is public; the request proceeds
	// with no identity attached.
	OutcomeAnonymous
	// OutcomeRejected is terminal: the request is unauthorized.
	OutcomeRejected
)

// Request is the transport-neutral view of an incoming request that the
// pipeline evaluates.
type Request struct {
	Method      string
	Path        string
	BearerToken string
	// Credential is set only for login submissions.
	Credential *Credential
}

// Decision is the pipeline verdict for one request. Reason is set only
// on rejection and is meant for logs and audit, never for the client.
type Decision struct {
	Outcome        Outcome
	Identity       *Identity
	Token          string
	TokenExpiresAt time.Time
	Reason         error
}

// Strategy is one authentication mechanism in the ordered chain. The
// first strategy that supports a request decides it; a supporting
// strategy that fails is terminal, the pipeline never retries with the
// next one.
type Strategy interface {
	Supports(req Request) bool
	Authenticate(ctx context.Context, req Request) Decision
}

// Pipeline evaluates strategies in a fixed order. Precedence is a
// correctness invariant: public bypass runs before login, login before
// the generic token check.
type Pipeline struct {
	strategies []Strategy
}

// NewPipeline assembles the chain in the order given.
func NewPipeline(strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies}
}

// Authenticate runs the chain. Requests no strategy supports are
// rejected with ErrMissingCredentials.
func (p *Pipeline) Authenticate(ctx context.Context, req Request) Decision {
	for _, s := range p.strategies {
		if s.Supports(req) {
			return s.Authenticate(ctx, req)
		}
	}
	return rejected(ErrMissingCredentials)
}

func rejected(reason error) Decision {
	return Decision{Outcome: OutcomeRejected, Reason: reason}
}

// PathMatcher matches request paths against configured public paths.
type PathMatcher struct {
	exact    []string
	prefixes []string
}

// NewPathMatcher builds a matcher from exact paths and path prefixes.
func NewPathMatcher(exact, prefixes []string) *PathMatcher {
	return &PathMatcher{exact: exact, prefixes: prefixes}
}

// Matches reports whether the path is public.
func (m *PathMatcher) Matches(path string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.exact {
		if path == p {
			return true
		}
	}
	for _, prefix := range m.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

type publicBypass struct {
	matcher *PathMatcher
}

// PublicBypass lets requests to public paths through anonymously,
// skipping every other check.
func PublicBypass(matcher *PathMatcher) Strategy {
	return &publicBypass{matcher: matcher}
}

func (s *publicBypass) Supports(req Request) bool {
	return s.matcher.Matches(req.Path)
}

func (s *publicBypass) Authenticate(ctx context.Context, req Request) Decision {
	return Decision{Outcome: OutcomeAnonymous}
}

type credentialLogin struct {
	loginPath string
	verifier  *CredentialVerifier
	tokens    *TokenService
}

// CredentialLogin handles login submissions: it verifies the credential
// and issues a fresh token on success.
func CredentialLogin(loginPath string, verifier *CredentialVerifier, tokens *TokenService) Strategy {
	return &credentialLogin{loginPath: loginPath, verifier: verifier, tokens: tokens}
}

func (s *credentialLogin) Supports(req Request) bool {
	return req.Method == http.MethodPost && req.Path == s.loginPath
}

func (s *credentialLogin) Authenticate(ctx context.Context, req Request) Decision {
	if req.Credential == nil {
		return rejected(ErrMissingCredentials)
	}
	id, err := s.verifier.Verify(ctx, req.Credential.Username, req.Credential.Password)
	if err != nil {
		return rejected(err)
	}
	token, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		return rejected(err)
	}
	return Decision{
		Outcome:        OutcomeAuthenticated,
		Identity:       id,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}
}

type bearerToken struct {
	tokens *TokenService
}

// BearerToken restores the identity encoded in a presented token. The
// identity comes entirely from the verified claims; no store lookup.
func BearerToken(tokens *TokenService) Strategy {
	return &bearerToken{tokens: tokens}
}

func (s *bearerToken) Supports(req Request) bool {
	return req.BearerToken != ""
}

func (s *bearerToken) Authenticate(ctx context.Context, req Request) Decision {
	id, err := s.tokens.Verify(req.BearerToken)
	if err != nil {
		return rejected(err)
	}
	return Decision{Outcome: OutcomeAuthenticated, Identity: id}
}
