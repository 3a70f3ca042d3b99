// Package auth implements the stateless authentication and authorization
// core: credential verification, token issuance/verification, the
// per-request authentication pipeline and the authorization evaluator.
package auth

import (
	"sort"
	"strings"
)

// Identity is the authenticated caller for the duration of one request.
// It is derived either from the user store (login) or from verified token
// claims, and is never mutated afterwards. A nil *Identity means the
// request is anonymous.
type Identity struct {
	UserID      string
	Username    string
	Authorities []string
}

// HasAuthority reports whether the identity holds the named authority.
// Matching is exact: authority tags are opaque strings, no hierarchy and
// no wildcards.
func (id *Identity) HasAuthority(name string) bool {
	if id == nil {
		return false
	}
	for _, a := range id.Authorities {
		if a == name {
			return true
		}
	}
	return false
}

// Credential is a username/password pair submitted on a login attempt.
// It is discarded after verification and never stored.
type Credential struct {
	Username string
	Password string
}

// normalizeAuthorities trims, deduplicates and sorts authority tags.
// Case is preserved: tags are opaque.
func normalizeAuthorities(authorities []string) []string {
	if len(authorities) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(authorities))
	out := make([]string, 0, len(authorities))
	for _, a := range authorities {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
