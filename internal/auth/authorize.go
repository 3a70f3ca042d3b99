package auth

import "strings"

// Requirement is the statically declared authority an operation demands.
// Every operation must declare one; the zero Requirement denies all
// callers, so an operation added without a declaration fails closed.
type Requirement struct {
	Authority string
}

// RequireAuthority builds a requirement for the named authority.
func RequireAuthority(name string) Requirement {
	return Requirement{Authority: strings.TrimSpace(name)}
}

// Authorize decides whether the identity may perform an operation with
// the given requirement. Anonymous callers are always denied, and so is
// any operation whose requirement is empty.
func Authorize(id *Identity, req Requirement) error {
	if req.Authority == "" {
		return ErrForbidden
	}
	if id == nil {
		return ErrForbidden
	}
	if !id.HasAuthority(req.Authority) {
		return ErrForbidden
	}
	return nil
}
