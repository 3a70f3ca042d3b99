package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wishop.org/authd/internal/auth"
)

// handleUserRoles reports the role names a user carries, derived from
// the ROLE_ prefixed authorities on the stored record.
func (a *API) handleUserRoles(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermReadUser) {
		return
	}
	user, err := a.lookupUser(w, r)
	if user == nil || err != nil {
		return
	}
	roles := []string{}
	for _, authority := range user.Authorities {
		if strings.HasPrefix(authority, auth.RolePrefix) {
			roles = append(roles, authority)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": user.Username,
		"roles":    roles,
	})
}

// handleUserPermissions reports the non-role authorities of a user:
// permission keys from assigned roles plus direct grants.
func (a *API) handleUserPermissions(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermReadUser) {
		return
	}
	user, err := a.lookupUser(w, r)
	if user == nil || err != nil {
		return
	}
	permissions := []string{}
	for _, authority := range user.Authorities {
		if !strings.HasPrefix(authority, auth.RolePrefix) {
			permissions = append(permissions, authority)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":    user.Username,
		"permissions": permissions,
	})
}

func (a *API) lookupUser(w http.ResponseWriter, r *http.Request) (*auth.StoredUser, error) {
	username := chi.URLParam(r, "username")
	user, err := a.users.FindByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(w, r, http.StatusNotFound, "user not found")
			return nil, err
		}
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return nil, err
	}
	return user, nil
}
