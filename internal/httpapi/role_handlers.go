package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wishop.org/authd/internal/audit"
	"wishop.org/authd/internal/auth"
	"wishop.org/authd/internal/role"
)

func (a *API) handleListRoles(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermReadRole) {
		return
	}
	roles, err := a.roles.List(r.Context())
	if err != nil {
		a.handleRoleError(w, r, err)
		return
	}
	if roles == nil {
		roles = []role.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

func (a *API) handleListRolesPage(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermReadRole) {
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "page must be an integer")
		return
	}
	limit, err := strconv.Atoi(chi.URLParam(r, "limit"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}
	roles, err := a.roles.ListPage(r.Context(), page, limit)
	if err != nil {
		a.handleRoleError(w, r, err)
		return
	}
	if roles == nil {
		roles = []role.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

func (a *API) handleGetRole(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermReadRole) {
		return
	}
	found, err := a.roles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.handleRoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (a *API) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermDeleteRole) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.roles.Delete(r.Context(), id); err != nil {
		a.handleRoleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "role.delete", map[string]any{"role_id": id})
	w.WriteHeader(http.StatusNoContent)
}

type saveRoleRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (a *API) handleSaveRole(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermWriteRole) {
		return
	}
	var body saveRoleRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := a.roles.Save(r.Context(), role.Role{
		ID:          body.ID,
		Name:        body.Name,
		Description: body.Description,
		Permissions: body.Permissions,
	})
	if err != nil {
		a.handleRoleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "role.save", map[string]any{
		"role_id": saved.ID,
		"name":    saved.Name,
	})
	w.Header().Set("Location", "/v1/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

type assignPermissionsRequest struct {
	RoleID      string   `json:"role_id"`
	Permissions []string `json:"permissions"`
}

func (a *API) handleAssignPermissions(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuthority(w, r, auth.PermWriteRole) {
		return
	}
	var body assignPermissionsRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.roles.AssignPermissions(r.Context(), body.RoleID, body.Permissions)
	if err != nil {
		a.handleRoleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "role.assign_permissions", map[string]any{
		"role_id":     updated.ID,
		"permissions": updated.Permissions,
	})
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleRoleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, role.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, role.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "role not found")
	case errors.Is(err, role.ErrConflict):
		respondError(w, r, http.StatusConflict, "role already exists")
	default:
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}
