package role

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service validates administrative operations before they touch the
// store. Every method maps bad input to ErrInvalidInput and missing
// roles to ErrNotFound; the HTTP layer translates those to 400/404.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("role store is required")
	}
	return &Service{store: store}, nil
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

// ListPage returns one page of roles. Pages are 1-based; limit must be
// within [MinPageLimit, MaxPageLimit].
func (s *Service) ListPage(ctx context.Context, page, limit int) ([]Role, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}
	if limit < MinPageLimit || limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between %d and %d", ErrInvalidInput, MinPageLimit, MaxPageLimit)
	}
	return s.store.ListRolesPage(ctx, (page-1)*limit, limit)
}

// Get returns the role with the given id.
func (s *Service) Get(ctx context.Context, id string) (Role, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Role{}, fmt.Errorf("%w: role id is required", ErrInvalidInput)
	}
	return s.store.GetRole(ctx, id)
}

// Delete removes the role. Deleting an unknown id is ErrNotFound, never
// a crash; repeating a successful delete therefore also yields
// ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: role id is required", ErrInvalidInput)
	}
	return s.store.DeleteRole(ctx, id)
}

// Save creates the role or updates it when the id already exists.
func (s *Service) Save(ctx context.Context, r Role) (Role, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	r.ID = strings.TrimSpace(r.ID)
	r.Description = strings.TrimSpace(r.Description)
	r.Permissions = dedupe(r.Permissions)
	return s.store.UpsertRole(ctx, r)
}

// AssignPermissions replaces the role's permission set with the supplied
// set. The role must exist.
func (s *Service) AssignPermissions(ctx context.Context, roleID string, permissions []string) (Role, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return Role{}, fmt.Errorf("%w: role id is required", ErrInvalidInput)
	}
	return s.store.ReplaceRolePermissions(ctx, roleID, dedupe(permissions))
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
