// Package memory provides a mutex-guarded in-memory implementation of
// the user and role stores. It backs tests and the development mode of
// cmd/authd when no database DSN is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wishop.org/authd/internal/auth"
	"wishop.org/authd/internal/ids"
	"wishop.org/authd/internal/role"
)

type userRecord struct {
	id           string
	username     string
	passwordHash string
	roleNames    []string
	// extra authorities granted directly, outside role membership
	authorities []string
}

// Store keeps users and roles in process memory. All methods are safe
// for concurrent use; each write is atomic per record.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userRecord // keyed by username
	roles map[string]role.Role   // keyed by role id
	now   func() time.Time
}

var (
	_ auth.UserStore = (*Store)(nil)
	_ role.Store     = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]*userRecord),
		roles: make(map[string]role.Role),
		now:   time.Now,
	}
}

// CreateUser registers a user with a bcrypt-hashed password and the
// given role names. Extra authorities may be attached directly.
func (s *Store) CreateUser(username, password string, roleNames []string, authorities ...string) error {
	username = strings.TrimSpace(username)
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = &userRecord{
		id:           ids.New(),
		username:     username,
		passwordHash: hash,
		roleNames:    append([]string(nil), roleNames...),
		authorities:  append([]string(nil), authorities...),
	}
	return nil
}

// FindByUsername resolves the stored user and the full authority set:
// a ROLE_ tag per assigned role, the union of those roles' permission
// keys, and any directly granted authorities.
func (s *Store) FindByUsername(_ context.Context, username string) (*auth.StoredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[strings.TrimSpace(username)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	var authorities []string
	authorities = append(authorities, rec.authorities...)
	for _, name := range rec.roleNames {
		r, ok := s.roleByName(name)
		if !ok {
			continue
		}
		authorities = append(authorities, auth.RolePrefix+strings.ToUpper(r.Name))
		authorities = append(authorities, r.Permissions...)
	}
	return &auth.StoredUser{
		ID:           rec.id,
		Username:     rec.username,
		PasswordHash: rec.passwordHash,
		Authorities:  authorities,
	}, nil
}

// roleByName scans for a role with the given name. Callers hold s.mu.
func (s *Store) roleByName(name string) (role.Role, bool) {
	for _, r := range s.roles {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return role.Role{}, false
}

func (s *Store) ListRoles(_ context.Context) ([]role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedRoles(), nil
}

func (s *Store) ListRolesPage(_ context.Context, offset, limit int) ([]role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedRoles()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *Store) GetRole(_ context.Context, id string) (role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return role.Role{}, role.ErrNotFound
	}
	return cloneRole(r), nil
}

func (s *Store) DeleteRole(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return role.ErrNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *Store) UpsertRole(_ context.Context, r role.Role) (role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if r.ID == "" {
		r.ID = ids.New()
	}
	if existing, ok := s.roles[r.ID]; ok {
		r.CreatedAt = existing.CreatedAt
	} else {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.roles[r.ID] = cloneRole(r)
	return r, nil
}

func (s *Store) ReplaceRolePermissions(_ context.Context, roleID string, permissions []string) (role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[roleID]
	if !ok {
		return role.Role{}, role.ErrNotFound
	}
	r.Permissions = append([]string(nil), permissions...)
	r.UpdatedAt = s.now().UTC()
	s.roles[roleID] = r
	return cloneRole(r), nil
}

// sortedRoles returns roles ordered by id; ULIDs sort by creation time.
// Callers hold s.mu.
func (s *Store) sortedRoles() []role.Role {
	out := make([]role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, cloneRole(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneRole(r role.Role) role.Role {
	r.Permissions = append([]string(nil), r.Permissions...)
	return r
}
