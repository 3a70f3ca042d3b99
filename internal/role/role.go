// Package role implements the role/permission administration service
// behind the /v1 endpoints.
package role

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("role: invalid input")
	ErrNotFound     = errors.New("role: not found")
	ErrConflict     = errors.New("role: name already in use")
)

// Role groups permission keys under a name. Permissions are an opaque
// set; assignment always replaces the whole set.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Page bounds for paged listings. Limits above MaxPageLimit are refused
// rather than clamped.
const (
	MinPageLimit = 1
	MaxPageLimit = 250
)

// Store is the persistence contract for roles. Implementations return
// ErrNotFound for missing roles; writes are atomic per record.
type Store interface {
	ListRoles(ctx context.Context) ([]Role, error)
	ListRolesPage(ctx context.Context, offset, limit int) ([]Role, error)
	GetRole(ctx context.Context, id string) (Role, error)
	DeleteRole(ctx context.Context, id string) error
	UpsertRole(ctx context.Context, r Role) (Role, error)
	ReplaceRolePermissions(ctx context.Context, roleID string, permissions []string) (Role, error)
}
