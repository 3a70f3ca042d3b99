package pg

import (
	"context"
	"database/sql"
	"errors"

	"wishop.org/authd/internal/auth"
)

var _ auth.UserStore = (*Store)(nil)

// FindByUsername loads the user row and resolves the full authority
// set: one ROLE_ tag per assigned role, the union of those roles'
// permission keys, and any directly granted authorities. The set is
// read fresh on every call so logins always see current assignments.
func (s *Store) FindByUsername(ctx context.Context, username string) (*auth.StoredUser, error) {
	var u auth.StoredUser
	err := s.db.QueryRowContext(ctx, `
		select id, username, password_hash
		from users
		where username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		select 'ROLE_' || upper(r.name) as authority
		from user_roles ur
		join roles r on r.id = ur.role_id
		where ur.user_id = $1
		union
		select rp.permission
		from user_roles ur
		join role_permissions rp on rp.role_id = ur.role_id
		where ur.user_id = $1
		union
		select authority
		from user_authorities
		where user_id = $1
		order by authority
	`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		u.Authorities = append(u.Authorities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &u, nil
}
