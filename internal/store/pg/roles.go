package pg

import (
	"context"
	"database/sql"
	"errors"

	"wishop.org/authd/internal/ids"
	"wishop.org/authd/internal/role"
)

var _ role.Store = (*Store)(nil)

const roleColumns = `id, name, description, created_at, updated_at`

func (s *Store) ListRoles(ctx context.Context) ([]role.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+roleColumns+`
		from roles
		order by id
	`)
	if err != nil {
		return nil, err
	}
	roles, err := scanRoles(rows)
	if err != nil {
		return nil, err
	}
	return s.attachPermissions(ctx, roles)
}

func (s *Store) ListRolesPage(ctx context.Context, offset, limit int) ([]role.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+roleColumns+`
		from roles
		order by id
		offset $1 limit $2
	`, offset, limit)
	if err != nil {
		return nil, err
	}
	roles, err := scanRoles(rows)
	if err != nil {
		return nil, err
	}
	return s.attachPermissions(ctx, roles)
}

func (s *Store) GetRole(ctx context.Context, id string) (role.Role, error) {
	var r role.Role
	err := s.db.QueryRowContext(ctx, `
		select `+roleColumns+`
		from roles
		where id = $1
	`, id).Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return role.Role{}, role.ErrNotFound
	}
	if err != nil {
		return role.Role{}, err
	}
	roles, err := s.attachPermissions(ctx, []role.Role{r})
	if err != nil {
		return role.Role{}, err
	}
	return roles[0], nil
}

func (s *Store) DeleteRole(ctx context.Context, id string) error {
	// role_permissions and user_roles rows go with the role via
	// ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `delete from roles where id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return role.ErrNotFound
	}
	return nil
}

func (s *Store) UpsertRole(ctx context.Context, r role.Role) (role.Role, error) {
	if r.ID == "" {
		r.ID = ids.New()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return role.Role{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		insert into roles (id, name, description)
		values ($1, $2, $3)
		on conflict (id) do update
			set name = excluded.name,
			    description = excluded.description,
			    updated_at = now()
		returning `+roleColumns+`
	`, r.ID, r.Name, r.Description).Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return role.Role{}, role.ErrConflict
		}
		return role.Role{}, err
	}
	if err := replacePermissionsTx(ctx, tx, r.ID, r.Permissions); err != nil {
		return role.Role{}, err
	}
	if err := tx.Commit(); err != nil {
		return role.Role{}, err
	}
	return r, nil
}

func (s *Store) ReplaceRolePermissions(ctx context.Context, roleID string, permissions []string) (role.Role, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return role.Role{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var r role.Role
	err = tx.QueryRowContext(ctx, `
		update roles
		set updated_at = now()
		where id = $1
		returning `+roleColumns+`
	`, roleID).Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return role.Role{}, role.ErrNotFound
	}
	if err != nil {
		return role.Role{}, err
	}
	if err := replacePermissionsTx(ctx, tx, roleID, permissions); err != nil {
		return role.Role{}, err
	}
	if err := tx.Commit(); err != nil {
		return role.Role{}, err
	}
	r.Permissions = append([]string(nil), permissions...)
	return r, nil
}

func replacePermissionsTx(ctx context.Context, tx *sql.Tx, roleID string, permissions []string) error {
	if _, err := tx.ExecContext(ctx, `delete from role_permissions where role_id = $1`, roleID); err != nil {
		return err
	}
	for _, p := range permissions {
		if _, err := tx.ExecContext(ctx, `
			insert into role_permissions (role_id, permission)
			values ($1, $2)
		`, roleID, p); err != nil {
			return err
		}
	}
	return nil
}

func scanRoles(rows *sql.Rows) ([]role.Role, error) {
	defer rows.Close()
	var result []role.Role
	for rows.Next() {
		var r role.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// attachPermissions loads permission keys for the given roles in one
// query and merges them in.
func (s *Store) attachPermissions(ctx context.Context, roles []role.Role) ([]role.Role, error) {
	if len(roles) == 0 {
		return roles, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		select role_id, permission
		from role_permissions
		order by role_id, permission
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := make(map[string][]string)
	for rows.Next() {
		var roleID, perm string
		if err := rows.Scan(&roleID, &perm); err != nil {
			return nil, err
		}
		perms[roleID] = append(perms[roleID], perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		roles[i].Permissions = perms[roles[i].ID]
	}
	return roles, nil
}
