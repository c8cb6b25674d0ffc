package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
)

const userColumns = `id, username, password_hash, role, two_factor_secret, two_factor_enabled, created_at`

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, two_factor_secret, two_factor_enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Username,
		u.PasswordHash,
		string(u.Role),
		mapOptionalString(u.TwoFactorSecret),
		u.TwoFactorEnabled,
		u.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u      domain.User
		role   string
		secret sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &secret, &u.TwoFactorEnabled, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.TwoFactorSecret = mapNullStringPtr(secret)
	return u, nil
}
