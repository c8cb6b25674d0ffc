package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/jmoiron/sqlx"
)

type userRow struct {
	ID               string         `db:"id"`
	Username         string         `db:"username"`
	PasswordHash     string         `db:"password_hash"`
	Role             string         `db:"role"`
	TwoFactorSecret  sql.NullString `db:"two_factor_secret"`
	TwoFactorEnabled bool           `db:"two_factor_enabled"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	u := domain.User{
		ID:               r.ID,
		Username:         r.Username,
		PasswordHash:     r.PasswordHash,
		Role:             domain.Role(r.Role),
		TwoFactorEnabled: r.TwoFactorEnabled,
		CreatedAt:        r.CreatedAt,
	}
	if r.TwoFactorSecret.Valid {
		secret := r.TwoFactorSecret.String
		u.TwoFactorSecret = &secret
	}
	return u
}

type usersRepo struct {
	db *sqlx.DB
}

const selectUser = `SELECT id, username, password_hash, role, two_factor_secret, two_factor_enabled, created_at FROM users`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, selectUser+` WHERE id = $1`, id); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, selectUser+` WHERE username = $1`, username); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	row := userRow{
		ID:               u.ID,
		Username:         u.Username,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt.UTC(),
	}
	if u.TwoFactorSecret != nil {
		row.TwoFactorSecret = sql.NullString{String: *u.TwoFactorSecret, Valid: true}
	}

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, two_factor_secret, two_factor_enabled, created_at)
		 VALUES (:id, :username, :password_hash, :role, :two_factor_secret, :two_factor_enabled, :created_at)`,
		row)
	return mapConstraint(err)
}
