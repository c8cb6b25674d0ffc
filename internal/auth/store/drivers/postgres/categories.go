package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/jmoiron/sqlx"
)

type categoryRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Label     string         `db:"label"`
	CreatedBy sql.NullString `db:"created_by"`
	CreatedAt time.Time      `db:"created_at"`
}

type categoriesRepo struct {
	db *sqlx.DB
}

func (r *categoriesRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, label, created_by, created_at FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Category{
			ID:        row.ID,
			Name:      row.Name,
			Label:     row.Label,
			CreatedBy: row.CreatedBy.String,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *categoriesRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	createdBy := sql.NullString{String: c.CreatedBy, Valid: c.CreatedBy != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, label, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Label, createdBy, c.CreatedAt.UTC())
	return mapConstraint(err)
}
