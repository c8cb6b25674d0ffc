package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
)

type categoriesRepo struct {
	db *sql.DB
}

func (r *categoriesRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, label, created_by, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var (
			c         domain.Category
			createdBy sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Label, &createdBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedBy = createdBy.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoriesRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, label, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Label, mapStringNull(c.CreatedBy), c.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}
