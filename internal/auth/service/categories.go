package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/internal/auth/store"
	"github.com/aussiebroadwan/tollgate/pkg/idx"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

// ListCategories is open to any authenticated session.
func (s *AuthService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	list, err := s.Store.Categories().ListCategories(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list categories", slog.Any("error", err))
		return nil, dependency(err)
	}
	return list, nil
}

// CreateCategory requires an admin session. The role check runs before
// field validation so non-admins always get ROLE_REQUIRED.
func (s *AuthService) CreateCategory(ctx context.Context, sess domain.Session, name, label string) (domain.Category, error) {
	log := slogx.FromContext(ctx)

	if err := RequireAdmin(sess); err != nil {
		log.Warn("non-admin attempted to create category", slog.String("user_id", sess.UserID))
		return domain.Category{}, err
	}

	name = strings.TrimSpace(name)
	label = strings.TrimSpace(label)
	if name == "" || label == "" {
		return domain.Category{}, errMissingCategoryFields
	}

	now := s.now()
	c := domain.Category{
		ID:        idx.NewAt(now).String(),
		Name:      name,
		Label:     label,
		CreatedBy: sess.UserID,
		CreatedAt: now,
	}
	if err := s.Store.Categories().CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Category{}, ErrCategoryExists
		}
		log.Error("failed to create category", slog.Any("error", err))
		return domain.Category{}, dependency(err)
	}

	log.Info("category created", slog.String("category_id", c.ID), slog.String("name", c.Name))
	return c, nil
}
