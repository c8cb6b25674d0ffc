package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this and expose sub-repositories per table.
type Store interface {
	Users() Users
	Categories() Categories

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login and the registration
	// availability check.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A unique violation on username returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error
}

type Categories interface {
	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// CreateCategory inserts a category. A duplicate name returns
	// ErrAlreadyExists.
	CreateCategory(ctx context.Context, c domain.Category) error
}
