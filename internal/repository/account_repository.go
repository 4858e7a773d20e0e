package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

// DBTX is the query surface shared by *pgxpool.Pool, pgx.Tx and pgxmock
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountStore owns durable account records. Uniqueness of email and
// single use of verification tokens are enforced here, atomically.
type AccountStore interface {
	// FindByEmail returns domain.ErrAccountNotFound when absent
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindByID returns domain.ErrAccountNotFound when absent
	FindByID(ctx context.Context, id string) (*domain.Account, error)

	// FindByVerificationToken returns domain.ErrTokenNotFound when no
	// unverified account holds tokenHash
	FindByVerificationToken(ctx context.Context, tokenHash string) (*domain.Account, error)

	// InsertUnique stores a new account and fills its ID and timestamps.
	// Returns domain.ErrEmailExists if the email is taken.
	InsertUnique(ctx context.Context, account *domain.Account) error

	// MarkVerified clears tokenHash and sets is_verified in one step.
	// Returns domain.ErrTokenNotFound if the token is unknown or used.
	MarkVerified(ctx context.Context, tokenHash string) (*domain.Account, error)

	// UpdateFields applies mutable field changes
	UpdateFields(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error)
}

// PostRepository stores posts
type PostRepository interface {
	List(ctx context.Context, limit, offset int) ([]*domain.Post, error)
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, id string, update domain.PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
}
