package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

const emailUniqueIndex = "accounts_email_lower_uidx"

const accountColumns = `id, name, email, role, password_hash, is_verified, verification_token_hash, created_at, updated_at`

// PostgresAccountRepository implements AccountStore using PostgreSQL
type PostgresAccountRepository struct {
	db DBTX
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db DBTX) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// FindByEmail retrieves an account by email, case-insensitively
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`
	return r.queryOne(ctx, "find account by email", domain.ErrAccountNotFound, query, email)
}

// FindByID retrieves an account by id
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.queryOne(ctx, "find account by id", domain.ErrAccountNotFound, query, id)
}

// FindByVerificationToken retrieves the unverified account holding tokenHash
func (r *PostgresAccountRepository) FindByVerificationToken(ctx context.Context, tokenHash string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE verification_token_hash = $1`
	return r.queryOne(ctx, "find account by token", domain.ErrTokenNotFound, query, tokenHash)
}

// InsertUnique inserts the account, relying on the unique email index
func (r *PostgresAccountRepository) InsertUnique(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (name, email, role, password_hash, is_verified, verification_token_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		account.Name,
		account.Email,
		string(account.Role),
		account.PasswordHash,
		account.IsVerified,
		account.VerificationTokenHash,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, emailUniqueIndex) {
			return domain.ErrEmailExists
		}
		return domain.Internal("insert account", err)
	}
	return nil
}

// MarkVerified consumes tokenHash in a single UPDATE so concurrent calls
// cannot both succeed
func (r *PostgresAccountRepository) MarkVerified(ctx context.Context, tokenHash string) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET is_verified = TRUE, verification_token_hash = NULL, updated_at = NOW()
		WHERE verification_token_hash = $1 AND is_verified = FALSE
		RETURNING ` + accountColumns
	return r.queryOne(ctx, "mark account verified", domain.ErrTokenNotFound, query, tokenHash)
}

// UpdateFields updates the account name. Role is never written.
func (r *PostgresAccountRepository) UpdateFields(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}
	query := `
		UPDATE accounts
		SET name = COALESCE($2, name), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	return r.queryOne(ctx, "update account", domain.ErrAccountNotFound, query, id, update.Name)
}

func (r *PostgresAccountRepository) queryOne(ctx context.Context, op string, notFound error, query string, args ...any) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, domain.Internal(op, err)
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		role    string
	)
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&role,
		&account.PasswordHash,
		&account.IsVerified,
		&account.VerificationTokenHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Role = domain.Role(role)
	return &account, nil
}

// isUniqueViolation reports a 23505 on the given constraint; an empty
// constraint matches any unique violation
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
