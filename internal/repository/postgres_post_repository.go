package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

const postColumns = `id, title, content, author_id, created_at, updated_at`

// PostgresPostRepository implements PostRepository using PostgreSQL
type PostgresPostRepository struct {
	db DBTX
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db DBTX) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// List returns posts newest first
func (r *PostgresPostRepository) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, domain.Internal("list posts", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, domain.Internal("scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal("list posts", err)
	}
	return posts, nil
}

// Create inserts a post with a caller-assigned id
func (r *PostgresPostRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, post.ID, post.Title, post.Content, post.AuthorID).
		Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return domain.Internal("create post", err)
	}
	return nil
}

// GetByID returns domain.ErrPostNotFound when absent
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, domain.Internal("get post", err)
	}
	return post, nil
}

// Update patches title and/or content
func (r *PostgresPostRepository) Update(ctx context.Context, id string, update domain.PostUpdate) (*domain.Post, error) {
	query := `
		UPDATE posts
		SET title = COALESCE($2, title), content = COALESCE($3, content), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + postColumns
	post, err := scanPost(r.db.QueryRow(ctx, query, id, update.Title, update.Content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, domain.Internal("update post", err)
	}
	return post, nil
}

// Delete removes a post
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return domain.Internal("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
