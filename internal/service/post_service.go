package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/dto"
	"github.com/saurav0523/liaplusAI-Backend/internal/repository"
	"github.com/saurav0523/liaplusAI-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostService manages posts. Access control happens in the guards before
// any method is called.
type PostService interface {
	List(ctx context.Context, query dto.ListPostsQuery) ([]*domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Create(ctx context.Context, authorID string, req *dto.CreatePostRequest) (*domain.Post, error)
	Update(ctx context.Context, id string, req *dto.UpdatePostRequest) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
}

type postService struct {
	repo repository.PostRepository
}

// NewPostService creates a new PostService
func NewPostService(repo repository.PostRepository) PostService {
	return &postService{repo: repo}
}

func (s *postService) List(ctx context.Context, query dto.ListPostsQuery) ([]*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.list")
	defer span.End()

	query.Normalize()
	posts, err := s.repo.List(ctx, query.Limit, query.Offset)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(posts)))
	span.SetStatus(codes.Ok, "")
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.get")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", id))
	if !validID(id) {
		return nil, domain.ErrPostNotFound
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return post, nil
}

func (s *postService) Create(ctx context.Context, authorID string, req *dto.CreatePostRequest) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.create")
	defer span.End()

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	switch {
	case title == "":
		return nil, domain.MissingField("title")
	case content == "":
		return nil, domain.MissingField("content")
	}

	post := &domain.Post{
		ID:       uuid.New().String(),
		Title:    title,
		Content:  content,
		AuthorID: authorID,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("post_id", post.ID))
	span.SetStatus(codes.Ok, "")
	return post, nil
}

func (s *postService) Update(ctx context.Context, id string, req *dto.UpdatePostRequest) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.update")
	defer span.End()

	if !validID(id) {
		return nil, domain.ErrPostNotFound
	}
	if req.Title == nil && req.Content == nil {
		return nil, domain.ErrEmptyUpdate
	}

	var update domain.PostUpdate
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.MissingField("title")
		}
		update.Title = &title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, domain.MissingField("content")
		}
		update.Content = &content
	}

	post, err := s.repo.Update(ctx, id, update)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.post.delete")
	defer span.End()

	if !validID(id) {
		return domain.ErrPostNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		fail(span, err)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// validID rejects ids Postgres would refuse to cast to uuid
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
