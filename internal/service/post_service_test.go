package service

import (
	"context"
	"testing"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/dto"
	"github.com/saurav0523/liaplusAI-Backend/internal/repository/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorID = "00000000-0000-0000-0000-000000000001"

func strPtr(s string) *string { return &s }

func TestPostService_CreateAndList(t *testing.T) {
	svc := NewPostService(fake.NewPostRepository())
	ctx := context.Background()

	post, err := svc.Create(ctx, authorID, &dto.CreatePostRequest{Title: "  Hello ", Content: " World "})
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.Content)
	assert.Equal(t, authorID, post.AuthorID)
	assert.NotEmpty(t, post.ID)

	posts, err := svc.List(ctx, dto.ListPostsQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
}

func TestPostService_CreateValidation(t *testing.T) {
	svc := NewPostService(fake.NewPostRepository())

	_, err := svc.Create(context.Background(), authorID, &dto.CreatePostRequest{Title: " ", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.ErrorContains(t, err, "title")

	_, err = svc.Create(context.Background(), authorID, &dto.CreatePostRequest{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.ErrorContains(t, err, "content")
}

func TestPostService_Update(t *testing.T) {
	svc := NewPostService(fake.NewPostRepository())
	ctx := context.Background()

	post, err := svc.Create(ctx, authorID, &dto.CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		req  dto.UpdatePostRequest
		want error
	}{
		{name: "empty update", id: post.ID, req: dto.UpdatePostRequest{}, want: domain.ErrEmptyUpdate},
		{name: "blank title", id: post.ID, req: dto.UpdatePostRequest{Title: strPtr("  ")}, want: domain.ErrMissingField},
		{name: "bad id", id: "not-a-uuid", req: dto.UpdatePostRequest{Title: strPtr("x")}, want: domain.ErrPostNotFound},
		{name: "unknown id", id: "11111111-1111-1111-1111-111111111111", req: dto.UpdatePostRequest{Title: strPtr("x")}, want: domain.ErrPostNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.id, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	updated, err := svc.Update(ctx, post.ID, &dto.UpdatePostRequest{Content: strPtr(" new ")})
	require.NoError(t, err)
	assert.Equal(t, "t", updated.Title)
	assert.Equal(t, "new", updated.Content)
}

func TestPostService_Delete(t *testing.T) {
	svc := NewPostService(fake.NewPostRepository())
	ctx := context.Background()

	post, err := svc.Create(ctx, authorID, &dto.CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, post.ID))
	assert.ErrorIs(t, svc.Delete(ctx, post.ID), domain.ErrPostNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "123"), domain.ErrPostNotFound)
}

func TestPostService_Get(t *testing.T) {
	svc := NewPostService(fake.NewPostRepository())
	ctx := context.Background()

	post, err := svc.Create(ctx, authorID, &dto.CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)

	_, err = svc.Get(ctx, "00000000-0000-0000-0000-000000000099")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}
