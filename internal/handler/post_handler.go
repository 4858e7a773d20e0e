package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/internal/authz"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/dto"
	"github.com/saurav0523/liaplusAI-Backend/internal/service"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	"github.com/saurav0523/liaplusAI-Backend/pkg/response"
)

// PostHandler handles post HTTP requests. Guards run before every method.
type PostHandler struct {
	postService service.PostService
	log         *logger.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService service.PostService, log *logger.Logger) *PostHandler {
	return &PostHandler{postService: postService, log: log}
}

// List returns posts, newest first
// GET /posts
func (h *PostHandler) List(c *gin.Context) {
	var query dto.ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, h.log, domain.ErrInvalidRequest)
		return
	}

	posts, err := h.postService.List(c.Request.Context(), query)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, posts)
}

// Get returns a single post
// GET /posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.postService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, post)
}

// Create adds a post authored by the caller
// POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, domain.ErrInvalidRequest)
		return
	}

	claims, ok := authz.ClaimsFrom(c.Request.Context())
	if !ok {
		writeError(c, h.log, domain.ErrUnauthenticated)
		return
	}

	post, err := h.postService.Create(c.Request.Context(), claims.SubjectID, &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Created(c, "Post created successfully", post)
}

// Update patches a post
// PATCH /posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, domain.ErrInvalidRequest)
		return
	}

	post, err := h.postService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessMessage(c, "Post updated successfully", post)
}

// Delete removes a post
// DELETE /posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessMessage(c, "Post deleted successfully", nil)
}
