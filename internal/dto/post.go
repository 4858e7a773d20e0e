package dto

// CreatePostRequest represents a post creation request
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest is a partial update; nil fields are left unchanged
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListPostsQuery holds pagination parameters
type ListPostsQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

const (
	DefaultPostLimit = 20
	MaxPostLimit     = 100
)

// Normalize clamps pagination to sane bounds
func (q *ListPostsQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultPostLimit
	}
	if q.Limit > MaxPostLimit {
		q.Limit = MaxPostLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}
