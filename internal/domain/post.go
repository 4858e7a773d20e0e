package domain

import "time"

// Post is a role-gated resource managed by admins
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostUpdate holds patchable post fields; nil means unchanged
type PostUpdate struct {
	Title   *string
	Content *string
}
