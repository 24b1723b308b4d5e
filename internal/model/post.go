// Package model defines core data structures and types for the blog application.
package model

import (
	"html/template"
	"time"

	"github.com/debemdeboas/posts/internal/routes"
)

type PostID string

type Post struct {
	ID PostID

	Title string
	Slug  string
	Body  string

	// Rendered body. Never persisted.
	Content template.HTML

	// Hash of the stored (compressed) body, used to detect changes.
	ContentHash string

	CreatedDate  time.Time
	ModifiedDate time.Time
}

func (p Post) EditURL() string {
	return routes.PostEdit(string(p.ID))
}

func (p Post) DeleteURL() string {
	return routes.PostDelete(string(p.ID))
}
