// Package repository persists posts.
package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/posts/internal/model"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	// All returns every post, most recently modified first.
	All(ctx context.Context) ([]model.Post, error)
	// Get returns ErrPostNotFound when no post has the given id.
	Get(ctx context.Context, id model.PostID) (*model.Post, error)
	// Save inserts the post, or updates it when the id already exists.
	Save(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id model.PostID) error
	Count(ctx context.Context) (int, error)

	NewPost() *model.Post
}

var repoLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}
