// Package form validates submitted post fields.
package form

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"github.com/debemdeboas/posts/internal/model"
	"github.com/debemdeboas/posts/internal/repository"
)

const (
	FieldTitle = "title"
	FieldBody  = "body"

	MaxTitleLength = 200
	MaxBodyLength  = 100_000
)

var ErrInvalidForm = errors.New("form is not valid")

// PostForm binds submitted values to a post. A form built without values is
// unbound: it only carries the instance's fields for display and is never valid.
type PostForm struct {
	Title string
	Body  string

	Errors map[string]string

	bound    bool
	checked  bool
	instance *model.Post
}

// NewPostForm builds a form over values. instance is the post being edited,
// or nil when creating.
func NewPostForm(values url.Values, instance *model.Post) *PostForm {
	f := &PostForm{
		Errors:   make(map[string]string),
		instance: instance,
	}

	if values != nil {
		f.bound = true
		f.Title = strings.TrimSpace(values.Get(FieldTitle))
		f.Body = strings.TrimSpace(strings.ReplaceAll(values.Get(FieldBody), "\r\n", "\n"))
	} else if instance != nil {
		f.Title = instance.Title
		f.Body = instance.Body
	}

	return f
}

func (f *PostForm) IsBound() bool {
	return f.bound
}

func (f *PostForm) IsValid() bool {
	if !f.bound {
		return false
	}
	if !f.checked {
		f.validate()
		f.checked = true
	}
	return len(f.Errors) == 0
}

func (f *PostForm) validate() {
	switch n := utf8.RuneCountInString(f.Title); {
	case n == 0:
		f.Errors[FieldTitle] = "This field is required."
	case n > MaxTitleLength:
		f.Errors[FieldTitle] = "Ensure this value has at most 200 characters."
	}

	switch n := utf8.RuneCountInString(f.Body); {
	case n == 0:
		f.Errors[FieldBody] = "This field is required."
	case n > MaxBodyLength:
		f.Errors[FieldBody] = "Ensure this value has at most 100000 characters."
	}
}

// Error returns the message for field, or "".
func (f *PostForm) Error(field string) string {
	return f.Errors[field]
}

// Save writes the validated fields to the instance, or to a new post from
// repo when the form has no instance, and persists it.
func (f *PostForm) Save(ctx context.Context, repo repository.PostRepository) (*model.Post, error) {
	if !f.IsValid() {
		return nil, ErrInvalidForm
	}

	post := f.instance
	if post == nil {
		post = repo.NewPost()
	}

	post.Title = f.Title
	post.Body = f.Body
	post.Slug = slug.Make(f.Title)

	if err := repo.Save(ctx, post); err != nil {
		return nil, err
	}

	f.instance = post
	return post, nil
}
