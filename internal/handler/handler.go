// Package handler serves the post pages.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/posts/internal/cache"
	"github.com/debemdeboas/posts/internal/config"
	"github.com/debemdeboas/posts/internal/form"
	"github.com/debemdeboas/posts/internal/metrics"
	"github.com/debemdeboas/posts/internal/model"
	"github.com/debemdeboas/posts/internal/render"
	"github.com/debemdeboas/posts/internal/repository"
	"github.com/debemdeboas/posts/internal/routes"
)

const cacheKeyPrefix = "post_"

// CacheKey is the page cache key of a post's edit page.
func CacheKey(id model.PostID) string {
	return cacheKeyPrefix + string(id)
}

type Handler struct {
	repo     repository.PostRepository
	pages    cache.PageCache
	renderer *render.Renderer
	site     config.SiteConfig
	log      zerolog.Logger
}

func New(repo repository.PostRepository, pages cache.PageCache, renderer *render.Renderer, site config.SiteConfig, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		pages:    pages,
		renderer: renderer,
		site:     site,
		log:      log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(routes.HomePattern, h.Home)
	mux.HandleFunc(routes.PostsListPattern, h.List)
	mux.HandleFunc(routes.PostCreatePattern, h.Create)
	mux.HandleFunc(routes.PostEditPattern, h.Edit)
	mux.HandleFunc(routes.PostDeletePattern, h.Delete)
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	data := struct {
		*model.PageData
		Description string
	}{
		PageData:    model.NewPageData(r, h.site.Name, ""),
		Description: h.site.Description,
	}

	h.render(w, http.StatusOK, config.TemplateHome, data)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	posts, err := h.repo.All(r.Context())
	if err != nil {
		h.serverError(w, err, "Failed to list posts")
		return
	}

	for i := range posts {
		posts[i].Content = h.renderer.Markdown([]byte(posts[i].Body), posts[i].ContentHash)
	}

	data := struct {
		*model.PageData
		Posts []model.Post
	}{
		PageData: model.NewPageData(r, h.site.Name, "Posts"),
		Posts:    posts,
	}

	h.render(w, http.StatusOK, config.TemplateList, data)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.renderCreate(w, r, form.NewPostForm(nil, nil))
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f := form.NewPostForm(r.PostForm, nil)
		if !f.IsValid() {
			h.log.Debug().Any("errors", f.Errors).Msg("Rejected new post")
			http.Redirect(w, r, routes.PostCreate, http.StatusFound)
			return
		}

		post, err := f.Save(r.Context(), h.repo)
		if err != nil {
			h.serverError(w, err, "Failed to create post")
			return
		}

		h.log.Info().Str("id", string(post.ID)).Str("slug", post.Slug).Msg("Post created")
		http.Redirect(w, r, routes.PostsList, http.StatusFound)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) renderCreate(w http.ResponseWriter, r *http.Request, f *form.PostForm) {
	data := struct {
		*model.PageData
		Form *form.PostForm
	}{
		PageData: model.NewPageData(r, h.site.Name, "New post"),
		Form:     f,
	}

	h.render(w, http.StatusOK, config.TemplateCreate, data)
}

// Edit serves the edit page of a post. GET answers from the page cache when
// it holds the post's key and otherwise stores the page it returns. POST never
// touches the cache except to drop the key after a successful save.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	ctx := r.Context()
	post, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f := form.NewPostForm(r.PostForm, post)
		if !f.IsValid() {
			page, err := h.editPage(r, post, f)
			if err != nil {
				h.serverError(w, err, "Failed to render edit page")
				return
			}
			writeHTML(w, http.StatusUnprocessableEntity, page)
			return
		}

		if _, err := f.Save(ctx, h.repo); err != nil {
			h.serverError(w, err, "Failed to update post")
			return
		}
		h.clearPostCache(ctx, post.ID)

		h.log.Info().Str("id", string(post.ID)).Msg("Post updated")
		http.Redirect(w, r, routes.PostsList, http.StatusFound)
		return
	}

	key := CacheKey(post.ID)
	if page, ok := h.cachedPage(ctx, key); ok {
		writeHTML(w, http.StatusOK, page)
		return
	}

	page, err := h.editPage(r, post, form.NewPostForm(nil, post))
	if err != nil {
		h.serverError(w, err, "Failed to render edit page")
		return
	}

	if err := h.pages.Set(ctx, key, page); err != nil {
		metrics.IncPageCacheError("set")
		h.log.Warn().Err(err).Str("key", key).Msg("Failed to store page")
	}

	writeHTML(w, http.StatusOK, page)
}

func (h *Handler) editPage(r *http.Request, post *model.Post, f *form.PostForm) ([]byte, error) {
	data := struct {
		*model.PageData
		Post *model.Post
		Form *form.PostForm
	}{
		PageData: model.NewPageData(r, h.site.Name, "Edit "+post.Title),
		Post:     post,
		Form:     f,
	}

	return h.renderer.Page(config.TemplateEdit, data)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	ctx := r.Context()
	post, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		data := struct {
			*model.PageData
			Post *model.Post
		}{
			PageData: model.NewPageData(r, h.site.Name, "Delete "+post.Title),
			Post:     post,
		}

		h.render(w, http.StatusOK, config.TemplateDelete, data)
		return
	}

	err := h.repo.Delete(ctx, post.ID)
	if err != nil && !errors.Is(err, repository.ErrPostNotFound) {
		h.serverError(w, err, "Failed to delete post")
		return
	}
	h.clearPostCache(ctx, post.ID)

	h.log.Info().Str("id", string(post.ID)).Msg("Post deleted")
	http.Redirect(w, r, routes.PostsList, http.StatusFound)
}

// lookup fetches the post named by the path. It answers the request itself
// and reports false when there is nothing to serve.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*model.Post, bool) {
	id := model.PostID(r.PathValue(routes.PathID))

	post, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, repository.ErrPostNotFound) {
		http.Redirect(w, r, routes.PostsList, http.StatusFound)
		return nil, false
	}
	if err != nil {
		h.serverError(w, err, "Failed to read post")
		return nil, false
	}

	return post, true
}

// cachedPage treats a failing backend as a miss.
func (h *Handler) cachedPage(ctx context.Context, key string) ([]byte, bool) {
	page, ok, err := h.pages.Get(ctx, key)
	if err != nil {
		metrics.IncPageCacheError("get")
		h.log.Warn().Err(err).Str("key", key).Msg("Failed to read page cache")
		return nil, false
	}
	if !ok {
		metrics.IncPageCacheMiss()
		return nil, false
	}

	metrics.IncPageCacheHit()
	return page, true
}

func (h *Handler) clearPostCache(ctx context.Context, id model.PostID) {
	key := CacheKey(id)
	if err := h.pages.Delete(ctx, key); err != nil {
		metrics.IncPageCacheError("delete")
		h.log.Warn().Err(err).Str("key", key).Msg("Failed to clear page cache")
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	out, err := h.renderer.Page(page, data)
	if err != nil {
		h.serverError(w, err, "Failed to render "+page)
		return
	}
	writeHTML(w, status, out)
}

func (h *Handler) serverError(w http.ResponseWriter, err error, msg string) {
	h.log.Error().Err(err).Msg(msg)
	http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, status int, page []byte) {
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(status)
	w.Write(page)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
}
