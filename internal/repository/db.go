package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/debemdeboas/posts/internal/db"
	"github.com/debemdeboas/posts/internal/model"
	"github.com/debemdeboas/posts/internal/util"
	"github.com/debemdeboas/posts/internal/util/compression"
)

const postColumns = `id, title, slug, body, content_hash, created_at, modified_at`

type DBPostRepository struct { // implements PostRepository
	db         db.DB
	compressor compression.Compressor

	now func() time.Time
}

func NewDBPostRepository(db db.DB) *DBPostRepository {
	return &DBPostRepository{
		db:         db,
		compressor: compression.ZstdCompressor{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *DBPostRepository) NewPost() *model.Post {
	now := r.now()

	return &model.Post{
		ID: model.PostID(uuid.New().String()),

		CreatedDate:  now,
		ModifiedDate: now,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DBPostRepository) scanPost(row rowScanner) (*model.Post, error) {
	var post model.Post
	var compressed []byte
	var hash sql.NullString

	err := row.Scan(&post.ID, &post.Title, &post.Slug, &compressed, &hash, &post.CreatedDate, &post.ModifiedDate)
	if err != nil {
		return nil, err
	}

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing post %s: %w", post.ID, err)
	}
	post.Body = string(content)
	post.ContentHash = hash.String

	return &post, nil
}

func (r *DBPostRepository) All(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY modified_at DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

func (r *DBPostRepository) Get(ctx context.Context, id model.PostID) (*model.Post, error) {
	row := r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	post, err := r.scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading post %s: %w", id, err)
	}

	return post, nil
}

func (r *DBPostRepository) Save(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		return errors.New("post has no id")
	}

	compressed, err := r.compressor.Compress([]byte(post.Body))
	if err != nil {
		return fmt.Errorf("error compressing content: %w", err)
	}

	post.ContentHash = util.ContentHash(compressed)
	post.ModifiedDate = r.now()
	if post.CreatedDate.IsZero() {
		post.CreatedDate = post.ModifiedDate
	}

	res, err := r.db.Exec(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    slug = excluded.slug,
    body = excluded.body,
    content_hash = excluded.content_hash,
    modified_at = excluded.modified_at`,
		post.ID, post.Title, post.Slug, compressed, post.ContentHash, post.CreatedDate, post.ModifiedDate,
	)
	if err != nil {
		return fmt.Errorf("error saving post: %w", err)
	}

	repoLogger.Debug().
		Str("post_id", string(post.ID)).
		Str("content_hash", post.ContentHash).
		Interface("result", res).
		Msg("Post saved")

	return nil
}

func (r *DBPostRepository) Delete(ctx context.Context, id model.PostID) error {
	res, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting post %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting post %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}

	repoLogger.Debug().Str("post_id", string(id)).Msg("Post deleted")
	return nil
}

func (r *DBPostRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", err)
	}
	return n, nil
}
