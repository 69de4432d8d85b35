package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post model.Post) (model.Post, error) {
	if post.AuthorID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post payload")
	}
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}

	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(txCtx, `
INSERT INTO posts (author_id, content, visibility, likes_count, is_deleted, created_at, updated_at)
VALUES ($1, $2, $3, 0, FALSE, NOW(), NOW())
RETURNING id, created_at, updated_at
`, post.AuthorID, post.Content, post.Visibility).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		for i, url := range post.Images {
			if _, err := tx.Exec(txCtx, `
INSERT INTO post_images (post_id, position, url)
VALUES ($1, $2, $3)
`, post.ID, i, url); err != nil {
				return fmt.Errorf("insert post image: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return model.Post{}, err
	}

	return post, nil
}

func (r *PostRepo) FindByID(ctx context.Context, postID int64) (model.Post, error) {
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post id")
	}
	if r.pool == nil {
		return model.Post{}, ErrPostNotFound
	}

	var post model.Post
	err := r.pool.QueryRow(ctx, `
SELECT id, author_id, content, visibility, likes_count, is_deleted, created_at, updated_at
FROM posts
WHERE id = $1 AND is_deleted = FALSE
LIMIT 1
`, postID).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Content,
		&post.Visibility,
		&post.LikesCount,
		&post.IsDeleted,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("find post: %w", err)
	}

	images, err := r.imagesFor(ctx, post.ID)
	if err != nil {
		return model.Post{}, err
	}
	post.Images = images

	return post, nil
}

// ListPublic returns one page of public, non-deleted posts, newest first.
func (r *PostRepo) ListPublic(ctx context.Context, limit, offset int) ([]model.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if r.pool == nil {
		return []model.Post{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, author_id, content, visibility, likes_count, is_deleted, created_at, updated_at
FROM posts
WHERE is_deleted = FALSE AND visibility = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, enums.PostVisibilityPublic, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public posts: %w", err)
	}
	defer rows.Close()

	items := make([]model.Post, 0, limit)
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.Content,
			&post.Visibility,
			&post.LikesCount,
			&post.IsDeleted,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, post)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate posts: %w", rows.Err())
	}

	for i := range items {
		images, err := r.imagesFor(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Images = images
	}

	return items, nil
}

// ToggleLike flips the user's like on the post and adjusts the counter,
// flooring it at zero. Reports whether the post is liked afterwards.
func (r *PostRepo) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	if postID <= 0 || userID <= 0 {
		return false, fmt.Errorf("invalid post like payload")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	liked := false
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(txCtx, `
DELETE FROM post_likes
WHERE post_id = $1 AND user_id = $2
`, postID, userID)
		if err != nil {
			return fmt.Errorf("delete post like: %w", err)
		}

		if tag.RowsAffected() > 0 {
			if _, err := tx.Exec(txCtx, `
UPDATE posts
SET likes_count = GREATEST(likes_count - 1, 0), updated_at = NOW()
WHERE id = $1
`, postID); err != nil {
				return fmt.Errorf("decrement post likes: %w", err)
			}
			return nil
		}

		if _, err := tx.Exec(txCtx, `
INSERT INTO post_likes (post_id, user_id)
VALUES ($1, $2)
ON CONFLICT (post_id, user_id) DO NOTHING
`, postID, userID); err != nil {
			return fmt.Errorf("insert post like: %w", err)
		}
		if _, err := tx.Exec(txCtx, `
UPDATE posts
SET likes_count = likes_count + 1, updated_at = NOW()
WHERE id = $1
`, postID); err != nil {
			return fmt.Errorf("increment post likes: %w", err)
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}

func (r *PostRepo) IsLikedBy(ctx context.Context, postID, userID int64) (bool, error) {
	if postID <= 0 || userID <= 0 {
		return false, fmt.Errorf("invalid post like lookup")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM post_likes
WHERE post_id = $1 AND user_id = $2
LIMIT 1
`, postID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup post like: %w", err)
	}

	return true, nil
}

func (r *PostRepo) SoftDelete(ctx context.Context, postID, authorID int64) (bool, error) {
	if postID <= 0 || authorID <= 0 {
		return false, fmt.Errorf("invalid post delete payload")
	}
	if r.pool == nil {
		return false, nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE posts
SET is_deleted = TRUE, updated_at = NOW()
WHERE id = $1 AND author_id = $2 AND is_deleted = FALSE
`, postID, authorID)
	if err != nil {
		return false, fmt.Errorf("soft delete post: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// PurgeDeletedBefore removes soft-deleted posts older than cutoff.
func (r *PostRepo) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM posts
WHERE is_deleted = TRUE AND updated_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge deleted posts: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *PostRepo) imagesFor(ctx context.Context, postID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT url
FROM post_images
WHERE post_id = $1
ORDER BY position ASC
`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post images: %w", err)
	}
	defer rows.Close()

	images := make([]string, 0, 4)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan post image: %w", err)
		}
		images = append(images, url)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate post images: %w", rows.Err())
	}

	return images, nil
}
