package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

// PostPostgres implements PostRepository for PostgreSQL
type PostPostgres struct {
	pool *pgxpool.Pool
}

// NewPostPostgres creates a new PostgreSQL post repository
func NewPostPostgres(pool *pgxpool.Pool) *PostPostgres {
	return &PostPostgres{pool: pool}
}

// ListByUser retrieves all posts of a user, newest first
func (r *PostPostgres) ListByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	query := `
		SELECT id::text, user_id::text, content, platform, status, image_url, topic, created_at
		FROM posts
		WHERE user_id::text = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := make([]entity.Post, 0)
	for rows.Next() {
		var post entity.Post
		var owner, content, platform, status, imageURL, topic *string
		var createdAt time.Time

		if err := rows.Scan(
			&post.ID,
			&owner,
			&content,
			&platform,
			&status,
			&imageURL,
			&topic,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}

		post.UserID = deref(owner)
		post.Content = deref(content)
		post.Platform = entity.Platform(deref(platform))
		post.Status = entity.PostStatus(deref(status))
		post.ImageURL = deref(imageURL)
		post.Topic = deref(topic)
		post.CreatedAt = createdAt

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

// UpdateStatus overwrites the status of a post
func (r *PostPostgres) UpdateStatus(ctx context.Context, id string, status entity.PostStatus) error {
	return r.exec(ctx, "UPDATE posts SET status = $2 WHERE id::text = $1", id, string(status))
}

// UpdateContent overwrites the content of a post
func (r *PostPostgres) UpdateContent(ctx context.Context, id string, content string) error {
	return r.exec(ctx, "UPDATE posts SET content = $2 WHERE id::text = $1", id, content)
}

// UpdateImage sets the image URL of a post
func (r *PostPostgres) UpdateImage(ctx context.Context, id string, imageURL string) error {
	return r.exec(ctx, "UPDATE posts SET image_url = $2 WHERE id::text = $1", id, imageURL)
}

func (r *PostPostgres) exec(ctx context.Context, query, id string, value interface{}) error {
	tag, err := r.pool.Exec(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}
