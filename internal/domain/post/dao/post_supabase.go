package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/httpx/upstream/supabase"
)

// PostSupabase implements PostRepository over the Supabase REST interface
type PostSupabase struct {
	client *supabase.Client
}

// NewPostSupabase creates a new REST-backed post repository
func NewPostSupabase(client *supabase.Client) *PostSupabase {
	return &PostSupabase{client: client}
}

// postRow mirrors a posts row; nullable columns are pointers
type postRow struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Content   *string   `json:"content"`
	Platform  *string   `json:"platform"`
	Status    *string   `json:"status"`
	ImageURL  *string   `json:"image_url"`
	Topic     *string   `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

func (r postRow) toEntity() entity.Post {
	return entity.Post{
		ID:        r.ID,
		UserID:    deref(r.UserID),
		Content:   deref(r.Content),
		Platform:  entity.Platform(deref(r.Platform)),
		Status:    entity.PostStatus(deref(r.Status)),
		ImageURL:  deref(r.ImageURL),
		Topic:     deref(r.Topic),
		CreatedAt: r.CreatedAt,
	}
}

// ListByUser retrieves all posts of a user, newest first
func (r *PostSupabase) ListByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	var rows []postRow
	err := r.client.Select(ctx, supabase.SelectInput{
		Table:   PostsTable,
		Filters: []supabase.Filter{supabase.Eq("user_id", userID)},
		Order:   &supabase.Order{Column: "created_at", Ascending: false},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("selecting posts: %w", err)
	}

	posts := make([]entity.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toEntity())
	}

	return posts, nil
}

// UpdateStatus overwrites the status of a post
func (r *PostSupabase) UpdateStatus(ctx context.Context, id string, status entity.PostStatus) error {
	return r.update(ctx, id, "status", string(status))
}

// UpdateContent overwrites the content of a post
func (r *PostSupabase) UpdateContent(ctx context.Context, id string, content string) error {
	return r.update(ctx, id, "content", content)
}

// UpdateImage sets the image URL of a post
func (r *PostSupabase) UpdateImage(ctx context.Context, id string, imageURL string) error {
	return r.update(ctx, id, "image_url", imageURL)
}

func (r *PostSupabase) update(ctx context.Context, id, column string, value interface{}) error {
	n, err := r.client.Update(ctx, supabase.UpdateInput{
		Table:   PostsTable,
		Filters: []supabase.Filter{supabase.Eq("id", id)},
		Values:  map[string]interface{}{column: value},
	})
	if err != nil {
		return fmt.Errorf("updating post %s: %w", column, err)
	}
	if n == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
