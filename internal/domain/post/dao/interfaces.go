package dao

import (
	"context"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

// Table names in the external data store
const (
	PostsTable       = "posts"
	ConnectionsTable = "social_connections"
)

// PostRepository defines the interface for post data access.
// Posts are created by the generation workflow; this service only reads and updates them.
type PostRepository interface {
	// ListByUser retrieves all posts of a user, newest first
	ListByUser(ctx context.Context, userID string) ([]entity.Post, error)

	// UpdateStatus overwrites the status of a post
	UpdateStatus(ctx context.Context, id string, status entity.PostStatus) error

	// UpdateContent overwrites the content of a post
	UpdateContent(ctx context.Context, id string, content string) error

	// UpdateImage sets the image URL of a post
	UpdateImage(ctx context.Context, id string, imageURL string) error
}

// ConnectionRepository defines the interface for social connection data access
type ConnectionRepository interface {
	// ListByPlatform retrieves the raw connection rows of a user for a platform
	ListByPlatform(ctx context.Context, userID string, platform entity.Platform) ([]entity.Connection, error)
}
