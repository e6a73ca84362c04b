package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadim/ghostwrite/internal/domain/post/dao"
	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

// Service handles data access rules for posts and connections
type Service struct {
	posts       dao.PostRepository
	connections dao.ConnectionRepository
}

// New creates a new post service
func New(posts dao.PostRepository, connections dao.ConnectionRepository) *Service {
	return &Service{
		posts:       posts,
		connections: connections,
	}
}

// ListPosts retrieves the posts of a user, newest first, with canonical platforms
func (s *Service) ListPosts(ctx context.Context, userID string) ([]entity.Post, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	for i := range posts {
		posts[i] = posts[i].Normalized()
	}

	return posts, nil
}

// ListCalendar retrieves the scheduled and published posts of a user, newest first
func (s *Service) ListCalendar(ctx context.Context, userID string) ([]entity.Post, error) {
	posts, err := s.ListPosts(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsCalendarEntry() {
			out = append(out, p)
		}
	}

	return out, nil
}

// UpdateStatus overwrites the status of a post
func (s *Service) UpdateStatus(ctx context.Context, id string, status entity.PostStatus) error {
	if _, err := entity.ParsePostStatus(string(status)); err != nil {
		return err
	}
	if err := s.posts.UpdateStatus(ctx, id, status); err != nil {
		return storeError(err)
	}
	return nil
}

// UpdateContent overwrites the content of a post
func (s *Service) UpdateContent(ctx context.Context, id string, content string) error {
	if err := s.posts.UpdateContent(ctx, id, content); err != nil {
		return storeError(err)
	}
	return nil
}

// UpdateImage sets the image URL of a post
func (s *Service) UpdateImage(ctx context.Context, id string, imageURL string) error {
	if err := s.posts.UpdateImage(ctx, id, imageURL); err != nil {
		return storeError(err)
	}
	return nil
}

// FacebookPages retrieves the deduplicated Facebook pages connected by a user
func (s *Service) FacebookPages(ctx context.Context, userID string) ([]entity.Connection, error) {
	rows, err := s.connections.ListByPlatform(ctx, userID, entity.PlatformFacebook)
	if err != nil {
		return nil, storeError(err)
	}
	return entity.DedupConnections(rows), nil
}

// storeError tags repository failures so callers can tell them apart from preconditions
func storeError(err error) error {
	if errors.Is(err, entity.ErrPostNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", entity.ErrStoreFailed, err)
}
