package policy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/domain/post/review"
	"github.com/vadim/ghostwrite/internal/domain/post/service"
)

// Webhooks defines the automation-service operations the workflow depends on.
// This interface is defined here (consumer) not in the upstream package (provider)
type Webhooks interface {
	GenerateDrafts(ctx context.Context, userID, text string) error
	ConnectAccount(ctx context.Context, code, state, userID string) error
	PublishPost(ctx context.Context, postID, pageID, userID string) error
}

// ImageStorage defines the interface for storing post images
type ImageStorage interface {
	Upload(ctx context.Context, postID string, in UploadInput) (*UploadOutput, error)
}

// UploadInput represents an image to store
type UploadInput struct {
	Reader      io.Reader
	ContentType string
	Size        int64
	Filename    string
}

// UploadOutput represents a stored image
type UploadOutput struct {
	Key string
	URL string
}

// Policy orchestrates the draft review use-cases
type Policy struct {
	svc      *service.Service
	hooks    Webhooks
	images   ImageStorage
	boards   *review.Boards
	inflight *review.InFlight
	logger   *slog.Logger
}

// Option configures a Policy
type Option func(*options)

type options struct {
	maxBoards int
	boardTTL  time.Duration
}

// WithBoardLimits bounds the per-user boards held in memory.
// Zero values keep the review package defaults.
func WithBoardLimits(maxBoards int, ttl time.Duration) Option {
	return func(o *options) {
		o.maxBoards = maxBoards
		o.boardTTL = ttl
	}
}

// New creates a new review policy. images may be nil when uploads are disabled.
func New(svc *service.Service, hooks Webhooks, images ImageStorage, logger *slog.Logger, opts ...Option) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Policy{
		svc:      svc,
		hooks:    hooks,
		images:   images,
		boards:   review.NewBoards(o.maxBoards, o.boardTTL),
		inflight: review.NewInFlight(),
		logger:   logger,
	}
}

// GenerateDraftsInput represents input for draft generation
type GenerateDraftsInput struct {
	UserID string
	Topic  string
}

// GenerateDrafts asks the automation service to write drafts for a topic.
// The drafts show up on the next Refresh.
func (p *Policy) GenerateDrafts(ctx context.Context, in GenerateDraftsInput) error {
	if strings.TrimSpace(in.Topic) == "" {
		return entity.ErrEmptyTopic
	}

	if err := p.hooks.GenerateDrafts(ctx, in.UserID, in.Topic); err != nil {
		p.logger.Error("generation failed", "user_id", in.UserID, "error", err)
		return fmt.Errorf("%w: %w", entity.ErrWebhookFailed, err)
	}

	p.logger.Info("drafts requested", "user_id", in.UserID, "topic", in.Topic)
	return nil
}

// Refresh re-fetches all posts of a user and rebuilds the campaigns
func (p *Policy) Refresh(ctx context.Context, userID string) ([]entity.Campaign, error) {
	posts, err := p.svc.ListPosts(ctx, userID)
	if err != nil {
		p.logger.Error("fetching posts failed", "user_id", userID, "error", err)
		return nil, err
	}

	board := p.boards.For(userID)
	board.Replace(posts)

	return board.Campaigns(), nil
}

// CampaignViewInput represents the ephemeral state of a campaign review screen
type CampaignViewInput struct {
	UserID  string
	Topic   string
	Tab     entity.Platform
	Editing bool
	Draft   *string
}

// CampaignView derives the review screen of a campaign from the user's board.
// The board is fetched first if it has never been loaded.
func (p *Policy) CampaignView(ctx context.Context, in CampaignViewInput) (*review.CampaignView, error) {
	board := p.boards.For(in.UserID)
	if !board.Loaded() {
		if _, err := p.Refresh(ctx, in.UserID); err != nil {
			return nil, err
		}
	}

	campaign, ok := board.Campaign(in.Topic)
	if !ok {
		return nil, entity.ErrCampaignNotFound
	}

	view := review.NewCampaignView(review.ViewInput{
		Campaign: campaign,
		Tab:      in.Tab,
		Editing:  in.Editing,
		Draft:    in.Draft,
		Busy:     p.inflight.Busy,
	})
	return &view, nil
}

// SetStatusInput represents input for approving or rejecting a post
type SetStatusInput struct {
	UserID string
	PostID string
	Status entity.PostStatus
}

// SetStatus overwrites the review status of a post.
// Only approved and rejected can be set directly; published goes through Publish.
func (p *Policy) SetStatus(ctx context.Context, in SetStatusInput) (*entity.Post, error) {
	if in.Status != entity.PostStatusApproved && in.Status != entity.PostStatusRejected {
		return nil, entity.ErrInvalidStatus
	}

	post, err := p.lookup(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.Status == in.Status {
		return nil, entity.ErrAlreadyInStatus
	}

	return p.mutate(ctx, in.UserID, in.PostID,
		func(ctx context.Context) error {
			return p.svc.UpdateStatus(ctx, in.PostID, in.Status)
		},
		func(post *entity.Post) { post.Status = in.Status },
	)
}

// Approve marks a post as approved
func (p *Policy) Approve(ctx context.Context, userID, postID string) (*entity.Post, error) {
	return p.SetStatus(ctx, SetStatusInput{UserID: userID, PostID: postID, Status: entity.PostStatusApproved})
}

// Reject marks a post as rejected
func (p *Policy) Reject(ctx context.Context, userID, postID string) (*entity.Post, error) {
	return p.SetStatus(ctx, SetStatusInput{UserID: userID, PostID: postID, Status: entity.PostStatusRejected})
}

// SaveContentInput represents input for saving an edited caption
type SaveContentInput struct {
	UserID  string
	PostID  string
	Content string
}

// SaveContent writes the edit buffer as the new content; status is left untouched
func (p *Policy) SaveContent(ctx context.Context, in SaveContentInput) (*entity.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, entity.ErrEmptyContent
	}

	if _, err := p.lookup(ctx, in.UserID, in.PostID); err != nil {
		return nil, err
	}

	return p.mutate(ctx, in.UserID, in.PostID,
		func(ctx context.Context) error {
			return p.svc.UpdateContent(ctx, in.PostID, in.Content)
		},
		func(post *entity.Post) { post.Content = in.Content },
	)
}

// PublishInput represents input for publishing a post
type PublishInput struct {
	UserID string
	PostID string
	PageID string
}

// Publish sends a Facebook draft to the selected page through the publish
// webhook and, only if that succeeds, marks it as published in the store.
//
// A store failure after a successful webhook call leaves the post live but not
// marked; it is reported as *entity.PartialPublishError and not reconciled.
// Once the webhook is called, the rest runs detached from ctx cancellation.
func (p *Policy) Publish(ctx context.Context, in PublishInput) (*entity.Post, error) {
	board := p.boards.For(in.UserID)
	if !board.Loaded() {
		if in.PageID == "" {
			return nil, entity.ErrNoPageSelected
		}
		if _, err := p.Refresh(ctx, in.UserID); err != nil {
			return nil, err
		}
	}

	post, ok := board.Post(in.PostID)
	if !ok {
		return nil, entity.ErrNoActiveDraft
	}
	if entity.NormalizePlatform(string(post.Platform)) != entity.PlatformFacebook {
		return nil, entity.ErrPublishPlatform
	}
	if in.PageID == "" {
		return nil, entity.ErrNoPageSelected
	}
	if post.Status == entity.PostStatusPublished {
		return nil, entity.ErrAlreadyInStatus
	}

	if !p.inflight.TryAcquire(in.PostID) {
		return nil, entity.ErrActionInFlight
	}
	defer p.inflight.Release(in.PostID)

	ctx = context.WithoutCancel(ctx)
	if err := p.hooks.PublishPost(ctx, in.PostID, in.PageID, in.UserID); err != nil {
		p.logger.Error("publish webhook failed", "post_id", in.PostID, "page_id", in.PageID, "error", err)
		return nil, fmt.Errorf("%w: %w", entity.ErrWebhookFailed, err)
	}

	if err := p.svc.UpdateStatus(ctx, in.PostID, entity.PostStatusPublished); err != nil {
		p.logger.Error("post published but status not saved",
			"post_id", in.PostID,
			"page_id", in.PageID,
			"error", err,
		)
		return nil, &entity.PartialPublishError{PostID: in.PostID, Err: err}
	}

	p.logger.Info("post published", "post_id", in.PostID, "page_id", in.PageID)
	return p.settle(ctx, in.UserID, in.PostID, func(post *entity.Post) {
		post.Status = entity.PostStatusPublished
	}), nil
}

// AttachImageInput represents input for replacing the image of a post
type AttachImageInput struct {
	UserID string
	PostID string
	Image  UploadInput
}

// AttachImage stores an image and points the post at it
func (p *Policy) AttachImage(ctx context.Context, in AttachImageInput) (*entity.Post, error) {
	if p.images == nil {
		return nil, errors.New("image storage is not configured")
	}
	if !IsAllowedImageType(in.Image.ContentType) {
		return nil, entity.ErrUnsupportedImage
	}

	if _, err := p.lookup(ctx, in.UserID, in.PostID); err != nil {
		return nil, err
	}

	var url string
	return p.mutate(ctx, in.UserID, in.PostID,
		func(ctx context.Context) error {
			out, err := p.images.Upload(ctx, in.PostID, in.Image)
			if err != nil {
				return fmt.Errorf("uploading image: %w", err)
			}
			url = out.URL
			return p.svc.UpdateImage(ctx, in.PostID, url)
		},
		func(post *entity.Post) { post.ImageURL = url },
	)
}

// Calendar lists the scheduled and published posts of a user
func (p *Policy) Calendar(ctx context.Context, userID string) ([]entity.Post, error) {
	return p.svc.ListCalendar(ctx, userID)
}

// lookup finds a post on the user's board, refreshing once if it is unknown
func (p *Policy) lookup(ctx context.Context, userID, postID string) (entity.Post, error) {
	board := p.boards.For(userID)
	if post, ok := board.Post(postID); ok {
		return post, nil
	}

	if _, err := p.Refresh(ctx, userID); err != nil {
		return entity.Post{}, err
	}
	if post, ok := board.Post(postID); ok {
		return post, nil
	}
	return entity.Post{}, entity.ErrPostNotFound
}

// mutate runs a remote write under the post's in-flight marker, then applies
// it to the board and reloads. Nothing is applied if the write fails.
// The write is not cancelled with ctx; only transport timeouts bound it.
func (p *Policy) mutate(
	ctx context.Context,
	userID, postID string,
	write func(ctx context.Context) error,
	apply func(*entity.Post),
) (*entity.Post, error) {
	if !p.inflight.TryAcquire(postID) {
		return nil, entity.ErrActionInFlight
	}
	defer p.inflight.Release(postID)

	ctx = context.WithoutCancel(ctx)
	if err := write(ctx); err != nil {
		p.logger.Error("updating post failed", "user_id", userID, "post_id", postID, "error", err)
		return nil, err
	}

	return p.settle(ctx, userID, postID, apply), nil
}

// settle applies a committed write to the board and reloads it in full.
// A failed reload is logged only; the applied change already matches the store.
func (p *Policy) settle(ctx context.Context, userID, postID string, apply func(*entity.Post)) *entity.Post {
	board := p.boards.For(userID)
	board.Apply(postID, apply)

	if _, err := p.Refresh(ctx, userID); err != nil {
		p.logger.Warn("reload after update failed", "user_id", userID, "post_id", postID, "error", err)
	}

	post, ok := board.Post(postID)
	if !ok {
		return nil
	}
	return &post
}

// IsAllowedImageType checks if the content type can be attached to a post
func IsAllowedImageType(contentType string) bool {
	allowed := []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	}

	for _, a := range allowed {
		if strings.EqualFold(contentType, a) {
			return true
		}
	}
	return false
}
