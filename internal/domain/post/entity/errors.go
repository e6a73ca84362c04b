package entity

import (
	"errors"
	"fmt"
)

// Domain errors for posts
var (
	// Precondition errors
	ErrEmptyTopic       = errors.New("topic is required")
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrNoActiveDraft    = errors.New("no draft for this platform")
	ErrPublishPlatform  = errors.New("publishing currently supports only facebook drafts")
	ErrNoPageSelected   = errors.New("choose a facebook page in settings before publishing")
	ErrAlreadyInStatus  = errors.New("post is already in the requested status")
	ErrActionInFlight   = errors.New("another action is in progress for this post")
	ErrMissingOAuthCode = errors.New("missing code from facebook")
	ErrInvalidStatus    = errors.New("invalid post status")
	ErrUnsupportedImage = errors.New("unsupported image type")

	// Lookup errors
	ErrPostNotFound     = errors.New("post not found")
	ErrCampaignNotFound = errors.New("campaign not found")

	// Upstream errors
	ErrWebhookFailed = errors.New("webhook request failed")
	ErrStoreFailed   = errors.New("data store request failed")
)

var preconditions = []error{
	ErrEmptyTopic,
	ErrEmptyContent,
	ErrNoActiveDraft,
	ErrPublishPlatform,
	ErrNoPageSelected,
	ErrAlreadyInStatus,
	ErrActionInFlight,
	ErrMissingOAuthCode,
	ErrInvalidStatus,
	ErrUnsupportedImage,
}

// IsPrecondition reports whether err is a missing-precondition error that was
// raised before any network call was made
func IsPrecondition(err error) bool {
	for _, p := range preconditions {
		if errors.Is(err, p) {
			return true
		}
	}
	return false
}

// PartialPublishError is returned when the publish webhook succeeded but the
// store could not be updated. The post is live but not marked as published.
type PartialPublishError struct {
	PostID string
	Err    error
}

func (e *PartialPublishError) Error() string {
	return fmt.Sprintf("post %s was published but its status could not be saved: %v", e.PostID, e.Err)
}

func (e *PartialPublishError) Unwrap() error {
	return e.Err
}
