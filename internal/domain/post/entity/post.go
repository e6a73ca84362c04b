package entity

import (
	"time"
)

// DefaultTopic is the campaign label for posts without a topic
const DefaultTopic = "General Drafts"

// PostStatus represents the review status of a post
type PostStatus string

const (
	PostStatusPending   PostStatus = "pending"
	PostStatusApproved  PostStatus = "approved"
	PostStatusRejected  PostStatus = "rejected"
	PostStatusPublished PostStatus = "published"
	// PostStatusScheduled is accepted from upstream data but never set by this service
	PostStatusScheduled PostStatus = "scheduled"
)

// ParsePostStatus converts a raw status string to a PostStatus
func ParsePostStatus(s string) (PostStatus, error) {
	switch PostStatus(s) {
	case PostStatusPending, PostStatusApproved, PostStatusRejected,
		PostStatusPublished, PostStatusScheduled:
		return PostStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Post is a single platform-targeted content draft
type Post struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Content   string     `json:"content"`
	Platform  Platform   `json:"platform"`
	Status    PostStatus `json:"status"`
	ImageURL  string     `json:"image_url,omitempty"`
	Topic     string     `json:"topic,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TopicOrDefault returns the grouping key of the post
func (p Post) TopicOrDefault() string {
	if p.Topic == "" {
		return DefaultTopic
	}
	return p.Topic
}

// Normalized returns a copy of the post with a canonical platform
func (p Post) Normalized() Post {
	p.Platform = NormalizePlatform(string(p.Platform))
	return p
}

// IsCalendarEntry reports whether the post belongs on the content calendar
func (p Post) IsCalendarEntry() bool {
	return p.Status == PostStatusScheduled || p.Status == PostStatusPublished
}
