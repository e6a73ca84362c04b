package review

import (
	"strings"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

// fallbackTab is shown when a campaign has no draft for any known platform
const fallbackTab = entity.PlatformLinkedIn

// Tab is one platform tab of the campaign view
type Tab struct {
	Platform entity.Platform `json:"platform"`
	HasDraft bool            `json:"has_draft"`
	Active   bool            `json:"active"`
}

// ViewInput carries the ephemeral state of a campaign review screen
type ViewInput struct {
	Campaign entity.Campaign
	// Tab is the requested platform tab; unknown or empty values pick a default
	Tab     entity.Platform
	Editing bool
	// Draft is the edit buffer; nil starts from the committed content
	Draft *string
	// Busy reports whether a post has a request in flight
	Busy func(postID string) bool
}

// CampaignView is the derived state of a campaign review screen
type CampaignView struct {
	Topic         string          `json:"topic"`
	MainImage     string          `json:"main_image"`
	PostCount     int             `json:"post_count"`
	ApprovedCount int             `json:"approved_count"`
	Tabs          []Tab           `json:"tabs"`
	ActiveTab     entity.Platform `json:"active_tab"`
	ActivePost    *entity.Post    `json:"active_post,omitempty"`
	Editing       bool            `json:"editing"`
	Draft         string          `json:"draft"`
	Busy          bool            `json:"busy"`
	CanApprove    bool            `json:"can_approve"`
	CanReject     bool            `json:"can_reject"`
	CanPublish    bool            `json:"can_publish"`
	CanEdit       bool            `json:"can_edit"`
	CanSave       bool            `json:"can_save"`
}

// NewCampaignView derives the review screen state of a campaign
func NewCampaignView(in ViewInput) CampaignView {
	c := in.Campaign
	active := pickTab(c, in.Tab)

	v := CampaignView{
		Topic:         c.Topic,
		MainImage:     c.MainImage,
		PostCount:     len(c.Posts),
		ApprovedCount: c.ApprovedCount(),
		ActiveTab:     active,
		Tabs:          make([]Tab, 0, len(entity.KnownPlatforms)),
	}

	for _, p := range entity.KnownPlatforms {
		v.Tabs = append(v.Tabs, Tab{
			Platform: p,
			HasDraft: c.HasPlatform(p),
			Active:   p == active,
		})
	}

	post, ok := c.PostFor(active)
	if !ok {
		return v
	}
	v.ActivePost = &post

	if in.Busy != nil {
		v.Busy = in.Busy(post.ID)
	}

	v.Editing = in.Editing
	v.Draft = post.Content
	if in.Editing && in.Draft != nil {
		v.Draft = *in.Draft
	}

	v.CanApprove = !v.Busy && post.Status != entity.PostStatusApproved
	v.CanReject = !v.Busy && post.Status != entity.PostStatusRejected
	v.CanPublish = !v.Busy && post.Status != entity.PostStatusPublished
	v.CanEdit = !v.Editing
	v.CanSave = v.Editing && !v.Busy && strings.TrimSpace(v.Draft) != ""

	return v
}

// pickTab returns the requested tab when it is a known platform, otherwise the
// first known platform present in the campaign, otherwise the fallback tab
func pickTab(c entity.Campaign, requested entity.Platform) entity.Platform {
	requested = entity.NormalizePlatform(string(requested))
	if requested.IsKnown() {
		return requested
	}
	for _, p := range c.Posts {
		platform := entity.NormalizePlatform(string(p.Platform))
		if platform.IsKnown() {
			return platform
		}
	}
	return fallbackTab
}
