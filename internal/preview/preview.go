// Package preview renders a post the way each social platform would show it.
package preview

import (
	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

const (
	// TimestampFormat is how post dates are shown in previews
	TimestampFormat = "Jan 2"

	placeholderLength = 100

	displayName = "GhostWrite User"
	handle      = "ghostwrite_ai"
	headline    = "AI Content Specialist"
)

// Layout selects the platform chrome of a preview
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutTwitter
	LayoutLinkedIn
	LayoutInstagram
	LayoutFacebook
)

func (l Layout) String() string {
	switch l {
	case LayoutTwitter:
		return "twitter"
	case LayoutLinkedIn:
		return "linkedin"
	case LayoutInstagram:
		return "instagram"
	case LayoutFacebook:
		return "facebook"
	default:
		return "unknown"
	}
}

// MarshalText encodes the layout by name
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// LayoutFor maps a platform onto its layout
func LayoutFor(platform entity.Platform) Layout {
	switch entity.NormalizePlatform(string(platform)) {
	case entity.PlatformTwitter:
		return LayoutTwitter
	case entity.PlatformLinkedIn:
		return LayoutLinkedIn
	case entity.PlatformInstagram:
		return LayoutInstagram
	case entity.PlatformFacebook:
		return LayoutFacebook
	default:
		return LayoutUnknown
	}
}

// View is a rendered preview, independent of any output format
type View struct {
	Layout      Layout `json:"layout"`
	PostID      string `json:"post_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Handle      string `json:"handle,omitempty"`
	Headline    string `json:"headline,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	Body        string `json:"body"`
	Editing     bool   `json:"editing"`
	// ImageURL is set only when the layout shows the attached image
	ImageURL string `json:"image_url,omitempty"`
	// Placeholder replaces a missing image on image-first layouts
	Placeholder string `json:"placeholder,omitempty"`
}

// Empty reports whether there is nothing to show for this preview
func (v View) Empty() bool {
	return v.Layout == LayoutUnknown
}

// Render builds the preview of a post. While editing, the body shows the draft
// instead of the committed content. Unknown platforms produce an empty view.
func Render(post entity.Post, editing bool, draft *string) View {
	layout := LayoutFor(post.Platform)
	if layout == LayoutUnknown {
		return View{Layout: LayoutUnknown}
	}

	body := post.Content
	if editing && draft != nil {
		body = *draft
	}

	v := View{
		Layout:      layout,
		PostID:      post.ID,
		DisplayName: displayName,
		Handle:      handle,
		Body:        body,
		Editing:     editing,
	}
	if !post.CreatedAt.IsZero() {
		v.Timestamp = post.CreatedAt.Format(TimestampFormat)
	}

	switch layout {
	case LayoutTwitter:
		// text only, attached images are never shown
	case LayoutLinkedIn:
		v.Headline = headline
		v.ImageURL = post.ImageURL
	case LayoutFacebook:
		v.ImageURL = post.ImageURL
	case LayoutInstagram:
		v.ImageURL = post.ImageURL
		if v.ImageURL == "" {
			v.Placeholder = truncate(body, placeholderLength) + "..."
		}
	}

	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
