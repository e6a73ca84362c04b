package entity

import "strings"

// Platform is a canonical social platform name
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// KnownPlatforms lists the platforms that have a dedicated review tab, in tab order
var KnownPlatforms = []Platform{
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformInstagram,
	PlatformFacebook,
}

// NormalizePlatform maps a raw platform value to its canonical form.
// Twitter rebrand aliases collapse to "twitter"; any other value is returned
// trimmed and lower-cased, including values outside KnownPlatforms.
func NormalizePlatform(raw string) Platform {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "x", "x-twitter", "xtwitter":
		return PlatformTwitter
	default:
		return Platform(v)
	}
}

// IsKnown reports whether the platform has a dedicated tab and preview
func (p Platform) IsKnown() bool {
	for _, k := range KnownPlatforms {
		if p == k {
			return true
		}
	}
	return false
}

// Title returns the display name used in headings ("Twitter", "Linkedin", ...)
func (p Platform) Title() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}
