package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/domain/post/review"
	"github.com/vadim/ghostwrite/internal/httpx/response"
	"github.com/vadim/ghostwrite/internal/identity"
	"github.com/vadim/ghostwrite/internal/preview"
)

// CampaignPolicy defines the interface for campaign reads
type CampaignPolicy interface {
	Refresh(ctx context.Context, userID string) ([]entity.Campaign, error)
	CampaignView(ctx context.Context, in policy.CampaignViewInput) (*review.CampaignView, error)
}

// CampaignHandler handles HTTP requests for campaigns
type CampaignHandler struct {
	policy CampaignPolicy
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(p CampaignPolicy) *CampaignHandler {
	return &CampaignHandler{policy: p}
}

// RegisterRoutes registers campaign routes
func (h *CampaignHandler) RegisterRoutes(r chi.Router) {
	r.Get("/campaigns", h.List())
	r.Get("/campaigns/{topic}", h.Get())
}

// CampaignListResponse represents the response for listing campaigns
type CampaignListResponse struct {
	Campaigns []entity.Campaign `json:"campaigns"`
	Total     int               `json:"total"`
}

// List handles GET /campaigns. Every call reloads from the store.
func (h *CampaignHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		campaigns, err := h.policy.Refresh(r.Context(), userID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, CampaignListResponse{
			Campaigns: campaigns,
			Total:     len(campaigns),
		})
	}
}

// CampaignResponse represents a campaign review screen
type CampaignResponse struct {
	*review.CampaignView
	Preview preview.View `json:"preview"`
}

// Get handles GET /campaigns/{topic}?platform=
func (h *CampaignHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		view, err := h.policy.CampaignView(r.Context(), policy.CampaignViewInput{
			UserID: userID,
			Topic:  topicParam(r),
			Tab:    entity.Platform(r.URL.Query().Get("platform")),
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		out := CampaignResponse{CampaignView: view}
		if view.ActivePost != nil {
			out.Preview = preview.Render(*view.ActivePost, false, nil)
		}

		response.OK(w, out)
	}
}

// topicParam returns the decoded {topic} path segment. chi matches on
// RawPath when the request has one, so only that segment is still escaped.
func topicParam(r *http.Request) string {
	raw := chi.URLParam(r, "topic")
	if r.URL.RawPath == "" {
		return raw
	}
	if topic, err := url.PathUnescape(raw); err == nil {
		return topic
	}
	return raw
}
