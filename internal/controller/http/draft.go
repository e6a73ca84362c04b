package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/httpx/response"
	"github.com/vadim/ghostwrite/internal/identity"
)

// DraftPolicy defines the interface for draft generation
type DraftPolicy interface {
	GenerateDrafts(ctx context.Context, in policy.GenerateDraftsInput) error
}

// DraftHandler handles HTTP requests for draft generation
type DraftHandler struct {
	policy DraftPolicy
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(p DraftPolicy) *DraftHandler {
	return &DraftHandler{policy: p}
}

// RegisterRoutes registers draft routes
func (h *DraftHandler) RegisterRoutes(r chi.Router) {
	r.Post("/drafts/generate", h.Generate())
}

// GenerateRequest represents the request body for generating drafts
type GenerateRequest struct {
	Topic string `json:"topic"`
}

// GenerateResponse acknowledges a generation request
type GenerateResponse struct {
	Topic  string `json:"topic"`
	Status string `json:"status"`
}

// Generate handles POST /drafts/generate
func (h *DraftHandler) Generate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		err := h.policy.GenerateDrafts(r.Context(), policy.GenerateDraftsInput{
			UserID: userID,
			Topic:  req.Topic,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.Accepted(w, GenerateResponse{Topic: req.Topic, Status: "requested"})
	}
}
