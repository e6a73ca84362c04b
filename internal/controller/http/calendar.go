package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/httpx/response"
	"github.com/vadim/ghostwrite/internal/identity"
)

// CalendarPolicy defines the interface for calendar reads
type CalendarPolicy interface {
	Calendar(ctx context.Context, userID string) ([]entity.Post, error)
}

// CalendarHandler handles HTTP requests for the content calendar
type CalendarHandler struct {
	policy CalendarPolicy
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(p CalendarPolicy) *CalendarHandler {
	return &CalendarHandler{policy: p}
}

// RegisterRoutes registers calendar routes
func (h *CalendarHandler) RegisterRoutes(r chi.Router) {
	r.Get("/calendar", h.List())
}

// CalendarResponse represents the scheduled and published posts of a user
type CalendarResponse struct {
	Posts []entity.Post `json:"posts"`
	Total int           `json:"total"`
}

// List handles GET /calendar
func (h *CalendarHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		posts, err := h.policy.Calendar(r.Context(), userID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, CalendarResponse{Posts: posts, Total: len(posts)})
	}
}
