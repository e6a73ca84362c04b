package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/httpx/response"
	"github.com/vadim/ghostwrite/internal/identity"
)

// IdentityHandler handles HTTP requests for the browser identity
type IdentityHandler struct{}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler() *IdentityHandler {
	return &IdentityHandler{}
}

// RegisterRoutes registers identity routes
func (h *IdentityHandler) RegisterRoutes(r chi.Router) {
	r.Route("/identity", func(r chi.Router) {
		r.Get("/", h.Get())
		r.Put("/user", h.SetUser())
		r.Put("/page", h.SetPage())
	})
}

// IdentityResponse represents the identity of the current browser
type IdentityResponse struct {
	UserID         string  `json:"user_id"`
	SelectedPageID *string `json:"selected_page_id"`
}

// Get handles GET /identity
func (h *IdentityHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, currentIdentity(r))
	}
}

// SetUserRequest represents the request body for switching user
type SetUserRequest struct {
	UserID string `json:"user_id"`
}

// SetUser handles PUT /identity/user. The id is stored as given.
func (h *IdentityHandler) SetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if err := identity.FromContext(r.Context()).SetCurrentUserID(r.Context(), req.UserID); err != nil {
			response.InternalError(w, "failed to save user id")
			return
		}

		response.OK(w, currentIdentity(r))
	}
}

// SetPageRequest represents the request body for selecting a Facebook page
type SetPageRequest struct {
	PageID string `json:"page_id"`
}

// SetPage handles PUT /identity/page. An empty id leaves the selection unchanged.
func (h *IdentityHandler) SetPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetPageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if err := identity.FromContext(r.Context()).SelectPage(r.Context(), req.PageID); err != nil {
			response.InternalError(w, "failed to save page selection")
			return
		}

		response.OK(w, currentIdentity(r))
	}
}

func currentIdentity(r *http.Request) IdentityResponse {
	resolver := identity.FromContext(r.Context())

	out := IdentityResponse{UserID: resolver.CurrentUserID(r.Context())}
	if pageID, ok := resolver.SelectedPageID(r.Context()); ok {
		out.SelectedPageID = &pageID
	}
	return out
}
