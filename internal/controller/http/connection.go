package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/httpx/response"
	"github.com/vadim/ghostwrite/internal/identity"
)

// ConnectionPolicy defines the interface for social account connections
type ConnectionPolicy interface {
	FacebookPages(ctx context.Context, userID, saved string) (*policy.PagesOutput, error)
	CompleteConnection(ctx context.Context, in policy.CompleteConnectionInput) error
}

// ConnectionHandler handles HTTP requests for Facebook connections
type ConnectionHandler struct {
	policy  ConnectionPolicy
	authURL policy.AuthURLInput
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(p ConnectionPolicy, authURL policy.AuthURLInput) *ConnectionHandler {
	return &ConnectionHandler{policy: p, authURL: authURL}
}

// RegisterRoutes registers connection routes
func (h *ConnectionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/connections/facebook", func(r chi.Router) {
		r.Get("/", h.Pages())
		r.Get("/authorize", h.Authorize())
		r.Post("/callback", h.Callback())
	})
}

// Pages handles GET /connections/facebook.
// The resolved selection is persisted so publishing uses the page shown.
func (h *ConnectionHandler) Pages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolver := identity.FromContext(r.Context())
		saved, _ := resolver.SelectedPageID(r.Context())

		out, err := h.policy.FacebookPages(r.Context(), resolver.CurrentUserID(r.Context()), saved)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		if out.Selected != saved {
			if err := resolver.SelectPage(r.Context(), out.Selected); err != nil {
				slog.Warn("saving page selection failed", "page_id", out.Selected, "error", err)
			}
		}

		response.OK(w, out)
	}
}

// AuthorizeResponse carries the Facebook OAuth dialog URL
type AuthorizeResponse struct {
	URL string `json:"url"`
}

// Authorize handles GET /connections/facebook/authorize
func (h *ConnectionHandler) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, AuthorizeResponse{URL: policy.FacebookAuthURL(h.authURL)})
	}
}

// CallbackRequest represents the OAuth redirect parameters
type CallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// Callback handles POST /connections/facebook/callback
func (h *ConnectionHandler) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CallbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		err := h.policy.CompleteConnection(r.Context(), policy.CompleteConnectionInput{
			UserID: identity.FromContext(r.Context()).CurrentUserID(r.Context()),
			Code:   req.Code,
			State:  req.State,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.NoContent(w)
	}
}
