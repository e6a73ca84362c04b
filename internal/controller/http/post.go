package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/httpx/response"
	"github.com/vadim/ghostwrite/internal/identity"
)

// PostPolicy defines the interface for post review operations
// Interface is defined by consumer (handler), not provider (policy)
type PostPolicy interface {
	Approve(ctx context.Context, userID, postID string) (*entity.Post, error)
	Reject(ctx context.Context, userID, postID string) (*entity.Post, error)
	SaveContent(ctx context.Context, in policy.SaveContentInput) (*entity.Post, error)
	Publish(ctx context.Context, in policy.PublishInput) (*entity.Post, error)
	AttachImage(ctx context.Context, in policy.AttachImageInput) (*entity.Post, error)
}

// PostHandler handles HTTP requests for single posts
type PostHandler struct {
	policy        PostPolicy
	maxUploadSize int64
}

// NewPostHandler creates a new post handler
func NewPostHandler(p PostPolicy, maxUploadSize int64) *PostHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &PostHandler{policy: p, maxUploadSize: maxUploadSize}
}

// RegisterRoutes registers post routes
func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Route("/posts/{id}", func(r chi.Router) {
		r.Post("/approve", h.Approve())
		r.Post("/reject", h.Reject())
		r.Put("/content", h.SaveContent())
		r.Post("/publish", h.Publish())
		r.Post("/image", h.AttachImage())
	})
}

// Approve handles POST /posts/{id}/approve
func (h *PostHandler) Approve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		post, err := h.policy.Approve(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Reject handles POST /posts/{id}/reject
func (h *PostHandler) Reject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		post, err := h.policy.Reject(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// ContentRequest represents the request body for saving an edited caption
type ContentRequest struct {
	Content string `json:"content"`
}

// SaveContent handles PUT /posts/{id}/content
func (h *PostHandler) SaveContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		post, err := h.policy.SaveContent(r.Context(), policy.SaveContentInput{
			UserID:  userID,
			PostID:  chi.URLParam(r, "id"),
			Content: req.Content,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Publish handles POST /posts/{id}/publish.
// The target page is the one selected in settings.
func (h *PostHandler) Publish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolver := identity.FromContext(r.Context())
		pageID, _ := resolver.SelectedPageID(r.Context())

		post, err := h.policy.Publish(r.Context(), policy.PublishInput{
			UserID: resolver.CurrentUserID(r.Context()),
			PostID: chi.URLParam(r, "id"),
			PageID: pageID,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// AttachImage handles POST /posts/{id}/image
func (h *PostHandler) AttachImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, closeFile, ok := readImageUpload(w, r, h.maxUploadSize)
		if !ok {
			return
		}
		defer closeFile()

		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		post, err := h.policy.AttachImage(r.Context(), policy.AttachImageInput{
			UserID: userID,
			PostID: chi.URLParam(r, "id"),
			Image:  upload,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}
