// Package web serves the server-rendered dashboard pages.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/domain/post/review"
	"github.com/vadim/ghostwrite/internal/preview"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"dashboard", "review", "campaign", "settings", "calendar"}

// ReviewPolicy defines the workflow operations behind the pages
// Interface is defined by consumer (handler), not provider (policy)
type ReviewPolicy interface {
	GenerateDrafts(ctx context.Context, in policy.GenerateDraftsInput) error
	Refresh(ctx context.Context, userID string) ([]entity.Campaign, error)
	CampaignView(ctx context.Context, in policy.CampaignViewInput) (*review.CampaignView, error)
	Approve(ctx context.Context, userID, postID string) (*entity.Post, error)
	Reject(ctx context.Context, userID, postID string) (*entity.Post, error)
	SaveContent(ctx context.Context, in policy.SaveContentInput) (*entity.Post, error)
	Publish(ctx context.Context, in policy.PublishInput) (*entity.Post, error)
	AttachImage(ctx context.Context, in policy.AttachImageInput) (*entity.Post, error)
	FacebookPages(ctx context.Context, userID, saved string) (*policy.PagesOutput, error)
	CompleteConnection(ctx context.Context, in policy.CompleteConnectionInput) error
	Calendar(ctx context.Context, userID string) ([]entity.Post, error)
}

// PreviewRenderer renders a preview view as HTML
type PreviewRenderer interface {
	Render(v preview.View) (template.HTML, error)
}

// Handler serves the HTML pages
type Handler struct {
	policy        ReviewPolicy
	previews      PreviewRenderer
	pages         map[string]*template.Template
	authURL       policy.AuthURLInput
	maxUploadSize int64
	logger        *slog.Logger
}

// Config holds page-level settings
type Config struct {
	AuthURL       policy.AuthURLInput
	MaxUploadSize int64
}

// NewHandler parses the page templates and creates the handler
func NewHandler(p ReviewPolicy, previews PreviewRenderer, cfg Config, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base, err := template.New("base").Funcs(template.FuncMap{
		"pathEscape": url.PathEscape,
		"title":      func(p entity.Platform) string { return p.Title() },
		"date":       func(p entity.Post) string { return p.CreatedAt.Format("Jan 2, 2006") },
	}).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout: %w", err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parsing %s page: %w", name, err)
		}
		pages[name] = clone
	}

	maxUpload := cfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return &Handler{
		policy:        p,
		previews:      previews,
		pages:         pages,
		authURL:       cfg.AuthURL,
		maxUploadSize: maxUpload,
		logger:        logger,
	}, nil
}

// RegisterRoutes registers page routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", http.RedirectHandler("/dashboard", http.StatusFound).ServeHTTP)

	r.Get("/dashboard", h.Dashboard())
	r.Post("/dashboard/generate", h.Generate())

	r.Get("/review", h.Review())
	r.Route("/review/{topic}", func(r chi.Router) {
		r.Get("/", h.Campaign())
		r.Post("/posts/{id}/approve", h.SetStatus(entity.PostStatusApproved))
		r.Post("/posts/{id}/reject", h.SetStatus(entity.PostStatusRejected))
		r.Post("/posts/{id}/content", h.SaveContent())
		r.Post("/posts/{id}/publish", h.Publish())
		r.Post("/posts/{id}/image", h.AttachImage())
	})

	r.Get("/settings", h.Settings())
	r.Post("/settings/user", h.SetUser())
	r.Post("/settings/page", h.SelectPage())

	r.Get("/connect/facebook", h.ConnectFacebook())
	r.Get("/connect/callback", h.ConnectCallback())

	r.Get("/calendar", h.Calendar())
}

// Notice is the banner shown at the top of a page
type Notice struct {
	Kind    string
	Message string
}

type pageData struct {
	Title  string
	Nav    string
	UserID string
	Notice *Notice
	Data   interface{}
}

func (h *Handler) render(w http.ResponseWriter, name string, status int, data pageData) {
	tmpl, ok := h.pages[name]
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		h.logger.Error("rendering page failed", "page", name, "error", err)
	}
}

// noticeFromQuery reads the banner passed along a redirect
func noticeFromQuery(r *http.Request) *Notice {
	q := r.URL.Query()
	msg := q.Get("notice")
	if msg == "" {
		return nil
	}
	kind := q.Get("kind")
	if kind != "error" {
		kind = "info"
	}
	return &Notice{Kind: kind, Message: msg}
}

// redirectWithNotice sends the browser to path with a banner
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path string, params url.Values, kind, msg string) {
	if params == nil {
		params = url.Values{}
	}
	if msg != "" {
		params.Set("notice", msg)
		params.Set("kind", kind)
	}

	target := path
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
