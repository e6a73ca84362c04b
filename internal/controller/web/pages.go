package web

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/domain/post/review"
	"github.com/vadim/ghostwrite/internal/identity"
	"github.com/vadim/ghostwrite/internal/preview"
)

// Dashboard handles GET /dashboard
func (h *Handler) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, "dashboard", http.StatusOK, pageData{
			Title:  "Dashboard",
			Nav:    "dashboard",
			UserID: identity.FromContext(r.Context()).CurrentUserID(r.Context()),
			Notice: noticeFromQuery(r),
		})
	}
}

// Generate handles POST /dashboard/generate
func (h *Handler) Generate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.FormValue("topic")
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())

		err := h.policy.GenerateDrafts(r.Context(), policy.GenerateDraftsInput{UserID: userID, Topic: topic})
		switch {
		case errors.Is(err, entity.ErrEmptyTopic):
			redirectWithNotice(w, r, "/dashboard", nil, "error", "Enter a topic first.")
		case err != nil:
			redirectWithNotice(w, r, "/dashboard", nil, "error", "Failed to generate. Please try again.")
		default:
			redirectWithNotice(w, r, "/review", nil, "info", "Drafts requested for \""+topic+"\". Refresh in a moment.")
		}
	}
}

// Review handles GET /review
func (h *Handler) Review() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())
		notice := noticeFromQuery(r)

		campaigns, err := h.policy.Refresh(r.Context(), userID)
		if err != nil {
			notice = &Notice{Kind: "error", Message: "Could not load drafts."}
			campaigns = []entity.Campaign{}
		}

		h.render(w, "review", http.StatusOK, pageData{
			Title:  "Review",
			Nav:    "review",
			UserID: userID,
			Notice: notice,
			Data:   campaigns,
		})
	}
}

type campaignPage struct {
	View    *review.CampaignView
	Preview template.HTML
	Path    string
}

// Campaign handles GET /review/{topic}?platform=&edit=1
func (h *Handler) Campaign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		h.renderCampaign(w, r, http.StatusOK, policy.CampaignViewInput{
			Tab:     entity.Platform(q.Get("platform")),
			Editing: q.Get("edit") == "1",
		}, noticeFromQuery(r))
	}
}

// renderCampaign draws the campaign screen; topic and user come from the request
func (h *Handler) renderCampaign(w http.ResponseWriter, r *http.Request, status int, in policy.CampaignViewInput, notice *Notice) {
	in.UserID = identity.FromContext(r.Context()).CurrentUserID(r.Context())
	in.Topic = topicParam(r)

	view, err := h.policy.CampaignView(r.Context(), in)
	if err != nil {
		if errors.Is(err, entity.ErrCampaignNotFound) {
			redirectWithNotice(w, r, "/review", nil, "error", "That campaign no longer exists.")
			return
		}
		redirectWithNotice(w, r, "/review", nil, "error", "Could not load drafts.")
		return
	}

	page := campaignPage{View: view, Path: "/review/" + url.PathEscape(view.Topic)}
	if view.ActivePost != nil {
		draft := view.Draft
		html, err := h.previews.Render(preview.Render(*view.ActivePost, view.Editing, &draft))
		if err != nil {
			h.logger.Error("rendering preview failed", "post_id", view.ActivePost.ID, "error", err)
		}
		page.Preview = html
	}

	h.render(w, "campaign", status, pageData{
		Title:  view.Topic,
		Nav:    "review",
		UserID: in.UserID,
		Notice: notice,
		Data:   page,
	})
}

// SetStatus handles POST /review/{topic}/posts/{id}/approve and /reject
func (h *Handler) SetStatus(status entity.PostStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())
		postID := chi.URLParam(r, "id")

		var err error
		if status == entity.PostStatusApproved {
			_, err = h.policy.Approve(r.Context(), userID, postID)
		} else {
			_, err = h.policy.Reject(r.Context(), userID, postID)
		}

		if err != nil && !errors.Is(err, entity.ErrAlreadyInStatus) {
			h.backToCampaign(w, r, "error", "Could not update status: "+err.Error())
			return
		}
		h.backToCampaign(w, r, "", "")
	}
}

// SaveContent handles POST /review/{topic}/posts/{id}/content.
// On failure the submitted draft is kept on screen.
func (h *Handler) SaveContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())
		draft := r.FormValue("content")

		_, err := h.policy.SaveContent(r.Context(), policy.SaveContentInput{
			UserID:  userID,
			PostID:  chi.URLParam(r, "id"),
			Content: draft,
		})
		if err != nil {
			msg := "Failed to save changes."
			if errors.Is(err, entity.ErrEmptyContent) {
				msg = "Content cannot be empty."
			}
			h.renderCampaign(w, r, http.StatusUnprocessableEntity, policy.CampaignViewInput{
				Tab:     entity.Platform(r.FormValue("platform")),
				Editing: true,
				Draft:   &draft,
			}, &Notice{Kind: "error", Message: msg})
			return
		}

		h.backToCampaign(w, r, "info", "Changes saved.")
	}
}

// Publish handles POST /review/{topic}/posts/{id}/publish
func (h *Handler) Publish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolver := identity.FromContext(r.Context())
		pageID, _ := resolver.SelectedPageID(r.Context())

		_, err := h.policy.Publish(r.Context(), policy.PublishInput{
			UserID: resolver.CurrentUserID(r.Context()),
			PostID: chi.URLParam(r, "id"),
			PageID: pageID,
		})

		var partial *entity.PartialPublishError
		switch {
		case err == nil:
			h.backToCampaign(w, r, "info", "Published successfully! 🚀")
		case errors.Is(err, entity.ErrPublishPlatform):
			h.backToCampaign(w, r, "error", "Post Now currently publishes only Facebook drafts. Switch to the Facebook tab.")
		case errors.Is(err, entity.ErrNoPageSelected):
			h.backToCampaign(w, r, "error", "Please choose a Facebook page in Settings before publishing.")
		case errors.As(err, &partial):
			h.backToCampaign(w, r, "error", "The post went live but its status could not be saved.")
		case entity.IsPrecondition(err):
			h.backToCampaign(w, r, "error", err.Error())
		default:
			h.backToCampaign(w, r, "error", "Failed to publish.")
		}
	}
}

// AttachImage handles POST /review/{topic}/posts/{id}/image
func (h *Handler) AttachImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			h.backToCampaign(w, r, "error", "Image too large or invalid upload.")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			h.backToCampaign(w, r, "error", "Choose an image to upload.")
			return
		}
		defer file.Close()

		_, err = h.policy.AttachImage(r.Context(), policy.AttachImageInput{
			UserID: identity.FromContext(r.Context()).CurrentUserID(r.Context()),
			PostID: chi.URLParam(r, "id"),
			Image: policy.UploadInput{
				Reader:      file,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Filename:    header.Filename,
			},
		})
		if err != nil {
			msg := "Failed to upload image."
			if errors.Is(err, entity.ErrUnsupportedImage) {
				msg = "Only JPEG, PNG, GIF and WebP images are supported."
			}
			h.backToCampaign(w, r, "error", msg)
			return
		}

		h.backToCampaign(w, r, "info", "Image updated.")
	}
}

// backToCampaign redirects to the campaign screen on the tab the form was submitted from
func (h *Handler) backToCampaign(w http.ResponseWriter, r *http.Request, kind, msg string) {
	params := url.Values{}
	if platform := r.FormValue("platform"); platform != "" {
		params.Set("platform", platform)
	}
	redirectWithNotice(w, r, "/review/"+url.PathEscape(topicParam(r)), params, kind, msg)
}

type settingsPage struct {
	Pages    []entity.Connection
	Selected string
	LoadErr  bool
}

// Settings handles GET /settings.
// The resolved page is saved so that publishing targets the page shown.
func (h *Handler) Settings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolver := identity.FromContext(r.Context())
		userID := resolver.CurrentUserID(r.Context())
		saved, _ := resolver.SelectedPageID(r.Context())

		page := settingsPage{Selected: saved}
		out, err := h.policy.FacebookPages(r.Context(), userID, saved)
		if err != nil {
			page.LoadErr = true
		} else {
			page.Pages = out.Pages
			page.Selected = out.Selected
			if out.Selected != saved {
				if err := resolver.SelectPage(r.Context(), out.Selected); err != nil {
					h.logger.Warn("saving page selection failed", "page_id", out.Selected, "error", err)
				}
			}
		}

		h.render(w, "settings", http.StatusOK, pageData{
			Title:  "Settings",
			Nav:    "settings",
			UserID: userID,
			Notice: noticeFromQuery(r),
			Data:   page,
		})
	}
}

// SetUser handles POST /settings/user
func (h *Handler) SetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.FormValue("user_id")
		if err := identity.FromContext(r.Context()).SetCurrentUserID(r.Context(), id); err != nil {
			redirectWithNotice(w, r, "/settings", nil, "error", "Could not save the user id.")
			return
		}
		redirectWithNotice(w, r, "/settings", nil, "info", "Now acting as "+id+".")
	}
}

// SelectPage handles POST /settings/page
func (h *Handler) SelectPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := identity.FromContext(r.Context()).SelectPage(r.Context(), r.FormValue("page_id")); err != nil {
			redirectWithNotice(w, r, "/settings", nil, "error", "Could not save the page selection.")
			return
		}
		redirectWithNotice(w, r, "/settings", nil, "", "")
	}
}

// ConnectFacebook handles GET /connect/facebook
func (h *Handler) ConnectFacebook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, policy.FacebookAuthURL(h.authURL), http.StatusFound)
	}
}

// ConnectCallback handles GET /connect/callback, the OAuth redirect target.
// It always ends on the settings page.
func (h *Handler) ConnectCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		err := h.policy.CompleteConnection(r.Context(), policy.CompleteConnectionInput{
			UserID: identity.FromContext(r.Context()).CurrentUserID(r.Context()),
			Code:   q.Get("code"),
			State:  q.Get("state"),
		})
		switch {
		case errors.Is(err, entity.ErrMissingOAuthCode):
			redirectWithNotice(w, r, "/settings", nil, "error", "Missing code from Facebook.")
		case err != nil:
			redirectWithNotice(w, r, "/settings", nil, "error", "Failed to connect.")
		default:
			redirectWithNotice(w, r, "/settings", nil, "info", "Connected!")
		}
	}
}

// Calendar handles GET /calendar
func (h *Handler) Calendar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identity.FromContext(r.Context()).CurrentUserID(r.Context())
		notice := noticeFromQuery(r)

		posts, err := h.policy.Calendar(r.Context(), userID)
		if err != nil {
			notice = &Notice{Kind: "error", Message: "Could not load the calendar."}
		}

		h.render(w, "calendar", http.StatusOK, pageData{
			Title:  "Calendar",
			Nav:    "calendar",
			UserID: userID,
			Notice: notice,
			Data:   posts,
		})
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
