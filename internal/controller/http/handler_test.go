package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/domain/post/review"
	"github.com/vadim/ghostwrite/internal/identity"
)

type fakePolicy struct {
	campaigns []entity.Campaign
	err       error

	lastPublish policy.PublishInput
	lastSave    policy.SaveContentInput
	lastImage   []byte
	lastTopic   string
}

func (f *fakePolicy) Refresh(ctx context.Context, userID string) ([]entity.Campaign, error) {
	return f.campaigns, f.err
}

func (f *fakePolicy) CampaignView(ctx context.Context, in policy.CampaignViewInput) (*review.CampaignView, error) {
	f.lastTopic = in.Topic
	c, ok := entity.FindCampaign(f.campaigns, in.Topic)
	if !ok {
		return nil, entity.ErrCampaignNotFound
	}
	v := review.NewCampaignView(review.ViewInput{Campaign: c, Tab: in.Tab})
	return &v, nil
}

func (f *fakePolicy) Approve(ctx context.Context, userID, postID string) (*entity.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Post{ID: postID, UserID: userID, Status: entity.PostStatusApproved}, nil
}

func (f *fakePolicy) Reject(ctx context.Context, userID, postID string) (*entity.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Post{ID: postID, UserID: userID, Status: entity.PostStatusRejected}, nil
}

func (f *fakePolicy) SaveContent(ctx context.Context, in policy.SaveContentInput) (*entity.Post, error) {
	f.lastSave = in
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Post{ID: in.PostID, Content: in.Content}, nil
}

func (f *fakePolicy) Publish(ctx context.Context, in policy.PublishInput) (*entity.Post, error) {
	f.lastPublish = in
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Post{ID: in.PostID, Status: entity.PostStatusPublished}, nil
}

func (f *fakePolicy) AttachImage(ctx context.Context, in policy.AttachImageInput) (*entity.Post, error) {
	data, err := io.ReadAll(in.Image.Reader)
	if err != nil {
		return nil, err
	}
	f.lastImage = data
	return &entity.Post{ID: in.PostID, ImageURL: "https://cdn.test/" + in.Image.Filename}, nil
}

func (f *fakePolicy) GenerateDrafts(ctx context.Context, in policy.GenerateDraftsInput) error {
	if in.Topic == "" {
		return entity.ErrEmptyTopic
	}
	return f.err
}

func (f *fakePolicy) FacebookPages(ctx context.Context, userID, saved string) (*policy.PagesOutput, error) {
	pages := []entity.Connection{{PageID: "p1", PageName: "One"}}
	return &policy.PagesOutput{Pages: pages, Selected: entity.ResolveSelectedPage(pages, saved)}, nil
}

func (f *fakePolicy) CompleteConnection(ctx context.Context, in policy.CompleteConnectionInput) error {
	if in.Code == "" {
		return entity.ErrMissingOAuthCode
	}
	return f.err
}

func (f *fakePolicy) Calendar(ctx context.Context, userID string) ([]entity.Post, error) {
	return []entity.Post{{ID: "s1", Status: entity.PostStatusScheduled}}, f.err
}

func newTestRouter(p *fakePolicy) chi.Router {
	r := chi.NewRouter()
	r.Use(identity.Middleware(identity.CookieProvider{}, identity.DefaultUserID))
	r.Route("/api/v1", func(r chi.Router) {
		NewIdentityHandler().RegisterRoutes(r)
		NewDraftHandler(p).RegisterRoutes(r)
		NewCampaignHandler(p).RegisterRoutes(r)
		NewPostHandler(p, 0).RegisterRoutes(r)
		NewConnectionHandler(p, policy.AuthURLInput{AppID: "app", GraphVersion: "v18.0", RedirectURI: "http://x/connect/callback"}).RegisterRoutes(r)
		NewCalendarHandler(p).RegisterRoutes(r)
	})
	return r
}

func doJSON(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: entity.ErrPostNotFound, want: http.StatusNotFound},
		{err: entity.ErrCampaignNotFound, want: http.StatusNotFound},
		{err: entity.ErrAlreadyInStatus, want: http.StatusConflict},
		{err: entity.ErrActionInFlight, want: http.StatusConflict},
		{err: entity.ErrPublishPlatform, want: http.StatusUnprocessableEntity},
		{err: entity.ErrNoPageSelected, want: http.StatusUnprocessableEntity},
		{err: entity.ErrNoActiveDraft, want: http.StatusUnprocessableEntity},
		{err: entity.ErrEmptyTopic, want: http.StatusBadRequest},
		{err: entity.ErrEmptyContent, want: http.StatusBadRequest},
		{err: entity.ErrUnsupportedImage, want: http.StatusUnsupportedMediaType},
		{err: fmt.Errorf("%w: boom", entity.ErrWebhookFailed), want: http.StatusBadGateway},
		{err: fmt.Errorf("%w: boom", entity.ErrStoreFailed), want: http.StatusBadGateway},
		{err: &entity.PartialPublishError{PostID: "p", Err: errors.New("x")}, want: http.StatusBadGateway},
		{err: errors.New("unexpected"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleDomainError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIdentityEndpoints(t *testing.T) {
	router := newTestRouter(&fakePolicy{})

	rec := doJSON(router, http.MethodGet, "/api/v1/identity/", "")
	var got IdentityResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.UserID != identity.DefaultUserID || got.SelectedPageID != nil {
		t.Errorf("unexpected default identity: %+v", got)
	}

	rec = doJSON(router, http.MethodPut, "/api/v1/identity/user", `{"user_id":"u-77"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	json.NewDecoder(rec.Body).Decode(&got)
	if got.UserID != "u-77" {
		t.Errorf("UserID = %q", got.UserID)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != identity.UserIDKey {
		t.Errorf("expected user cookie, got %+v", cookies)
	}

	rec = doJSON(router, http.MethodPut, "/api/v1/identity/page", `{"page_id":""}`)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("empty page id must not be persisted")
	}
}

func TestPublishUsesSelectedPage(t *testing.T) {
	p := &fakePolicy{}
	router := newTestRouter(p)

	rec := doJSON(router, http.MethodPost, "/api/v1/posts/fb1/publish", "",
		&http.Cookie{Name: identity.UserIDKey, Value: "u1"},
		&http.Cookie{Name: identity.SelectedPageKey, Value: "page-1"},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if p.lastPublish != (policy.PublishInput{UserID: "u1", PostID: "fb1", PageID: "page-1"}) {
		t.Errorf("unexpected publish input: %+v", p.lastPublish)
	}
}

func TestPublishPreconditionStatus(t *testing.T) {
	router := newTestRouter(&fakePolicy{err: entity.ErrNoPageSelected})

	rec := doJSON(router, http.MethodPost, "/api/v1/posts/fb1/publish", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSaveContent(t *testing.T) {
	p := &fakePolicy{}
	router := newTestRouter(p)

	rec := doJSON(router, http.MethodPut, "/api/v1/posts/p1/content", `{"content":"new words"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if p.lastSave.Content != "new words" || p.lastSave.PostID != "p1" {
		t.Errorf("unexpected save input: %+v", p.lastSave)
	}

	rec = doJSON(router, http.MethodPut, "/api/v1/posts/p1/content", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for invalid JSON", rec.Code)
	}
}

func TestApproveReject(t *testing.T) {
	router := newTestRouter(&fakePolicy{})

	rec := doJSON(router, http.MethodPost, "/api/v1/posts/p1/approve", "")
	var post entity.Post
	json.NewDecoder(rec.Body).Decode(&post)
	if post.Status != entity.PostStatusApproved {
		t.Errorf("Status = %q", post.Status)
	}

	router = newTestRouter(&fakePolicy{err: entity.ErrAlreadyInStatus})
	rec = doJSON(router, http.MethodPost, "/api/v1/posts/p1/reject", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCampaignEndpoints(t *testing.T) {
	p := &fakePolicy{campaigns: entity.GroupByTopic([]entity.Post{
		{ID: "1", Topic: "AI / Retail", Platform: entity.PlatformInstagram, Content: "hello"},
	})}
	router := newTestRouter(p)

	rec := doJSON(router, http.MethodGet, "/api/v1/campaigns", "")
	var list CampaignListResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if list.Total != 1 || list.Campaigns[0].Topic != "AI / Retail" {
		t.Errorf("unexpected list: %+v", list)
	}

	rec = doJSON(router, http.MethodGet, "/api/v1/campaigns/AI%20%2F%20Retail?platform=instagram", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if p.lastTopic != "AI / Retail" {
		t.Errorf("topic = %q", p.lastTopic)
	}

	var view map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&view)
	if view["active_tab"] != "instagram" {
		t.Errorf("active_tab = %v", view["active_tab"])
	}
	prev, _ := view["preview"].(map[string]interface{})
	if prev["placeholder"] != "hello..." {
		t.Errorf("unexpected preview: %v", view["preview"])
	}

	rec = doJSON(router, http.MethodGet, "/api/v1/campaigns/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCampaignTopicDecodedOnce(t *testing.T) {
	p := &fakePolicy{campaigns: entity.GroupByTopic([]entity.Post{
		{ID: "1", Topic: "50%41 off", Platform: entity.PlatformFacebook, Content: "sale"},
	})}
	router := newTestRouter(p)

	rec := doJSON(router, http.MethodGet, "/api/v1/campaigns/50%2541%20off", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if p.lastTopic != "50%41 off" {
		t.Errorf("topic = %q, want %q", p.lastTopic, "50%41 off")
	}
}

func TestGenerateDrafts(t *testing.T) {
	router := newTestRouter(&fakePolicy{})

	if rec := doJSON(router, http.MethodPost, "/api/v1/drafts/generate", `{"topic":"Coffee"}`); rec.Code != http.StatusAccepted {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := doJSON(router, http.MethodPost, "/api/v1/drafts/generate", `{"topic":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}

	router = newTestRouter(&fakePolicy{err: fmt.Errorf("%w: status 500", entity.ErrWebhookFailed)})
	if rec := doJSON(router, http.MethodPost, "/api/v1/drafts/generate", `{"topic":"Coffee"}`); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestConnectionEndpoints(t *testing.T) {
	router := newTestRouter(&fakePolicy{})

	rec := doJSON(router, http.MethodGet, "/api/v1/connections/facebook/", "")
	var pages policy.PagesOutput
	json.NewDecoder(rec.Body).Decode(&pages)
	if pages.Selected != "p1" {
		t.Errorf("Selected = %q", pages.Selected)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 1 || cookies[0].Value != "p1" {
		t.Errorf("expected resolved page to be saved, got %+v", cookies)
	}

	rec = doJSON(router, http.MethodGet, "/api/v1/connections/facebook/authorize", "")
	var auth AuthorizeResponse
	json.NewDecoder(rec.Body).Decode(&auth)
	if !strings.Contains(auth.URL, "client_id=app") || !strings.Contains(auth.URL, "state=facebook") {
		t.Errorf("unexpected url %q", auth.URL)
	}

	if rec := doJSON(router, http.MethodPost, "/api/v1/connections/facebook/callback", `{"code":"c","state":"facebook"}`); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := doJSON(router, http.MethodPost, "/api/v1/connections/facebook/callback", `{"state":"facebook"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCalendar(t *testing.T) {
	router := newTestRouter(&fakePolicy{})

	rec := doJSON(router, http.MethodGet, "/api/v1/calendar", "")
	var out CalendarResponse
	json.NewDecoder(rec.Body).Decode(&out)
	if out.Total != 1 || out.Posts[0].ID != "s1" {
		t.Errorf("unexpected calendar: %+v", out)
	}
}

func TestAttachImage(t *testing.T) {
	p := &fakePolicy{}
	router := newTestRouter(p)

	upload := func(contentType string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="cover.png"`)
		h.Set("Content-Type", contentType)
		part, _ := mw.CreatePart(h)
		part.Write([]byte("image-bytes"))
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/p1/image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("image/png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if string(p.lastImage) != "image-bytes" {
		t.Errorf("unexpected upload body %q", p.lastImage)
	}

	if rec := upload("application/pdf"); rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d for pdf", rec.Code)
	}
}

func TestSwaggerSpecJSON(t *testing.T) {
	spec := []byte("openapi: 3.0.3\ninfo:\n  title: Test\n  version: \"1\"\npaths: {}\n")
	r := chi.NewRouter()
	NewSwaggerHandler("Test", spec).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))

	var doc map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("openapi document is not JSON: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v", doc["openapi"])
	}
}
