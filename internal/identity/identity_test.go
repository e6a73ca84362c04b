package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage disabled")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("storage disabled")
}

func TestCurrentUserIDDefault(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		store Store
	}{
		{name: "nil store", store: nil},
		{name: "empty store", store: NewMemoryStore()},
		{name: "failing store", store: failingStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.store, "")
			if got := r.CurrentUserID(ctx); got != DefaultUserID {
				t.Errorf("CurrentUserID() = %q, want %q", got, DefaultUserID)
			}
		})
	}
}

func TestUserIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMemoryStore(), "fallback")

	if got := r.CurrentUserID(ctx); got != "fallback" {
		t.Fatalf("expected configured default, got %q", got)
	}
	if err := r.SetCurrentUserID(ctx, "user-42"); err != nil {
		t.Fatalf("SetCurrentUserID() error = %v", err)
	}
	if got := r.CurrentUserID(ctx); got != "user-42" {
		t.Errorf("CurrentUserID() = %q, want user-42", got)
	}
}

func TestSelectedPage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := NewResolver(store, "")

	if _, ok := r.SelectedPageID(ctx); ok {
		t.Fatal("expected no page selected")
	}

	if err := r.SelectPage(ctx, ""); err != nil {
		t.Fatalf("SelectPage() error = %v", err)
	}
	if _, ok := r.SelectedPageID(ctx); ok {
		t.Error("empty selection must not be persisted")
	}

	if err := r.SelectPage(ctx, "page-1"); err != nil {
		t.Fatalf("SelectPage() error = %v", err)
	}
	if id, ok := r.SelectedPageID(ctx); !ok || id != "page-1" {
		t.Errorf("SelectedPageID() = %q, %v", id, ok)
	}

	// the user id is an independent key
	if got := r.CurrentUserID(ctx); got != DefaultUserID {
		t.Errorf("page selection leaked into user id: %q", got)
	}

	// set distinguishes an empty value from absence
	if err := r.SetSelectedPageID(ctx, ""); err != nil {
		t.Fatalf("SetSelectedPageID() error = %v", err)
	}
	if id, ok := r.SelectedPageID(ctx); !ok || id != "" {
		t.Errorf("expected empty but set page, got %q, %v", id, ok)
	}
}

func TestCookieStore(t *testing.T) {
	ctx := context.Background()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	store := NewCookieStore(rec, req, CookieOptions{MaxAge: time.Hour})

	if err := store.Set(ctx, UserIDKey, "a b&c"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, ok, _ := store.Get(ctx, UserIDKey); !ok || v != "a b&c" {
		t.Errorf("value not visible within the request: %q", v)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != UserIDKey {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
	if cookies[0].MaxAge != 3600 || !cookies[0].HttpOnly {
		t.Errorf("unexpected cookie attributes: %+v", cookies[0])
	}

	// next request carries the cookie back
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	store = NewCookieStore(httptest.NewRecorder(), next, CookieOptions{})

	if v, ok, err := store.Get(ctx, UserIDKey); err != nil || !ok || v != "a b&c" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}
	if _, ok, _ := store.Get(ctx, SelectedPageKey); ok {
		t.Error("unexpected selected page")
	}
}

type fakeHash struct {
	fields  map[string]map[string]string
	expires map[string]time.Duration
	err     error
}

func newFakeHash() *fakeHash {
	return &fakeHash{
		fields:  make(map[string]map[string]string),
		expires: make(map[string]time.Duration),
	}
}

func (f *fakeHash) HGet(_ context.Context, key, field string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.fields[key][field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeHash) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	if f.fields[key] == nil {
		f.fields[key] = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		f.fields[key][values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeHash) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeHash()
	store := NewRedisStore(client, "s1", time.Hour)

	if _, ok, err := store.Get(ctx, UserIDKey); ok || err != nil {
		t.Fatalf("expected missing value, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, UserIDKey, "user-7"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, ok, err := store.Get(ctx, UserIDKey); err != nil || !ok || v != "user-7" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}
	if client.expires["gw:session:s1"] != time.Hour {
		t.Errorf("expected session expiry to be refreshed")
	}

	client.err = errors.New("connection refused")
	if _, _, err := store.Get(ctx, UserIDKey); err == nil {
		t.Error("expected read error")
	}

	// resolver falls back to the default on read errors
	if got := NewResolver(store, "").CurrentUserID(ctx); got != DefaultUserID {
		t.Errorf("CurrentUserID() = %q, want default", got)
	}
}

func TestMiddleware(t *testing.T) {
	var seen string
	handler := Middleware(CookieProvider{}, "anon")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context()).CurrentUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: UserIDKey, Value: "cookie-user"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "cookie-user" {
		t.Errorf("expected cookie user, got %q", seen)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != "anon" {
		t.Errorf("expected configured default, got %q", seen)
	}
}

func TestFromContextWithoutResolver(t *testing.T) {
	ctx := context.Background()
	r := FromContext(ctx)

	if got := r.CurrentUserID(ctx); got != DefaultUserID {
		t.Errorf("CurrentUserID() = %q", got)
	}
	if err := r.SetCurrentUserID(ctx, "x"); err != nil {
		t.Errorf("SetCurrentUserID() error = %v", err)
	}
	if got := r.CurrentUserID(ctx); got != DefaultUserID {
		t.Errorf("store-less resolver must not persist, got %q", got)
	}
}
