package identity

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// CookieOptions controls the cookies written for identity values
type CookieOptions struct {
	Path   string
	MaxAge time.Duration
	Secure bool
}

// CookieStore persists identity values as browser cookies for one request.
// Values set during the request are visible to later reads of the same request.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	opts    CookieOptions
	written map[string]string
}

// NewCookieStore creates a store bound to a single request/response pair
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStore{
		w:       w,
		r:       r,
		opts:    opts,
		written: make(map[string]string),
	}
}

// Get reads a value from the request cookies
func (s *CookieStore) Get(_ context.Context, key string) (string, bool, error) {
	if v, ok := s.written[key]; ok {
		return v, true, nil
	}

	c, err := s.r.Cookie(key)
	if err != nil {
		// http.ErrNoCookie is the only error Cookie returns
		return "", false, nil
	}

	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set writes a value as a response cookie
func (s *CookieStore) Set(_ context.Context, key, value string) error {
	s.written[key] = value

	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.MaxAge.Seconds()),
		Secure:   s.opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
