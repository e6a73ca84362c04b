package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionCookie holds the session id when identities live in redis
const SessionCookie = "gw_session"

type contextKey struct{}

// Provider opens the identity store of an incoming request
type Provider interface {
	StoreFor(w http.ResponseWriter, r *http.Request) Store
}

// CookieProvider keeps identities in plain cookies
type CookieProvider struct {
	Options CookieOptions
}

// StoreFor returns a cookie store bound to the request
func (p CookieProvider) StoreFor(w http.ResponseWriter, r *http.Request) Store {
	return NewCookieStore(w, r, p.Options)
}

// RedisProvider keeps identities in redis, keyed by a session cookie
type RedisProvider struct {
	Client  *redis.Client
	TTL     time.Duration
	Options CookieOptions
}

// StoreFor returns the redis store of the request's session, starting a new session if needed
func (p RedisProvider) StoreFor(w http.ResponseWriter, r *http.Request) Store {
	sessionID := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			sessionID = c.Value
		}
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
		path := p.Options.Path
		if path == "" {
			path = "/"
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sessionID,
			Path:     path,
			MaxAge:   int(p.Options.MaxAge.Seconds()),
			Secure:   p.Options.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return NewRedisStore(p.Client, sessionID, p.TTL)
}

// Middleware attaches a resolver for the request's browser to the request context
func Middleware(provider Provider, defaultUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolver := NewResolver(provider.StoreFor(w, r), defaultUserID)
			next.ServeHTTP(w, r.WithContext(WithResolver(r.Context(), resolver)))
		})
	}
}

// WithResolver returns a context carrying the resolver
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// FromContext returns the resolver of the request.
// Without one, identities cannot be persisted and the default user is returned.
func FromContext(ctx context.Context) *Resolver {
	if r, ok := ctx.Value(contextKey{}).(*Resolver); ok {
		return r
	}
	return NewResolver(nil, DefaultUserID)
}
