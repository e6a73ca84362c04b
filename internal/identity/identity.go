// Package identity resolves which user and Facebook page the current browser acts as.
//
// There is no authentication: the user id is whatever the browser has persisted,
// falling back to a shared demo id.
package identity

import (
	"context"
	"log/slog"
)

const (
	// DefaultUserID is used when nothing has been persisted
	DefaultUserID = "demo-user-123"

	// UserIDKey is the persistence key of the current user id
	UserIDKey = "gw_user_id"
	// SelectedPageKey is the persistence key of the selected Facebook page id
	SelectedPageKey = "gw_selected_facebook_page_id"
)

// Store is browser-side key/value persistence.
// Get reports whether the key has been set, so an empty value is distinct from absence.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Resolver reads and writes the identity of one browser
type Resolver struct {
	store         Store
	defaultUserID string
}

// NewResolver creates a resolver over a store. A nil store always yields the default.
func NewResolver(store Store, defaultUserID string) *Resolver {
	if defaultUserID == "" {
		defaultUserID = DefaultUserID
	}
	return &Resolver{
		store:         store,
		defaultUserID: defaultUserID,
	}
}

// CurrentUserID returns the persisted user id, or the default when nothing usable is stored.
// It never fails: read errors are logged and treated as absence.
func (r *Resolver) CurrentUserID(ctx context.Context) string {
	if id, ok := r.get(ctx, UserIDKey); ok && id != "" {
		return id
	}
	return r.defaultUserID
}

// SetCurrentUserID persists a user id as is
func (r *Resolver) SetCurrentUserID(ctx context.Context, id string) error {
	return r.set(ctx, UserIDKey, id)
}

// SelectedPageID returns the persisted Facebook page id and whether one is set
func (r *Resolver) SelectedPageID(ctx context.Context) (string, bool) {
	return r.get(ctx, SelectedPageKey)
}

// SetSelectedPageID persists a Facebook page id as is
func (r *Resolver) SetSelectedPageID(ctx context.Context, id string) error {
	return r.set(ctx, SelectedPageKey, id)
}

// SelectPage persists a page selection. Empty ids are ignored.
func (r *Resolver) SelectPage(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return r.SetSelectedPageID(ctx, id)
}

func (r *Resolver) get(ctx context.Context, key string) (string, bool) {
	if r.store == nil {
		return "", false
	}
	v, ok, err := r.store.Get(ctx, key)
	if err != nil {
		slog.Warn("identity read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (r *Resolver) set(ctx context.Context, key, value string) error {
	if r.store == nil {
		return nil
	}
	return r.store.Set(ctx, key, value)
}
