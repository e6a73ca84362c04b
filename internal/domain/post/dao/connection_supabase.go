package dao

import (
	"context"
	"fmt"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/httpx/upstream/supabase"
)

// ConnectionSupabase implements ConnectionRepository over the Supabase REST interface
type ConnectionSupabase struct {
	client *supabase.Client
}

// NewConnectionSupabase creates a new REST-backed connection repository
func NewConnectionSupabase(client *supabase.Client) *ConnectionSupabase {
	return &ConnectionSupabase{client: client}
}

type connectionRow struct {
	PageID   *string `json:"page_id"`
	PageName *string `json:"page_name"`
}

// ListByPlatform retrieves the raw connection rows of a user for a platform
func (r *ConnectionSupabase) ListByPlatform(ctx context.Context, userID string, platform entity.Platform) ([]entity.Connection, error) {
	var rows []connectionRow
	err := r.client.Select(ctx, supabase.SelectInput{
		Table:   ConnectionsTable,
		Columns: "page_id,page_name",
		Filters: []supabase.Filter{
			supabase.Eq("user_id", userID),
			supabase.Eq("platform", string(platform)),
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("selecting connections: %w", err)
	}

	conns := make([]entity.Connection, 0, len(rows))
	for _, row := range rows {
		conns = append(conns, entity.Connection{
			PageID:   deref(row.PageID),
			PageName: deref(row.PageName),
		})
	}

	return conns, nil
}
