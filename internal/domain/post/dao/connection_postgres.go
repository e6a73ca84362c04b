package dao

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

// ConnectionPostgres implements ConnectionRepository for PostgreSQL
type ConnectionPostgres struct {
	pool *pgxpool.Pool
}

// NewConnectionPostgres creates a new PostgreSQL connection repository
func NewConnectionPostgres(pool *pgxpool.Pool) *ConnectionPostgres {
	return &ConnectionPostgres{pool: pool}
}

// ListByPlatform retrieves the raw connection rows of a user for a platform
func (r *ConnectionPostgres) ListByPlatform(ctx context.Context, userID string, platform entity.Platform) ([]entity.Connection, error) {
	query := `
		SELECT page_id, page_name
		FROM social_connections
		WHERE user_id::text = $1 AND platform = $2
	`

	rows, err := r.pool.Query(ctx, query, userID, string(platform))
	if err != nil {
		return nil, fmt.Errorf("querying connections: %w", err)
	}
	defer rows.Close()

	conns := make([]entity.Connection, 0)
	for rows.Next() {
		var pageID, pageName *string
		if err := rows.Scan(&pageID, &pageName); err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		conns = append(conns, entity.Connection{
			PageID:   deref(pageID),
			PageName: deref(pageName),
		})
	}

	return conns, rows.Err()
}
