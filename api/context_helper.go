package api

import (
	"context"
	"time"
)

// QueryTimeout bounds a single archive database round trip.
const QueryTimeout = 15 * time.Second

// WithQueryTimeout derives a context for one database query.
func WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, QueryTimeout)
}
