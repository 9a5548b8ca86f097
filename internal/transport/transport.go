// internal/transport/transport.go

// Package transport is the best-effort push sink the dispatch engine fans
// records into. Push failures are logged by the caller and never block or
// roll back dispatch.
package transport

import (
	"context"

	"marketplace-notify/internal/models"
)

// Sink delivers a persisted record to an external push facility.
type Sink interface {
	Push(ctx context.Context, rec *models.NotificationRecord) error
}

// Noop is the sink used when no transport is configured.
type Noop struct{}

func (Noop) Push(context.Context, *models.NotificationRecord) error { return nil }
