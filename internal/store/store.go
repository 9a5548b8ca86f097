// internal/store/store.go

// Package store defines the notification record store consumed by the
// dispatch core, plus its PostgreSQL and in-memory implementations. The
// store exclusively owns NotificationRecord persistence.
package store

import (
	"context"

	"marketplace-notify/internal/models"
)

// Filter narrows List results. A nil IsRead matches both read states.
type Filter struct {
	RecipientID string
	IsRead      *bool
}

// Patch carries the only mutation a record admits after creation.
type Patch struct {
	IsRead *bool
}

// Store persists notification records. Create assigns ID and Seq; List
// returns records sorted by CreatedAt descending, Seq breaking ties.
// Implementations report missing records as NOT_FOUND and connectivity
// problems as STORE_UNAVAILABLE.
type Store interface {
	Create(ctx context.Context, rec *models.NotificationRecord) (*models.NotificationRecord, error)
	Get(ctx context.Context, id string) (*models.NotificationRecord, error)
	List(ctx context.Context, f Filter) ([]models.NotificationRecord, error)
	Update(ctx context.Context, id string, p Patch) error
	Delete(ctx context.Context, id string) error
}

// Unread is a convenience for building Filter.IsRead pointers.
func Unread() *bool {
	v := false
	return &v
}

// Read is a convenience for building Filter.IsRead pointers.
func Read() *bool {
	v := true
	return &v
}
