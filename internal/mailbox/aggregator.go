// internal/mailbox/aggregator.go

// Package mailbox is the per-recipient read model: unread counts and
// read-state bookkeeping over the notification record store.
package mailbox

import (
	"context"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/models"
	"marketplace-notify/internal/store"
)

type Aggregator struct {
	store  store.Store
	cache  *CountCache
	logger logger.Logger
}

// New creates an Aggregator. cache may be nil, in which case every count
// hits the store.
func New(st store.Store, cache *CountCache, log logger.Logger) *Aggregator {
	return &Aggregator{
		store:  st,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "mailbox"}),
	}
}

// ListForRecipient returns the recipient's mailbox, newest first.
func (a *Aggregator) ListForRecipient(ctx context.Context, recipientID string) ([]models.NotificationRecord, error) {
	return a.store.List(ctx, store.Filter{RecipientID: recipientID})
}

// UnreadCount returns the number of unread records for the recipient; zero
// when none exist, never negative.
func (a *Aggregator) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	if n, ok := a.cache.Get(ctx, recipientID); ok {
		return n, nil
	}

	unread, err := a.store.List(ctx, store.Filter{RecipientID: recipientID, IsRead: store.Unread()})
	if err != nil {
		return 0, err
	}

	a.cache.Set(ctx, recipientID, len(unread))
	return len(unread), nil
}

// MarkRead flips a single record to read. No-op if already read; NOT_FOUND
// if the record does not exist.
func (a *Aggregator) MarkRead(ctx context.Context, recordID string) error {
	rec, err := a.store.Get(ctx, recordID)
	if err != nil {
		return err
	}
	if rec.IsRead {
		return nil
	}

	if err := a.store.Update(ctx, recordID, store.Patch{IsRead: store.Read()}); err != nil {
		return err
	}

	if err := a.cache.Invalidate(ctx, rec.RecipientID); err != nil {
		a.logger.Warn("unread cache invalidation failed", map[string]interface{}{
			"recipientId": rec.RecipientID,
			"error":       err,
		})
	}
	return nil
}

// MarkAllRead snapshots the recipient's unread records and marks each read,
// returning the number marked. Records created after the snapshot are not
// included; per-item failures are logged and skipped rather than aborting
// the batch.
func (a *Aggregator) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	unread, err := a.store.List(ctx, store.Filter{RecipientID: recipientID, IsRead: store.Unread()})
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, rec := range unread {
		if err := a.store.Update(ctx, rec.ID, store.Patch{IsRead: store.Read()}); err != nil {
			// A concurrent delete is fine to skip; anything else is logged
			// and skipped too so the rest of the mailbox still gets marked.
			if !apperrors.IsNotFound(err) {
				a.logger.Warn("mark read failed", map[string]interface{}{
					"recordId": rec.ID,
					"error":    err,
				})
			}
			continue
		}
		marked++
	}

	if err := a.cache.Invalidate(ctx, recipientID); err != nil {
		a.logger.Warn("unread cache invalidation failed", map[string]interface{}{
			"recipientId": recipientID,
			"error":       err,
		})
	}
	return marked, nil
}
