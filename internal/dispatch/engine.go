// internal/dispatch/engine.go

// Package dispatch orchestrates notification delivery: it builds records,
// persists them through the store, and fans a single event out to multiple
// recipients without letting one recipient's failure abort the rest.
package dispatch

import (
	"context"
	"sync"
	"time"

	"marketplace-notify/internal/builder"
	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/models"
	"marketplace-notify/internal/store"
	"marketplace-notify/internal/transport"
)

// UnreadInvalidator drops a recipient's cached unread count after a write.
type UnreadInvalidator interface {
	Invalidate(ctx context.Context, recipientID string) error
}

const pushTimeout = 10 * time.Second

type Engine struct {
	store  store.Store
	sink   transport.Sink
	cache  UnreadInvalidator
	logger logger.Logger
	clock  func() time.Time

	// pushWG lets tests wait for fire-and-forget pushes to settle.
	pushWG sync.WaitGroup
}

// New creates an Engine. cache may be nil when no unread cache is wired.
func New(st store.Store, sink transport.Sink, cache UnreadInvalidator, log logger.Logger) *Engine {
	if sink == nil {
		sink = transport.Noop{}
	}
	return &Engine{
		store:  st,
		sink:   sink,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "dispatch"}),
		clock:  time.Now,
	}
}

// DispatchSingle builds one record and submits it to the store, returning
// the stored record with its assigned ID. priorityOverride replaces the
// builder's priority when non-empty.
func (e *Engine) DispatchSingle(ctx context.Context, category models.Category, recipientID string, p builder.Payload, priorityOverride models.Priority) (*models.NotificationRecord, error) {
	start := time.Now()

	rec, err := builder.Build(category, recipientID, p, e.clock())
	if err != nil {
		metrics.DispatchFailures.WithLabelValues(string(category), string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}
	if priorityOverride != "" && priorityOverride.Valid() {
		rec.Priority = priorityOverride
	}

	stored, err := e.store.Create(ctx, rec)
	if err != nil {
		metrics.DispatchFailures.WithLabelValues(string(category), string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	metrics.NotificationsDispatched.WithLabelValues(string(category)).Inc()
	metrics.DispatchDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())

	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, recipientID); err != nil {
			e.logger.Warn("unread cache invalidation failed", map[string]interface{}{
				"recipientId": recipientID,
				"error":       err,
			})
		}
	}

	e.pushBestEffort(stored)

	e.logger.Info("notification dispatched", map[string]interface{}{
		"notificationId": stored.ID,
		"recipientId":    stored.RecipientID,
		"category":       string(stored.Category),
		"priority":       string(stored.Priority),
	})
	return stored, nil
}

// BulkResult tallies a fan-out. Per-recipient failure detail is not
// exposed; callers that need it must dispatch individually.
type BulkResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// DispatchBulk submits one record per recipient, concurrently and
// independently. Individual failures are counted, logged and never abort
// sibling dispatches.
func (e *Engine) DispatchBulk(ctx context.Context, category models.Category, recipientIDs []string, p builder.Payload) BulkResult {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res BulkResult
	)

	for _, recipientID := range recipientIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := e.DispatchSingle(ctx, category, id, p, "")

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
			} else {
				res.Succeeded++
			}
		}(recipientID)
	}
	wg.Wait()

	e.logger.Info("bulk dispatch finished", map[string]interface{}{
		"category":  string(category),
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	})
	return res
}

// pushBestEffort hands the record to the transport sink without blocking
// dispatch. Failures are logged and counted, never surfaced.
func (e *Engine) pushBestEffort(rec *models.NotificationRecord) {
	e.pushWG.Add(1)
	go func() {
		defer e.pushWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		if err := e.sink.Push(ctx, rec); err != nil {
			metrics.TransportPushFailures.Inc()
			e.logger.Warn("transport push failed", map[string]interface{}{
				"notificationId": rec.ID,
				"error":          err,
			})
		}
	}()
}

// WaitForPushes blocks until in-flight transport pushes finish. Used by
// tests and graceful shutdown.
func (e *Engine) WaitForPushes() {
	e.pushWG.Wait()
}
