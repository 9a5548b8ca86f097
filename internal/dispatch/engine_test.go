// internal/dispatch/engine_test.go
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"marketplace-notify/internal/builder"
	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/models"
	"marketplace-notify/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

// captureSink records every pushed notification.
type captureSink struct {
	mu     sync.Mutex
	pushed []*models.NotificationRecord
}

func (s *captureSink) Push(_ context.Context, rec *models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = append(s.pushed, rec)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pushed)
}

// failingSink always rejects the push.
type failingSink struct{}

func (failingSink) Push(context.Context, *models.NotificationRecord) error {
	return fmt.Errorf("transport down")
}

// flakyStore fails Create for a chosen set of recipients and delegates
// everything else to an in-memory store.
type flakyStore struct {
	*store.Memory
	failFor map[string]bool
}

func (f *flakyStore) Create(ctx context.Context, rec *models.NotificationRecord) (*models.NotificationRecord, error) {
	if f.failFor[rec.RecipientID] {
		return nil, apperrors.NewStoreUnavailableError(fmt.Errorf("connection refused"))
	}
	return f.Memory.Create(ctx, rec)
}

type captureInvalidator struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *captureInvalidator) Invalidate(_ context.Context, recipientID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, recipientID)
	return nil
}

// ==========================
// Core Functionality Tests
// ==========================

func TestEngine_DispatchSingle(t *testing.T) {
	mem := store.NewMemory()
	sink := &captureSink{}
	cache := &captureInvalidator{}
	engine := New(mem, sink, cache, logger.NewTestLogger(t))

	rec, err := engine.DispatchSingle(context.Background(), models.CategoryStockAlert, "seller-001",
		builder.StockAlertPayload{ProductName: "iPhone 15 Pro", CurrentStock: 3}, "")

	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "seller-001", rec.RecipientID)
	assert.Equal(t, models.PriorityUrgent, rec.Priority)
	assert.Equal(t, 1, mem.Len())

	engine.WaitForPushes()
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, []string{"seller-001"}, cache.invalidated)
}

func TestEngine_DispatchSingle_PriorityOverride(t *testing.T) {
	engine := New(store.NewMemory(), nil, nil, logger.NewTestLogger(t))

	rec, err := engine.DispatchSingle(context.Background(), models.CategoryOrderUpdate, "customer-001",
		builder.OrderUpdatePayload{OrderID: "ORD-1", Status: builder.StatusConfirmed, Amount: 25999},
		models.PriorityHigh)

	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, rec.Priority)
}

func TestEngine_DispatchSingle_ValidationFailure(t *testing.T) {
	mem := store.NewMemory()
	engine := New(mem, nil, nil, logger.NewTestLogger(t))

	_, err := engine.DispatchSingle(context.Background(), models.CategoryFlashSale, "customer-001",
		builder.FlashSalePayload{ProductName: "iPhone 15 Pro"}, "")

	assert.True(t, apperrors.IsMissingField(err))
	assert.Equal(t, 0, mem.Len(), "nothing persisted on validation failure")
}

func TestEngine_DispatchSingle_StoreFailure(t *testing.T) {
	fs := &flakyStore{Memory: store.NewMemory(), failFor: map[string]bool{"customer-001": true}}
	engine := New(fs, nil, nil, logger.NewTestLogger(t))

	_, err := engine.DispatchSingle(context.Background(), models.CategoryReviewReminder, "customer-001",
		builder.ReviewReminderPayload{OrderID: "ORD-1", ProductName: "iPhone 15 Pro"}, "")

	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestEngine_SinkFailureDoesNotSurface(t *testing.T) {
	mem := store.NewMemory()
	engine := New(mem, failingSink{}, nil, logger.NewTestLogger(t))

	_, err := engine.DispatchSingle(context.Background(), models.CategoryPriceDrop, "customer-001",
		builder.PriceDropPayload{ProductName: "iPhone 15 Pro", OldPrice: 134900, NewPrice: 129900}, "")

	require.NoError(t, err)
	engine.WaitForPushes()
	assert.Equal(t, 1, mem.Len(), "record persisted despite transport failure")
}

// ==========================
// Bulk Fan-Out Tests
// ==========================

func TestEngine_DispatchBulk_PartialFailure(t *testing.T) {
	failFor := map[string]bool{"customer-003": true, "customer-006": true, "customer-009": true}
	fs := &flakyStore{Memory: store.NewMemory(), failFor: failFor}
	engine := New(fs, nil, nil, logger.NewTestLogger(t))

	var recipients []string
	for i := 1; i <= 10; i++ {
		recipients = append(recipients, fmt.Sprintf("customer-%03d", i))
	}

	res := engine.DispatchBulk(context.Background(), models.CategoryFlashSale, recipients,
		builder.FlashSalePayload{ProductName: "iPhone 15 Pro", Discount: 20, ExpiresAt: "2025-06-02T12:00:00Z"})

	assert.Equal(t, 7, res.Succeeded)
	assert.Equal(t, 3, res.Failed)
	assert.Equal(t, 7, fs.Len())
}

func TestEngine_DispatchBulk_Empty(t *testing.T) {
	engine := New(store.NewMemory(), nil, nil, logger.NewTestLogger(t))

	res := engine.DispatchBulk(context.Background(), models.CategoryFlashSale, nil,
		builder.FlashSalePayload{ProductName: "iPhone 15 Pro", Discount: 20, ExpiresAt: "2025-06-02T12:00:00Z"})

	assert.Equal(t, BulkResult{}, res)
}

// ==========================
// Helper Tests
// ==========================

func TestEngine_Helpers(t *testing.T) {
	tests := []struct {
		name     string
		send     func(e *Engine) (*models.NotificationRecord, error)
		category models.Category
		priority models.Priority
		title    string
	}{
		{
			name: "order confirmation overrides to high",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendOrderConfirmation(context.Background(), "customer-001", "ORD-1", 25999)
			},
			category: models.CategoryOrderUpdate,
			priority: models.PriorityHigh,
			title:    "Order Confirmed! 🎉",
		},
		{
			name: "new order to seller overrides to urgent",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendNewOrderToSeller(context.Background(), "seller-001", "ORD-1", "John Doe", 25999)
			},
			category: models.CategoryOrderUpdate,
			priority: models.PriorityUrgent,
			title:    "New Order Received! 📦",
		},
		{
			name: "delivery assignment",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendDeliveryAssignment(context.Background(), "courier-001", "ORD-1", "Electronics Store, Sector 18", 2.5)
			},
			category: models.CategoryDeliveryAssigned,
			priority: models.PriorityUrgent,
			title:    "New Delivery Assigned 🛵",
		},
		{
			name: "low stock alert",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendLowStockAlert(context.Background(), "seller-001", "iPhone 15 Pro", 3)
			},
			category: models.CategoryStockAlert,
			priority: models.PriorityUrgent,
			title:    "Low Stock Alert! ⚠️",
		},
		{
			name: "flash sale alert",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendFlashSaleAlert(context.Background(), "customer-001", "iPhone 15 Pro", 20, "2025-06-02T12:00:00Z")
			},
			category: models.CategoryFlashSale,
			priority: models.PriorityUrgent,
			title:    "Flash Sale Alert! ⚡",
		},
		{
			name: "price drop alert",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendPriceDropAlert(context.Background(), "customer-001", "iPhone 15 Pro", 134900, 129900)
			},
			category: models.CategoryPriceDrop,
			priority: models.PriorityNormal,
			title:    "Price Drop Alert 📉",
		},
		{
			name: "review reminder",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendReviewReminder(context.Background(), "customer-001", "ORD-1", "iPhone 15 Pro")
			},
			category: models.CategoryReviewReminder,
			priority: models.PriorityLow,
			title:    "Review Reminder ⭐",
		},
		{
			name: "payment success",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendPaymentSuccess(context.Background(), "customer-001", "ORD-1", 25999, "UPI")
			},
			category: models.CategoryPaymentSuccess,
			priority: models.PriorityHigh,
			title:    "Payment Successful! 💳",
		},
		{
			name: "payment failed",
			send: func(e *Engine) (*models.NotificationRecord, error) {
				return e.SendPaymentFailed(context.Background(), "customer-001", "ORD-1", 25999, "Insufficient balance.")
			},
			category: models.CategoryPaymentFailed,
			priority: models.PriorityUrgent,
			title:    "Payment Failed ❌",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(store.NewMemory(), nil, nil, logger.NewTestLogger(t))

			rec, err := tt.send(engine)
			require.NoError(t, err)
			assert.Equal(t, tt.category, rec.Category)
			assert.Equal(t, tt.priority, rec.Priority)
			assert.Equal(t, tt.title, rec.Title)
		})
	}
}

func TestEngine_InjectedClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	engine := New(store.NewMemory(), nil, nil, logger.NewTestLogger(t))
	engine.clock = func() time.Time { return fixed }

	rec, err := engine.SendLowStockAlert(context.Background(), "seller-001", "iPhone 15 Pro", 3)
	require.NoError(t, err)
	assert.Equal(t, fixed, rec.CreatedAt)
}
