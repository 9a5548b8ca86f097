// internal/sequencer/sequencer_test.go
package sequencer

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/directory"
	"marketplace-notify/internal/dispatch"
	"marketplace-notify/internal/models"
	"marketplace-notify/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fixture struct {
	store *store.Memory
	dir   *directory.Static
	seq   *Sequencer
}

func newFixture(t *testing.T, reminderDelay time.Duration) *fixture {
	t.Helper()
	mem := store.NewMemory()
	dir := directory.NewStatic()
	engine := dispatch.New(mem, nil, nil, logger.NewTestLogger(t))
	seq := New(engine, dir, reminderDelay, logger.NewTestLogger(t))
	t.Cleanup(seq.Stop)
	return &fixture{store: mem, dir: dir, seq: seq}
}

func testOrder(id string) models.Order {
	return models.Order{
		ID:            id,
		CustomerName:  "John Doe",
		ProductName:   "iPhone 15 Pro",
		Amount:        25999,
		PickupAddress: "Electronics Store, Sector 18",
		DistanceKM:    2.5,
	}
}

func (f *fixture) placeOrder(t *testing.T, orderID string) {
	t.Helper()
	f.dir.Register(orderID, "customer-001", "seller-001", "courier-001")
	require.NoError(t, f.seq.PlaceOrder(context.Background(), testOrder(orderID)))
}

func (f *fixture) recordsFor(t *testing.T, recipientID string, category models.Category) []models.NotificationRecord {
	t.Helper()
	all, err := f.store.List(context.Background(), store.Filter{RecipientID: recipientID})
	require.NoError(t, err)

	var out []models.NotificationRecord
	for _, rec := range all {
		if rec.Category == category {
			out = append(out, rec)
		}
	}
	return out
}

func (f *fixture) advanceTo(t *testing.T, orderID string, states ...models.OrderState) {
	t.Helper()
	for _, st := range states {
		require.NoError(t, f.seq.Advance(context.Background(), orderID, st))
	}
}

var happyPathTail = []models.OrderState{
	models.StateConfirmed,
	models.StatePreparing,
	models.StateReadyForPickup,
	models.StatePickedUp,
	models.StateOutForDelivery,
	models.StateDelivered,
}

// ==========================
// Placement Tests
// ==========================

func TestSequencer_PlaceOrder_NotifiesSeller(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")

	state, ok := f.seq.State("ORD-1")
	require.True(t, ok)
	assert.Equal(t, models.StatePending, state)

	sellerRecords := f.recordsFor(t, "seller-001", models.CategoryOrderUpdate)
	require.Len(t, sellerRecords, 1)
	assert.Equal(t, "New Order Received! 📦", sellerRecords[0].Title)
	assert.Equal(t, models.PriorityUrgent, sellerRecords[0].Priority)
}

func TestSequencer_PlaceOrder_Duplicate(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")

	require.NoError(t, f.seq.PlaceOrder(context.Background(), testOrder("ORD-1")))
	assert.Len(t, f.recordsFor(t, "seller-001", models.CategoryOrderUpdate), 1)
}

func TestSequencer_PlaceOrder_UnknownSeller(t *testing.T) {
	f := newFixture(t, time.Hour)

	// Order is tracked, but the seller cannot be resolved.
	err := f.seq.PlaceOrder(context.Background(), testOrder("ORD-unmapped"))
	assert.True(t, apperrors.IsUnknownRecipient(err))

	state, ok := f.seq.State("ORD-unmapped")
	require.True(t, ok)
	assert.Equal(t, models.StatePending, state)
}

// ==========================
// Transition Tests
// ==========================

func TestSequencer_Advance_Idempotent(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")

	require.NoError(t, f.seq.Advance(context.Background(), "ORD-1", models.StateConfirmed))
	require.NoError(t, f.seq.Advance(context.Background(), "ORD-1", models.StateConfirmed))

	customerRecords := f.recordsFor(t, "customer-001", models.CategoryOrderUpdate)
	require.Len(t, customerRecords, 1, "duplicate transition produces no second record")
	assert.Equal(t, "Order Confirmed! 🎉", customerRecords[0].Title)
	assert.Equal(t, models.PriorityHigh, customerRecords[0].Priority)
}

func TestSequencer_Advance_SkipRejected(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")

	err := f.seq.Advance(context.Background(), "ORD-1", models.StatePreparing)
	assert.Equal(t, apperrors.ErrCodeInvalidTransition, apperrors.CodeOf(err))

	state, _ := f.seq.State("ORD-1")
	assert.Equal(t, models.StatePending, state)
	assert.Empty(t, f.recordsFor(t, "customer-001", models.CategoryOrderUpdate))
}

func TestSequencer_Advance_UnknownOrder(t *testing.T) {
	f := newFixture(t, time.Hour)

	err := f.seq.Advance(context.Background(), "ORD-missing", models.StateConfirmed)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSequencer_Advance_InvalidState(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")

	err := f.seq.Advance(context.Background(), "ORD-1", "teleported")
	assert.Equal(t, apperrors.ErrCodeInvalidTransition, apperrors.CodeOf(err))
}

func TestSequencer_Ordering(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", models.StateConfirmed, models.StatePreparing)

	records := f.recordsFor(t, "customer-001", models.CategoryOrderUpdate)
	require.Len(t, records, 2)

	// List is newest first; walk oldest to newest.
	for i := len(records) - 1; i > 0; i-- {
		older, newer := records[i], records[i-1]
		assert.False(t, newer.CreatedAt.Before(older.CreatedAt),
			"timestamps must be non-decreasing in transition order")
		assert.Greater(t, newer.Seq, older.Seq)
	}
}

func TestSequencer_ReadyForPickup_Fanout(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", models.StateConfirmed, models.StatePreparing, models.StateReadyForPickup)

	customerRecords := f.recordsFor(t, "customer-001", models.CategoryOrderUpdate)
	require.Len(t, customerRecords, 3)

	courierRecords := f.recordsFor(t, "courier-001", models.CategoryDeliveryAssigned)
	require.Len(t, courierRecords, 1)
	assert.Equal(t, "Electronics Store, Sector 18", courierRecords[0].Payload["pickup_address"])
	assert.Equal(t, 2.5, courierRecords[0].Payload["distance"])
	assert.Equal(t, models.PriorityUrgent, courierRecords[0].Priority)
}

func TestSequencer_FullHappyPath(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", happyPathTail...)

	state, _ := f.seq.State("ORD-1")
	assert.Equal(t, models.StateDelivered, state)

	customerRecords := f.recordsFor(t, "customer-001", models.CategoryOrderUpdate)
	assert.Len(t, customerRecords, 6)

	// Delivered escalates to high.
	assert.Equal(t, models.PriorityHigh, customerRecords[0].Priority)
	assert.Equal(t, "Order DELIVERED ✅", customerRecords[0].Title)
}

func TestSequencer_ConcurrentOrders(t *testing.T) {
	f := newFixture(t, time.Hour)

	const n = 8
	for i := 0; i < n; i++ {
		f.placeOrder(t, fmt.Sprintf("ORD-%d", i))
	}

	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func(orderID string) {
			defer func() { done <- struct{}{} }()
			for _, st := range happyPathTail {
				_ = f.seq.Advance(context.Background(), orderID, st)
			}
		}(fmt.Sprintf("ORD-%d", i))
	}
	for i := 0; i < n; i++ {
		<-done
	}

	for i := 0; i < n; i++ {
		state, ok := f.seq.State(fmt.Sprintf("ORD-%d", i))
		require.True(t, ok)
		assert.Equal(t, models.StateDelivered, state)
	}
}

// ==========================
// Cancellation Tests
// ==========================

func TestSequencer_Cancel_NotifiesCustomerAndSeller(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", models.StateConfirmed, models.StateCancelled)

	state, _ := f.seq.State("ORD-1")
	assert.Equal(t, models.StateCancelled, state)

	customerRecords := f.recordsFor(t, "customer-001", models.CategoryOrderUpdate)
	require.Len(t, customerRecords, 2)
	assert.Equal(t, "Order CANCELLED ❌", customerRecords[0].Title)

	sellerRecords := f.recordsFor(t, "seller-001", models.CategoryOrderUpdate)
	require.Len(t, sellerRecords, 2, "placement alert plus cancellation")
}

func TestSequencer_Cancel_Idempotent(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", models.StateCancelled, models.StateCancelled)

	customerRecords := f.recordsFor(t, "customer-001", models.CategoryOrderUpdate)
	assert.Len(t, customerRecords, 1)
}

func TestSequencer_Cancel_ThenAdvanceRejected(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", models.StateCancelled)

	err := f.seq.Advance(context.Background(), "ORD-1", models.StateConfirmed)
	assert.Equal(t, apperrors.ErrCodeInvalidTransition, apperrors.CodeOf(err))
}

// ==========================
// Review Reminder Tests
// ==========================

func TestSequencer_ReviewReminderFires(t *testing.T) {
	f := newFixture(t, 50*time.Millisecond)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", happyPathTail...)

	require.Eventually(t, func() bool {
		return len(f.recordsFor(t, "customer-001", models.CategoryReviewReminder)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	reminders := f.recordsFor(t, "customer-001", models.CategoryReviewReminder)
	assert.Equal(t, models.PriorityLow, reminders[0].Priority)
	assert.Equal(t, "How was your recent purchase of iPhone 15 Pro? Share your experience!", reminders[0].Body)
}

func TestSequencer_CancelSuppressesReviewReminder(t *testing.T) {
	f := newFixture(t, 150*time.Millisecond)
	f.placeOrder(t, "ORD-1")
	f.advanceTo(t, "ORD-1", happyPathTail...)
	f.advanceTo(t, "ORD-1", models.StateCancelled)

	time.Sleep(400 * time.Millisecond)
	assert.Empty(t, f.recordsFor(t, "customer-001", models.CategoryReviewReminder),
		"cancellation before the delay elapses suppresses the reminder")
}

// ==========================
// Dispatch Failure Tests
// ==========================

type confirmedBlackout struct {
	*store.Memory
	fail bool
}

func (s *confirmedBlackout) Create(ctx context.Context, rec *models.NotificationRecord) (*models.NotificationRecord, error) {
	if s.fail {
		return nil, apperrors.NewStoreUnavailableError(fmt.Errorf("connection refused"))
	}
	return s.Memory.Create(ctx, rec)
}

func TestSequencer_DispatchFailureStillCommitsState(t *testing.T) {
	mem := store.NewMemory()
	blackout := &confirmedBlackout{Memory: mem}
	dir := directory.NewStatic()
	dir.Register("ORD-1", "customer-001", "seller-001", "courier-001")
	engine := dispatch.New(blackout, nil, nil, logger.NewTestLogger(t))
	seq := New(engine, dir, time.Hour, logger.NewTestLogger(t))
	t.Cleanup(seq.Stop)
	ctx := context.Background()

	require.NoError(t, seq.PlaceOrder(ctx, testOrder("ORD-1")))

	blackout.fail = true
	err := seq.Advance(ctx, "ORD-1", models.StateConfirmed)
	assert.True(t, apperrors.IsStoreUnavailable(err))

	state, _ := seq.State("ORD-1")
	assert.Equal(t, models.StateConfirmed, state, "state commits even when dispatch fails")

	// The order keeps progressing once the store recovers.
	blackout.fail = false
	require.NoError(t, seq.Advance(ctx, "ORD-1", models.StatePreparing))
}

// ==========================
// Reminder Scheduler Tests
// ==========================

func TestReminderScheduler(t *testing.T) {
	t.Run("fires after delay", func(t *testing.T) {
		s := NewReminderScheduler(20 * time.Millisecond)
		fired := make(chan struct{})
		s.Schedule("ORD-1", func() { close(fired) })

		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("reminder never fired")
		}
		assert.Equal(t, 0, s.Pending())
	})

	t.Run("cancel stops the timer", func(t *testing.T) {
		s := NewReminderScheduler(50 * time.Millisecond)
		fired := make(chan struct{}, 1)
		s.Schedule("ORD-1", func() { fired <- struct{}{} })

		assert.True(t, s.Cancel("ORD-1"))
		assert.False(t, s.Cancel("ORD-1"), "second cancel finds nothing pending")

		select {
		case <-fired:
			t.Fatal("cancelled reminder fired anyway")
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("reschedule replaces pending timer", func(t *testing.T) {
		s := NewReminderScheduler(30 * time.Millisecond)
		first := make(chan struct{}, 1)
		second := make(chan struct{}, 1)

		s.Schedule("ORD-1", func() { first <- struct{}{} })
		s.Schedule("ORD-1", func() { second <- struct{}{} })
		assert.Equal(t, 1, s.Pending())

		select {
		case <-second:
		case <-time.After(2 * time.Second):
			t.Fatal("replacement reminder never fired")
		}
		select {
		case <-first:
			t.Fatal("replaced reminder fired anyway")
		case <-time.After(100 * time.Millisecond):
		}
	})
}
