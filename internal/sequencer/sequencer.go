// internal/sequencer/sequencer.go

// Package sequencer drives orders through their lifecycle state machine and
// emits the notification set each accepted transition calls for. Transitions
// for one order are serialized; different orders progress independently.
package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketplace-notify/internal/builder"
	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/directory"
	"marketplace-notify/internal/dispatch"
	"marketplace-notify/internal/models"
)

type orderEntry struct {
	mu    sync.Mutex
	state models.OrderState
	order models.Order
}

type Sequencer struct {
	engine    *dispatch.Engine
	dir       directory.Directory
	reminders *ReminderScheduler
	logger    logger.Logger

	mu     sync.Mutex
	orders map[string]*orderEntry
}

func New(engine *dispatch.Engine, dir directory.Directory, reminderDelay time.Duration, log logger.Logger) *Sequencer {
	return &Sequencer{
		engine:    engine,
		dir:       dir,
		reminders: NewReminderScheduler(reminderDelay),
		logger:    log.WithFields(map[string]interface{}{"component": "sequencer"}),
		orders:    make(map[string]*orderEntry),
	}
}

// PlaceOrder registers the order at pending and alerts the seller. Placing
// an already-tracked order is a no-op.
func (s *Sequencer) PlaceOrder(ctx context.Context, order models.Order) error {
	if order.ID == "" {
		return apperrors.NewMissingFieldError("order", "id")
	}

	s.mu.Lock()
	if _, ok := s.orders[order.ID]; ok {
		s.mu.Unlock()
		return nil
	}
	entry := &orderEntry{state: models.StatePending, order: order}
	s.orders[order.ID] = entry
	s.mu.Unlock()

	metrics.ActiveOrders.Inc()
	s.logger.Info("order placed", map[string]interface{}{
		"orderId": order.ID,
		"state":   string(models.StatePending),
	})

	sellerID, err := s.dir.Resolve(ctx, order.ID, models.RoleSeller)
	if err != nil {
		return err
	}
	_, err = s.engine.SendNewOrderToSeller(ctx, sellerID, order.ID, order.CustomerName, order.Amount)
	return err
}

// Advance moves the order to the given state and dispatches that state's
// notification set. Requests for a state already reached are no-ops; skipping
// ahead on the happy path is rejected. The state change commits even when
// dispatch fails, and the dispatch error is returned so the caller can see
// the notification was lost.
func (s *Sequencer) Advance(ctx context.Context, orderID string, to models.OrderState) error {
	if !to.Valid() {
		return apperrors.NewInvalidTransitionError(orderID, "", string(to))
	}

	s.mu.Lock()
	entry, ok := s.orders[orderID]
	s.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError(orderID)
	}

	// Per-order serialization: a later transition cannot start dispatching
	// before an earlier one has finished.
	entry.mu.Lock()
	defer entry.mu.Unlock()

	from := entry.state
	if from == models.StateCancelled {
		if to == models.StateCancelled {
			return nil
		}
		return apperrors.NewInvalidTransitionError(orderID, string(from), string(to))
	}

	if to == models.StateCancelled {
		entry.state = models.StateCancelled
		if s.reminders.Cancel(orderID) {
			s.logger.Info("review reminder suppressed", map[string]interface{}{"orderId": orderID})
		}
		metrics.ActiveOrders.Dec()
		s.logTransition(orderID, from, to)
		return s.notifyCancelled(ctx, entry.order)
	}

	if to.Index() <= from.Index() {
		return nil
	}
	if to.Index() != from.Index()+1 {
		return apperrors.NewInvalidTransitionError(orderID, string(from), string(to))
	}

	entry.state = to
	s.logTransition(orderID, from, to)
	return s.notify(ctx, entry.order, to)
}

// State reports the current state of a tracked order.
func (s *Sequencer) State(orderID string) (models.OrderState, bool) {
	s.mu.Lock()
	entry, ok := s.orders[orderID]
	s.mu.Unlock()
	if !ok {
		return "", false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state, true
}

// Stop cancels all pending reminders, used during shutdown.
func (s *Sequencer) Stop() {
	s.reminders.Stop()
}

func (s *Sequencer) logTransition(orderID string, from, to models.OrderState) {
	s.logger.Info("order transition", map[string]interface{}{
		"orderId": orderID,
		"from":    string(from),
		"to":      string(to),
	})
}

// notify maps an entered state to its notification set. Multi-recipient
// states fan out concurrently; the first failure is returned after all
// recipients have been attempted.
func (s *Sequencer) notify(ctx context.Context, order models.Order, to models.OrderState) error {
	switch to {
	case models.StateConfirmed:
		customerID, err := s.dir.Resolve(ctx, order.ID, models.RoleCustomer)
		if err != nil {
			return err
		}
		_, err = s.engine.SendOrderConfirmation(ctx, customerID, order.ID, order.Amount)
		return err

	case models.StatePreparing:
		return s.sendCustomerUpdate(ctx, order, to,
			"Your order is being prepared by the seller.")

	case models.StateReadyForPickup:
		return s.fanout(
			func() error {
				return s.sendCustomerUpdate(ctx, order, to,
					"Your order is ready and will be picked up soon.")
			},
			func() error {
				courierID, err := s.dir.Resolve(ctx, order.ID, models.RoleCourier)
				if err != nil {
					return err
				}
				_, err = s.engine.SendDeliveryAssignment(ctx, courierID, order.ID, order.PickupAddress, order.DistanceKM)
				return err
			},
		)

	case models.StatePickedUp:
		return s.sendCustomerUpdate(ctx, order, to,
			"Your order has been picked up and is on the way!")

	case models.StateOutForDelivery:
		return s.sendCustomerUpdate(ctx, order, to,
			"Your order is out for delivery!")

	case models.StateDelivered:
		customerID, err := s.dir.Resolve(ctx, order.ID, models.RoleCustomer)
		if err != nil {
			return err
		}
		_, err = s.engine.SendOrderStatusUpdate(ctx, customerID, order.ID, builder.StatusDelivered,
			"Your order has been delivered successfully! 🎉")

		s.reminders.Schedule(order.ID, func() {
			s.fireReviewReminder(customerID, order)
		})
		return err
	}
	return nil
}

func (s *Sequencer) notifyCancelled(ctx context.Context, order models.Order) error {
	return s.fanout(
		func() error {
			return s.sendCustomerUpdate(ctx, order, models.StateCancelled,
				fmt.Sprintf("Your order #%s has been cancelled.", order.ID))
		},
		func() error {
			sellerID, err := s.dir.Resolve(ctx, order.ID, models.RoleSeller)
			if err != nil {
				return err
			}
			_, err = s.engine.SendOrderStatusUpdate(ctx, sellerID, order.ID, builder.StatusCancelled,
				fmt.Sprintf("Order #%s has been cancelled.", order.ID))
			return err
		},
	)
}

func (s *Sequencer) sendCustomerUpdate(ctx context.Context, order models.Order, to models.OrderState, message string) error {
	customerID, err := s.dir.Resolve(ctx, order.ID, models.RoleCustomer)
	if err != nil {
		return err
	}
	_, err = s.engine.SendOrderStatusUpdate(ctx, customerID, order.ID, string(to), message)
	return err
}

// fireReviewReminder runs on the reminder timer, outside any request
// context. Failures are logged only; there is no caller to report to.
func (s *Sequencer) fireReviewReminder(customerID string, order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.engine.SendReviewReminder(ctx, customerID, order.ID, order.ProductName); err != nil {
		s.logger.Warn("review reminder dispatch failed", map[string]interface{}{
			"orderId": order.ID,
			"error":   err,
		})
	}
}

// fanout runs the tasks concurrently, waits for all of them and returns the
// first error. One recipient's failure never suppresses the others.
func (s *Sequencer) fanout(tasks ...func() error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func() error) {
			defer wg.Done()
			errs[i] = task()
		}(i, task)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
