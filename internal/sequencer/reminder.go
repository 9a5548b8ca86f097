// internal/sequencer/reminder.go
package sequencer

import (
	"sync"
	"time"
)

// ReminderScheduler owns the deferred review reminders, keyed by order ID.
// At most one reminder is pending per order; scheduling again replaces the
// previous timer and cancellation stops it before it fires.
type ReminderScheduler struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
}

func NewReminderScheduler(delay time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms a reminder for the order. fn runs once after the configured
// delay unless Cancel is called first.
func (s *ReminderScheduler) Schedule(orderID string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[orderID]; ok {
		t.Stop()
	}
	s.timers[orderID] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, orderID)
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops a pending reminder. Returns whether one was pending.
func (s *ReminderScheduler) Cancel(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[orderID]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, orderID)
	return true
}

// Pending reports how many reminders are currently armed.
func (s *ReminderScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending reminder, used during shutdown.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
