// internal/directory/directory.go

// Package directory resolves an order plus an actor role to a concrete
// recipient identity. The dispatch core consumes it, it does not own the
// underlying mapping.
package directory

import (
	"context"
	"sync"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"
)

// Directory resolves recipients. Unmapped (order, role) pairs fail with
// UNKNOWN_RECIPIENT.
type Directory interface {
	Resolve(ctx context.Context, orderID string, role models.Role) (string, error)
}

// Static is an in-memory Directory used by tests and local runs.
type Static struct {
	mu      sync.RWMutex
	entries map[string]map[models.Role]string
}

func NewStatic() *Static {
	return &Static{entries: make(map[string]map[models.Role]string)}
}

// Register maps all three roles of an order at once. Empty IDs are skipped
// so partially-mapped orders can be simulated.
func (s *Static) Register(orderID, customerID, sellerID, courierID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[models.Role]string, 3)
	if customerID != "" {
		m[models.RoleCustomer] = customerID
	}
	if sellerID != "" {
		m[models.RoleSeller] = sellerID
	}
	if courierID != "" {
		m[models.RoleCourier] = courierID
	}
	s.entries[orderID] = m
}

func (s *Static) Resolve(_ context.Context, orderID string, role models.Role) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.entries[orderID]; ok {
		if id, ok := m[role]; ok {
			return id, nil
		}
	}
	return "", apperrors.NewUnknownRecipientError(orderID, string(role))
}
