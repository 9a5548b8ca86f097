// internal/models/order.go
package models

import "time"

// OrderState is a step in the order lifecycle. The happy path is strictly
// linear; cancelled is the only state reachable out of adjacency.
type OrderState string

const (
	StatePending        OrderState = "pending"
	StateConfirmed      OrderState = "confirmed"
	StatePreparing      OrderState = "preparing"
	StateReadyForPickup OrderState = "ready_for_pickup"
	StatePickedUp       OrderState = "picked_up"
	StateOutForDelivery OrderState = "out_for_delivery"
	StateDelivered      OrderState = "delivered"
	StateCancelled      OrderState = "cancelled"
)

// happyPath is the linear progression, in order. Cancelled is not part of it.
var happyPath = []OrderState{
	StatePending,
	StateConfirmed,
	StatePreparing,
	StateReadyForPickup,
	StatePickedUp,
	StateOutForDelivery,
	StateDelivered,
}

// Index returns the position of s on the happy path, or -1 for cancelled
// and unknown states.
func (s OrderState) Index() int {
	for i, st := range happyPath {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderState) Valid() bool {
	return s == StateCancelled || s.Index() >= 0
}

// Order carries the business facts the sequencer needs to render
// notifications for an order's transitions.
type Order struct {
	ID            string  `json:"id"`
	CustomerName  string  `json:"customerName"`
	ProductName   string  `json:"productName"`
	Amount        float64 `json:"amount"`
	DeliveryFee   float64 `json:"deliveryFee,omitempty"`
	PickupAddress string  `json:"pickupAddress"`
	DistanceKM    float64 `json:"distanceKm"`
}

// OrderEvent is emitted by the sequencer for each accepted transition and
// consumed immediately by the dispatch engine. It is never persisted; the
// durable artifacts are the NotificationRecords it produces.
type OrderEvent struct {
	OrderID   string     `json:"orderId"`
	From      OrderState `json:"fromState"`
	To        OrderState `json:"toState"`
	Order     Order      `json:"-"`
	Timestamp time.Time  `json:"timestamp"`
}
