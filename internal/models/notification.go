// internal/models/notification.go
package models

import "time"

// Category identifies what kind of notification a record carries. The set is
// closed; the builder rejects anything else.
type Category string

const (
	CategoryOrderUpdate      Category = "order_update"
	CategoryDeliveryAssigned Category = "delivery_assigned"
	CategoryFlashSale        Category = "flash_sale"
	CategoryPriceDrop        Category = "price_drop"
	CategoryReviewReminder   Category = "review_reminder"
	CategoryStockAlert       Category = "stock_alert"
	CategoryPaymentSuccess   Category = "payment_success"
	CategoryPaymentFailed    Category = "payment_failed"
)

// Categories lists every known category, in a stable order.
func Categories() []Category {
	return []Category{
		CategoryOrderUpdate,
		CategoryDeliveryAssigned,
		CategoryFlashSale,
		CategoryPriceDrop,
		CategoryReviewReminder,
		CategoryStockAlert,
		CategoryPaymentSuccess,
		CategoryPaymentFailed,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryOrderUpdate, CategoryDeliveryAssigned, CategoryFlashSale,
		CategoryPriceDrop, CategoryReviewReminder, CategoryStockAlert,
		CategoryPaymentSuccess, CategoryPaymentFailed:
		return true
	}
	return false
}

// Priority controls display ordering and urgent-count filtering.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Role is one of the three actors addressed by order notifications.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleCourier  Role = "courier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleCourier:
		return true
	}
	return false
}

// NotificationRecord is the durable artifact of a dispatched event.
// Immutable after creation except IsRead. Seq is assigned by the store in
// creation order and breaks CreatedAt ties.
type NotificationRecord struct {
	ID          string                 `json:"id"`
	RecipientID string                 `json:"recipientId"`
	Category    Category               `json:"category"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Priority    Priority               `json:"priority"`
	IsRead      bool                   `json:"isRead"`
	CreatedAt   time.Time              `json:"createdAt"`
	Seq         int64                  `json:"-"`
}
