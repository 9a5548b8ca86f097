// internal/builder/payload.go
package builder

import (
	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"
)

// Payload is the tagged union of per-category notification payloads. Each
// variant validates its own required fields; the structured Data map is what
// gets persisted on the record and is opaque to the dispatch engine.
type Payload interface {
	Category() models.Category
	Validate() error
	Data() map[string]interface{}
}

// Order status values carried by OrderUpdatePayload. They mirror the order
// lifecycle plus "new_order", the seller-facing form of an order placement.
const (
	StatusNewOrder       = "new_order"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusReadyForPickup = "ready_for_pickup"
	StatusPickedUp       = "picked_up"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// OrderUpdatePayload covers every order_update form: the seller's new-order
// alert (status new_order), the customer's confirmation (status confirmed)
// and the generic status updates, which carry their own Message.
type OrderUpdatePayload struct {
	OrderID  string
	Status   string
	Message  string
	Amount   float64
	Customer string
}

func (p OrderUpdatePayload) Category() models.Category { return models.CategoryOrderUpdate }

func (p OrderUpdatePayload) Validate() error {
	const cat = string(models.CategoryOrderUpdate)
	if p.OrderID == "" {
		return apperrors.NewMissingFieldError(cat, "orderId")
	}
	if p.Status == "" {
		return apperrors.NewMissingFieldError(cat, "status")
	}
	switch p.Status {
	case StatusNewOrder:
		if p.Customer == "" {
			return apperrors.NewMissingFieldError(cat, "customer")
		}
		if p.Amount <= 0 {
			return apperrors.NewMissingFieldError(cat, "amount")
		}
	case StatusConfirmed:
		if p.Amount <= 0 {
			return apperrors.NewMissingFieldError(cat, "amount")
		}
	default:
		if p.Message == "" {
			return apperrors.NewMissingFieldError(cat, "message")
		}
	}
	return nil
}

func (p OrderUpdatePayload) Data() map[string]interface{} {
	data := map[string]interface{}{
		"order_id": p.OrderID,
		"status":   p.Status,
	}
	if p.Amount > 0 {
		data["amount"] = p.Amount
	}
	if p.Customer != "" {
		data["customer"] = p.Customer
	}
	return data
}

type DeliveryAssignedPayload struct {
	OrderID       string
	PickupAddress string
	DistanceKM    float64
}

func (p DeliveryAssignedPayload) Category() models.Category { return models.CategoryDeliveryAssigned }

func (p DeliveryAssignedPayload) Validate() error {
	const cat = string(models.CategoryDeliveryAssigned)
	if p.OrderID == "" {
		return apperrors.NewMissingFieldError(cat, "orderId")
	}
	if p.PickupAddress == "" {
		return apperrors.NewMissingFieldError(cat, "pickupAddress")
	}
	if p.DistanceKM <= 0 {
		return apperrors.NewMissingFieldError(cat, "distance")
	}
	return nil
}

func (p DeliveryAssignedPayload) Data() map[string]interface{} {
	return map[string]interface{}{
		"order_id":       p.OrderID,
		"pickup_address": p.PickupAddress,
		"distance":       p.DistanceKM,
	}
}

type StockAlertPayload struct {
	ProductName  string
	CurrentStock int
}

func (p StockAlertPayload) Category() models.Category { return models.CategoryStockAlert }

func (p StockAlertPayload) Validate() error {
	if p.ProductName == "" {
		return apperrors.NewMissingFieldError(string(models.CategoryStockAlert), "productName")
	}
	return nil
}

func (p StockAlertPayload) Data() map[string]interface{} {
	reorder := p.CurrentStock * 5
	if reorder < 20 {
		reorder = 20
	}
	return map[string]interface{}{
		"product_name":        p.ProductName,
		"current_stock":       p.CurrentStock,
		"recommended_reorder": reorder,
	}
}

type FlashSalePayload struct {
	ProductName string
	Discount    int
	ExpiresAt   string
}

func (p FlashSalePayload) Category() models.Category { return models.CategoryFlashSale }

func (p FlashSalePayload) Validate() error {
	const cat = string(models.CategoryFlashSale)
	if p.ProductName == "" {
		return apperrors.NewMissingFieldError(cat, "productName")
	}
	if p.Discount <= 0 {
		return apperrors.NewMissingFieldError(cat, "discount")
	}
	if p.ExpiresAt == "" {
		return apperrors.NewMissingFieldError(cat, "expiresAt")
	}
	return nil
}

func (p FlashSalePayload) Data() map[string]interface{} {
	return map[string]interface{}{
		"product_name": p.ProductName,
		"discount":     p.Discount,
		"expires_at":   p.ExpiresAt,
	}
}

type PriceDropPayload struct {
	ProductName string
	OldPrice    float64
	NewPrice    float64
}

func (p PriceDropPayload) Category() models.Category { return models.CategoryPriceDrop }

func (p PriceDropPayload) Validate() error {
	const cat = string(models.CategoryPriceDrop)
	if p.ProductName == "" {
		return apperrors.NewMissingFieldError(cat, "productName")
	}
	if p.OldPrice <= 0 {
		return apperrors.NewMissingFieldError(cat, "oldPrice")
	}
	if p.NewPrice <= 0 {
		return apperrors.NewMissingFieldError(cat, "newPrice")
	}
	return nil
}

func (p PriceDropPayload) Data() map[string]interface{} {
	return map[string]interface{}{
		"product_name": p.ProductName,
		"old_price":    p.OldPrice,
		"new_price":    p.NewPrice,
		"savings":      p.OldPrice - p.NewPrice,
	}
}

type ReviewReminderPayload struct {
	OrderID     string
	ProductName string
}

func (p ReviewReminderPayload) Category() models.Category { return models.CategoryReviewReminder }

func (p ReviewReminderPayload) Validate() error {
	const cat = string(models.CategoryReviewReminder)
	if p.OrderID == "" {
		return apperrors.NewMissingFieldError(cat, "orderId")
	}
	if p.ProductName == "" {
		return apperrors.NewMissingFieldError(cat, "productName")
	}
	return nil
}

func (p ReviewReminderPayload) Data() map[string]interface{} {
	return map[string]interface{}{
		"order_id":     p.OrderID,
		"product_name": p.ProductName,
	}
}

type PaymentSuccessPayload struct {
	OrderID       string
	Amount        float64
	PaymentMethod string
}

func (p PaymentSuccessPayload) Category() models.Category { return models.CategoryPaymentSuccess }

func (p PaymentSuccessPayload) Validate() error {
	const cat = string(models.CategoryPaymentSuccess)
	if p.OrderID == "" {
		return apperrors.NewMissingFieldError(cat, "orderId")
	}
	if p.Amount <= 0 {
		return apperrors.NewMissingFieldError(cat, "amount")
	}
	if p.PaymentMethod == "" {
		return apperrors.NewMissingFieldError(cat, "paymentMethod")
	}
	return nil
}

func (p PaymentSuccessPayload) Data() map[string]interface{} {
	return map[string]interface{}{
		"order_id":       p.OrderID,
		"amount":         p.Amount,
		"payment_method": p.PaymentMethod,
	}
}

type PaymentFailedPayload struct {
	OrderID string
	Amount  float64
	Reason  string
}

func (p PaymentFailedPayload) Category() models.Category { return models.CategoryPaymentFailed }

func (p PaymentFailedPayload) Validate() error {
	const cat = string(models.CategoryPaymentFailed)
	if p.OrderID == "" {
		return apperrors.NewMissingFieldError(cat, "orderId")
	}
	if p.Amount <= 0 {
		return apperrors.NewMissingFieldError(cat, "amount")
	}
	if p.Reason == "" {
		return apperrors.NewMissingFieldError(cat, "reason")
	}
	return nil
}

func (p PaymentFailedPayload) Data() map[string]interface{} {
	return map[string]interface{}{
		"order_id": p.OrderID,
		"amount":   p.Amount,
		"reason":   p.Reason,
	}
}
