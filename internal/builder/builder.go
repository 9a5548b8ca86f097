// internal/builder/builder.go

// Package builder maps (category, payload) pairs to fully-formed
// notification records. Pure: the timestamp is injected by the caller and
// nothing here touches I/O.
package builder

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"
)

// defaultPriority is the fixed category→priority table. stock_alert and
// order_update have documented escalations on top of it, see priorityFor.
var defaultPriority = map[models.Category]models.Priority{
	models.CategoryOrderUpdate:      models.PriorityNormal,
	models.CategoryDeliveryAssigned: models.PriorityUrgent,
	models.CategoryFlashSale:        models.PriorityUrgent,
	models.CategoryPriceDrop:        models.PriorityNormal,
	models.CategoryReviewReminder:   models.PriorityLow,
	models.CategoryStockAlert:       models.PriorityHigh,
	models.CategoryPaymentSuccess:   models.PriorityHigh,
	models.CategoryPaymentFailed:    models.PriorityUrgent,
}

// statusEmojis decorates generic order-update titles.
var statusEmojis = map[string]string{
	StatusConfirmed:      "✅",
	StatusPreparing:      "👨‍🍳",
	StatusReadyForPickup: "📦",
	StatusPickedUp:       "🚚",
	StatusOutForDelivery: "🛵",
	StatusDelivered:      "✅",
	StatusCancelled:      "❌",
}

// Build produces an immutable notification record for the given recipient.
// The record has no ID or Seq yet; the store assigns those on create.
func Build(category models.Category, recipientID string, p Payload, at time.Time) (*models.NotificationRecord, error) {
	if !category.Valid() {
		return nil, apperrors.NewInvalidCategoryError(string(category))
	}
	if p == nil || p.Category() != category {
		return nil, apperrors.NewInvalidCategoryError(string(category))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	title, body := render(p)

	return &models.NotificationRecord{
		RecipientID: recipientID,
		Category:    category,
		Title:       title,
		Body:        body,
		Payload:     p.Data(),
		Priority:    priorityFor(category, p),
		IsRead:      false,
		CreatedAt:   at,
	}, nil
}

// DefaultPriority exposes the fixed table entry for a category.
func DefaultPriority(category models.Category) models.Priority {
	if p, ok := defaultPriority[category]; ok {
		return p
	}
	return models.PriorityNormal
}

func priorityFor(category models.Category, p Payload) models.Priority {
	switch v := p.(type) {
	case StockAlertPayload:
		if v.CurrentStock <= 5 {
			return models.PriorityUrgent
		}
		return models.PriorityHigh
	case OrderUpdatePayload:
		if v.Status == StatusDelivered {
			return models.PriorityHigh
		}
		return models.PriorityNormal
	}
	return DefaultPriority(category)
}

func render(p Payload) (title, body string) {
	switch v := p.(type) {
	case OrderUpdatePayload:
		return renderOrderUpdate(v)
	case DeliveryAssignedPayload:
		return "New Delivery Assigned 🛵",
			fmt.Sprintf("New delivery assigned! Pickup from %s. Distance: %skm", v.PickupAddress, formatNumber(v.DistanceKM))
	case StockAlertPayload:
		return "Low Stock Alert! ⚠️",
			fmt.Sprintf("%s is running low on stock. Only %d units remaining.", v.ProductName, v.CurrentStock)
	case FlashSalePayload:
		return "Flash Sale Alert! ⚡",
			fmt.Sprintf("%s is now %d%% off! Limited time offer.", v.ProductName, v.Discount)
	case PriceDropPayload:
		return "Price Drop Alert 📉",
			fmt.Sprintf("%s price dropped by ₹%s! Now available for ₹%s",
				v.ProductName, formatAmount(v.OldPrice-v.NewPrice), formatAmount(v.NewPrice))
	case ReviewReminderPayload:
		return "Review Reminder ⭐",
			fmt.Sprintf("How was your recent purchase of %s? Share your experience!", v.ProductName)
	case PaymentSuccessPayload:
		return "Payment Successful! 💳",
			fmt.Sprintf("Payment of ₹%s for order #%s was successful via %s.",
				formatAmount(v.Amount), v.OrderID, v.PaymentMethod)
	case PaymentFailedPayload:
		return "Payment Failed ❌",
			fmt.Sprintf("Payment of ₹%s for order #%s failed. %s",
				formatAmount(v.Amount), v.OrderID, v.Reason)
	}
	return "", ""
}

func renderOrderUpdate(p OrderUpdatePayload) (string, string) {
	switch p.Status {
	case StatusNewOrder:
		return "New Order Received! 📦",
			fmt.Sprintf("You have received a new order #%s worth ₹%s from %s.",
				p.OrderID, formatAmount(p.Amount), p.Customer)
	case StatusConfirmed:
		return "Order Confirmed! 🎉",
			fmt.Sprintf("Your order #%s has been confirmed and is being prepared.", p.OrderID)
	default:
		title := "Order " + strings.ToUpper(strings.ReplaceAll(p.Status, "_", " "))
		if emoji, ok := statusEmojis[p.Status]; ok {
			title += " " + emoji
		}
		return title, p.Message
	}
}

// formatAmount renders a rupee amount with comma thousands grouping; whole
// amounts drop the decimal part.
func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return groupDigits(strconv.FormatInt(int64(v), 10))
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	return groupDigits(s[:dot]) + s[dot:]
}

// formatNumber renders a plain number, trimming a trailing ".0".
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		var b strings.Builder
		first := len(s) % 3
		if first > 0 {
			b.WriteString(s[:first])
		}
		for i := first; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}
