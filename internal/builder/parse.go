// internal/builder/parse.go
package builder

import (
	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"
)

// ParsePayload converts a loosely-shaped JSON object into the typed payload
// for a category. Keys match the structured data the builder persists
// (snake_case). Missing or mistyped required fields surface later through
// Validate, so callers get the same MISSING_FIELD errors either way.
func ParsePayload(category models.Category, m map[string]interface{}) (Payload, error) {
	switch category {
	case models.CategoryOrderUpdate:
		return OrderUpdatePayload{
			OrderID:  asString(m, "order_id"),
			Status:   asString(m, "status"),
			Message:  asString(m, "message"),
			Amount:   asFloat(m, "amount"),
			Customer: asString(m, "customer"),
		}, nil
	case models.CategoryDeliveryAssigned:
		return DeliveryAssignedPayload{
			OrderID:       asString(m, "order_id"),
			PickupAddress: asString(m, "pickup_address"),
			DistanceKM:    asFloat(m, "distance"),
		}, nil
	case models.CategoryStockAlert:
		return StockAlertPayload{
			ProductName:  asString(m, "product_name"),
			CurrentStock: asInt(m, "current_stock"),
		}, nil
	case models.CategoryFlashSale:
		return FlashSalePayload{
			ProductName: asString(m, "product_name"),
			Discount:    asInt(m, "discount"),
			ExpiresAt:   asString(m, "expires_at"),
		}, nil
	case models.CategoryPriceDrop:
		return PriceDropPayload{
			ProductName: asString(m, "product_name"),
			OldPrice:    asFloat(m, "old_price"),
			NewPrice:    asFloat(m, "new_price"),
		}, nil
	case models.CategoryReviewReminder:
		return ReviewReminderPayload{
			OrderID:     asString(m, "order_id"),
			ProductName: asString(m, "product_name"),
		}, nil
	case models.CategoryPaymentSuccess:
		return PaymentSuccessPayload{
			OrderID:       asString(m, "order_id"),
			Amount:        asFloat(m, "amount"),
			PaymentMethod: asString(m, "payment_method"),
		}, nil
	case models.CategoryPaymentFailed:
		return PaymentFailedPayload{
			OrderID: asString(m, "order_id"),
			Amount:  asFloat(m, "amount"),
			Reason:  asString(m, "reason"),
		}, nil
	}
	return nil, apperrors.NewInvalidCategoryError(string(category))
}

func asString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func asFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func asInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
