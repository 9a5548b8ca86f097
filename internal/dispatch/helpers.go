// internal/dispatch/helpers.go
package dispatch

import (
	"context"

	"marketplace-notify/internal/builder"
	"marketplace-notify/internal/models"
)

// Role-specific helpers over DispatchSingle. They fix the category and
// payload shape for each marketplace event; two of them override the
// builder's priority (order confirmation and the seller's new-order alert).

func (e *Engine) SendOrderConfirmation(ctx context.Context, customerID, orderID string, amount float64) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryOrderUpdate, customerID, builder.OrderUpdatePayload{
		OrderID: orderID,
		Status:  builder.StatusConfirmed,
		Amount:  amount,
	}, models.PriorityHigh)
}

func (e *Engine) SendOrderStatusUpdate(ctx context.Context, customerID, orderID, status, message string) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryOrderUpdate, customerID, builder.OrderUpdatePayload{
		OrderID: orderID,
		Status:  status,
		Message: message,
	}, "")
}

func (e *Engine) SendNewOrderToSeller(ctx context.Context, sellerID, orderID, customerName string, amount float64) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryOrderUpdate, sellerID, builder.OrderUpdatePayload{
		OrderID:  orderID,
		Status:   builder.StatusNewOrder,
		Amount:   amount,
		Customer: customerName,
	}, models.PriorityUrgent)
}

func (e *Engine) SendDeliveryAssignment(ctx context.Context, courierID, orderID, pickupAddress string, distanceKM float64) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryDeliveryAssigned, courierID, builder.DeliveryAssignedPayload{
		OrderID:       orderID,
		PickupAddress: pickupAddress,
		DistanceKM:    distanceKM,
	}, "")
}

func (e *Engine) SendLowStockAlert(ctx context.Context, sellerID, productName string, currentStock int) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryStockAlert, sellerID, builder.StockAlertPayload{
		ProductName:  productName,
		CurrentStock: currentStock,
	}, "")
}

func (e *Engine) SendFlashSaleAlert(ctx context.Context, customerID, productName string, discount int, expiresAt string) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryFlashSale, customerID, builder.FlashSalePayload{
		ProductName: productName,
		Discount:    discount,
		ExpiresAt:   expiresAt,
	}, "")
}

func (e *Engine) SendPriceDropAlert(ctx context.Context, customerID, productName string, oldPrice, newPrice float64) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryPriceDrop, customerID, builder.PriceDropPayload{
		ProductName: productName,
		OldPrice:    oldPrice,
		NewPrice:    newPrice,
	}, "")
}

func (e *Engine) SendReviewReminder(ctx context.Context, customerID, orderID, productName string) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryReviewReminder, customerID, builder.ReviewReminderPayload{
		OrderID:     orderID,
		ProductName: productName,
	}, "")
}

func (e *Engine) SendPaymentSuccess(ctx context.Context, customerID, orderID string, amount float64, paymentMethod string) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryPaymentSuccess, customerID, builder.PaymentSuccessPayload{
		OrderID:       orderID,
		Amount:        amount,
		PaymentMethod: paymentMethod,
	}, "")
}

func (e *Engine) SendPaymentFailed(ctx context.Context, customerID, orderID string, amount float64, reason string) (*models.NotificationRecord, error) {
	return e.DispatchSingle(ctx, models.CategoryPaymentFailed, customerID, builder.PaymentFailedPayload{
		OrderID: orderID,
		Amount:  amount,
		Reason:  reason,
	}, "")
}
