package services

import (
	"github.com/yeremiapane/honda-dealer/models"
)

// Order axis. Transitions only move one step forward, or from pending to a terminal state.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusApproved, models.OrderStatusRejected, models.OrderStatusCancelled},
	models.OrderStatusApproved:   {models.OrderStatusProcessing},
	models.OrderStatusProcessing: {models.OrderStatusPacking},
	models.OrderStatusPacking:    {models.OrderStatusShipping},
	models.OrderStatusShipping:   {models.OrderStatusCompleted},
}

// Payment axis.
var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusUnpaid:  {models.PaymentStatusPending, models.PaymentStatusExpired},
	models.PaymentStatusPending: {models.PaymentStatusPaid, models.PaymentStatusFailed, models.PaymentStatusExpired},
}

// NextOrderStatuses lists the statuses reachable from s in one step.
func NextOrderStatuses(s models.OrderStatus) []models.OrderStatus {
	return orderTransitions[s]
}

// CheckOrderTransition validates moving order to next.
//
// Completing an order additionally requires its payment status to be paid.
func CheckOrderTransition(order *models.Order, next models.OrderStatus) error {
	if !next.Valid() {
		return &ValidationError{Field: "status", Message: "unknown order status " + string(next)}
	}
	if !containsOrderStatus(orderTransitions[order.Status], next) {
		return orderStateError(order.Status, next, "not reachable from the current status")
	}
	if next == models.OrderStatusCompleted && order.PaymentStatus != models.PaymentStatusPaid {
		return orderStateError(order.Status, next, "payment status must be paid before completing")
	}
	return nil
}

// CheckPaymentTransition validates moving the payment axis from current to next.
func CheckPaymentTransition(current, next models.PaymentStatus) error {
	if !next.Valid() {
		return &ValidationError{Field: "payment_status", Message: "unknown payment status " + string(next)}
	}
	for _, s := range paymentTransitions[current] {
		if s == next {
			return nil
		}
	}
	return paymentStateError(current, next, "not reachable from the current payment status")
}

// IsTerminalOrderStatus reports whether no transition leaves s.
func IsTerminalOrderStatus(s models.OrderStatus) bool {
	return len(orderTransitions[s]) == 0
}

func containsOrderStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
