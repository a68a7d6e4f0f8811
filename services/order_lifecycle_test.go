package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/honda-dealer/models"
)

var orderStatusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusApproved:   1,
	models.OrderStatusProcessing: 2,
	models.OrderStatusPacking:    3,
	models.OrderStatusShipping:   4,
	models.OrderStatusCompleted:  5,
}

func TestOrderTransitions_ForwardOnly(t *testing.T) {
	for from, next := range orderTransitions {
		for _, to := range next {
			if to == models.OrderStatusRejected || to == models.OrderStatusCancelled {
				assert.Equal(t, models.OrderStatusPending, from)
				continue
			}
			assert.Equal(t, orderStatusRank[from]+1, orderStatusRank[to], "%s -> %s", from, to)
		}
	}
}

func TestCheckOrderTransition_HappyPath(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPaid}
	path := []models.OrderStatus{
		models.OrderStatusApproved,
		models.OrderStatusProcessing,
		models.OrderStatusPacking,
		models.OrderStatusShipping,
		models.OrderStatusCompleted,
	}
	for _, next := range path {
		assert.NoError(t, CheckOrderTransition(order, next))
		order.Status = next
	}
	assert.True(t, IsTerminalOrderStatus(order.Status))
}

func TestCheckOrderTransition_NoSkip(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusApproved, PaymentStatus: models.PaymentStatusPaid}

	err := CheckOrderTransition(order, models.OrderStatusShipping)
	var state *InconsistentStateError
	assert.ErrorAs(t, err, &state)
	assert.Equal(t, "approved", state.From)
	assert.Equal(t, "shipping", state.To)
}

func TestCheckOrderTransition_NoBackward(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusPacking}
	var state *InconsistentStateError
	assert.ErrorAs(t, CheckOrderTransition(order, models.OrderStatusProcessing), &state)
	assert.ErrorAs(t, CheckOrderTransition(order, models.OrderStatusPending), &state)
}

func TestCheckOrderTransition_CompletionRequiresPaid(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusShipping, PaymentStatus: models.PaymentStatusPending}

	var state *InconsistentStateError
	assert.ErrorAs(t, CheckOrderTransition(order, models.OrderStatusCompleted), &state)

	order.PaymentStatus = models.PaymentStatusPaid
	assert.NoError(t, CheckOrderTransition(order, models.OrderStatusCompleted))
}

func TestCheckOrderTransition_TerminalStates(t *testing.T) {
	for _, s := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusRejected, models.OrderStatusCancelled} {
		assert.True(t, IsTerminalOrderStatus(s))
		order := &models.Order{Status: s, PaymentStatus: models.PaymentStatusPaid}
		assert.Error(t, CheckOrderTransition(order, models.OrderStatusApproved))
	}
	assert.False(t, IsTerminalOrderStatus(models.OrderStatusPending))
}

func TestCheckOrderTransition_UnknownStatus(t *testing.T) {
	err := CheckOrderTransition(&models.Order{Status: models.OrderStatusPending}, "delivered")
	assert.True(t, IsValidation(err))
}

func TestCheckPaymentTransition(t *testing.T) {
	allowed := []struct{ from, to models.PaymentStatus }{
		{models.PaymentStatusUnpaid, models.PaymentStatusPending},
		{models.PaymentStatusUnpaid, models.PaymentStatusExpired},
		{models.PaymentStatusPending, models.PaymentStatusPaid},
		{models.PaymentStatusPending, models.PaymentStatusFailed},
		{models.PaymentStatusPending, models.PaymentStatusExpired},
	}
	for _, tt := range allowed {
		assert.NoError(t, CheckPaymentTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	rejected := []struct{ from, to models.PaymentStatus }{
		{models.PaymentStatusUnpaid, models.PaymentStatusPaid},
		{models.PaymentStatusPaid, models.PaymentStatusPending},
		{models.PaymentStatusFailed, models.PaymentStatusPaid},
		{models.PaymentStatusExpired, models.PaymentStatusPending},
	}
	for _, tt := range rejected {
		var state *InconsistentStateError
		assert.ErrorAs(t, CheckPaymentTransition(tt.from, tt.to), &state, "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, IsValidation(CheckPaymentTransition(models.PaymentStatusUnpaid, "refunded")))
}
