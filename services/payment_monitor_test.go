package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/honda-dealer/models"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestPaymentMonitor_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPaymentMonitor(reg)

	pm.Observe(Event{Type: EventOrderCreated, Data: &models.Order{FinancingMethod: models.FinancingCredit}})
	pm.Observe(Event{Type: EventInstructionIssued, Data: &models.PaymentInstruction{Method: models.ChannelQRCode}})
	pm.Observe(Event{Type: EventProofSubmitted})
	pm.Observe(Event{Type: EventProofVerified, Data: &models.PaymentProof{Status: models.ProofPaid}})
	pm.Observe(Event{Type: EventProofVerified, Data: &models.PaymentProof{Status: models.ProofFailed}})
	pm.Observe(Event{Type: EventInstructionExpired})
	pm.Observe(Event{Type: EventOrderStatusChanged, Data: &models.Order{Status: models.OrderStatusApproved}})

	assert.Equal(t, PaymentMetrics{
		OrdersCreated:       1,
		InstructionsIssued:  1,
		InstructionsExpired: 1,
		ProofsSubmitted:     1,
		PaymentsVerified:    1,
		PaymentsRejected:    1,
	}, pm.GetMetrics())

	assert.Equal(t, 1.0, counterValue(t, reg, "dealer_orders_created_total", map[string]string{"financing": "credit"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "dealer_payment_instructions_issued_total", map[string]string{"method": "qr_code"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "dealer_payment_verifications_total", map[string]string{"result": "failed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "dealer_order_status_transitions_total", map[string]string{"status": "approved"}))
}

func TestEmitter_ZeroValueDropsEvents(t *testing.T) {
	assert.NotPanics(t, func() {
		Emitter{}.emit(context.Background(), Event{Type: EventOrderCreated})
	})
}
