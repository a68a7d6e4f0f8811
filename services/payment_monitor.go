package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeremiapane/honda-dealer/models"
)

// PaymentMetrics is a point in time snapshot of the monitor counters.
type PaymentMetrics struct {
	OrdersCreated       int64 `json:"orders_created"`
	InstructionsIssued  int64 `json:"instructions_issued"`
	InstructionsExpired int64 `json:"instructions_expired"`
	ProofsSubmitted     int64 `json:"proofs_submitted"`
	PaymentsVerified    int64 `json:"payments_verified"`
	PaymentsRejected    int64 `json:"payments_rejected"`
}

// PaymentMonitor counts order and payment events and exports them to prometheus.
type PaymentMonitor struct {
	mutex   sync.Mutex
	metrics PaymentMetrics

	ordersCreated     *prometheus.CounterVec
	instructions      *prometheus.CounterVec
	expired           prometheus.Counter
	proofs            prometheus.Counter
	verifications     *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
}

// NewPaymentMonitor registers the collectors on reg.
func NewPaymentMonitor(reg prometheus.Registerer) *PaymentMonitor {
	pm := &PaymentMonitor{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealer",
			Name:      "orders_created_total",
			Help:      "Orders created, by financing method.",
		}, []string{"financing"}),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealer",
			Name:      "payment_instructions_issued_total",
			Help:      "Payment instructions issued, by channel.",
		}, []string{"method"}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dealer",
			Name:      "payment_instructions_expired_total",
			Help:      "Payment instructions marked expired.",
		}),
		proofs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dealer",
			Name:      "payment_proofs_submitted_total",
			Help:      "Payment proofs uploaded by buyers.",
		}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealer",
			Name:      "payment_verifications_total",
			Help:      "Payment proof verifications, by result.",
		}, []string{"result"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealer",
			Name:      "order_status_transitions_total",
			Help:      "Order status transitions, by target status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(pm.ordersCreated, pm.instructions, pm.expired, pm.proofs, pm.verifications, pm.statusTransitions)
	}
	return pm
}

// Observe updates the counters for ev.
func (pm *PaymentMonitor) Observe(ev Event) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	switch ev.Type {
	case EventOrderCreated:
		pm.metrics.OrdersCreated++
		financing := "unknown"
		if o, ok := ev.Data.(*models.Order); ok {
			financing = string(o.FinancingMethod)
		}
		pm.ordersCreated.WithLabelValues(financing).Inc()
	case EventInstructionIssued:
		pm.metrics.InstructionsIssued++
		method := "unknown"
		if inst, ok := ev.Data.(*models.PaymentInstruction); ok {
			method = string(inst.Method)
		}
		pm.instructions.WithLabelValues(method).Inc()
	case EventInstructionExpired:
		pm.metrics.InstructionsExpired++
		pm.expired.Inc()
	case EventProofSubmitted:
		pm.metrics.ProofsSubmitted++
		pm.proofs.Inc()
	case EventProofVerified:
		result := "unknown"
		if p, ok := ev.Data.(*models.PaymentProof); ok {
			result = string(p.Status)
			if p.Status == models.ProofPaid {
				pm.metrics.PaymentsVerified++
			} else {
				pm.metrics.PaymentsRejected++
			}
		}
		pm.verifications.WithLabelValues(result).Inc()
	case EventOrderStatusChanged:
		if o, ok := ev.Data.(*models.Order); ok {
			pm.statusTransitions.WithLabelValues(string(o.Status)).Inc()
		}
	}
}

// GetMetrics returns the current counters.
func (pm *PaymentMonitor) GetMetrics() PaymentMetrics {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	return pm.metrics
}
