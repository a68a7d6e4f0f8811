package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/honda-dealer/utils"
)

// Event types. They double as Kafka topics.
const (
	EventOrderCreated        = "order.created"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderPaymentChanged = "order.payment_status_changed"
	EventOrderDeleted        = "order.deleted"
	EventInstructionIssued   = "payment.instruction_issued"
	EventInstructionExpired  = "payment.instruction_expired"
	EventProofSubmitted      = "payment.proof_submitted"
	EventProofVerified       = "payment.proof_verified"
	EventCatalogChanged      = "catalog.changed"
)

type Event struct {
	Type    string      `json:"event"`
	OrderID uint        `json:"order_id,omitempty"`
	At      time.Time   `json:"at"`
	Data    interface{} `json:"data"`
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// NoopNotifier is used when nothing listens for realtime updates.
type NoopNotifier struct{}

func (NoopNotifier) Broadcast(Event) {}

// Emitter fans an event out to the publisher, the notifier and the metrics monitor.
// Delivery failures are logged, they never fail the operation that produced the event.
// The zero value drops every event.
type Emitter struct {
	Publisher EventPublisher
	Notifier  Notifier
	Monitor   *PaymentMonitor
}

func (e Emitter) emit(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if e.Monitor != nil {
		e.Monitor.Observe(ev)
	}
	if e.Notifier != nil {
		e.Notifier.Broadcast(ev)
	}
	if e.Publisher == nil {
		return
	}
	if err := e.Publisher.Publish(ctx, ev); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"event":    ev.Type,
			"order_id": ev.OrderID,
		}).Errorf("failed to publish event: %v", err)
	}
}
