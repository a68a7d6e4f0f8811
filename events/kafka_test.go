package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/honda-dealer/services"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	var got *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		got = msg
		return nil
	})

	pub := NewKafkaPublisher(producer, "honda-dealer.")
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	err := pub.Publish(context.Background(), services.Event{
		Type:    services.EventOrderCreated,
		OrderID: 42,
		At:      at,
		Data:    map[string]string{"order_code": "ORD-20250310-000042"},
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "honda-dealer.order.created", got.Topic)

	key, err := got.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "42", string(key))

	value, err := got.Value.Encode()
	require.NoError(t, err)
	var decoded struct {
		Event   string            `json:"event"`
		OrderID uint              `json:"order_id"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, "order.created", decoded.Event)
	assert.Equal(t, uint(42), decoded.OrderID)
	assert.Equal(t, "ORD-20250310-000042", decoded.Data["order_code"])
}

func TestKafkaPublisher_CatalogEventHasNoKey(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	var got *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		got = msg
		return nil
	})

	pub := NewKafkaPublisher(producer, "")
	require.NoError(t, pub.Publish(context.Background(), services.Event{Type: services.EventCatalogChanged}))
	assert.Equal(t, "catalog.changed", got.Topic)
	assert.Nil(t, got.Key)
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	pub := NewKafkaPublisher(producer, "honda-dealer.")
	err := pub.Publish(context.Background(), services.Event{Type: services.EventProofSubmitted, OrderID: 1})
	assert.ErrorContains(t, err, "broker down")
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub := NewKafkaPublisher(producer, "")
	assert.ErrorIs(t, pub.Publish(ctx, services.Event{Type: services.EventOrderDeleted}), context.Canceled)
}
