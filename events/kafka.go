package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

// KafkaPublisher publishes domain events, one topic per event type. Messages are keyed by
// order ID so events of one order stay ordered within a partition.
type KafkaPublisher struct {
	producer    sarama.SyncProducer
	topicPrefix string
}

var _ services.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer sarama.SyncProducer, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topicPrefix: topicPrefix}
}

// Dial creates a sync producer, retrying until attempts run out or ctx is done.
func Dial(ctx context.Context, brokers []string, clientID string, attempts int) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	var lastErr error
	for i := 1; i <= attempts; i++ {
		producer, err := sarama.NewSyncProducer(brokers, config)
		if err == nil {
			utils.InfoLogger.WithField("brokers", brokers).Info("Kafka producer initialized")
			return producer, nil
		}
		lastErr = err
		utils.InfoLogger.Infof("Waiting for Kafka... (%d/%d) Error: %v", i, attempts, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("failed to start Kafka producer after %d attempts: %w", attempts, lastErr)
}

// Topic is the topic an event type is published to.
func (p *KafkaPublisher) Topic(eventType string) string {
	return p.topicPrefix + eventType
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev services.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.Topic(ev.Type),
		Value: sarama.ByteEncoder(data),
	}
	if ev.OrderID != 0 {
		msg.Key = sarama.StringEncoder(strconv.FormatUint(uint64(ev.OrderID), 10))
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send %s message: %w", msg.Topic, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"topic":     msg.Topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
