package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/config"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type MockWriter struct {
	Messages []kafkaGo.Message
	Err      error
	Closed   bool
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockWriter) Close() error {
	m.Closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &MockWriter{}
	publisher := &KafkaPublisher{writer: writer}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(), Event{
		Type:        TypeOrderPlaced,
		OrderID:     "order-1",
		Status:      "Pending",
		TotalAmount: 20,
		Items:       1,
		At:          at,
	})

	require.NoError(t, err)
	require.Len(t, writer.Messages, 1)
	msg := writer.Messages[0]
	assert.Equal(t, "order-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeOrderPlaced, string(msg.Headers[0].Value))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "order-1", payload["order_id"])
	assert.Equal(t, 20.0, payload["total_amount"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &MockWriter{Err: errors.New("leader not available")}
	publisher := &KafkaPublisher{writer: writer}

	err := publisher.Publish(context.Background(), Event{Type: TypeOrderCancelled, OrderID: "o"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish order.cancelled")
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &MockWriter{}
	publisher := &KafkaPublisher{writer: writer}

	require.NoError(t, publisher.Close())
	assert.True(t, writer.Closed)
}

func TestNewPublisher(t *testing.T) {
	assert.IsType(t, NopPublisher{}, NewPublisher(config.KafkaConfig{}))
	assert.IsType(t, &KafkaPublisher{}, NewPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}))
}

func setupKafka(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestKafkaPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	brokerAddr := setupKafka(t)
	createTopic(t, brokerAddr, "storefront-orders")

	publisher := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{brokerAddr}, Topic: "storefront-orders"})
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, publisher.Publish(ctx, Event{Type: TypeOrderStatusChanged, OrderID: "order-7", Status: "Shipped"}))

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    "storefront-orders",
		GroupID:  "storefront-test",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "order-7", string(msg.Key))

	var event Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "Shipped", event.Status)
	assert.Equal(t, TypeOrderStatusChanged, event.Type)
}
