// Package queue publishes detected opportunities to Kafka so downstream
// consumers (execution bots, analytics) can react without polling the API.
package queue

import (
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic is the topic opportunities are published to when the config
// does not name one.
const DefaultTopic = "arbscan.opportunities"

// NewWriter builds a kafka-go Writer with the batching and ack settings used
// throughout the service.
func NewWriter(brokers []string, topic string) (*kafka.Writer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("queue: no brokers configured")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}, nil
}
