package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/alphanest/arbscan/internal/domain"
)

// opportunityMessage is the wire shape published per opportunity. The cycle
// ID lets consumers group messages from the same detection pass.
type opportunityMessage struct {
	CycleID string `json:"cycle_id"`
	domain.Opportunity
}

// Publisher writes each cycle's opportunities to a Kafka topic. It is wired
// into the poller as a sink.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher on the given writer.
func NewPublisher(writer *kafka.Writer) *Publisher {
	return &Publisher{writer: writer}
}

// Name identifies the sink in poller logs.
func (p *Publisher) Name() string { return "kafka" }

// HandleCycle publishes every opportunity of the cycle as one batch. Message
// keys are symbol:buy:sell so a partition sees a stable stream per route.
func (p *Publisher) HandleCycle(ctx context.Context, res domain.CycleResult) error {
	if len(res.Opportunities) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(res.Opportunities))
	for _, opp := range res.Opportunities {
		payload, err := json.Marshal(opportunityMessage{CycleID: res.ID, Opportunity: opp})
		if err != nil {
			return fmt.Errorf("queue: marshal opportunity %s: %w", opp.Symbol, err)
		}
		key := fmt.Sprintf("%s:%s:%s", opp.Symbol, opp.BuyExchange, opp.SellExchange)
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: payload})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("queue: publish cycle %s: %w", res.ID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
