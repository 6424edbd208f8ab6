// internal/adapter/messaging/subscriber.go

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"topicpulse/internal/domain/topic"
)

// Prioritizer scores a single submitted topic
type Prioritizer interface {
	Prioritize(ctx context.Context, in topic.TopicInput) (topic.PrioritizedTopic, error)
}

const defaultIntakeTimeout = 30 * time.Second

type discoveredTopic struct {
	topic.TopicInput
	Category string `json:"category"`
}

// Intake queue-subscribes to discovered topics and prioritizes each one
type Intake struct {
	conn        *nats.Conn
	subject     string
	queue       string
	prioritizer Prioritizer
	timeout     time.Duration
	logger      *slog.Logger
	sub         *nats.Subscription
}

// NewIntake creates an intake subscriber; call Start to begin consuming
func NewIntake(
	nc *nats.Conn,
	subject string,
	queue string,
	prioritizer Prioritizer,
	timeout time.Duration,
	logger *slog.Logger,
) *Intake {
	if timeout <= 0 {
		timeout = defaultIntakeTimeout
	}
	return &Intake{
		conn:        nc,
		subject:     subject,
		queue:       queue,
		prioritizer: prioritizer,
		timeout:     timeout,
		logger:      logger.With("component", "intake"),
	}
}

// Start subscribes within the configured queue group
func (i *Intake) Start() error {
	sub, err := i.conn.QueueSubscribe(i.subject, i.queue, func(msg *nats.Msg) {
		i.handle(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("unable to subscribe to %s: %w", i.subject, err)
	}
	i.sub = sub
	i.logger.Info("intake subscribed", "subject", i.subject, "queue", i.queue)
	return nil
}

// Stop drains in-flight messages and unsubscribes
func (i *Intake) Stop() error {
	if i.sub == nil {
		return nil
	}
	return i.sub.Drain()
}

func (i *Intake) handle(data []byte) {
	var in discoveredTopic
	if err := json.Unmarshal(data, &in); err != nil {
		i.logger.Warn("dropping malformed topic message", "error", err)
		return
	}

	if in.Category != "" {
		if in.Metadata == nil {
			in.Metadata = map[string]any{}
		}
		if _, ok := in.Metadata["category"]; !ok {
			in.Metadata["category"] = in.Category
		}
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	result, err := i.prioritizer.Prioritize(ctx, in.TopicInput)
	if err != nil {
		if topic.IsValidation(err) {
			i.logger.Warn("dropping invalid topic message", "term", in.Term, "error", err)
			return
		}
		i.logger.Error("prioritization failed", "term", in.Term, "error", err)
		return
	}

	i.logger.Debug("topic prioritized",
		"term", result.Term,
		"priority_score", result.PriorityScore,
		"published", result.Published,
	)
}
