// Package messaging publishes batch-run audit events to Kafka. Publishing is
// best effort and opt-in; when disabled the console uses the no-op publisher.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/banking-fraud-console/internal/config"
)

// BatchRunEvent is the audit record emitted once per completed batch run.
type BatchRunEvent struct {
	RunID       string `json:"run_id"`
	SessionID   string `json:"session_id,omitempty"`
	Requested   int    `json:"requested"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
}

// AuditPublisher records batch-run outcomes on an external audit trail
type AuditPublisher interface {
	PublishBatchRun(ctx context.Context, event BatchRunEvent) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAuditPublisher writes batch-run events to the configured audit topic.
type KafkaAuditPublisher struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewKafkaAuditPublisher creates the audit publisher and ensures its topic
// exists.
func NewKafkaAuditPublisher(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*KafkaAuditPublisher, error) {
	if cfg.AuditTopic == "" {
		return nil, fmt.Errorf("kafka audit topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for audit publisher: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.AuditTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure audit topic %s exists: %w", cfg.AuditTopic, err)
	}

	// Audit events are low volume so the writer is synchronous; a failed
	// write surfaces to the caller, which logs and moves on.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &KafkaAuditPublisher{
		logger: logger,
		writer: writer,
		topic:  cfg.AuditTopic,
	}, nil
}

// PublishBatchRun writes one audit event keyed by run id.
func (p *KafkaAuditPublisher) PublishBatchRun(ctx context.Context, event BatchRunEvent) error {
	jsonValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal batch run event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.RunID),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish batch run audit event",
			"topic", p.topic,
			"run_id", event.RunID,
			"error", err,
		)
		return fmt.Errorf("failed to publish batch run event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published batch run audit event",
		"topic", p.topic,
		"run_id", event.RunID,
		"succeeded", event.Succeeded,
		"failed", event.Failed,
	)
	return nil
}

// Close shuts down the underlying Kafka writer.
func (p *KafkaAuditPublisher) Close() error {
	p.logger.Info("Closing batch run audit publisher", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close audit kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

// NoopPublisher satisfies AuditPublisher when the audit trail is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishBatchRun(ctx context.Context, event BatchRunEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
