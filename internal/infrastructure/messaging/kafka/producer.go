package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/fulfill-billing/internal/config"
	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
)

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// InvoiceFinalizedEvent is the wire payload of TopicInvoiceFinalized.
type InvoiceFinalizedEvent struct {
	InvoiceID   string `json:"invoice_id"`
	Vendor      string `json:"vendor"`
	PeriodFrom  string `json:"period_from"`
	PeriodTo    string `json:"period_to"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
	FinalizedAt string `json:"finalized_at"`
}

// Producer publishes billing events.  Messages are keyed by vendor so one
// vendor's invoices stay ordered within a partition.
type Producer struct {
	writer writerInterface
	topic  string
	log    logging.Logger
	closed atomic.Bool
}

// NewProducer builds a producer from config.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries,
		BatchSize:    cfg.BatchSize,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{writer: writer, topic: cfg.Topic, log: log.Named("kafka")}
}

// NewProducerWithWriter wraps an existing writer (for testing).
func NewProducerWithWriter(w writerInterface, topic string, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{writer: w, topic: topic, log: log}
}

// PublishInvoiceFinalized publishes one event for a finalized invoice.
func (p *Producer) PublishInvoiceFinalized(ctx context.Context, inv *billing.Invoice) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeMessagingError, "producer closed")
	}

	event := InvoiceFinalizedEvent{
		InvoiceID:   inv.ID,
		Vendor:      inv.Vendor,
		PeriodFrom:  inv.Period.From.Format("2006-01-02"),
		PeriodTo:    inv.Period.To.Format("2006-01-02"),
		TotalAmount: inv.TotalAmount,
		Currency:    inv.Currency,
	}
	if inv.FinalizedAt != nil {
		event.FinalizedAt = inv.FinalizedAt.Format(time.RFC3339)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode invoice event")
	}

	msg := kafka.Message{
		Key:   []byte(inv.Vendor),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to publish invoice event")
	}
	p.log.Debug("invoice event published",
		logging.String("topic", p.topic),
		logging.String("invoice_id", inv.ID))
	return nil
}

// Close flushes and closes the writer.  Safe to call more than once.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to close producer")
	}
	return nil
}
