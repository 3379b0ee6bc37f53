package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

type capturingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *capturingWriter) Close() error {
	w.closed = true
	return nil
}

func finalizedInvoice(t *testing.T) *billing.Invoice {
	t.Helper()
	period, err := common.NewDateRange(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	return &billing.Invoice{
		ID:          "inv-1",
		Vendor:      "업피치",
		Period:      period,
		Status:      billing.InvoiceFinalized,
		TotalAmount: 36000,
		Currency:    "KRW",
		FinalizedAt: &now,
	}
}

func TestPublishInvoiceFinalized(t *testing.T) {
	w := &capturingWriter{}
	p := NewProducerWithWriter(w, TopicInvoiceFinalized, nil)

	require.NoError(t, p.PublishInvoiceFinalized(context.Background(), finalizedInvoice(t)))
	require.Len(t, w.messages, 1)

	// Keyed by vendor for per-vendor ordering.
	assert.Equal(t, "업피치", string(w.messages[0].Key))

	var event InvoiceFinalizedEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, "inv-1", event.InvoiceID)
	assert.Equal(t, "2025-06-01", event.PeriodFrom)
	assert.Equal(t, "2025-06-30", event.PeriodTo)
	assert.Equal(t, int64(36000), event.TotalAmount)
	assert.Equal(t, "2025-07-01T09:00:00Z", event.FinalizedAt)
}

func TestPublishAfterClose(t *testing.T) {
	w := &capturingWriter{}
	p := NewProducerWithWriter(w, TopicInvoiceFinalized, nil)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.PublishInvoiceFinalized(context.Background(), finalizedInvoice(t))
	assert.True(t, errors.IsCode(err, errors.ErrCodeMessagingError))

	// Close twice is a no-op.
	assert.NoError(t, p.Close())
}

func TestPublishWriteFailure(t *testing.T) {
	w := &capturingWriter{err: context.DeadlineExceeded}
	p := NewProducerWithWriter(w, TopicInvoiceFinalized, nil)

	err := p.PublishInvoiceFinalized(context.Background(), finalizedInvoice(t))
	assert.True(t, errors.IsCode(err, errors.ErrCodeMessagingError))
}
