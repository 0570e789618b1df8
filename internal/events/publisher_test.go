package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourskill/internal/ledger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishTransaction(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	buyer, creator, video := 3, 9, 11
	tx := ledger.Transaction{
		ID:               100,
		SenderID:         &buyer,
		ReceiverID:       &creator,
		Type:             ledger.TypeSpendView,
		AmountTC:         decimal.RequireFromString("2.5"),
		AmountVND:        decimal.Zero,
		Status:           ledger.StatusSuccess,
		Timestamp:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ReferenceVideoID: &video,
	}

	require.NoError(t, p.PublishTransaction(context.Background(), tx))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "3", string(msg.Key))
	assert.Equal(t, "SPEND_VIEW", string(msg.Headers[0].Value))

	var ev LedgerEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, 100, ev.TransactionID)
	assert.Equal(t, "2.50", ev.AmountTC)
	assert.Equal(t, "0", ev.AmountVND)
	assert.Equal(t, 11, *ev.ReferenceVideoID)
}

func TestKafkaPublisher_SystemCreditKeyedByReceiver(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	receiver := 5

	require.NoError(t, p.PublishTransaction(context.Background(), ledger.Transaction{
		ID:         1,
		ReceiverID: &receiver,
		Type:       ledger.TypeEarnAds,
	}))
	assert.Equal(t, "5", string(w.msgs[0].Key))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.PublishTransaction(context.Background(), ledger.Transaction{ID: 1})
	assert.ErrorContains(t, err, "broker down")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishTransaction(context.Background(), ledger.Transaction{}))
	assert.NoError(t, p.Close())
}
