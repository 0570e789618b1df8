package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"hourskill/internal/ledger"
)

// Publisher ships committed ledger entries to downstream consumers
// (analytics, notifications). It is only called after the owning database
// transaction has committed.
type Publisher interface {
	PublishTransaction(ctx context.Context, tx ledger.Transaction) error
	Close() error
}

// LedgerEvent is the wire form of a committed ledger entry.
type LedgerEvent struct {
	TransactionID    int       `json:"transaction_id"`
	Type             string    `json:"tx_type"`
	SenderID         *int      `json:"sender_id,omitempty"`
	ReceiverID       *int      `json:"receiver_id,omitempty"`
	AmountTC         string    `json:"amount_tc"`
	AmountVND        string    `json:"amount_vnd"`
	Status           string    `json:"status"`
	ReferenceVideoID *int      `json:"reference_video_id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

func NewLedgerEvent(tx ledger.Transaction) LedgerEvent {
	return LedgerEvent{
		TransactionID:    tx.ID,
		Type:             string(tx.Type),
		SenderID:         tx.SenderID,
		ReceiverID:       tx.ReceiverID,
		AmountTC:         tx.AmountTC.StringFixed(2),
		AmountVND:        tx.AmountVND.StringFixed(0),
		Status:           string(tx.Status),
		ReferenceVideoID: tx.ReferenceVideoID,
		Timestamp:        tx.Timestamp,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			MaxAttempts:  5,
		},
	}
}

// PublishTransaction keys messages by the wallet owner the entry is about, so
// one user's entries stay ordered within a partition.
func (p *KafkaPublisher) PublishTransaction(ctx context.Context, tx ledger.Transaction) error {
	payload, err := json.Marshal(NewLedgerEvent(tx))
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(partitionKey(tx)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "tx_type", Value: []byte(tx.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write ledger event to kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func partitionKey(tx ledger.Transaction) string {
	switch {
	case tx.SenderID != nil:
		return strconv.Itoa(*tx.SenderID)
	case tx.ReceiverID != nil:
		return strconv.Itoa(*tx.ReceiverID)
	default:
		return strconv.Itoa(tx.ID)
	}
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishTransaction(context.Context, ledger.Transaction) error { return nil }

func (NopPublisher) Close() error { return nil }
