package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hourskill/internal/db"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

var ErrNotFound = errors.New("ledger entry not found")

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// Append inserts tx and fills in its ID. There is no update or delete path.
func (r *repository) Append(ctx context.Context, q db.Queryer, tx *Transaction) error {
	query := `
		INSERT INTO transactions (sender_id, receiver_id, tx_type, amount_tc, amount_vnd, status, created_at, reference_video_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := q.GetContext(ctx, &tx.ID, query,
		tx.SenderID,
		tx.ReceiverID,
		tx.Type,
		tx.AmountTC,
		tx.AmountVND,
		tx.Status,
		tx.Timestamp,
		tx.ReferenceVideoID,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (r *repository) LatestReceived(ctx context.Context, q db.Queryer, receiverID int, txType Type) (*Transaction, error) {
	query := `
		SELECT id, sender_id, receiver_id, tx_type, amount_tc, amount_vnd, status, created_at, reference_video_id
		FROM transactions
		WHERE receiver_id = $1 AND tx_type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var tx Transaction
	err := q.GetContext(ctx, &tx, query, receiverID, txType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *repository) ListForUser(ctx context.Context, q db.Queryer, userID, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, sender_id, receiver_id, tx_type, amount_tc, amount_vnd, status, created_at, reference_video_id
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	txs := []Transaction{}
	if err := q.SelectContext(ctx, &txs, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return txs, nil
}
