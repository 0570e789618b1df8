package ledger

import (
	"context"

	"hourskill/internal/db"
)

type Repository interface {
	Append(ctx context.Context, q db.Queryer, tx *Transaction) error
	LatestReceived(ctx context.Context, q db.Queryer, receiverID int, txType Type) (*Transaction, error)
	ListForUser(ctx context.Context, q db.Queryer, userID, limit, offset int) ([]Transaction, error)
}
