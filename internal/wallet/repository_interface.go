package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"hourskill/internal/db"
)

type Repository interface {
	Create(ctx context.Context, q db.Queryer, userID int, tcBalance decimal.Decimal) (*Wallet, error)
	GetByUserID(ctx context.Context, q db.Queryer, userID int) (*Wallet, error)
	GetForUpdate(ctx context.Context, q db.Queryer, userID int) (*Wallet, error)
	UpdateBalances(ctx context.Context, q db.Queryer, w *Wallet) error
}
