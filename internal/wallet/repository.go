package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"hourskill/internal/db"
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx context.Context, q db.Queryer, userID int, tcBalance decimal.Decimal) (*Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, tc_balance)
		VALUES ($1, $2)
		RETURNING id, user_id, tc_balance, fiat_balance, updated_at
	`

	var w Wallet
	if err := q.GetContext(ctx, &w, query, userID, tcBalance); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrWalletExists
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return &w, nil
}

func (r *repository) GetByUserID(ctx context.Context, q db.Queryer, userID int) (*Wallet, error) {
	query := `
		SELECT id, user_id, tc_balance, fiat_balance, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var w Wallet
	if err := q.GetContext(ctx, &w, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

// GetForUpdate row-locks the wallet until the surrounding transaction ends.
func (r *repository) GetForUpdate(ctx context.Context, q db.Queryer, userID int) (*Wallet, error) {
	query := `
		SELECT id, user_id, tc_balance, fiat_balance, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`

	var w Wallet
	if err := q.GetContext(ctx, &w, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *repository) UpdateBalances(ctx context.Context, q db.Queryer, w *Wallet) error {
	query := `
		UPDATE wallets
		SET tc_balance = $1, fiat_balance = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	if err := q.GetContext(ctx, &w.UpdatedAt, query, w.TCBalance, w.FiatBalance, w.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWalletNotFound
		}
		return fmt.Errorf("update wallet %d: %w", w.ID, err)
	}
	return nil
}
