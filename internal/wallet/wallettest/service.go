// Package wallettest provides a testify mock of wallet.Service for packages
// that orchestrate balance mutations.
package wallettest

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"hourskill/internal/db"
	"hourskill/internal/ledger"
	"hourskill/internal/wallet"
)

type Service struct {
	mock.Mock
}

var _ wallet.Service = (*Service)(nil)

func (m *Service) GetBalance(ctx context.Context, userID int) (*wallet.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Balance), args.Error(1)
}

func (m *Service) History(ctx context.Context, userID, limit, offset int) ([]ledger.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *Service) Transfer(ctx context.Context, payerID, payeeID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*wallet.Receipt, error) {
	return receipt(m.Called(ctx, payerID, payeeID, amount, txType, videoID))
}

func (m *Service) Credit(ctx context.Context, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*wallet.Receipt, error) {
	return receipt(m.Called(ctx, userID, amount, txType, videoID))
}

func (m *Service) Debit(ctx context.Context, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*wallet.Receipt, error) {
	return receipt(m.Called(ctx, userID, amount, txType, videoID))
}

func (m *Service) Provision(ctx context.Context, q db.Queryer, userID int) (*wallet.Wallet, error) {
	return walletResult(m.Called(ctx, q, userID))
}

func (m *Service) Lock(ctx context.Context, q db.Queryer, userID int) (*wallet.Wallet, error) {
	return walletResult(m.Called(ctx, q, userID))
}

func (m *Service) TransferTx(ctx context.Context, q db.Queryer, payerID, payeeID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*wallet.Receipt, error) {
	return receipt(m.Called(ctx, q, payerID, payeeID, amount, txType, videoID))
}

func (m *Service) CreditTx(ctx context.Context, q db.Queryer, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*wallet.Receipt, error) {
	return receipt(m.Called(ctx, q, userID, amount, txType, videoID))
}

func (m *Service) DebitTx(ctx context.Context, q db.Queryer, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*wallet.Receipt, error) {
	return receipt(m.Called(ctx, q, userID, amount, txType, videoID))
}

func (m *Service) Settled(ctx context.Context, receipts ...*wallet.Receipt) {
	m.Called(ctx, receipts)
}

func receipt(args mock.Arguments) (*wallet.Receipt, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Receipt), args.Error(1)
}

func walletResult(args mock.Arguments) (*wallet.Wallet, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

// Amount matches a decimal argument by value rather than representation.
func Amount(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
