package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"hourskill/internal/db"
	"hourskill/internal/events"
	"hourskill/internal/ledger"
	"hourskill/internal/logger"
	"hourskill/internal/metrics"
)

// tcPlaces is the number of fractional digits a TC amount may carry.
const tcPlaces = 2

var (
	ErrInvalidAmount     = errors.New("amount must be positive with at most 2 decimal places")
	ErrInsufficientFunds = errors.New("insufficient TC balance")
	ErrSameWallet        = errors.New("payer and payee must differ")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletExists      = errors.New("wallet already exists")
	ErrInvalidType       = errors.New("unknown transaction type")
)

// Service is the only writer of wallet balances. Every mutation appends
// exactly one ledger row in the same database transaction.
//
// The *Tx variants run inside a transaction owned by the caller, who must call
// Settled with the receipt once that transaction has committed. The plain
// variants own their transaction and settle themselves.
type Service interface {
	GetBalance(ctx context.Context, userID int) (*Balance, error)
	History(ctx context.Context, userID, limit, offset int) ([]ledger.Transaction, error)

	Transfer(ctx context.Context, payerID, payeeID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error)
	Credit(ctx context.Context, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error)
	Debit(ctx context.Context, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error)

	Provision(ctx context.Context, q db.Queryer, userID int) (*Wallet, error)
	Lock(ctx context.Context, q db.Queryer, userID int) (*Wallet, error)
	TransferTx(ctx context.Context, q db.Queryer, payerID, payeeID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error)
	CreditTx(ctx context.Context, q db.Queryer, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error)
	DebitTx(ctx context.Context, q db.Queryer, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error)

	Settled(ctx context.Context, receipts ...*Receipt)
}

type service struct {
	db        *sqlx.DB
	repo      Repository
	ledger    ledger.Repository
	cache     *BalanceCache
	publisher events.Publisher
	now       func() time.Time
}

func NewService(database *sqlx.DB, repo Repository, ledgerRepo ledger.Repository, cache *BalanceCache, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{
		db:        database,
		repo:      repo,
		ledger:    ledgerRepo,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *service) GetBalance(ctx context.Context, userID int) (*Balance, error) {
	b, err := s.cache.Get(ctx, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("balance cache read failed", "user_id", userID, "error", err)
	}

	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		logger.Warn("balance cache generation read failed", "user_id", userID, "error", genErr)
	}

	w, err := s.repo.GetByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	b = w.Balance()
	if genErr == nil {
		if _, err := s.cache.Fill(ctx, userID, gen, b); err != nil {
			logger.Warn("balance cache write failed", "user_id", userID, "error", err)
		}
	}
	return b, nil
}

func (s *service) History(ctx context.Context, userID, limit, offset int) ([]ledger.Transaction, error) {
	return s.ledger.ListForUser(ctx, s.db, userID, limit, offset)
}

func (s *service) Transfer(ctx context.Context, payerID, payeeID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error) {
	if err := validate(amount, txType); err != nil {
		return nil, err
	}
	if payerID == payeeID {
		return nil, ErrSameWallet
	}

	var receipt *Receipt
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		receipt, err = s.TransferTx(ctx, tx, payerID, payeeID, amount, txType, videoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Settled(ctx, receipt)
	return receipt, nil
}

func (s *service) Credit(ctx context.Context, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error) {
	if err := validate(amount, txType); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		receipt, err = s.CreditTx(ctx, tx, userID, amount, txType, videoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Settled(ctx, receipt)
	return receipt, nil
}

func (s *service) Debit(ctx context.Context, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error) {
	if err := validate(amount, txType); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		receipt, err = s.DebitTx(ctx, tx, userID, amount, txType, videoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Settled(ctx, receipt)
	return receipt, nil
}

// Provision creates the wallet of a freshly created user, seeded with the
// signup bonus.
func (s *service) Provision(ctx context.Context, q db.Queryer, userID int) (*Wallet, error) {
	return s.repo.Create(ctx, q, userID, SignupBonus)
}

func (s *service) Lock(ctx context.Context, q db.Queryer, userID int) (*Wallet, error) {
	return s.repo.GetForUpdate(ctx, q, userID)
}

func (s *service) TransferTx(ctx context.Context, q db.Queryer, payerID, payeeID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error) {
	if err := validate(amount, txType); err != nil {
		return nil, err
	}
	if payerID == payeeID {
		return nil, ErrSameWallet
	}

	// Lock both rows in ascending user id order so two opposite-direction
	// transfers cannot wait on each other.
	first, second := payerID, payeeID
	if second < first {
		first, second = second, first
	}

	locked := make(map[int]*Wallet, 2)
	for _, id := range []int{first, second} {
		w, err := s.repo.GetForUpdate(ctx, q, id)
		if err != nil {
			return nil, err
		}
		locked[id] = w
	}

	payer, payee := locked[payerID], locked[payeeID]
	if payer.TCBalance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	payer.TCBalance = payer.TCBalance.Sub(amount)
	payee.TCBalance = payee.TCBalance.Add(amount)

	for _, id := range []int{first, second} {
		if err := s.repo.UpdateBalances(ctx, q, locked[id]); err != nil {
			return nil, err
		}
	}

	entry := s.entry(&payerID, &payeeID, amount, txType, videoID)
	if err := s.ledger.Append(ctx, q, &entry); err != nil {
		return nil, err
	}

	return &Receipt{
		Transaction: entry,
		Balances: map[int]decimal.Decimal{
			payerID: payer.TCBalance,
			payeeID: payee.TCBalance,
		},
	}, nil
}

func (s *service) CreditTx(ctx context.Context, q db.Queryer, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error) {
	if err := validate(amount, txType); err != nil {
		return nil, err
	}

	w, err := s.repo.GetForUpdate(ctx, q, userID)
	if err != nil {
		return nil, err
	}

	w.TCBalance = w.TCBalance.Add(amount)
	if err := s.repo.UpdateBalances(ctx, q, w); err != nil {
		return nil, err
	}

	entry := s.entry(nil, &userID, amount, txType, videoID)
	if err := s.ledger.Append(ctx, q, &entry); err != nil {
		return nil, err
	}

	return &Receipt{
		Transaction: entry,
		Balances:    map[int]decimal.Decimal{userID: w.TCBalance},
	}, nil
}

func (s *service) DebitTx(ctx context.Context, q db.Queryer, userID int, amount decimal.Decimal, txType ledger.Type, videoID *int) (*Receipt, error) {
	if err := validate(amount, txType); err != nil {
		return nil, err
	}

	w, err := s.repo.GetForUpdate(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	if w.TCBalance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	w.TCBalance = w.TCBalance.Sub(amount)
	if err := s.repo.UpdateBalances(ctx, q, w); err != nil {
		return nil, err
	}

	entry := s.entry(&userID, nil, amount, txType, videoID)
	if err := s.ledger.Append(ctx, q, &entry); err != nil {
		return nil, err
	}

	return &Receipt{
		Transaction: entry,
		Balances:    map[int]decimal.Decimal{userID: w.TCBalance},
	}, nil
}

// Settled runs the post-commit side effects of committed receipts. Failures
// are logged; the ledger is already durable at this point.
func (s *service) Settled(ctx context.Context, receipts ...*Receipt) {
	for _, r := range receipts {
		if r == nil {
			continue
		}

		if err := s.cache.Delete(ctx, r.UserIDs()...); err != nil {
			logger.Warn("balance cache invalidation failed", "transaction_id", r.Transaction.ID, "error", err)
		}
		if err := s.publisher.PublishTransaction(ctx, r.Transaction); err != nil {
			logger.Error("ledger event publish failed", "transaction_id", r.Transaction.ID, "error", err)
		}
		metrics.RecordLedgerTransaction(string(r.Transaction.Type))
	}
}

func (s *service) entry(senderID, receiverID *int, amount decimal.Decimal, txType ledger.Type, videoID *int) ledger.Transaction {
	return ledger.Transaction{
		SenderID:         senderID,
		ReceiverID:       receiverID,
		Type:             txType,
		AmountTC:         amount,
		AmountVND:        decimal.Zero,
		Status:           ledger.StatusSuccess,
		Timestamp:        s.now().UTC(),
		ReferenceVideoID: videoID,
	}
}

func validate(amount decimal.Decimal, txType ledger.Type) error {
	if !amount.IsPositive() || !amount.Round(tcPlaces).Equal(amount) {
		return ErrInvalidAmount
	}
	if !txType.Valid() {
		return ErrInvalidType
	}
	return nil
}
