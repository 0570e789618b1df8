package ads

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"hourskill/internal/db"
	"hourskill/internal/ledger"
	"hourskill/internal/logger"
	"hourskill/internal/metrics"
	"hourskill/internal/wallet"
)

const (
	Cooldown     = 30 * time.Second
	TrustPenalty = 5
)

// RewardAmount is credited per accepted ad view.
var RewardAmount = decimal.RequireFromString("0.50")

var ErrRateLimited = errors.New("ad reward requested within cooldown")

// TrustPenalizer lowers a user's trust score and returns the new score.
type TrustPenalizer interface {
	PenalizeTrust(ctx context.Context, userID, points int) (int, error)
}

type RewardResponse struct {
	NewBalance decimal.Decimal `json:"new_balance"`
}

type Service interface {
	Reward(ctx context.Context, userID int) (*wallet.Receipt, error)
}

type service struct {
	db      *sqlx.DB
	wallets wallet.Service
	ledger  ledger.Repository
	trust   TrustPenalizer
	now     func() time.Time
}

func NewService(database *sqlx.DB, wallets wallet.Service, ledgerRepo ledger.Repository, trust TrustPenalizer) Service {
	return &service{
		db:      database,
		wallets: wallets,
		ledger:  ledgerRepo,
		trust:   trust,
		now:     time.Now,
	}
}

// Reward credits RewardAmount unless the user's previous ad reward is less
// than Cooldown old. The wallet row is locked before the ledger is read, so
// concurrent requests for one user are checked one at a time.
//
// A throttled request costs TrustPenalty points. The penalty is committed on
// its own after the reward transaction has been abandoned.
func (s *service) Reward(ctx context.Context, userID int) (*wallet.Receipt, error) {
	now := s.now()

	var receipt *wallet.Receipt
	limited := false
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.wallets.Lock(ctx, tx, userID); err != nil {
			return err
		}

		last, err := s.ledger.LatestReceived(ctx, tx, userID, ledger.TypeEarnAds)
		switch {
		case errors.Is(err, ledger.ErrNotFound):
		case err != nil:
			return err
		case now.Sub(last.Timestamp) < Cooldown:
			limited = true
			return ErrRateLimited
		}

		receipt, err = s.wallets.CreditTx(ctx, tx, userID, RewardAmount, ledger.TypeEarnAds, nil)
		return err
	})

	if limited {
		metrics.RecordAdReward("rate_limited")
		s.penalize(ctx, userID)
		return nil, ErrRateLimited
	}
	if err != nil {
		metrics.RecordAdReward("failed")
		return nil, err
	}

	s.wallets.Settled(ctx, receipt)
	metrics.RecordAdReward("credited")
	logger.Info("ad reward credited", "user_id", userID, "transaction_id", receipt.Transaction.ID)
	return receipt, nil
}

func (s *service) penalize(ctx context.Context, userID int) {
	if _, err := s.trust.PenalizeTrust(ctx, userID, TrustPenalty); err != nil {
		logger.Error("trust penalty failed", "user_id", userID, "error", err)
		return
	}
	metrics.RecordTrustPenalty()
}
