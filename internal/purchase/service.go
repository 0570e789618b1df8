package purchase

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"hourskill/internal/db"
	"hourskill/internal/ledger"
	"hourskill/internal/logger"
	"hourskill/internal/metrics"
	"hourskill/internal/session"
	"hourskill/internal/video"
	"hourskill/internal/wallet"
)

var ErrAlreadyUnlocked = errors.New("video already unlocked")

const (
	outcomePaid              = "paid"
	outcomeFree              = "free"
	outcomeAlreadyUnlocked   = "already_unlocked"
	outcomeInsufficientFunds = "insufficient_funds"
	outcomeFailed            = "failed"
)

type Service interface {
	Unlock(ctx context.Context, userID, videoID int) (*UnlockResult, error)
	Detail(ctx context.Context, userID, videoID int) (*Detail, error)
}

type service struct {
	db       *sqlx.DB
	videos   video.Repository
	sessions session.Repository
	wallets  wallet.Service
}

func NewService(database *sqlx.DB, videos video.Repository, sessions session.Repository, wallets wallet.Service) Service {
	return &service{
		db:       database,
		videos:   videos,
		sessions: sessions,
		wallets:  wallets,
	}
}

// Unlock pays for a video and flips the session flag in one transaction.
// The session row is locked before any wallet, so concurrent unlocks of the
// same pair serialize and the later one sees ErrAlreadyUnlocked.
func (s *service) Unlock(ctx context.Context, userID, videoID int) (*UnlockResult, error) {
	v, err := s.videos.GetActive(ctx, s.db, videoID)
	if err != nil {
		return nil, err
	}

	var receipt *wallet.Receipt
	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		ws, err := s.sessions.GetOrCreateForUpdate(ctx, tx, userID, v.ID)
		if err != nil {
			return err
		}
		if ws.IsUnlocked {
			return ErrAlreadyUnlocked
		}

		if !v.IsFree() && v.CreatorID != userID {
			receipt, err = s.wallets.TransferTx(ctx, tx, userID, v.CreatorID, v.PriceTC, ledger.TypeSpendView, &v.ID)
			if err != nil {
				return err
			}
		}

		return s.sessions.MarkUnlocked(ctx, tx, ws.ID)
	})
	if err != nil {
		metrics.RecordPurchase(outcomeOf(err))
		return nil, err
	}

	if receipt == nil {
		metrics.RecordPurchase(outcomeFree)
		logger.Info("video unlocked", "user_id", userID, "video_id", v.ID, "paid", false)
		return &UnlockResult{RemainingTC: s.balanceOf(ctx, userID), Unlocked: true}, nil
	}

	s.wallets.Settled(ctx, receipt)
	metrics.RecordPurchase(outcomePaid)
	logger.Info("video unlocked", "user_id", userID, "video_id", v.ID, "paid", true,
		"price_tc", v.PriceTC.StringFixed(2), "transaction_id", receipt.Transaction.ID)

	remaining := receipt.Balances[userID]
	return &UnlockResult{RemainingTC: &remaining, Unlocked: true}, nil
}

// Detail fetches or creates the viewer's session. A free video is unlocked
// as a side effect of the read.
func (s *service) Detail(ctx context.Context, userID, videoID int) (*Detail, error) {
	v, err := s.videos.GetActive(ctx, s.db, videoID)
	if err != nil {
		return nil, err
	}

	ws, err := s.sessions.GetOrCreate(ctx, s.db, userID, v.ID)
	if err != nil {
		return nil, err
	}

	if !ws.IsUnlocked && v.IsFree() {
		if err := s.sessions.MarkUnlocked(ctx, s.db, ws.ID); err != nil {
			return nil, err
		}
		ws.IsUnlocked = true
	}

	d := &Detail{
		Video:          *v,
		SessionID:      ws.ID,
		WatchedSeconds: ws.WatchedSeconds,
		Unlocked:       ws.IsUnlocked,
	}
	if ws.IsUnlocked || v.CreatorID == userID {
		d.FileKey = v.FileKey
	}
	return d, nil
}

func (s *service) balanceOf(ctx context.Context, userID int) *decimal.Decimal {
	b, err := s.wallets.GetBalance(ctx, userID)
	if err != nil {
		logger.Warn("balance read after unlock failed", "user_id", userID, "error", err)
		return nil
	}
	return &b.TC
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyUnlocked):
		return outcomeAlreadyUnlocked
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return outcomeInsufficientFunds
	default:
		return outcomeFailed
	}
}
