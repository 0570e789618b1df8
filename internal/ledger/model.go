package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeEarnAds     Type = "EARN_ADS"
	TypeSpendView   Type = "SPEND_VIEW"
	TypeEarnCreator Type = "EARN_CREATOR"
	TypeDepositVND  Type = "DEPOSIT_VND"
	TypeWithdrawVND Type = "WITHDRAW_VND"
)

func (t Type) Valid() bool {
	switch t {
	case TypeEarnAds, TypeSpendView, TypeEarnCreator, TypeDepositVND, TypeWithdrawVND:
		return true
	}
	return false
}

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Transaction is one immutable ledger row. SenderID is nil for system-issued
// credits, ReceiverID is nil for system-absorbed debits.
type Transaction struct {
	ID               int             `db:"id" json:"id"`
	SenderID         *int            `db:"sender_id" json:"sender_id,omitempty"`
	ReceiverID       *int            `db:"receiver_id" json:"receiver_id,omitempty"`
	Type             Type            `db:"tx_type" json:"tx_type"`
	AmountTC         decimal.Decimal `db:"amount_tc" json:"amount_tc"`
	AmountVND        decimal.Decimal `db:"amount_vnd" json:"amount_vnd"`
	Status           Status          `db:"status" json:"status"`
	Timestamp        time.Time       `db:"created_at" json:"timestamp"`
	ReferenceVideoID *int            `db:"reference_video_id" json:"reference_video_id,omitempty"`
}
