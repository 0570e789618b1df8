package wallet

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hourskill/internal/ledger"
)

// SignupBonus is credited when a wallet is provisioned for a new user.
var SignupBonus = decimal.RequireFromString("5.00")

// Wallet is the mutable balance pair owned by exactly one user.
type Wallet struct {
	ID          int             `db:"id" json:"id"`
	UserID      int             `db:"user_id" json:"user_id"`
	TCBalance   decimal.Decimal `db:"tc_balance" json:"tc_balance"`
	FiatBalance decimal.Decimal `db:"fiat_balance" json:"fiat_balance"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type Balance struct {
	TC        decimal.Decimal `json:"tc"`
	Fiat      decimal.Decimal `json:"fiat"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (w *Wallet) Balance() *Balance {
	return &Balance{TC: w.TCBalance, Fiat: w.FiatBalance, UpdatedAt: w.UpdatedAt}
}

// Receipt is what every balance mutation returns: the single ledger row it
// appended plus the post-mutation TC balance of every wallet it touched,
// keyed by user id.
type Receipt struct {
	Transaction ledger.Transaction      `json:"transaction"`
	Balances    map[int]decimal.Decimal `json:"balances"`
}

func (r *Receipt) UserIDs() []int {
	ids := make([]int, 0, len(r.Balances))
	for id := range r.Balances {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
