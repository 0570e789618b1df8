package video

import (
	"time"

	"github.com/shopspring/decimal"
)

type Video struct {
	ID              int             `db:"id" json:"id"`
	Title           string          `db:"title" json:"title"`
	Description     string          `db:"description" json:"description"`
	CreatorID       int             `db:"creator_id" json:"creator_id"`
	FileKey         string          `db:"file_key" json:"-"`
	DurationSeconds int             `db:"duration_seconds" json:"duration_seconds"`
	PriceTC         decimal.Decimal `db:"price_tc" json:"price_tc"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// IsFree reports whether the video can be unlocked without a transfer.
func (v *Video) IsFree() bool {
	return !v.PriceTC.IsPositive()
}

type CreateVideoRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=255"`
	Description     string `json:"description" validate:"max=5000"`
	FileKey         string `json:"file_key" validate:"required,max=512"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	PriceTC         string `json:"price_tc" validate:"required,numeric"`
}
