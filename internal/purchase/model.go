package purchase

import (
	"github.com/shopspring/decimal"

	"hourskill/internal/video"
)

// UnlockResult is returned by a successful unlock. RemainingTC is the
// buyer's balance after the purchase; it is omitted when the balance could
// not be read back after a payment-free unlock.
type UnlockResult struct {
	RemainingTC *decimal.Decimal `json:"remaining_tc,omitempty"`
	Unlocked    bool             `json:"unlocked"`
}

// Detail is a video as seen by one viewer. FileKey is only set once the
// viewer may play the video.
type Detail struct {
	Video          video.Video `json:"video"`
	SessionID      int         `json:"session_id"`
	WatchedSeconds int         `json:"watched_seconds"`
	Unlocked       bool        `json:"unlocked"`
	FileKey        string      `json:"file_key,omitempty"`
}
