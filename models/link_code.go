// models/link_code.go
package models

import (
	"time"
)

const (
	// ConsumedReasonUsed: the code was spent by a successful resolve. Eligible
	// for replay while its player is unlinked and the code is unexpired.
	ConsumedReasonUsed = "used"
	// ConsumedReasonSuperseded: invalidated by a newer issuance for the same
	// player. Never replayable.
	ConsumedReasonSuperseded = "superseded"
)

// LinkCode is one issuance of a short-lived, single-use player link code.
// Rows are append-only: codes are consumed, never deleted, so the table doubles
// as an audit trail of link attempts.
type LinkCode struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Code     string `json:"code" gorm:"uniqueIndex;not null"` // 8 uppercase hex chars
	PlayerID uint   `json:"player_id" gorm:"index;not null"`

	Consumed       bool   `json:"consumed" gorm:"default:false"`
	ConsumedReason string `json:"consumed_reason,omitempty"` // "" | used | superseded

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`

	Player Player `json:"-" gorm:"foreignKey:PlayerID"`
}

// Pending reports whether the code is still spendable as a fresh code:
// not consumed and not past its TTL.
func (lc *LinkCode) Pending(now time.Time) bool {
	return !lc.Consumed && now.Before(lc.ExpiresAt)
}

// Expired reports whether the code is past its TTL. Expiry dominates every
// other state: an expired code is unusable no matter what.
func (lc *LinkCode) Expired(now time.Time) bool {
	return !now.Before(lc.ExpiresAt)
}
