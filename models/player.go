// models/player.go
package models

import (
	"time"
)

// Progress caps enforced on sync from the game client.
const (
	MaxLevel           = 3
	MaxEnemiesDefeated = 6
	MaxUnlockedItems   = 6
)

// Player is the game-side identity. It is keyed by nickname only — the game
// client has no account credentials. UserID is nil until the player is linked
// to an account via a link code; at most one user owns a player at a time.
type Player struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Nickname string  `json:"nickname" gorm:"uniqueIndex;not null"` // case-sensitive, immutable
	UserID   *string `json:"user_id,omitempty" gorm:"index"`

	// 🎮 Progression synced from the game
	Level           int `json:"level" gorm:"default:1"`
	EnemiesDefeated int `json:"enemies_defeated" gorm:"default:0"`
	Defeats         int `json:"defeats" gorm:"default:0"`
	PlayTimeSeconds int `json:"play_time_seconds" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 🗡️ Unlocks: items are a replaceable set capped at 6, achievements only
	// ever accumulate.
	UnlockedItems []Item        `json:"unlocked_items,omitempty" gorm:"many2many:player_items"`
	Achievements  []Achievement `json:"achievements,omitempty" gorm:"many2many:player_achievements"`
}

func (p *Player) IsLinked() bool {
	return p.UserID != nil
}
