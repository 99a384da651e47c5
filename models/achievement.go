// models/achievement.go
package models

import (
	"time"
)

const DefaultAchievementPoints = 10

// Achievement is a catalog entry for a game accomplishment. Like items,
// entries are created lazily when the game first reports them.
type Achievement struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points" gorm:"default:10"`

	CreatedAt time.Time `json:"created_at"`
}

// Character is a catalog-only entity: the game reports character unlocks but
// they are not tracked per player.
type Character struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	Rarity      string `json:"rarity" gorm:"default:'common'"`

	CreatedAt time.Time `json:"created_at"`
}
