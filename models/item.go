// models/item.go
package models

import (
	"time"
)

const (
	ItemTypeWeapon     = "weapon"
	ItemTypeArmor      = "armor"
	ItemTypeConsumable = "consumable"
	ItemTypeSpecial    = "special"
)

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Item is a catalog entry for an unlockable (the six swords, mostly). Entries
// are created lazily the first time the game reports an unlock, so the catalog
// needs no seeding.
type Item struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	ItemType    string `json:"item_type" gorm:"default:'weapon'"` // weapon | armor | consumable | special
	Rarity      string `json:"rarity" gorm:"default:'common'"`    // common | rare | epic | legendary

	CreatedAt time.Time `json:"created_at"`
}

func ValidItemType(s string) bool {
	switch s {
	case ItemTypeWeapon, ItemTypeArmor, ItemTypeConsumable, ItemTypeSpecial:
		return true
	}
	return false
}

func ValidRarity(s string) bool {
	switch s {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}
