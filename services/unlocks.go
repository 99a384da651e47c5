// services/unlocks.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"vampyr-backend/models"

	"gorm.io/gorm"
)

var (
	ErrItemLimitReached = errors.New("item limit reached")
	ErrAlreadyUnlocked  = errors.New("already unlocked")
)

// findOrCreateItem resolves an item catalog entry by name, creating it on
// first sight so the game never has to pre-register its content.
func findOrCreateItem(tx *gorm.DB, name, description, itemType, rarity string) (*models.Item, error) {
	if description == "" {
		description = "Unlocked item: " + name
	}
	if itemType == "" {
		itemType = models.ItemTypeWeapon
	}
	if rarity == "" {
		rarity = models.RarityCommon
	}

	var item models.Item
	err := tx.Where(models.Item{Name: name}).
		Attrs(models.Item{Description: description, ItemType: itemType, Rarity: rarity}).
		FirstOrCreate(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// findOrCreateAchievement resolves an achievement by name, then by numeric ID
// for identifiers the game sends as stringified IDs, and finally creates it.
func findOrCreateAchievement(tx *gorm.DB, identifier string) (*models.Achievement, error) {
	var ach models.Achievement
	err := tx.Where("name = ?", identifier).First(&ach).Error
	if err == nil {
		return &ach, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if id, convErr := strconv.Atoi(identifier); convErr == nil {
		err = tx.Where("id = ?", id).First(&ach).Error
		if err == nil {
			return &ach, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	ach = models.Achievement{
		Name:        identifier,
		Description: "Achievement: " + identifier,
		Points:      models.DefaultAchievementPoints,
	}
	if err := tx.Create(&ach).Error; err != nil {
		return nil, err
	}
	log.Printf("✨ New achievement created: %s", identifier)
	return &ach, nil
}

// setUnlockedItems replaces the player's item set with the named items, capped
// at the product's 6-sword limit. The game reports the full set on each sync.
func setUnlockedItems(tx *gorm.DB, player *models.Player, names []string) error {
	if len(names) > models.MaxUnlockedItems {
		names = names[:models.MaxUnlockedItems]
	}

	items := make([]models.Item, 0, len(names))
	for _, name := range names {
		item, err := findOrCreateItem(tx, name, "", "", "")
		if err != nil {
			return err
		}
		items = append(items, *item)
	}
	return tx.Model(player).Association("UnlockedItems").Replace(&items)
}

// grantAchievements connects the identified achievements to the player.
// Achievements accumulate: earlier grants are never removed.
func grantAchievements(tx *gorm.DB, player *models.Player, identifiers []string) error {
	for _, identifier := range identifiers {
		ach, err := findOrCreateAchievement(tx, identifier)
		if err != nil {
			return err
		}
		if err := tx.Model(player).Association("Achievements").Append(ach); err != nil {
			return err
		}
	}
	return nil
}

type ItemUnlock struct {
	ItemName    string `json:"item_name"`
	ItemType    string `json:"item_type"`
	Rarity      string `json:"rarity"`
	Description string `json:"description"`
}

// UnlockItem grants a single item to the player. Returns the item and the
// player's new unlock count.
func (s *PlayerService) UnlockItem(nickname string, in ItemUnlock) (*models.Item, int, error) {
	var item *models.Item
	var total int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var player models.Player
		if err := tx.Preload("UnlockedItems").
			Where("nickname = ?", nickname).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		if len(player.UnlockedItems) >= models.MaxUnlockedItems {
			return ErrItemLimitReached
		}

		found, err := findOrCreateItem(tx, in.ItemName, in.Description, in.ItemType, in.Rarity)
		if err != nil {
			return err
		}
		for _, owned := range player.UnlockedItems {
			if owned.ID == found.ID {
				return fmt.Errorf("%w: %s", ErrAlreadyUnlocked, found.Name)
			}
		}

		owned := len(player.UnlockedItems)
		if err := tx.Model(&player).Association("UnlockedItems").Append(found); err != nil {
			return err
		}
		item = found
		total = owned + 1
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return item, total, nil
}

type AchievementUnlock struct {
	AchievementName string `json:"achievement_name"`
	Description     string `json:"description"`
	Icon            string `json:"icon"`
	Points          int    `json:"points"`
}

// UnlockAchievement grants a single achievement to the player, creating the
// catalog entry if the game reports it for the first time.
func (s *PlayerService) UnlockAchievement(nickname string, in AchievementUnlock) (*models.Achievement, int, error) {
	var achievement *models.Achievement
	var total int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var player models.Player
		if err := tx.Preload("Achievements").
			Where("nickname = ?", nickname).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		var ach models.Achievement
		points := in.Points
		if points <= 0 {
			points = models.DefaultAchievementPoints
		}
		if err := tx.Where(models.Achievement{Name: in.AchievementName}).
			Attrs(models.Achievement{Description: in.Description, Icon: in.Icon, Points: points}).
			FirstOrCreate(&ach).Error; err != nil {
			return err
		}

		for _, owned := range player.Achievements {
			if owned.ID == ach.ID {
				return fmt.Errorf("%w: %s", ErrAlreadyUnlocked, ach.Name)
			}
		}

		owned := len(player.Achievements)
		if err := tx.Model(&player).Association("Achievements").Append(&ach); err != nil {
			return err
		}
		achievement = &ach
		total = owned + 1
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return achievement, total, nil
}

type CharacterUnlock struct {
	CharacterName string `json:"character_name"`
	Rarity        string `json:"rarity"`
	Description   string `json:"description"`
}

// UnlockCharacter registers a character in the catalog. Characters are not
// tracked per player, the game only reports that one was seen.
func (s *PlayerService) UnlockCharacter(nickname string, in CharacterUnlock) (*models.Character, error) {
	if _, err := s.playerID(nickname); err != nil {
		return nil, err
	}

	rarity := in.Rarity
	if rarity == "" {
		rarity = models.RarityCommon
	}
	var character models.Character
	err := s.DB.Where(models.Character{Name: in.CharacterName}).
		Attrs(models.Character{Description: in.Description, Rarity: rarity}).
		FirstOrCreate(&character).Error
	if err != nil {
		return nil, err
	}
	return &character, nil
}

func (s *PlayerService) playerID(nickname string) (uint, error) {
	var player models.Player
	if err := s.DB.Select("id").Where("nickname = ?", nickname).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrPlayerNotFound
		}
		return 0, err
	}
	return player.ID, nil
}

// PlayerAchievements lists the player's achievements, highest points first,
// with the total points earned.
func (s *PlayerService) PlayerAchievements(nickname string) ([]models.Achievement, int, error) {
	var player models.Player
	err := s.DB.Preload("Achievements", func(db *gorm.DB) *gorm.DB {
		return db.Order("points DESC, id ASC")
	}).Where("nickname = ?", nickname).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrPlayerNotFound
		}
		return nil, 0, err
	}

	totalPoints := 0
	for _, ach := range player.Achievements {
		totalPoints += ach.Points
	}
	return player.Achievements, totalPoints, nil
}

type PlayerCombatStats struct {
	EnemiesDefeated  int `json:"enemies_defeated"`
	EnemiesRemaining int `json:"enemies_remaining"`
	Defeats          int `json:"defeats"`
}

type PlayerProgressionStats struct {
	PlayTimeSeconds   int            `json:"play_time_seconds"`
	PlayTimeFormatted string         `json:"play_time_formatted"`
	TotalItems        int            `json:"total_items"`
	ItemsRemaining    int            `json:"items_remaining"`
	ItemsByRarity     map[string]int `json:"items_by_rarity"`
}

type PlayerAchievementStats struct {
	Total       int                  `json:"total"`
	TotalPoints int                  `json:"total_points"`
	List        []models.Achievement `json:"list"`
}

type PlayerStats struct {
	Nickname     string                 `json:"nickname"`
	Level        int                    `json:"level"`
	Combat       PlayerCombatStats      `json:"combat"`
	Progression  PlayerProgressionStats `json:"progression"`
	Achievements PlayerAchievementStats `json:"achievements"`
	IsLinked     bool                   `json:"is_linked"`
}

// GetPlayerStats aggregates one player's progression for the mobile app.
func (s *PlayerService) GetPlayerStats(nickname string) (*PlayerStats, error) {
	var player models.Player
	err := s.DB.Preload("UnlockedItems").
		Preload("Achievements", func(db *gorm.DB) *gorm.DB {
			return db.Order("points DESC, id ASC")
		}).
		Where("nickname = ?", nickname).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	itemsByRarity := map[string]int{}
	for _, item := range player.UnlockedItems {
		itemsByRarity[item.Rarity]++
	}
	totalPoints := 0
	for _, ach := range player.Achievements {
		totalPoints += ach.Points
	}

	return &PlayerStats{
		Nickname: player.Nickname,
		Level:    player.Level,
		Combat: PlayerCombatStats{
			EnemiesDefeated:  player.EnemiesDefeated,
			EnemiesRemaining: models.MaxEnemiesDefeated - player.EnemiesDefeated,
			Defeats:          player.Defeats,
		},
		Progression: PlayerProgressionStats{
			PlayTimeSeconds:   player.PlayTimeSeconds,
			PlayTimeFormatted: formatPlayTime(player.PlayTimeSeconds),
			TotalItems:        len(player.UnlockedItems),
			ItemsRemaining:    models.MaxUnlockedItems - len(player.UnlockedItems),
			ItemsByRarity:     itemsByRarity,
		},
		Achievements: PlayerAchievementStats{
			Total:       len(player.Achievements),
			TotalPoints: totalPoints,
			List:        player.Achievements,
		},
		IsLinked: player.IsLinked(),
	}, nil
}

func formatPlayTime(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
