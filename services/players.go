// services/players.go
package services

import (
	"errors"

	"vampyr-backend/models"

	"gorm.io/gorm"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

// GameLogin finds or creates the player for a game-client login. Nicknames are
// the whole identity on the game side, so a first login is also registration.
func (s *PlayerService) GameLogin(nickname string) (*models.Player, bool, error) {
	var player models.Player
	err := s.DB.Preload("UnlockedItems").Where("nickname = ?", nickname).First(&player).Error
	if err == nil {
		return &player, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	player = models.Player{Nickname: nickname, Level: 1}
	if err := s.DB.Create(&player).Error; err != nil {
		// Lost a create race with a concurrent first login for the same nickname.
		if ferr := s.DB.Where("nickname = ?", nickname).First(&player).Error; ferr == nil {
			return &player, false, nil
		}
		return nil, false, err
	}
	return &player, true, nil
}

func (s *PlayerService) GetByNickname(nickname string) (*models.Player, error) {
	var player models.Player
	if err := s.DB.Preload("UnlockedItems").Where("nickname = ?", nickname).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

type ProgressUpdate struct {
	Level           *int `json:"level"`
	EnemiesDefeated *int `json:"enemies_defeated"`
	Defeats         *int `json:"defeats"`
	PlayTimeSeconds *int `json:"play_time_seconds"`

	// The game reports unlocks alongside counters on every sync. Items are
	// the full set (replace semantics), achievements only ever accumulate.
	UnlockedItems *[]string `json:"unlocked_items"`
	Achievements  *[]string `json:"achievements"`
}

// UpdateProgress applies the fields the game sent, clamped to the product's
// limits (3 levels, 6 enemies, 6 items, no negative counters).
func (s *PlayerService) UpdateProgress(nickname string, in ProgressUpdate) (*models.Player, error) {
	updates := map[string]interface{}{}
	if in.Level != nil {
		updates["level"] = clamp(*in.Level, 1, models.MaxLevel)
	}
	if in.EnemiesDefeated != nil {
		updates["enemies_defeated"] = clamp(*in.EnemiesDefeated, 0, models.MaxEnemiesDefeated)
	}
	if in.Defeats != nil {
		updates["defeats"] = max(0, *in.Defeats)
	}
	if in.PlayTimeSeconds != nil {
		updates["play_time_seconds"] = max(0, *in.PlayTimeSeconds)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var player models.Player
		if err := tx.Where("nickname = ?", nickname).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&player).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.UnlockedItems != nil {
			if err := setUnlockedItems(tx, &player, *in.UnlockedItems); err != nil {
				return err
			}
		}
		if in.Achievements != nil {
			if err := grantAchievements(tx, &player, *in.Achievements); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var player models.Player
	if err := s.DB.Preload("UnlockedItems").
		Preload("Achievements").
		Where("nickname = ?", nickname).First(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type GlobalStats struct {
	TotalPlayers    int64 `json:"total_players"`
	LinkedPlayers   int64 `json:"linked_players"`
	UnlinkedPlayers int64 `json:"unlinked_players"`

	TotalEnemiesDefeated int64 `json:"total_enemies_defeated"`
	TotalDefeats         int64 `json:"total_defeats"`
	TotalPlayTimeSeconds int64 `json:"total_play_time_seconds"`
	TotalItemsUnlocked   int64 `json:"total_items_unlocked"`
	TotalAchievements    int64 `json:"total_achievements"`

	AverageLevel float64 `json:"average_level"`

	TopLevelNickname    string `json:"top_level_nickname,omitempty"`
	TopLevel            int    `json:"top_level,omitempty"`
	TopKillsNickname    string `json:"top_kills_nickname,omitempty"`
	TopKills            int    `json:"top_kills,omitempty"`
	TopPlayTimeNickname string `json:"top_play_time_nickname,omitempty"`
	TopPlayTimeSeconds  int    `json:"top_play_time_seconds,omitempty"`

	LevelDistribution map[int]int64 `json:"level_distribution"`
}

// GetGlobalStats aggregates game-wide progression numbers for the dashboard.
func (s *PlayerService) GetGlobalStats() (*GlobalStats, error) {
	stats := GlobalStats{LevelDistribution: map[int]int64{}}

	if err := s.DB.Model(&models.Player{}).Count(&stats.TotalPlayers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Player{}).
		Where("user_id IS NOT NULL").
		Count(&stats.LinkedPlayers).Error; err != nil {
		return nil, err
	}
	stats.UnlinkedPlayers = stats.TotalPlayers - stats.LinkedPlayers

	if stats.TotalPlayers == 0 {
		return &stats, nil
	}

	var totals struct {
		Enemies  int64
		Defeats  int64
		PlayTime int64
		AvgLevel float64
	}
	if err := s.DB.Model(&models.Player{}).
		Select("COALESCE(SUM(enemies_defeated),0) AS enemies, COALESCE(SUM(defeats),0) AS defeats, COALESCE(SUM(play_time_seconds),0) AS play_time, COALESCE(AVG(level),0) AS avg_level").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	stats.TotalEnemiesDefeated = totals.Enemies
	stats.TotalDefeats = totals.Defeats
	stats.TotalPlayTimeSeconds = totals.PlayTime
	stats.AverageLevel = totals.AvgLevel

	// Unlock totals come off the join tables.
	if err := s.DB.Table("player_items").Count(&stats.TotalItemsUnlocked).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Table("player_achievements").Count(&stats.TotalAchievements).Error; err != nil {
		return nil, err
	}

	var top models.Player
	if err := s.DB.Order("level DESC, id ASC").First(&top).Error; err == nil {
		stats.TopLevelNickname, stats.TopLevel = top.Nickname, top.Level
	}
	if err := s.DB.Order("enemies_defeated DESC, id ASC").First(&top).Error; err == nil {
		stats.TopKillsNickname, stats.TopKills = top.Nickname, top.EnemiesDefeated
	}
	if err := s.DB.Order("play_time_seconds DESC, id ASC").First(&top).Error; err == nil {
		stats.TopPlayTimeNickname, stats.TopPlayTimeSeconds = top.Nickname, top.PlayTimeSeconds
	}

	for level := 1; level <= models.MaxLevel; level++ {
		var count int64
		if err := s.DB.Model(&models.Player{}).Where("level = ?", level).Count(&count).Error; err != nil {
			return nil, err
		}
		stats.LevelDistribution[level] = count
	}
	return &stats, nil
}
