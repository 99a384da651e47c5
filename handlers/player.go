// handlers/player.go
package handlers

import (
	"errors"
	"time"

	"vampyr-backend/models"
	"vampyr-backend/services"
	"vampyr-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func playerProfile(p *models.Player) fiber.Map {
	items := p.UnlockedItems
	if items == nil {
		items = []models.Item{}
	}
	return fiber.Map{
		"nickname":          p.Nickname,
		"level":             p.Level,
		"enemies_defeated":  p.EnemiesDefeated,
		"defeats":           p.Defeats,
		"play_time_seconds": p.PlayTimeSeconds,
		"unlocked_items":    items,
		"created_at":        p.CreatedAt,
		"is_linked":         p.IsLinked(),
	}
}

// SetupPlayerRoutes registers the game-client facing endpoints. These are
// nickname-keyed and unauthenticated — the game side has no credentials, which
// is exactly why account linking goes through short-lived codes.
func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService) {
	players := app.Group("/api/players")

	players.Get("/global/stats", func(c *fiber.Ctx) error {
		stats, err := playerService.GetGlobalStats()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute global stats"})
		}
		return c.JSON(stats)
	})

	players.Post("/login", func(c *fiber.Ctx) error {
		var body struct {
			Nickname string `json:"nickname"`
		}
		if err := c.BodyParser(&body); err != nil || body.Nickname == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nickname required"})
		}

		player, isNew, err := playerService.GameLogin(body.Nickname)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to log in to game"})
		}

		token, err := utils.GenerateToken(utils.PlayerSubject(player.ID))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
		}

		message := "Welcome back!"
		if isNew {
			message = "Welcome, new player!"
		}
		return c.JSON(fiber.Map{
			"message": message,
			"token":   token,
			"player":  playerProfile(player),
		})
	})

	players.Get("/check/:nickname", func(c *fiber.Ctx) error {
		player, err := playerService.GetByNickname(c.Params("nickname"))
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.JSON(fiber.Map{
					"exists":  false,
					"message": "This player does not exist. Create your profile in the game first.",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check player"})
		}

		message := "This player is available to link"
		if player.IsLinked() {
			message = "This player is already linked to an account"
		}
		return c.JSON(fiber.Map{
			"exists":    true,
			"is_linked": player.IsLinked(),
			"player":    playerProfile(player),
			"message":   message,
		})
	})

	players.Get("/:nickname", func(c *fiber.Ctx) error {
		player, err := playerService.GetByNickname(c.Params("nickname"))
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load player"})
		}
		return c.JSON(fiber.Map{"player": playerProfile(player)})
	})

	players.Put("/:nickname/progress", func(c *fiber.Ctx) error {
		var in services.ProgressUpdate
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		player, err := playerService.UpdateProgress(c.Params("nickname"), in)
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save progress"})
		}

		profile := playerProfile(player)
		profile["achievements"] = player.Achievements
		return c.JSON(fiber.Map{
			"message": "Progress saved",
			"player":  profile,
		})
	})

	players.Post("/:nickname/items", func(c *fiber.Ctx) error {
		var in services.ItemUnlock
		if err := c.BodyParser(&in); err != nil || in.ItemName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_name required"})
		}
		if in.ItemType != "" && !models.ValidItemType(in.ItemType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_type must be weapon, armor, consumable or special"})
		}
		if in.Rarity != "" && !models.ValidRarity(in.Rarity) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rarity must be common, rare, epic or legendary"})
		}

		item, total, err := playerService.UnlockItem(c.Params("nickname"), in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPlayerNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			case errors.Is(err, services.ErrItemLimitReached):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "you already have all 6 items unlocked"})
			case errors.Is(err, services.ErrAlreadyUnlocked):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item already unlocked"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unlock item"})
		}

		return c.JSON(fiber.Map{
			"message":        item.Name + " unlocked!",
			"item":           item,
			"total_unlocked": total,
		})
	})

	players.Post("/:nickname/characters", func(c *fiber.Ctx) error {
		var in services.CharacterUnlock
		if err := c.BodyParser(&in); err != nil || in.CharacterName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "character_name required"})
		}
		if in.Rarity != "" && !models.ValidRarity(in.Rarity) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rarity must be common, rare, epic or legendary"})
		}

		character, err := playerService.UnlockCharacter(c.Params("nickname"), in)
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unlock character"})
		}

		return c.JSON(fiber.Map{
			"message":   "Character " + character.Name + " unlocked!",
			"character": character,
		})
	})

	players.Post("/:nickname/achievements", func(c *fiber.Ctx) error {
		var in services.AchievementUnlock
		if err := c.BodyParser(&in); err != nil || in.AchievementName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "achievement_name required"})
		}

		achievement, total, err := playerService.UnlockAchievement(c.Params("nickname"), in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPlayerNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			case errors.Is(err, services.ErrAlreadyUnlocked):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "achievement already unlocked"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unlock achievement"})
		}

		return c.JSON(fiber.Map{
			"message":            "Achievement unlocked: " + achievement.Name + "!",
			"achievement":        achievement,
			"total_achievements": total,
		})
	})

	players.Get("/:nickname/stats", func(c *fiber.Ctx) error {
		stats, err := playerService.GetPlayerStats(c.Params("nickname"))
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load player stats"})
		}
		return c.JSON(stats)
	})

	players.Get("/:nickname/achievements", func(c *fiber.Ctx) error {
		achievements, totalPoints, err := playerService.PlayerAchievements(c.Params("nickname"))
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load achievements"})
		}
		return c.JSON(fiber.Map{
			"nickname":           c.Params("nickname"),
			"total_achievements": len(achievements),
			"total_points":       totalPoints,
			"achievements":       achievements,
		})
	})

	players.Get("/:nickname/sync", func(c *fiber.Ctx) error {
		player, err := playerService.GetByNickname(c.Params("nickname"))
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to sync player"})
		}

		return c.JSON(fiber.Map{
			"message":   "Data synced",
			"player":    playerProfile(player),
			"last_sync": time.Now().UTC(),
		})
	})
}
