// handlers/auth.go
package handlers

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"vampyr-backend/middleware"
	"vampyr-backend/models"
	"vampyr-backend/services"
	"vampyr-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func playerSummary(p *models.Player) fiber.Map {
	return fiber.Map{
		"id":                p.ID,
		"nickname":          p.Nickname,
		"level":             p.Level,
		"enemies_defeated":  p.EnemiesDefeated,
		"defeats":           p.Defeats,
		"play_time_seconds": p.PlayTimeSeconds,
		"is_linked":         p.IsLinked(),
	}
}

func userSummary(u *models.User) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"full_name":  u.FullName,
		"avatar_url": u.AvatarURL,
	}
}

// linkErrorResponse maps the link flow's error taxonomy onto HTTP statuses.
// Everything except a store failure is terminal for the call — retrying
// without a fresh code or an unlink cannot succeed.
func linkErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPlayerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
	case errors.Is(err, services.ErrCodeInvalidOrExpired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "link code invalid or expired"})
	case errors.Is(err, services.ErrCodeAlreadyUsed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "link code already used"})
	case errors.Is(err, services.ErrPlayerAlreadyLinked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "player already linked to another account"})
	case errors.Is(err, services.ErrStoreUnavailable):
		log.Printf("⚠️  Link store unavailable: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service temporarily unavailable, try again"})
	default:
		log.Printf("❌ Link flow error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong, try again later"})
	}
}

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, userService *services.UserService, linkService *services.LinkService) {
	auth := app.Group("/api/auth")

	auth.Post("/register", func(c *fiber.Ctx) error {
		var in services.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if !strings.Contains(in.Email, "@") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
		}
		if len(in.Username) < 3 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username must be at least 3 characters"})
		}
		if len(in.Password) < 6 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 6 characters"})
		}

		user, err := authService.Register(in)
		if err != nil {
			if errors.Is(err, services.ErrEmailOrUsernameTaken) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email or username already registered"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register user"})
		}

		token, err := utils.GenerateToken(user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Welcome to VAMPYR Assistant!",
			"token":   token,
			"user":    userSummary(user),
		})
	})

	auth.Post("/register-with-player", func(c *fiber.Ctx) error {
		var body struct {
			services.RegisterInput
			PlayerNickname string `json:"player_nickname"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if body.PlayerNickname == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player_nickname required"})
		}
		if len(body.Password) < 6 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 6 characters"})
		}

		user, player, err := authService.RegisterWithPlayer(body.RegisterInput, body.PlayerNickname)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailOrUsernameTaken):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email or username already registered"})
			case errors.Is(err, services.ErrPlayerNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found — create your profile in the game first"})
			case errors.Is(err, services.ErrPlayerAlreadyLinked):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "this player is already linked to another account"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register user"})
		}

		token, err := utils.GenerateToken(user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Account created and player linked!",
			"token":   token,
			"user":    userSummary(user),
			"player":  playerSummary(player),
		})
	})

	auth.Post("/login", func(c *fiber.Ctx) error {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		user, err := authService.Login(body.Email, body.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to log in"})
		}

		token, err := utils.GenerateToken(user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
		}

		return c.JSON(fiber.Map{
			"message": "Welcome back, fighter!",
			"token":   token,
			"user":    userSummary(user),
		})
	})

	// === Link code flow ===

	// Called by the game client after game login; the code is rendered on
	// screen for the mobile app to scan. Rate limited: the 32-bit code space
	// only holds up against guessing if the transport throttles attempts.
	auth.Post("/generate-qr", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
	}), func(c *fiber.Ctx) error {
		var body struct {
			Nickname string `json:"nickname"`
		}
		if err := c.BodyParser(&body); err != nil || body.Nickname == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nickname required"})
		}

		code, err := linkService.IssueCode(body.Nickname)
		if err != nil {
			return linkErrorResponse(c, err)
		}

		baseURL := os.Getenv("BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:3000"
		}
		return c.JSON(fiber.Map{
			"code":       code.Code,
			"qr_url":     baseURL + "/link?qr=" + code.Code,
			"expires_in": int(services.LinkCodeTTL.Seconds()),
			"expires_at": code.ExpiresAt,
			"message":    "Scan this code from the mobile app to link your account",
		})
	})

	auth.Post("/link", middleware.AuthRequired(), limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
	}), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&body); err != nil || body.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code required"})
		}

		player, err := linkService.ResolveCode(body.Code, userID)
		if err != nil {
			return linkErrorResponse(c, err)
		}

		user, err := userService.GetByID(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
		}

		return c.JSON(fiber.Map{
			"message": "Player linked successfully!",
			"user":    userSummary(user),
			"player":  playerSummary(player),
		})
	})

	auth.Post("/unlink", middleware.AuthRequired(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		player, err := linkService.Unlink(userID)
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no player linked to this account"})
			}
			return linkErrorResponse(c, err)
		}

		return c.JSON(fiber.Map{
			"message": "Player unlinked successfully",
			"player":  fiber.Map{"nickname": player.Nickname},
		})
	})

	auth.Get("/my-player", middleware.AuthRequired(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		player, err := linkService.LinkedPlayer(userID)
		if err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no player linked to this account"})
			}
			return linkErrorResponse(c, err)
		}

		return c.JSON(fiber.Map{"player": playerSummary(player)})
	})

	auth.Get("/profile", middleware.AuthRequired(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		user, err := userService.GetByID(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load profile"})
		}

		return c.JSON(fiber.Map{"user": userSummary(user)})
	})
}
