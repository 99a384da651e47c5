// handlers/user.go
package handlers

import (
	"errors"
	"log"

	"vampyr-backend/middleware"
	"vampyr-backend/services"
	"vampyr-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	users := app.Group("/api/users", middleware.AuthRequired())

	users.Put("/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var in services.ProfileUpdate
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		user, err := userService.UpdateProfile(userID, in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailInUse):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email already in use"})
			case errors.Is(err, services.ErrUsernameInUse):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username already in use"})
			case errors.Is(err, services.ErrUserNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile"})
		}

		return c.JSON(fiber.Map{
			"message": "Profile updated",
			"user":    userSummary(user),
		})
	})

	users.Put("/password", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if len(body.NewPassword) < 6 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "new password must be at least 6 characters"})
		}

		if err := userService.UpdatePassword(userID, body.CurrentPassword, body.NewPassword); err != nil {
			switch {
			case errors.Is(err, services.ErrNoPasswordSet):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no password set for this account — set one first"})
			case errors.Is(err, services.ErrWrongPassword):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "current password incorrect"})
			case errors.Is(err, services.ErrUserNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update password"})
		}

		return c.JSON(fiber.Map{"message": "Password updated"})
	})

	users.Post("/avatar", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file required"})
		}

		user, err := userService.GetByID(userID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}

		key := utils.AvatarKey(user.Username, fileHeader.Filename)
		url, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			log.Printf("❌ Avatar upload failed for %s: %v", user.Username, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
		}

		user, err = userService.UpdateProfile(userID, services.ProfileUpdate{AvatarURL: url})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save avatar URL"})
		}

		return c.JSON(fiber.Map{
			"message":    "Avatar updated",
			"avatar_url": user.AvatarURL,
		})
	})

	users.Delete("/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := userService.DeleteAccount(userID); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete account"})
		}

		return c.JSON(fiber.Map{"message": "Account deleted"})
	})

	// Admin/debugging listing of every account with its linked player
	users.Get("/", func(c *fiber.Ctx) error {
		list, stats, err := userService.ListWithPlayers()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list users"})
		}
		return c.JSON(fiber.Map{
			"stats": stats,
			"users": list,
		})
	})
}
