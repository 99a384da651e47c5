// handlers/conversation.go
package handlers

import (
	"errors"

	"vampyr-backend/middleware"
	"vampyr-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupConversationRoutes(app *fiber.App, conversationService *services.ConversationService) {
	convs := app.Group("/api/conversations", middleware.AuthRequired())

	convs.Post("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		conv, err := conversationService.Create(userID, body.Title)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create conversation"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":      "Conversation created",
			"conversation": conv,
		})
	})

	convs.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		list, err := conversationService.List(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list conversations"})
		}
		return c.JSON(fiber.Map{"conversations": list})
	})

	convs.Get("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		conv, err := conversationService.Get(userID, c.Params("id"))
		if err != nil {
			if errors.Is(err, services.ErrConversationNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load conversation"})
		}
		return c.JSON(fiber.Map{"conversation": conv})
	})

	renameHandler := func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		conv, err := conversationService.Rename(userID, c.Params("id"), body.Title)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmptyTitle):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title must not be empty"})
			case errors.Is(err, services.ErrConversationNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to rename conversation"})
		}
		return c.JSON(fiber.Map{
			"message":      "Conversation updated",
			"conversation": conv,
		})
	}
	convs.Put("/:id", renameHandler)
	convs.Patch("/:id/title", renameHandler)

	convs.Delete("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := conversationService.Delete(userID, c.Params("id")); err != nil {
			if errors.Is(err, services.ErrConversationNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete conversation"})
		}
		return c.JSON(fiber.Map{"message": "Conversation deleted"})
	})

	convs.Post("/:id/messages", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if body.Role == "" || body.Content == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role and content required"})
		}

		msg, err := conversationService.AddMessage(userID, c.Params("id"), body.Role, body.Content)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidRole):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role must be \"user\" or \"assistant\""})
			case errors.Is(err, services.ErrConversationNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add message"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Message added",
			"data":    msg,
		})
	})
}
