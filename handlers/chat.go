// handlers/chat.go
package handlers

import (
	"errors"

	"vampyr-backend/middleware"
	"vampyr-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChatRoutes(app *fiber.App, chatService *services.ChatService) {
	chat := app.Group("/api/chat", middleware.AuthRequired())

	chat.Post("/message", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			ConversationID string `json:"conversation_id"`
			Message        string `json:"message"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if body.ConversationID == "" || body.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "conversation_id and message required"})
		}

		userMsg, assistantMsg, err := chatService.SendMessage(c.Context(), userID, body.ConversationID, body.Message)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrConversationNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
			case errors.Is(err, services.ErrChatUnavailable):
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "chat service is not available, try again later"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to process message"})
		}

		return c.JSON(fiber.Map{
			"user_message":      userMsg,
			"assistant_message": assistantMsg,
		})
	})
}
