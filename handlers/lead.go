// handlers/lead.go
package handlers

import (
	"errors"
	"strconv"

	"vampyr-backend/middleware"
	"vampyr-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeadRoutes(app *fiber.App, leadService *services.LeadService) {
	leads := app.Group("/api/leads")

	// Public: landing page contact form
	leads.Post("/", func(c *fiber.Ctx) error {
		var in services.LeadInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		lead, err := leadService.Create(in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrLeadInvalid):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name, email and message are required"})
			case errors.Is(err, services.ErrLeadInvalidEmail):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email format"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to submit request, please try again"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Thanks for reaching out! We'll get back to you soon.",
			"lead": fiber.Map{
				"id":         lead.ID,
				"name":       lead.Name,
				"email":      lead.Email,
				"created_at": lead.CreatedAt,
			},
		})
	})

	secured := leads.Group("/", middleware.AuthRequired())

	secured.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := leadService.GetStats()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute lead stats"})
		}
		return c.JSON(stats)
	})

	secured.Get("/", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		result, err := leadService.List(c.Query("status"), c.Query("source"), page, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list leads"})
		}
		return c.JSON(result)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid lead id"})
		}

		lead, err := leadService.GetByID(uint(id))
		if err != nil {
			if errors.Is(err, services.ErrLeadNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "lead not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load lead"})
		}
		return c.JSON(fiber.Map{"lead": lead})
	})

	secured.Patch("/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid lead id"})
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil || body.Status == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status required"})
		}

		lead, err := leadService.UpdateStatus(uint(id), body.Status)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrLeadInvalidStatus):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be new, contacted, converted or archived"})
			case errors.Is(err, services.ErrLeadNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "lead not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update lead"})
		}
		return c.JSON(fiber.Map{
			"message": "Lead updated",
			"lead":    lead,
		})
	})

	secured.Delete("/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid lead id"})
		}

		if err := leadService.Delete(uint(id)); err != nil {
			if errors.Is(err, services.ErrLeadNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "lead not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete lead"})
		}
		return c.JSON(fiber.Map{"message": "Lead deleted"})
	})
}
