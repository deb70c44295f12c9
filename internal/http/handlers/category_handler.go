package handlers

import (
	"github.com/gofiber/fiber/v2"

	"partpal/internal/log"
	"partpal/internal/repos"
	"partpal/internal/validate"
)

type CategoryHandler struct {
	Categories *repos.CategoryRepo
}

// GET /api/v1/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Categories.List(c.UserContext())
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		log.Error(c, "categories.list.error", err, nil)
		return c.JSON(fiber.Map{"error": "could not load categories"})
	}
	return c.JSON(fiber.Map{"items": cats})
}

type VehicleHandler struct {
	Vehicles *repos.VehicleRepo
}

// GET /api/v1/vehicles?sellerId=
func (h *VehicleHandler) List(c *fiber.Ctx) error {
	seller := c.Query("sellerId")
	if seller != "" {
		var ok bool
		if seller, ok = validate.ID(seller); !ok {
			c.Status(fiber.StatusBadRequest)
			log.Security(c, "validation.fail", map[string]any{"field": "sellerId"})
			return c.JSON(fiber.Map{"error": "invalid sellerId"})
		}
	}
	vs, err := h.Vehicles.List(c.UserContext(), seller)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		log.Error(c, "vehicles.list.error", err, nil)
		return c.JSON(fiber.Map{"error": "could not load vehicles"})
	}
	return c.JSON(fiber.Map{"items": vs})
}
