package handlers

import (
	"database/sql"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"partpal/internal/log"
	"partpal/internal/metrics"
	"partpal/internal/query"
	"partpal/internal/services"
	"partpal/internal/validate"
)

type PartsHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/parts
func (h *PartsHandler) List(c *fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		metrics.PartQueries.WithLabelValues("invalid").Inc()
		c.Status(fiber.StatusBadRequest)
		log.Security(c, "validation.fail", map[string]any{"err": err.Error()})
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	page, err := h.Catalog.ListParts(c.UserContext(), params)
	if err != nil {
		metrics.PartQueries.WithLabelValues("error").Inc()
		c.Status(fiber.StatusInternalServerError)
		log.Error(c, "parts.list.error", err, nil)
		return c.JSON(fiber.Map{"error": "could not load parts, please retry"})
	}
	metrics.PartQueries.WithLabelValues("ok").Inc()
	return c.JSON(page)
}

// GET /api/v1/parts/:id
func (h *PartsHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		c.Status(fiber.StatusNotFound)
		log.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.JSON(fiber.Map{"error": "part not found"})
	}
	p, err := h.Catalog.GetPart(c.UserContext(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "part not found"})
	}
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		log.Error(c, "parts.get.error", err, map[string]any{"part_id": id})
		return c.JSON(fiber.Map{"error": "could not load part"})
	}
	return c.JSON(p)
}

// POST /api/v1/parts
func (h *PartsHandler) Create(c *fiber.Ctx) error {
	var in services.PartInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	p, err := h.Catalog.CreatePart(c.UserContext(), in)
	if errors.Is(err, services.ErrInvalidPart) {
		c.Status(fiber.StatusBadRequest)
		log.Security(c, "validation.fail", map[string]any{"err": err.Error()})
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		log.Error(c, "parts.create.fail", err, nil)
		return c.JSON(fiber.Map{"error": "could not save part"})
	}
	log.Audit(c, "parts.create", map[string]any{"part_id": p.ID, "seller_id": p.SellerID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/v1/parts/:id
func (h *PartsHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "part not found"})
	}
	var in services.PartInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	p, err := h.Catalog.UpdatePart(c.UserContext(), id, in)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "part not found"})
	case errors.Is(err, services.ErrInvalidPart):
		c.Status(fiber.StatusBadRequest)
		log.Security(c, "validation.fail", map[string]any{"err": err.Error(), "part_id": id})
		return c.JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		c.Status(fiber.StatusBadRequest)
		log.Error(c, "parts.update.fail", err, map[string]any{"part_id": id})
		return c.JSON(fiber.Map{"error": "could not save part"})
	}
	log.Audit(c, "parts.update", map[string]any{"part_id": p.ID, "status": p.Status, "price": p.Price})
	return c.JSON(p)
}

// maxSearchRunes caps the free-text search; longer input is cut, not rejected.
const maxSearchRunes = 200

// listParams parses the listing query string. Search is free text and
// category/vehicle are equality filters, so none of them are rejected: an
// id that matches nothing gives an empty page.
func listParams(c *fiber.Ctx) (query.Params, error) {
	v := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		v.Add(string(key), string(value))
	})
	p, err := query.Parse(v)
	if err != nil {
		return query.Params{}, err
	}
	if r := []rune(p.Search); len(r) > maxSearchRunes {
		p.Search = string(r[:maxSearchRunes])
	}
	return p, nil
}
