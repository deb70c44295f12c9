package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"partpal/internal/log"
	"partpal/internal/metrics"
	"partpal/internal/query"
	"partpal/internal/repos"
	"partpal/internal/services"
)

type PageHandler struct {
	Catalog    *services.CatalogService
	Categories *repos.CategoryRepo
}

// GET /parts renders the same listing the API serves.
func (h *PageHandler) Parts(c *fiber.Ctx) error {
	cats, err := h.Categories.List(c.UserContext())
	if err != nil {
		return err
	}
	params, err := listParams(c)
	if err != nil {
		metrics.PartQueries.WithLabelValues("invalid").Inc()
		c.Status(fiber.StatusBadRequest)
		log.Security(c, "validation.fail", map[string]any{"err": err.Error()})
		msg := "Invalid search."
		var pe *query.ParamError
		if errors.As(err, &pe) {
			msg = "Invalid value for " + pe.Param + "."
		}
		return render(c, "parts", fiber.Map{
			"Categories": cats,
			"Err":        msg,
			"Q":          c.Query("q"),
			"CategoryID": c.Query("category"),
			"Sort":       c.Query("sortBy"),
		})
	}
	page, err := h.Catalog.ListParts(c.UserContext(), params)
	if err != nil {
		metrics.PartQueries.WithLabelValues("error").Inc()
		return err
	}
	metrics.PartQueries.WithLabelValues("ok").Inc()

	data := fiber.Map{
		"Categories": cats,
		"Page":       page,
		"Q":          params.Search,
		"CategoryID": params.CategoryID,
		"Sort":       string(params.Sort),
	}
	if page.Page > 1 {
		data["PrevPage"] = page.Page - 1
	}
	if page.Page < page.TotalPages {
		data["NextPage"] = page.Page + 1
	}
	return render(c, "parts", data)
}
