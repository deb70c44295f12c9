package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"partpal/internal/http/handlers"
	"partpal/internal/repos"
)

// newApp wires the real routes over a seeded in-memory database.
func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())

	deps := handlers.NewDeps(db)
	listLimiter := limiter.New(limiter.Config{
		Max:        3,
		Expiration: time.Second,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	app.Get("/parts", deps.PageHandler.Parts)
	api := app.Group("/api/v1")
	api.Get("/parts", deps.PartsHandler.List)
	api.Get("/limited/parts", listLimiter, deps.PartsHandler.List)
	api.Get("/parts/:id", deps.PartsHandler.Get)
	api.Post("/parts", deps.PartsHandler.Create)
	api.Put("/parts/:id", deps.PartsHandler.Update)
	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/vehicles", deps.VehicleHandler.List)
	return app
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}
