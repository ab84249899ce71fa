package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/scamwall/scamwall-backend/internal/config"
	"github.com/scamwall/scamwall-backend/internal/handlers"
	"github.com/scamwall/scamwall-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	lookupHandler *handlers.LookupHandler,
	feedHandler *handlers.FeedHandler,
	articleHandler *handlers.ArticleHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)

	// Report submission takes an optional principal: signed-in users
	// own their reports, everyone else must opt in to anonymous.
	api.Post("/reports", middleware.OptionalJWT(cfg), reportHandler.Submit)

	// Public feed history + tracking lookup
	api.Get("/reports", reportHandler.Recent)
	api.Get("/reports/reference/:ref", reportHandler.GetByReference)

	// Owner-only report management
	api.Get("/reports/mine", middleware.JWTProtected(cfg), reportHandler.ListMine)
	api.Put("/reports/:id", middleware.JWTProtected(cfg), reportHandler.Update)
	api.Delete("/reports/:id", middleware.JWTProtected(cfg), reportHandler.Delete)

	// Fraud lookup
	api.Get("/lookup", lookupHandler.Find)

	// Awareness articles
	api.Get("/articles", articleHandler.List)
	api.Get("/articles/:id", articleHandler.Get)
	api.Post("/articles", middleware.JWTProtected(cfg), articleHandler.Create)
	api.Put("/articles/:id", middleware.JWTProtected(cfg), articleHandler.Update)
	api.Delete("/articles/:id", middleware.JWTProtected(cfg), articleHandler.Delete)

	// Live feed (websocket, outside the /api rate limiter)
	app.Get("/ws/feed", feedHandler.Upgrade, feedHandler.Stream())
}
