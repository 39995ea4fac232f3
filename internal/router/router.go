package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gradpush/recommend-api/internal/config"
	"github.com/gradpush/recommend-api/internal/handler"
	"github.com/gradpush/recommend-api/internal/middleware"
	"github.com/gradpush/recommend-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler       *handler.StudentHandler
	RankingHandler       *handler.RankingHandler
	ReviewHandler        *handler.ReviewHandler
	RuleHandler          *handler.RuleHandler
	ScoreSettingsHandler *handler.ScoreSettingsHandler
	NotificationHandler  *handler.NotificationHandler
	ActivityHandler      *handler.ActivityHandler
	OrganizationHandler  *handler.OrganizationHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	reviewerOnly := middleware.RequireRole("admin", "teacher")
	adminOnly := middleware.RequireRole("admin")

	if deps.OrganizationHandler != nil {
		organizations := api.Group("/organizations", jwtMiddleware)
		deps.OrganizationHandler.Register(organizations)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware, reviewerOnly)
		deps.StudentHandler.Register(students)
	}

	if deps.RankingHandler != nil {
		// Ranking recomputes and persists ranks on a cache miss, so the
		// query is rate limited per user.
		ranking := api.Group("/ranking", jwtMiddleware, middleware.RateLimit("ranking", 30, time.Minute))
		deps.RankingHandler.Register(ranking)
	}

	if deps.ReviewHandler != nil {
		// Resubmission is the student's own action; the service enforces
		// ownership, so that route carries authentication only while the
		// reviewer gate sits on the decision routes.
		applications := api.Group("/applications", jwtMiddleware)
		deps.ReviewHandler.RegisterResubmission(applications)

		decisions := api.Group("/applications", jwtMiddleware, reviewerOnly)
		deps.ReviewHandler.Register(decisions)
	}

	if deps.RuleHandler != nil {
		rules := api.Group("/rules", jwtMiddleware, reviewerOnly)
		deps.RuleHandler.Register(rules)
	}

	if deps.ScoreSettingsHandler != nil {
		faculties := api.Group("/faculties", jwtMiddleware, adminOnly)
		deps.ScoreSettingsHandler.Register(faculties)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, adminOnly)
		deps.ActivityHandler.Register(activity)
	}
}
