package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/alo-api/internal/config"
	"github.com/noah-isme/alo-api/internal/handler"
	"github.com/noah-isme/alo-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProfileHandler   *handler.ProfileHandler
	CommunityHandler *handler.CommunityHandler
	MessageHandler   *handler.MessageHandler
	VoiceHandler     *handler.VoiceHandler
	RealtimeHandler  *handler.RealtimeHandler
	JWTMiddleware    fiber.Handler
	MessageLimiter   fiber.Handler
	VoiceLimiter     fiber.Handler
	HealthProbes     map[string]handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api.Group("/profile", jwtMiddleware))
	}

	if deps.CommunityHandler != nil {
		deps.CommunityHandler.Register(api.Group("/communities", jwtMiddleware))
	}

	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api.Group("/messages", jwtMiddleware), optional(deps.MessageLimiter)...)
	}

	if deps.VoiceHandler != nil {
		deps.VoiceHandler.Register(api.Group("/livekit", jwtMiddleware), optional(deps.VoiceLimiter)...)
	}

	if deps.RealtimeHandler != nil {
		deps.RealtimeHandler.Register(api.Group("/realtime", jwtMiddleware))
	}
}

func optional(handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
