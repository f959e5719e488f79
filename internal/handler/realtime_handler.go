package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/middleware"
	"github.com/noah-isme/alo-api/internal/realtime"
)

// RealtimeHandler upgrades authenticated requests into relay sessions.
type RealtimeHandler struct {
	relay        *realtime.Relay
	baseCtx      context.Context
	pingInterval time.Duration
	logger       zerolog.Logger
}

// NewRealtimeHandler creates a realtime handler. Sessions end when baseCtx is cancelled.
func NewRealtimeHandler(baseCtx context.Context, relay *realtime.Relay, pingInterval time.Duration, logger zerolog.Logger) *RealtimeHandler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &RealtimeHandler{
		relay:        relay,
		baseCtx:      baseCtx,
		pingInterval: pingInterval,
		logger:       logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket endpoint under the provided router group.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if _, ok := currentIdentity(c); !ok {
			return unauthorized(c)
		}
		return c.Next()
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"))
		_ = conn.Close()
		return
	}
	correlation, _ := conn.Locals(middleware.LocalCorrelationID).(string)

	session := realtime.NewSession(conn, h.relay, h.logger, realtime.SessionOptions{
		UserID:        userID,
		CorrelationID: correlation,
		PingInterval:  h.pingInterval,
	})

	h.logger.Info().Str("user_id", userID).Str("session_id", session.ID()).Msg("realtime websocket connected")
	session.Serve(h.baseCtx)
	h.logger.Info().Str("user_id", userID).Str("session_id", session.ID()).Msg("realtime websocket disconnected")
}
