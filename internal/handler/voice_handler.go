package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/service"
	"github.com/noah-isme/alo-api/internal/utils"
)

// VoiceHandler issues media transport credentials.
type VoiceHandler struct {
	voice    service.VoiceService
	profiles service.ProfileService
	logger   zerolog.Logger
}

// NewVoiceHandler creates a voice handler. profiles may be nil.
func NewVoiceHandler(voice service.VoiceService, profiles service.ProfileService, logger zerolog.Logger) *VoiceHandler {
	return &VoiceHandler{
		voice:    voice,
		profiles: profiles,
		logger:   logger.With().Str("component", "voice_handler").Logger(),
	}
}

// Register binds voice routes. guards run before the token handler.
func (h *VoiceHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/token", append(guards, h.Token)...)
}

// Token issues a room-scoped voice credential.
func (h *VoiceHandler) Token(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.VoiceTokenRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	ctx := requestContext(c)
	displayName := identity.DisplayName()
	if h.profiles != nil {
		if profile, err := h.profiles.Get(ctx, identity.Subject); err == nil && strings.TrimSpace(profile.Name) != "" {
			displayName = profile.Name
		}
	}
	if displayName == "" {
		displayName = identity.Subject
	}

	token, err := h.voice.IssueToken(ctx, identity.Subject, displayName, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "voice token issued", token)
}
