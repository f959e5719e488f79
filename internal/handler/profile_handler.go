package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/service"
	"github.com/noah-isme/alo-api/internal/utils"
)

// ProfileHandler exposes the caller's local profile.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register binds profile routes under the provided router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Post("/sync", h.Sync)
	router.Get("/", h.Get)
	router.Patch("/", h.Update)
}

// Sync creates or refreshes the caller's profile from identity claims.
func (h *ProfileHandler) Sync(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.service.Sync(requestContext(c), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "profile synced", dto.ProfileSyncResponse{Profile: profile})
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.service.Get(requestContext(c), identity.Subject)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

// Update changes the caller's display name and locks it against provider sync.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	profile, err := h.service.UpdateDisplayName(requestContext(c), identity.Subject, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "profile updated", profile)
}
