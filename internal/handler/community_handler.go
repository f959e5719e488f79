package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/service"
	"github.com/noah-isme/alo-api/internal/utils"
)

// CommunityHandler manages communities owned by the caller.
type CommunityHandler struct {
	service service.CommunityService
	logger  zerolog.Logger
}

// NewCommunityHandler creates a community handler.
func NewCommunityHandler(service service.CommunityService, logger zerolog.Logger) *CommunityHandler {
	return &CommunityHandler{
		service: service,
		logger:  logger.With().Str("component", "community_handler").Logger(),
	}
}

// Register binds community routes under the provided router group.
func (h *CommunityHandler) Register(router fiber.Router) {
	router.Get("/", h.List)
	router.Post("/", h.Create)
}

// List returns communities owned by the caller, newest first.
func (h *CommunityHandler) List(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	communities, err := h.service.ListOwned(requestContext(c), identity.Subject)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "communities retrieved", communities)
}

// Create makes a community owned by the caller.
func (h *CommunityHandler) Create(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.CommunityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	community, err := h.service.Create(requestContext(c), identity.Subject, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "community created", community)
}
