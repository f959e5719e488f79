package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/repository"
	"github.com/noah-isme/alo-api/internal/service"
	"github.com/noah-isme/alo-api/internal/utils"
)

// MessageHandler serves room history and message posting.
type MessageHandler struct {
	service service.MessageService
	logger  zerolog.Logger
}

// NewMessageHandler creates a message handler.
func NewMessageHandler(service service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register binds message routes. createGuards run before the create handler, e.g. a rate limiter.
func (h *MessageHandler) Register(router fiber.Router, createGuards ...fiber.Handler) {
	router.Get("/", h.List)
	router.Post("/", append(createGuards, h.Create)...)
}

// List returns messages of a community's default room.
func (h *MessageHandler) List(c *fiber.Ctx) error {
	if _, ok := currentIdentity(c); !ok {
		return unauthorized(c)
	}

	var query dto.MessageListQuery
	if err := c.QueryParser(&query); err != nil {
		return invalidPayload(c)
	}

	messages, err := h.service.ListRecent(requestContext(c), query.CommunityID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	meta := dto.MessageListMeta{
		CommunityID: strings.TrimSpace(query.CommunityID),
		Count:       len(messages),
		Limit:       repository.MessageWindowLimit,
	}
	return utils.OK(c, messages, "messages retrieved", meta)
}

// Create posts a message into a community's default room.
func (h *MessageHandler) Create(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.MessageCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	message, err := h.service.Append(requestContext(c), identity.Subject, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message created", message)
}
