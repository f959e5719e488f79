package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/middleware"
	"github.com/noah-isme/alo-api/internal/service"
	"github.com/noah-isme/alo-api/internal/utils"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrNameRequired, fiber.StatusBadRequest, "NAME_REQUIRED", "community name is required"},
	{service.ErrCommunityIDRequired, fiber.StatusBadRequest, "COMMUNITY_ID_REQUIRED", "communityId is required"},
	{service.ErrContentRequired, fiber.StatusBadRequest, "CONTENT_REQUIRED", "message content is required"},
	{service.ErrRoomNameRequired, fiber.StatusBadRequest, "ROOM_NAME_REQUIRED", "roomName is required"},
	{service.ErrDisplayNameInvalid, fiber.StatusBadRequest, "DISPLAY_NAME_INVALID", "name must be between 2 and 32 characters"},
	{service.ErrIdentityRequired, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{service.ErrProfileNotFound, fiber.StatusNotFound, "PROFILE_NOT_FOUND", "profile not found"},
	{service.ErrCommunityNotFound, fiber.StatusNotFound, "COMMUNITY_NOT_FOUND", "community not found"},
	{service.ErrConfigurationMissing, fiber.StatusServiceUnavailable, "CONFIGURATION_MISSING", "voice is not configured on this server"},
}

// respondError maps service failures onto the error envelope. Unknown errors are logged and hidden.
func respondError(c *fiber.Ctx, base zerolog.Logger, err error) error {
	for _, mapping := range serviceErrors {
		if errors.Is(err, mapping.target) {
			return utils.SendError(c, mapping.status, mapping.code, mapping.message)
		}
	}

	if isValidationError(err) {
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "validation failed", validationDetails(err))
	}

	logger := middleware.RequestLogger(c, base)
	logger.Error().Err(err).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func invalidPayload(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "invalid request body")
}

func currentIdentity(c *fiber.Ctx) (dto.Identity, bool) {
	return middleware.CurrentIdentity(c)
}

func unauthorized(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		rule := fieldErr.Tag()
		if param := fieldErr.Param(); param != "" {
			rule += "=" + param
		}
		details[lowerFirst(fieldErr.Field())] = rule
	}
	return details
}

func lowerFirst(value string) string {
	if value == "" {
		return value
	}
	return strings.ToLower(value[:1]) + value[1:]
}
