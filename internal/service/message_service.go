package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/middleware"
	"github.com/noah-isme/alo-api/internal/models"
	"github.com/noah-isme/alo-api/internal/observability"
	"github.com/noah-isme/alo-api/internal/repository"
)

// MessageBroadcaster fans a persisted message out to realtime subscribers of its community.
// Implementations must not block the caller.
type MessageBroadcaster interface {
	Broadcast(ctx context.Context, communityID string, message dto.MessageResponse)
}

// MessageService exposes the room history read path and the append path.
type MessageService interface {
	ListRecent(ctx context.Context, communityID string) ([]dto.MessageResponse, error)
	Append(ctx context.Context, userID string, payload dto.MessageCreateRequest) (dto.MessageResponse, error)
}

// MessageServiceOptions tunes message listing.
type MessageServiceOptions struct {
	// LatestWindow lists the most recent messages instead of the first ones of the room.
	LatestWindow bool
}

type messageService struct {
	messages    repository.MessageRepository
	profiles    repository.ProfileRepository
	directory   RoomDirectory
	broadcaster MessageBroadcaster
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	latest      bool
}

// NewMessageService constructs a message service. broadcaster may be nil.
func NewMessageService(messages repository.MessageRepository, profiles repository.ProfileRepository, directory RoomDirectory, broadcaster MessageBroadcaster, validate *validator.Validate, logger zerolog.Logger, opts MessageServiceOptions) MessageService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	return &messageService{
		messages:    messages,
		profiles:    profiles,
		directory:   directory,
		broadcaster: broadcaster,
		validator:   validate,
		sanitizer:   sanitizer,
		logger:      logger.With().Str("component", "message_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/alo-api/internal/service/message"),
		latest:      opts.LatestWindow,
	}
}

func (s *messageService) ListRecent(ctx context.Context, communityID string) ([]dto.MessageResponse, error) {
	room, err := s.directory.ResolveRoom(ctx, communityID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByRoom(ctx, room.ID, s.latest)
	if err != nil {
		return nil, fmt.Errorf("list messages for room %s: %w", room.ID, err)
	}

	return dto.NewMessageResponseSlice(messages, room.CommunityID), nil
}

func (s *messageService) Append(ctx context.Context, userID string, payload dto.MessageCreateRequest) (dto.MessageResponse, error) {
	payload.CommunityID = strings.TrimSpace(payload.CommunityID)
	if payload.CommunityID == "" {
		return dto.MessageResponse{}, ErrCommunityIDRequired
	}

	payload.Content = strings.TrimSpace(payload.Content)
	if payload.Content == "" {
		return dto.MessageResponse{}, ErrContentRequired
	}

	// length limits apply to what the author typed
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	content := visibleText(s.sanitizer, payload.Content)
	if content == "" {
		return dto.MessageResponse{}, ErrContentRequired
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrProfileNotFound
		}
		return dto.MessageResponse{}, err
	}

	room, err := s.directory.ResolveRoom(ctx, payload.CommunityID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	attrs := []attribute.KeyValue{
		attribute.String("message.room_id", room.ID),
		attribute.String("message.community_id", room.CommunityID),
		attribute.String("message.author_id", profile.ID),
	}
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		attrs = append(attrs, attribute.String("correlation_id", correlation))
	}

	spanCtx, span := s.tracer.Start(ctx, "message.append", trace.WithAttributes(attrs...))
	defer span.End()

	message := models.Message{
		RoomID:    room.ID,
		ProfileID: profile.ID,
		Content:   content,
	}
	if err := s.messages.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, fmt.Errorf("persist message: %w", err)
	}

	observability.MessagesCreated().Inc()

	response := dto.NewMessageResponse(message, room.CommunityID)
	s.dispatch(spanCtx, response)

	return response, nil
}

// dispatch runs after the insert committed. Broadcaster faults are logged and never returned.
func (s *messageService) dispatch(ctx context.Context, message dto.MessageResponse) {
	if s.broadcaster == nil {
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error().
				Interface("panic", recovered).
				Str("message_id", message.ID).
				Msg("message broadcast panicked")
		}
	}()

	s.broadcaster.Broadcast(context.WithoutCancel(ctx), message.CommunityID, message)
}
