package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/models"
	"github.com/noah-isme/alo-api/internal/repository"
)

// CommunityService exposes community use-cases for the authenticated caller.
type CommunityService interface {
	Create(ctx context.Context, userID string, payload dto.CommunityCreateRequest) (dto.CommunityResponse, error)
	ListOwned(ctx context.Context, userID string) ([]dto.CommunityResponse, error)
}

type communityService struct {
	communities repository.CommunityRepository
	profiles    repository.ProfileRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewCommunityService constructs a community service.
func NewCommunityService(communities repository.CommunityRepository, profiles repository.ProfileRepository, validate *validator.Validate, logger zerolog.Logger) CommunityService {
	return &communityService{
		communities: communities,
		profiles:    profiles,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "community_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/alo-api/internal/service/community"),
	}
}

func (s *communityService) Create(ctx context.Context, userID string, payload dto.CommunityCreateRequest) (dto.CommunityResponse, error) {
	payload.Name = visibleText(s.sanitizer, payload.Name)
	if payload.Name == "" {
		return dto.CommunityResponse{}, ErrNameRequired
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommunityResponse{}, err
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommunityResponse{}, ErrProfileNotFound
		}
		return dto.CommunityResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "community.create", trace.WithAttributes(
		attribute.String("community.owner_id", profile.ID),
	))
	defer span.End()

	community := models.Community{
		Name:    payload.Name,
		OwnerID: profile.ID,
	}
	if err := s.communities.Create(spanCtx, &community); err != nil {
		span.RecordError(err)
		return dto.CommunityResponse{}, fmt.Errorf("create community: %w", err)
	}

	s.logger.Info().Str("community_id", community.ID).Str("owner_id", profile.ID).Msg("community created")

	return dto.NewCommunityResponse(community), nil
}

func (s *communityService) ListOwned(ctx context.Context, userID string) ([]dto.CommunityResponse, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.CommunityResponse{}, nil
		}
		return nil, err
	}

	communities, err := s.communities.ListByOwner(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list communities of %s: %w", profile.ID, err)
	}

	return dto.NewCommunityResponseSlice(communities), nil
}
