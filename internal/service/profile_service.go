package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/models"
	"github.com/noah-isme/alo-api/internal/repository"
)

const providerNameMaxRunes = 64

// ProfileService keeps local profiles in sync with the identity provider.
type ProfileService interface {
	Sync(ctx context.Context, identity dto.Identity) (dto.ProfileResponse, error)
	Get(ctx context.Context, userID string) (dto.ProfileResponse, error)
	UpdateDisplayName(ctx context.Context, userID string, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProfileService constructs a profile service.
func NewProfileService(repo repository.ProfileRepository, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
		now:       time.Now,
	}
}

// Sync creates the profile on first call. Later calls only fill attributes that are still
// empty, and refresh the display name unless the user has set it explicitly.
func (s *profileService) Sync(ctx context.Context, identity dto.Identity) (dto.ProfileResponse, error) {
	userID := strings.TrimSpace(identity.Subject)
	if userID == "" {
		return dto.ProfileResponse{}, ErrIdentityRequired
	}

	name := s.providerName(identity)
	email := strings.TrimSpace(identity.Email)
	imageURL := strings.TrimSpace(identity.ImageURL)

	profile := models.Profile{
		UserID:   userID,
		Name:     name,
		Email:    email,
		ImageURL: imageURL,
		Metadata: s.providerMetadata(identity),
	}

	created, err := s.repo.CreateIfAbsent(ctx, &profile)
	if err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("create profile: %w", err)
	}
	if created {
		s.logger.Info().
			Str("user_id", userID).
			Str("profile_id", profile.ID).
			Str("email", maskEmailAddress(email)).
			Msg("profile created")
		return dto.NewProfileResponse(profile), nil
	}

	if !profile.NameLocked && name != "" {
		profile.Name = name
	}
	if profile.Email == "" {
		profile.Email = email
	}
	if profile.ImageURL == "" {
		profile.ImageURL = imageURL
	}
	profile.Metadata = s.providerMetadata(identity)

	if err := s.repo.Update(ctx, &profile); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("refresh profile %s: %w", profile.ID, err)
	}

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) Get(ctx context.Context, userID string) (dto.ProfileResponse, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) UpdateDisplayName(ctx context.Context, userID string, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	payload.Name = visibleText(s.sanitizer, payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return dto.ProfileResponse{}, ErrDisplayNameInvalid
		}
		return dto.ProfileResponse{}, err
	}

	profile, err := s.load(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	profile.Name = payload.Name
	profile.NameLocked = true
	if err := s.repo.Update(ctx, &profile); err != nil {
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Str("profile_id", profile.ID).Msg("display name updated")

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) load(ctx context.Context, userID string) (models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return models.Profile{}, ErrProfileNotFound
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}

func (s *profileService) providerName(identity dto.Identity) string {
	name := visibleText(s.sanitizer, identity.DisplayName())
	runes := []rune(name)
	if len(runes) > providerNameMaxRunes {
		name = strings.TrimSpace(string(runes[:providerNameMaxRunes]))
	}
	return name
}

func (s *profileService) providerMetadata(identity dto.Identity) datatypes.JSONMap {
	metadata := datatypes.JSONMap{"synced_at": s.now().UTC().Format(time.RFC3339)}
	if username := strings.TrimSpace(identity.Username); username != "" {
		metadata["username"] = username
	}
	return metadata
}
