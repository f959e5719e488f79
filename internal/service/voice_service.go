package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/observability"
)

const defaultVoiceTokenTTL = time.Hour

// VoiceConfig holds the media transport endpoint and signing material.
type VoiceConfig struct {
	URL       string
	APIKey    string
	APISecret string
	TokenTTL  time.Duration
}

func (c VoiceConfig) complete() bool {
	return c.URL != "" && c.APIKey != "" && c.APISecret != ""
}

// VoiceService mints scoped access tokens for the external media transport.
type VoiceService interface {
	IssueToken(ctx context.Context, identity, displayName string, payload dto.VoiceTokenRequest) (dto.VoiceTokenResponse, error)
}

// VoiceGrant is the room-scoped permission set carried in the "video" claim.
type VoiceGrant struct {
	Room              string   `json:"room"`
	RoomJoin          bool     `json:"roomJoin"`
	CanPublish        bool     `json:"canPublish"`
	CanSubscribe      bool     `json:"canSubscribe"`
	CanPublishData    bool     `json:"canPublishData"`
	CanPublishSources []string `json:"canPublishSources"`
}

// VoiceClaims is the access token body understood by LiveKit-compatible servers.
type VoiceClaims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name,omitempty"`
	Video VoiceGrant `json:"video"`
}

type voiceService struct {
	cfg       VoiceConfig
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewVoiceService constructs a voice authorization issuer.
func NewVoiceService(cfg VoiceConfig, validate *validator.Validate, logger zerolog.Logger) VoiceService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultVoiceTokenTTL
	}
	return &voiceService{
		cfg:       cfg,
		validator: validate,
		logger:    logger.With().Str("component", "voice_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/alo-api/internal/service/voice"),
		now:       time.Now,
	}
}

func (s *voiceService) IssueToken(ctx context.Context, identity, displayName string, payload dto.VoiceTokenRequest) (dto.VoiceTokenResponse, error) {
	payload.RoomName = strings.TrimSpace(payload.RoomName)
	if payload.RoomName == "" {
		return dto.VoiceTokenResponse{}, ErrRoomNameRequired
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.VoiceTokenResponse{}, err
	}

	identity = strings.TrimSpace(identity)
	if identity == "" {
		return dto.VoiceTokenResponse{}, ErrIdentityRequired
	}

	if !s.cfg.complete() {
		return dto.VoiceTokenResponse{}, ErrConfigurationMissing
	}

	_, span := s.tracer.Start(ctx, "voice.issue_token", trace.WithAttributes(
		attribute.String("voice.room", payload.RoomName),
	))
	defer span.End()

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.cfg.TokenTTL)

	claims := VoiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.APIKey,
			Subject:   identity,
			ID:        uuid.NewString(),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name: strings.TrimSpace(displayName),
		Video: VoiceGrant{
			Room:              payload.RoomName,
			RoomJoin:          true,
			CanPublish:        true,
			CanSubscribe:      true,
			CanPublishData:    false,
			CanPublishSources: []string{"microphone"},
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.APISecret))
	if err != nil {
		span.RecordError(err)
		return dto.VoiceTokenResponse{}, fmt.Errorf("sign voice token: %w", err)
	}

	observability.VoiceTokensIssued().Inc()
	s.logger.Debug().Str("room", payload.RoomName).Str("identity", identity).Msg("voice token issued")

	return dto.VoiceTokenResponse{
		Token:     signed,
		URL:       s.cfg.URL,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}
