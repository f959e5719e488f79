package service

import "errors"

// Validation errors.
var (
	ErrNameRequired        = errors.New("community name is required")
	ErrCommunityIDRequired = errors.New("community id is required")
	ErrContentRequired     = errors.New("message content is required")
	ErrRoomNameRequired    = errors.New("room name is required")
	ErrDisplayNameInvalid  = errors.New("display name must be between 2 and 32 characters")
	ErrIdentityRequired    = errors.New("caller identity is required")
)

// ErrConfigurationMissing indicates the voice transport endpoint or signing keys are not configured.
var ErrConfigurationMissing = errors.New("voice transport is not configured")

// Not-found errors.
var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrCommunityNotFound = errors.New("community not found")
)
