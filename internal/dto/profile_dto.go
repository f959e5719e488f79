package dto

import (
	"time"

	"github.com/noah-isme/alo-api/internal/models"
)

// ProfileUpdateRequest updates attributes the user controls directly.
type ProfileUpdateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=32"`
}

// ProfileResponse is the serialized representation of a profile.
type ProfileResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileSyncResponse wraps the profile returned by the sync endpoint.
type ProfileSyncResponse struct {
	Profile ProfileResponse `json:"profile"`
}

// NewProfileResponse converts a model into a DTO.
func NewProfileResponse(model models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Name:      model.Name,
		Email:     model.Email,
		ImageURL:  model.ImageURL,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
