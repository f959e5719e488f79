package dto

import "github.com/noah-isme/alo-api/internal/models"

// CommunityCreateRequest is the payload to create a community.
type CommunityCreateRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// CommunityResponse describes a community returned by the API.
type CommunityResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewCommunityResponse converts a model into a DTO.
func NewCommunityResponse(model models.Community) CommunityResponse {
	return CommunityResponse{ID: model.ID, Name: model.Name}
}

// NewCommunityResponseSlice converts a slice of models into DTOs.
func NewCommunityResponseSlice(items []models.Community) []CommunityResponse {
	out := make([]CommunityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewCommunityResponse(item))
	}
	return out
}
