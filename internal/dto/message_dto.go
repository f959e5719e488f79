package dto

import (
	"time"

	"github.com/noah-isme/alo-api/internal/models"
)

// MessageCreateRequest represents the payload sent to post a message into a community.
type MessageCreateRequest struct {
	CommunityID string `json:"communityId" validate:"max=64"`
	Content     string `json:"content" validate:"max=4000"`
}

// MessageListQuery selects the community whose default room is listed.
type MessageListQuery struct {
	CommunityID string `query:"communityId"`
}

// MessageListMeta describes the history window returned with a message list.
type MessageListMeta struct {
	CommunityID string `json:"communityId"`
	Count       int    `json:"count"`
	Limit       int    `json:"limit"`
}

// MessageAuthor carries the display attributes embedded into every message.
type MessageAuthor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// MessageResponse is the serialized representation of a message.
type MessageResponse struct {
	ID          string        `json:"id"`
	Content     string        `json:"content"`
	RoomID      string        `json:"roomId"`
	CommunityID string        `json:"communityId"`
	Author      MessageAuthor `json:"author"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewMessageResponse converts a model into a DTO. The room must be loaded or communityID supplied.
func NewMessageResponse(message models.Message, communityID string) MessageResponse {
	if communityID == "" {
		communityID = message.Room.CommunityID
	}
	return MessageResponse{
		ID:          message.ID,
		Content:     message.Content,
		RoomID:      message.RoomID,
		CommunityID: communityID,
		Author: MessageAuthor{
			ID:       message.Profile.ID,
			Name:     message.Profile.Name,
			ImageURL: message.Profile.ImageURL,
		},
		CreatedAt: message.CreatedAt,
		UpdatedAt: message.UpdatedAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message, communityID string) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message, communityID))
	}
	return out
}
