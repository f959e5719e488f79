package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/models"
)

// MessageWindowLimit bounds how many messages a room history read returns.
const MessageWindowLimit = 50

// MessageRepository persists room messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByRoom(ctx context.Context, roomID string, latest bool) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts the message and reloads it with its author.
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Profile", "Room").Create(message).Error; err != nil {
		return err
	}
	return db.Preload("Profile").Where("id = ?", message.ID).First(message).Error
}

// ListByRoom returns at most MessageWindowLimit messages in ascending time order.
// With latest unset it returns the first messages of the room, otherwise the most recent ones.
func (r *messageRepository) ListByRoom(ctx context.Context, roomID string, latest bool) ([]models.Message, error) {
	direction := "ASC"
	if latest {
		direction = "DESC"
	}

	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("room_id = ?", roomID).
		Order("created_at " + direction).
		Order("id " + direction).
		Limit(MessageWindowLimit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	if latest {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}

	return messages, nil
}
