package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/alo-api/internal/models"
)

// RoomRepository persists the text rooms of a community.
type RoomRepository interface {
	FindByName(ctx context.Context, communityID, name string) (models.Room, error)
	GetOrCreate(ctx context.Context, communityID, name string) (models.Room, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository constructs a room repository backed by GORM.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) FindByName(ctx context.Context, communityID, name string) (models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND name = ?", communityID, name).
		First(&room).Error; err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// GetOrCreate relies on the (community_id, name) unique index: the insert is a no-op when
// another caller won the race, and the follow-up lookup returns the surviving row.
func (r *roomRepository) GetOrCreate(ctx context.Context, communityID, name string) (models.Room, error) {
	room, err := r.FindByName(ctx, communityID, name)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Room{}, err
	}

	candidate := models.Room{CommunityID: communityID, Name: name}
	if err := r.db.WithContext(ctx).
		Omit("Community").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(&candidate).Error; err != nil {
		return models.Room{}, err
	}

	return r.FindByName(ctx, communityID, name)
}
