package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/models"
	"github.com/noah-isme/alo-api/internal/repository"
)

// RoomDirectory maps a community to its canonical text room.
type RoomDirectory interface {
	ResolveRoom(ctx context.Context, communityID string) (models.Room, error)
}

type roomDirectory struct {
	communities repository.CommunityRepository
	rooms       repository.RoomRepository
}

// NewRoomDirectory constructs a directory that creates the default room on first access.
func NewRoomDirectory(communities repository.CommunityRepository, rooms repository.RoomRepository) RoomDirectory {
	return &roomDirectory{communities: communities, rooms: rooms}
}

func (d *roomDirectory) ResolveRoom(ctx context.Context, communityID string) (models.Room, error) {
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return models.Room{}, ErrCommunityIDRequired
	}

	community, err := d.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Room{}, ErrCommunityNotFound
		}
		return models.Room{}, err
	}

	room, err := d.rooms.GetOrCreate(ctx, community.ID, models.DefaultRoomName)
	if err != nil {
		return models.Room{}, fmt.Errorf("resolve default room of %s: %w", community.ID, err)
	}
	return room, nil
}
