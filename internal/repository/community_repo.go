package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/models"
)

// CommunityRepository persists communities.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id string) (models.Community, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Community, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository constructs a GORM-backed repository.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Omit("Owner").Create(community).Error
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&community).Error; err != nil {
		return models.Community{}, err
	}
	return community, nil
}

func (r *communityRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Community, error) {
	var communities []models.Community
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}
