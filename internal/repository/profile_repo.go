package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/alo-api/internal/models"
)

// ProfileRepository persists user profiles synced from the identity provider.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (models.Profile, error)
	CreateIfAbsent(ctx context.Context, profile *models.Profile) (bool, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a profile repository backed by GORM.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// CreateIfAbsent inserts the profile unless one exists for the same user id.
// It reports whether a row was inserted; profile is reloaded with the stored row either way.
func (r *profileRepository) CreateIfAbsent(ctx context.Context, profile *models.Profile) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(profile)
	if tx.Error != nil {
		return false, tx.Error
	}

	created := tx.RowsAffected > 0
	if !created {
		stored, err := r.FindByUserID(ctx, profile.UserID)
		if err != nil {
			return false, err
		}
		*profile = stored
	}

	return created, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Model(profile).Select("name", "name_locked", "email", "image_url", "metadata", "updated_at").Updates(profile).Error
}
