package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is the local record of an authenticated user, keyed by the identity provider subject.
type Profile struct {
	ID         string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string            `gorm:"size:191;uniqueIndex;not null" json:"user_id"`
	Name       string            `gorm:"size:64" json:"name"`
	NameLocked bool              `gorm:"not null;default:false" json:"name_locked"`
	Email      string            `gorm:"size:255" json:"email"`
	ImageURL   string            `gorm:"type:text" json:"image_url"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
