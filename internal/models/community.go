package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultRoomName is the canonical text room every community resolves to.
const DefaultRoomName = "general"

// Community is a named group owned by a single profile.
type Community struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	OwnerID   string    `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	Owner     Profile   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (c *Community) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Room is a text room inside a community. (community_id, name) is unique.
type Room struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:64;not null;uniqueIndex:idx_room_community_name" json:"name"`
	CommunityID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_room_community_name" json:"community_id"`
	Community   Community `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (r *Room) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Message is an immutable text message posted to a room.
type Message struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	RoomID    string    `gorm:"type:varchar(36);not null;index:idx_message_room_created,priority:1" json:"room_id"`
	Room      Room      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ProfileID string    `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Profile   Profile   `gorm:"constraint:OnDelete:CASCADE" json:"profile"`
	CreatedAt time.Time `gorm:"index:idx_message_room_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
