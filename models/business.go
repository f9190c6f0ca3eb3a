package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Business struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name       string         `gorm:"not null" json:"name"`
	Slug       string         `gorm:"uniqueIndex;not null" json:"slug"`
	OwnerID    uuid.UUID      `gorm:"type:uuid;not null" json:"owner_id"`
	Owner      User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Timezone   string         `gorm:"not null;default:'Europe/Madrid'" json:"timezone"` // IANA name
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	StoreHours []StoreHours   `gorm:"foreignKey:BusinessID" json:"store_hours,omitempty"`
	Settings   *OrderSettings `gorm:"foreignKey:BusinessID" json:"settings,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Location resolves the business timezone, falling back to UTC when the
// stored name does not load.
func (b *Business) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
