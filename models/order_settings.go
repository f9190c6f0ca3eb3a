package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tiendita-backend/engine"
)

// OrderSettings is the per-business acceptance configuration. One row
// per business, created alongside it.
type OrderSettings struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"business_id"`
	AutoAcceptOrders      bool      `gorm:"default:false" json:"auto_accept_orders"`
	PrepTimeBufferMinutes int       `gorm:"default:10" json:"prep_time_buffer_minutes"`
	MaxOrdersPerHour      *int      `json:"max_orders_per_hour,omitempty"` // nil means unlimited
	AllowScheduledOrders  bool      `gorm:"default:false" json:"allow_scheduled_orders"`
	CancellationPolicy    string    `json:"cancellation_policy"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (s *OrderSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Policy projects the stored settings into the acceptance rules.
func (s *OrderSettings) Policy() engine.Policy {
	return engine.Policy{
		AutoAccept:         s.AutoAcceptOrders,
		PrepBufferMinutes:  s.PrepTimeBufferMinutes,
		MaxOrdersPerHour:   s.MaxOrdersPerHour,
		AllowScheduled:     s.AllowScheduledOrders,
		CancellationPolicy: s.CancellationPolicy,
	}
}
