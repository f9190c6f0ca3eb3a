package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tiendita-backend/engine"
)

type Order struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID                uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User                  User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BusinessID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"business_id"`
	Business              Business       `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	OrderNumber           string         `gorm:"uniqueIndex;not null" json:"order_number"`
	Status                engine.Status  `gorm:"default:pending" json:"status"`
	CustomerName          string         `json:"customer_name"`  // snapshot at order time
	CustomerPhone         string         `json:"customer_phone"` // snapshot at order time
	PaymentMethod         string         `json:"payment_method"`
	Subtotal              float64        `gorm:"not null" json:"subtotal"`
	Total                 float64        `gorm:"not null" json:"total"`
	EstimatedReadyMinutes *int           `json:"estimated_ready_minutes,omitempty"`
	SpecialNotes          string         `json:"special_notes"`
	Items                 []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

type OrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Order           Order     `gorm:"foreignKey:OrderID" json:"-"`
	MenuItemID      uuid.UUID `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	MenuItem        MenuItem  `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
	ItemName        string    `json:"item_name"` // snapshot of item name at time of order
	Quantity        int       `gorm:"not null" json:"quantity"`
	Price           float64   `gorm:"not null" json:"price"`
	PrepTimeMinutes int       `json:"prep_time_minutes"` // snapshot of prep time at time of order
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = "ORD" + time.Now().Format("20060102150405") + o.ID.String()[:8]
	}
	return nil
}

// Ref is the order's identity slice handed to the status machine.
func (o *Order) Ref() engine.OrderRef {
	return engine.OrderRef{
		ID:           o.ID,
		Number:       o.OrderNumber,
		CustomerName: o.CustomerName,
		Status:       o.Status,
	}
}

// BasePrepMinutes is the longest prep time among the order's items;
// items are prepared in parallel, so the slowest one sets the pace.
func (o *Order) BasePrepMinutes() int {
	max := 0
	for _, item := range o.Items {
		if item.PrepTimeMinutes > max {
			max = item.PrepTimeMinutes
		}
	}
	return max
}
