package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tiendita-backend/engine"
)

// StoreHours is one opening range of a business on one weekday. A day
// with several rows has several ranges (e.g. a siesta split); a day with
// no open rows is closed.
type StoreHours struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	DayOfWeek  int       `gorm:"not null" json:"day_of_week"` // 0=Sunday, 6=Saturday
	OpenTime   string    `gorm:"not null;default:'09:00'" json:"open_time"`
	CloseTime  string    `gorm:"not null;default:'21:00'" json:"close_time"`
	IsClosed   bool      `gorm:"default:false" json:"is_closed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *StoreHours) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// WeeklyFromStoreHours converts persisted rows into a validated weekly
// availability. Rows marked closed contribute no range; a day without
// any open row ends up closed.
func WeeklyFromStoreHours(rows []StoreHours) (engine.WeeklyAvailability, error) {
	days := make(map[time.Weekday]engine.DaySchedule, 7)

	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			return nil, fmt.Errorf("invalid day_of_week %d, expected 0-6", row.DayOfWeek)
		}
		if row.IsClosed {
			continue
		}

		start, err := parseClock(row.OpenTime)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(row.CloseTime)
		if err != nil {
			return nil, err
		}

		day := time.Weekday(row.DayOfWeek)
		s := days[day]
		s.Open = true
		s.Ranges = append(s.Ranges, engine.TimeRange{Start: start, End: end})
		days[day] = s
	}

	// Row order is a storage artifact; the database gives no ordering
	// guarantee without an ORDER BY, so sort each day before validation.
	for day, s := range days {
		sort.Slice(s.Ranges, func(i, j int) bool { return s.Ranges[i].Start < s.Ranges[j].Start })
		days[day] = s
	}

	return engine.NewWeeklyAvailability(days)
}
