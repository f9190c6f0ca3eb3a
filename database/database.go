package database

import (
	"fmt"
	"log"
	"os"

	"tiendita-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=tiendita port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.StoreHours{},
		&models.OrderSettings{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	)
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@tiendita.app"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}

// CreateDefaultBusiness seeds a demo business with standard hours and
// settings so a fresh install has something to work against. Skipped
// when any business already exists.
func CreateDefaultBusiness(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Business{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ownerEmail := os.Getenv("DEMO_OWNER_EMAIL")
	if ownerEmail == "" {
		ownerEmail = "dueno@tiendita.app"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("cambiame123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		owner := models.User{
			Email:    ownerEmail,
			Password: string(hashedPassword),
			Role:     "merchant_owner",
			Name:     "Demo Owner",
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		business := models.Business{
			Name:     "La Tiendita de Demo",
			Slug:     "la-tiendita-de-demo",
			OwnerID:  owner.ID,
			City:     "Madrid",
			Timezone: "Europe/Madrid",
			IsActive: true,
		}
		if err := tx.Create(&business).Error; err != nil {
			return err
		}

		if err := tx.Model(&owner).Update("business_id", business.ID).Error; err != nil {
			return err
		}

		// Open every day 09:00-21:00 until the owner configures real hours.
		for day := 0; day <= 6; day++ {
			hours := models.StoreHours{
				BusinessID: business.ID,
				DayOfWeek:  day,
				OpenTime:   "09:00",
				CloseTime:  "21:00",
			}
			if err := tx.Create(&hours).Error; err != nil {
				return err
			}
		}

		settings := models.OrderSettings{
			BusinessID:            business.ID,
			AutoAcceptOrders:      false,
			PrepTimeBufferMinutes: 10,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}

		log.Printf("Default business created: %s (owner %s)", business.Slug, ownerEmail)
		return nil
	})
}
