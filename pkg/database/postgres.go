package database

import (
	"log"
	"os"

	"github.com/melodia/melodia-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase() *gorm.DB {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := RunMigrations(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.CreditBundle{},
		&models.CreditPurchase{},
		&models.GenerationTask{},
	)
	if err != nil {
		return err
	}

	return seedBundles(db)
}

// seedBundles inserts the bundle catalog if the rows are missing. Slug is the
// stable key; prices and amounts of existing rows are left alone.
func seedBundles(db *gorm.DB) error {
	bundles := []models.CreditBundle{
		{
			Slug:        "starter",
			Name:        "Starter",
			Description: "100 credits to get going",
			Credits:     100,
			Price:       6.99,
			IsActive:    true,
		},
		{
			Slug:         "popular",
			Name:         "Popular",
			Description:  "350 credits + 50 bonus",
			Credits:      350,
			BonusCredits: 50,
			Price:        19.99,
			IsActive:     true,
		},
		{
			Slug:         "pro",
			Name:         "Pro",
			Description:  "800 credits + 200 bonus",
			Credits:      800,
			BonusCredits: 200,
			Price:        39.99,
			IsActive:     true,
		},
		{
			Slug:         "max",
			Name:         "Max",
			Description:  "2000 credits + 600 bonus",
			Credits:      2000,
			BonusCredits: 600,
			Price:        79.99,
			IsActive:     true,
		},
	}

	for _, bundle := range bundles {
		var count int64
		db.Model(&models.CreditBundle{}).Where("slug = ?", bundle.Slug).Count(&count)
		if count == 0 {
			if err := db.Create(&bundle).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
