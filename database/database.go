package database

import (
	"fmt"
	"log"
	"os"

	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	// Required for UUID generation
	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("Failed to enable pgcrypto extension:", err)
	}

	if err := DB.AutoMigrate(
		// catalog
		&catalog.Course{},
		&catalog.VideoCourse{},

		// checkout
		&coupons.Coupon{},
		&payments.PaymentIntent{},
		&payments.IntentLine{},
		&enrollments.Enrollment{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	fmt.Println("Connected and migrated successfully")
}
