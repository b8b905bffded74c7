package database

import (
	"os"

	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Customer{},
		&models.Driver{},
		&models.Vehicle{},
		&models.SystemConfig{},
		&models.Booking{},
		&models.BookingPayment{},
	)
	if err != nil {
		return err
	}

	// Enforce the status vocabularies at the database level
	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'assigned', 'on_route', 'completed', 'cancelled'))`)
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_service_type_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_service_type_check CHECK (service_type IN ('point_to_point', 'hourly', 'airport', 'custom'))`)
	}

	if db.Migrator().HasTable(&models.BookingPayment{}) {
		db.Exec(`ALTER TABLE booking_payments DROP CONSTRAINT IF EXISTS booking_payments_status_check`)
		db.Exec(`ALTER TABLE booking_payments ADD CONSTRAINT booking_payments_status_check CHECK (status IN ('created', 'requires_capture', 'succeeded', 'failed', 'canceled'))`)
	}

	if db.Migrator().HasTable(&models.User{}) {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_user_type_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_user_type_check CHECK (user_type IN ('admin', 'dispatcher'))`)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		return seedDemoData(db)
	}

	return nil
}

// seedDemoData bootstraps one operator so a fresh install can take bookings
// immediately. No-op when any company already exists.
func seedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Company{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	company := models.Company{Name: "Ridewell Demo", Email: "ops@ridewell.example"}
	if err := db.Create(&company).Error; err != nil {
		return err
	}

	admin := models.User{
		CompanyID: company.ID,
		Username:  "admin",
		Email:     "admin@ridewell.example",
		Password:  "changeme",
		UserType:  string(models.UserTypeAdmin),
	}
	if err := admin.HashPassword(); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	config := models.SystemConfig{
		CompanyID:          company.ID,
		TaxRate:            10,
		BasePriceFlat:      10,
		CancellationFee:    25,
		SurgeRate:          0,
		RateBuffer:         5,
		GratuityPercentage: 15,
		Currency:           "usd",
	}
	if err := db.Create(&config).Error; err != nil {
		return err
	}

	vehicles := []models.Vehicle{
		{CompanyID: company.ID, Name: "Executive Sedan", Category: "sedan", Capacity: 3, Luggage: 2, HourlyRate: 50, PerKmRate: 2.5, AirportRate: 3, Status: string(models.VehicleStatusActive)},
		{CompanyID: company.ID, Name: "Luxury SUV", Category: "suv", Capacity: 6, Luggage: 5, HourlyRate: 75, PerKmRate: 3.5, AirportRate: 4, Status: string(models.VehicleStatusActive)},
		{CompanyID: company.ID, Name: "Sprinter Van", Category: "van", Capacity: 12, Luggage: 10, HourlyRate: 110, PerKmRate: 5, AirportRate: 6, Status: string(models.VehicleStatusActive)},
	}
	return db.Create(&vehicles).Error
}
