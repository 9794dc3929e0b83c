package services

import (
	"testing"

	"fleetdesk/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Company{},
		&models.Driver{},
		&models.Vehicle{},
		&models.Utilization{},
		&models.Checkpoint{},
		&models.Fine{},
		&models.User{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedFleet(t *testing.T, db *gorm.DB) (models.Company, models.Driver, models.Vehicle) {
	t.Helper()
	company := models.Company{Name: "Transportes Azul"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	driver := models.Driver{Name: "João Pereira", Role: "Motorista", Department: "Logística"}
	if err := db.Create(&driver).Error; err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	vehicle := models.Vehicle{
		MakeModel:   "Fiat Strada",
		Plate:       "ABC1D23",
		Color:       "Prata",
		AllowanceKm: 2000,
		CompanyID:   company.ID,
		Available:   true,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return company, driver, vehicle
}

func vehicleByID(t *testing.T, db *gorm.DB, id uint) models.Vehicle {
	t.Helper()
	var v models.Vehicle
	if err := db.First(&v, id).Error; err != nil {
		t.Fatalf("load vehicle %d: %v", id, err)
	}
	return v
}
