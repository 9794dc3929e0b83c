package services

import (
	"errors"
	"testing"
	"time"

	"fleetdesk/models"

	"gorm.io/gorm"
)

func openUtilization(t *testing.T, db *gorm.DB, driverID, vehicleID, companyID uint, deliveryKm int) models.Utilization {
	t.Helper()
	u := models.Utilization{
		VehicleID:    vehicleID,
		DriverID:     driverID,
		CompanyID:    companyID,
		DeliveryDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		DeliveryKm:   deliveryKm,
	}
	if err := CreateUtilization(db, &u); err != nil {
		t.Fatalf("CreateUtilization: %v", err)
	}
	return u
}

func TestCreateUtilizationClearsAvailability(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)

	openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	if vehicleByID(t, db, vehicle.ID).Available {
		t.Fatalf("expected vehicle unavailable after assignment")
	}
}

func TestReturnUtilizationRestoresAvailability(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	if err := ReturnUtilization(db, u.ID, 3500, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("ReturnUtilization: %v", err)
	}

	if !vehicleByID(t, db, vehicle.ID).Available {
		t.Fatalf("expected vehicle available after return")
	}

	var got models.Utilization
	if err := db.First(&got, u.ID).Error; err != nil {
		t.Fatalf("reload utilization: %v", err)
	}
	if got.ReturnKm == nil || got.ReturnDate == nil {
		t.Fatalf("expected both return fields set, got %+v", got)
	}
	if got.KmUsed() != 2500 {
		t.Fatalf("expected 2500 km used, got %d", got.KmUsed())
	}
	if got.OverageKm(vehicle.AllowanceKm) != 500 {
		t.Fatalf("expected 500 km overage, got %d", got.OverageKm(vehicle.AllowanceKm))
	}
}

func TestReturnRejectsFutureDate(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	err := ReturnUtilization(db, u.ID, 2000, time.Now().AddDate(0, 0, 2))
	if !errors.Is(err, ErrFutureReturnDate) {
		t.Fatalf("expected ErrFutureReturnDate, got %v", err)
	}
	if vehicleByID(t, db, vehicle.ID).Available {
		t.Fatalf("rejected return must not touch availability")
	}
}

func TestReturnRejectsKmBelowDelivery(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	err := ReturnUtilization(db, u.ID, 900, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrReturnKmBelowDelivery) {
		t.Fatalf("expected ErrReturnKmBelowDelivery, got %v", err)
	}
}

func TestReturnRejectsKmBelowLastCheckpoint(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	// Created out of order on purpose: the February checkpoint is older by
	// row ID but more recent by month label, and the label must win.
	later := models.Checkpoint{UtilizationID: u.ID, Month: "2024-02", StartKm: 1200, EndKm: 1500}
	if err := CreateCheckpoint(db, &later); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}
	earlier := models.Checkpoint{UtilizationID: u.ID, Month: "2024-01", StartKm: 1000, EndKm: 1200}
	if err := CreateCheckpoint(db, &earlier); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}

	err := ReturnUtilization(db, u.ID, 1400, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrReturnKmBelowCheckpoint) {
		t.Fatalf("expected ErrReturnKmBelowCheckpoint, got %v", err)
	}

	if err := ReturnUtilization(db, u.ID, 1500, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("return at checkpoint end must pass, got %v", err)
	}
}

func TestReturnTwiceRejected(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	when := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := ReturnUtilization(db, u.ID, 2000, when); err != nil {
		t.Fatalf("first return: %v", err)
	}
	if err := ReturnUtilization(db, u.ID, 2100, when); !errors.Is(err, ErrAlreadyReturned) {
		t.Fatalf("expected ErrAlreadyReturned, got %v", err)
	}
}

func TestRetargetSwapsAvailability(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	other := models.Vehicle{
		MakeModel: "VW Gol", Plate: "XYZ9A88", Color: "Branco",
		AllowanceKm: 2000, CompanyID: company.ID, Available: true,
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed second vehicle: %v", err)
	}

	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	prev := u.VehicleID
	u.VehicleID = other.ID
	if err := UpdateUtilization(db, &u, prev); err != nil {
		t.Fatalf("UpdateUtilization: %v", err)
	}

	if !vehicleByID(t, db, vehicle.ID).Available {
		t.Fatalf("previous vehicle should be available again")
	}
	if vehicleByID(t, db, other.ID).Available {
		t.Fatalf("new vehicle should be unavailable")
	}
}

func TestDeleteOpenUtilizationRestoresAvailability(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	cp := models.Checkpoint{UtilizationID: u.ID, Month: "2024-01", StartKm: 1000, EndKm: 1100}
	if err := CreateCheckpoint(db, &cp); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}

	if err := DeleteUtilization(db, u.ID); err != nil {
		t.Fatalf("DeleteUtilization: %v", err)
	}

	if !vehicleByID(t, db, vehicle.ID).Available {
		t.Fatalf("expected vehicle available after deleting open utilization")
	}
	var n int64
	db.Model(&models.Checkpoint{}).Where("utilization_id = ?", u.ID).Count(&n)
	if n != 0 {
		t.Fatalf("expected checkpoints removed with their utilization, %d left", n)
	}
}
