package services

import (
	"errors"
	"testing"
	"time"

	"fleetdesk/models"
)

func TestDeleteCompanyBlockedByDependents(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	if err := DeleteCompany(db, company.ID); !errors.Is(err, ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}

	empty := models.Company{Name: "Sem Registros"}
	if err := db.Create(&empty).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := DeleteCompany(db, empty.ID); err != nil {
		t.Fatalf("delete of unreferenced company: %v", err)
	}
}

func TestDeleteDriverBlockedByFine(t *testing.T) {
	db := testDB(t)
	_, driver, vehicle := seedFleet(t, db)

	fine := models.Fine{
		DriverID:   &driver.ID,
		VehicleID:  &vehicle.ID,
		Plate:      vehicle.Plate,
		Infraction: "Excesso de velocidade",
		Date:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:     195.23,
	}
	if err := db.Create(&fine).Error; err != nil {
		t.Fatalf("seed fine: %v", err)
	}

	if err := DeleteDriver(db, driver.ID); !errors.Is(err, ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}
}

func TestDeleteVehicleBlockedByUtilization(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	if err := DeleteVehicle(db, vehicle.ID); !errors.Is(err, ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}
}

func TestCreateCompanyRejectsEmptyName(t *testing.T) {
	db := testDB(t)
	c := models.Company{Name: "   "}
	if err := CreateCompany(db, &c); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestDuplicatePlateCaseInsensitive(t *testing.T) {
	db := testDB(t)
	company, _, _ := seedFleet(t, db)

	dup := models.Vehicle{
		MakeModel: "Fiat Toro", Plate: "abc1d23", Color: "Preto", CompanyID: company.ID,
	}
	if err := CreateVehicle(db, &dup); !errors.Is(err, ErrDuplicatePlate) {
		t.Fatalf("expected ErrDuplicatePlate, got %v", err)
	}
}

func TestCreateVehicleDefaultsAllowance(t *testing.T) {
	db := testDB(t)
	company, _, _ := seedFleet(t, db)

	v := models.Vehicle{MakeModel: "Fiat Toro", Plate: "DEF4G56", Color: "Preto", CompanyID: company.ID}
	if err := CreateVehicle(db, &v); err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if v.AllowanceKm != models.DefaultAllowanceKm {
		t.Fatalf("expected default allowance %d, got %d", models.DefaultAllowanceKm, v.AllowanceKm)
	}
	if !v.Available {
		t.Fatalf("new vehicle must start available")
	}
}
