package services

import (
	"testing"
	"time"

	"fleetdesk/models"
)

func TestMileageByDriverRowsAndTotalDisagree(t *testing.T) {
	db := testDB(t)
	company, driverA, vehicleA := seedFleet(t, db)

	driverB := models.Driver{Name: "Ana Souza", Role: "Motorista", Department: "Comercial"}
	if err := db.Create(&driverB).Error; err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	vehicleB := models.Vehicle{
		MakeModel: "VW Gol", Plate: "XYZ9A88", Color: "Branco",
		AllowanceKm: 2000, CompanyID: company.ID, Available: true,
	}
	if err := db.Create(&vehicleB).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}

	ua := openUtilization(t, db, driverA.ID, vehicleA.ID, company.ID, 1000)
	ub := openUtilization(t, db, driverB.ID, vehicleB.ID, company.ID, 2000)

	for _, cp := range []models.Checkpoint{
		{UtilizationID: ua.ID, Month: "2024-01", StartKm: 1000, EndKm: 1500},
		{UtilizationID: ub.ID, Month: "2024-02", StartKm: 2000, EndKm: 2600},
	} {
		cp := cp
		if err := CreateCheckpoint(db, &cp); err != nil {
			t.Fatalf("CreateCheckpoint: %v", err)
		}
	}

	report, err := MileageByDriver(db, 0, 0, "", "")
	if err != nil {
		t.Fatalf("MileageByDriver: %v", err)
	}

	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", report.Rows)
	}
	if report.Rows[0].DriverName != "Ana Souza" || report.Rows[0].Km != 600 {
		t.Fatalf("unexpected first row: %+v", report.Rows[0])
	}
	if report.Rows[1].DriverName != "João Pereira" || report.Rows[1].Km != 500 {
		t.Fatalf("unexpected second row: %+v", report.Rows[1])
	}

	// The grand total spans odometers of different vehicles, so it does not
	// equal the per-driver sum. 2600 - 1000 here, against 500 + 600 rows.
	if report.TotalKm != 1600 {
		t.Fatalf("expected total 1600, got %d", report.TotalKm)
	}
}

func TestMileageByDriverMonthRange(t *testing.T) {
	db := testDB(t)
	company, driver, vehicle := seedFleet(t, db)
	u := openUtilization(t, db, driver.ID, vehicle.ID, company.ID, 1000)

	for _, cp := range []models.Checkpoint{
		{UtilizationID: u.ID, Month: "2024-01", StartKm: 1000, EndKm: 1400},
		{UtilizationID: u.ID, Month: "2024-02", StartKm: 1400, EndKm: 1900},
		{UtilizationID: u.ID, Month: "2024-03", StartKm: 1900, EndKm: 2300},
	} {
		cp := cp
		if err := CreateCheckpoint(db, &cp); err != nil {
			t.Fatalf("CreateCheckpoint: %v", err)
		}
	}

	report, err := MileageByDriver(db, vehicle.ID, driver.ID, "2024-02", "2024-02")
	if err != nil {
		t.Fatalf("MileageByDriver: %v", err)
	}
	if len(report.Rows) != 1 || report.Rows[0].Km != 500 {
		t.Fatalf("expected a single 500 km row, got %+v", report.Rows)
	}
	if report.TotalKm != 500 {
		t.Fatalf("expected total 500 within a single month, got %d", report.TotalKm)
	}
}

func TestMileageByDriverEmptyRange(t *testing.T) {
	db := testDB(t)
	seedFleet(t, db)

	report, err := MileageByDriver(db, 0, 0, "2024-05", "2024-06")
	if err != nil {
		t.Fatalf("MileageByDriver: %v", err)
	}
	if len(report.Rows) != 0 || report.TotalKm != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestFinesInRange(t *testing.T) {
	db := testDB(t)
	_, driver, vehicle := seedFleet(t, db)

	for _, day := range []int{10, 20, 30} {
		f := models.Fine{
			DriverID:   &driver.ID,
			VehicleID:  &vehicle.ID,
			Plate:      vehicle.Plate,
			Infraction: "Excesso de velocidade",
			Date:       time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			Amount:     100,
		}
		if err := RegisterFine(db, &f); err != nil {
			t.Fatalf("RegisterFine: %v", err)
		}
	}

	fines, err := FinesInRange(db, vehicle.ID,
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FinesInRange: %v", err)
	}
	if len(fines) != 1 {
		t.Fatalf("expected 1 fine in range, got %d", len(fines))
	}
	if fines[0].Driver == nil || fines[0].Driver.Name != driver.Name {
		t.Fatalf("driver not preloaded: %+v", fines[0].Driver)
	}
}

func TestFinesWorkbookRendersMonthName(t *testing.T) {
	db := testDB(t)
	_, driver, vehicle := seedFleet(t, db)

	f := models.Fine{
		DriverID:   &driver.ID,
		VehicleID:  &vehicle.ID,
		Plate:      vehicle.Plate,
		RefMonth:   "2024-03",
		Infraction: "Avanço de sinal",
		Date:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:     293.47,
	}
	if err := RegisterFine(db, &f); err != nil {
		t.Fatalf("RegisterFine: %v", err)
	}

	fines, err := FinesInRange(db, 0, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FinesInRange: %v", err)
	}

	wb, err := FinesWorkbook(fines)
	if err != nil {
		t.Fatalf("FinesWorkbook: %v", err)
	}
	defer wb.Close()
	sheet := wb.GetSheetName(0)

	header, err := wb.GetCellValue(sheet, "A1")
	if err != nil || header != "Condutor (a)" {
		t.Fatalf("header cell = %q, err %v", header, err)
	}
	month, err := wb.GetCellValue(sheet, "G2")
	if err != nil || month != "Março/2024" {
		t.Fatalf("month cell = %q, err %v", month, err)
	}
	date, err := wb.GetCellValue(sheet, "I2")
	if err != nil || date != "10/03/2024" {
		t.Fatalf("date cell = %q, err %v", date, err)
	}
}
