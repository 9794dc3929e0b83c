package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	return db
}

func seedUtilization(t *testing.T, db *gorm.DB) models.Utilization {
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
		MakeModel: "Fiat Strada", Plate: "ABC1D23", Color: "Prata",
		AllowanceKm: 2000, CompanyID: company.ID,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	u := models.Utilization{
		VehicleID:    vehicle.ID,
		DriverID:     driver.ID,
		CompanyID:    company.ID,
		DeliveryDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		DeliveryKm:   1000,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed utilization: %v", err)
	}
	return u
}

func checklistRequest(t *testing.T, id uint, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("id", fmt.Sprint(id)); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("checklist", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/utilizations/checklist", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, &models.User{IsAdmin: true})
	return req.WithContext(ctx)
}

func TestUploadChecklistRemovesReplacedFile(t *testing.T) {
	db := newTestDB(t)
	u := seedUtilization(t, db)

	uploadDir := t.TempDir()
	previous := "1_100_vistoria_antiga.pdf"
	if err := os.WriteFile(filepath.Join(uploadDir, previous), []byte("%PDF-1.4 old"), 0o644); err != nil {
		t.Fatalf("seed previous checklist: %v", err)
	}
	u.ChecklistFile = previous
	if err := db.Save(&u).Error; err != nil {
		t.Fatalf("save utilization: %v", err)
	}

	h := NewUtilizationHandler(&config.Config{UploadDir: uploadDir}, nil)
	rr := httptest.NewRecorder()
	h.UploadChecklist(rr, checklistRequest(t, u.ID, "vistoria nova.pdf"))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "success=Checklist+uploaded") {
		t.Fatalf("unexpected redirect target %q", loc)
	}

	var got models.Utilization
	if err := db.First(&got, u.ID).Error; err != nil {
		t.Fatalf("reload utilization: %v", err)
	}
	if got.ChecklistFile == previous || got.ChecklistFile == "" {
		t.Fatalf("checklist file not replaced: %q", got.ChecklistFile)
	}
	if _, err := os.Stat(filepath.Join(uploadDir, got.ChecklistFile)); err != nil {
		t.Fatalf("new checklist missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(uploadDir, previous)); !os.IsNotExist(err) {
		t.Fatalf("replaced checklist still on disk (err %v)", err)
	}
}

func TestUploadChecklistRejectsNonPDF(t *testing.T) {
	db := newTestDB(t)
	u := seedUtilization(t, db)

	uploadDir := t.TempDir()
	h := NewUtilizationHandler(&config.Config{UploadDir: uploadDir}, nil)
	rr := httptest.NewRecorder()
	h.UploadChecklist(rr, checklistRequest(t, u.ID, "planilha.xlsx"))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "error=Checklist+must+be+a+PDF") {
		t.Fatalf("unexpected redirect target %q", loc)
	}

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload must not store files, found %d", len(entries))
	}
}
