package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"
)

type UtilizationHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewUtilizationHandler(cfg *config.Config, templates map[string]*template.Template) *UtilizationHandler {
	return &UtilizationHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *UtilizationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	db := database.GetDB()
	query := db.Preload("Vehicle").Preload("Driver").Preload("Company")

	// Filter to open assignments only when asked
	openOnly := r.URL.Query().Get("open") == "1"
	if openOnly {
		query = query.Where("return_date IS NULL")
	}

	var selectedVehicleID uint
	if id, ok := parseID(r.URL.Query().Get("vehicle_id")); ok {
		selectedVehicleID = id
		query = query.Where("vehicle_id = ?", id)
	}

	var utilizations []models.Utilization
	query.Order("delivery_date desc, id desc").Limit(100).Find(&utilizations)

	var vehicles []models.Vehicle
	db.Order("plate asc").Find(&vehicles)

	availableCount := 0
	for _, v := range vehicles {
		if v.Available {
			availableCount++
		}
	}

	data := map[string]interface{}{
		"User":              user,
		"Utilizations":      utilizations,
		"Vehicles":          vehicles,
		"AvailableCount":    availableCount,
		"OpenOnly":          openOnly,
		"SelectedVehicleID": selectedVehicleID,
		"Error":             r.URL.Query().Get("error"),
		"Success":           r.URL.Query().Get("success"),
	}
	h.templates["dashboard"].ExecuteTemplate(w, "base", data)
}

func (h *UtilizationHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	db := database.GetDB()
	var vehicles []models.Vehicle
	db.Order("plate asc").Find(&vehicles)
	var drivers []models.Driver
	db.Order("name asc").Find(&drivers)
	var companies []models.Company
	db.Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":      user,
		"Vehicles":  vehicles,
		"Drivers":   drivers,
		"Companies": companies,
		"Error":     r.URL.Query().Get("error"),
		"Today":     time.Now().Format("2006-01-02"),
	}
	h.templates["utilization-form"].ExecuteTemplate(w, "base", data)
}

func (h *UtilizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/utilizations/new?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	vehicleID, okV := parseID(r.FormValue("vehicle_id"))
	driverID, okD := parseID(r.FormValue("driver_id"))
	companyID, okC := parseID(r.FormValue("company_id"))
	if !okV || !okD || !okC {
		http.Redirect(w, r, "/utilizations/new?error=Select+vehicle%2C+driver+and+company", http.StatusSeeOther)
		return
	}

	deliveryDate, err := time.Parse("2006-01-02", r.FormValue("delivery_date"))
	if err != nil {
		http.Redirect(w, r, "/utilizations/new?error=Invalid+delivery+date", http.StatusSeeOther)
		return
	}

	deliveryKm, err := strconv.Atoi(r.FormValue("delivery_km"))
	if err != nil || deliveryKm < 0 {
		http.Redirect(w, r, "/utilizations/new?error=Invalid+delivery+odometer", http.StatusSeeOther)
		return
	}

	utilization := models.Utilization{
		VehicleID:    vehicleID,
		DriverID:     driverID,
		CompanyID:    companyID,
		DeliveryDate: deliveryDate,
		DeliveryKm:   deliveryKm,
	}

	if err := services.CreateUtilization(database.GetDB(), &utilization); err != nil {
		redirectError(w, r, "/utilizations/new", err.Error())
		return
	}

	http.Redirect(w, r, "/dashboard?success=Utilization+registered", http.StatusSeeOther)
}

func (h *UtilizationHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}

	db := database.GetDB()
	var utilization models.Utilization
	if err := db.Preload("Vehicle").Preload("Driver").Preload("Company").
		First(&utilization, id).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Utilization+not+found", http.StatusSeeOther)
		return
	}

	var checkpoints []models.Checkpoint
	db.Where("utilization_id = ?", id).Order("month asc").Find(&checkpoints)

	var vehicles []models.Vehicle
	db.Order("plate asc").Find(&vehicles)
	var drivers []models.Driver
	db.Order("name asc").Find(&drivers)
	var companies []models.Company
	db.Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":        user,
		"Utilization": &utilization,
		"Checkpoints": checkpoints,
		"Vehicles":    vehicles,
		"Drivers":     drivers,
		"Companies":   companies,
		"Error":       r.URL.Query().Get("error"),
	}
	h.templates["utilization-edit"].ExecuteTemplate(w, "base", data)
}

func (h *UtilizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}

	var utilization models.Utilization
	if err := database.GetDB().First(&utilization, id).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Utilization+not+found", http.StatusSeeOther)
		return
	}
	prevVehicleID := utilization.VehicleID

	if vehicleID, ok := parseID(r.FormValue("vehicle_id")); ok {
		utilization.VehicleID = vehicleID
	}
	if driverID, ok := parseID(r.FormValue("driver_id")); ok {
		utilization.DriverID = driverID
	}
	if companyID, ok := parseID(r.FormValue("company_id")); ok {
		utilization.CompanyID = companyID
	}
	if deliveryDate, err := time.Parse("2006-01-02", r.FormValue("delivery_date")); err == nil {
		utilization.DeliveryDate = deliveryDate
	}
	if deliveryKm, err := strconv.Atoi(r.FormValue("delivery_km")); err == nil && deliveryKm >= 0 {
		utilization.DeliveryKm = deliveryKm
	}

	if err := services.UpdateUtilization(database.GetDB(), &utilization, prevVehicleID); err != nil {
		redirectError(w, r, fmt.Sprintf("/utilizations/edit?id=%d", id), err.Error())
		return
	}

	http.Redirect(w, r, "/dashboard?success=Utilization+updated", http.StatusSeeOther)
}

func (h *UtilizationHandler) ReturnPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}

	db := database.GetDB()
	var utilization models.Utilization
	if err := db.Preload("Vehicle").Preload("Driver").First(&utilization, id).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Utilization+not+found", http.StatusSeeOther)
		return
	}

	// The minimum acceptable return reading doubles as the form suggestion.
	minKm, err := services.SuggestedStartKm(db, &utilization)
	if err != nil {
		minKm = utilization.DeliveryKm
	}

	data := map[string]interface{}{
		"User":        user,
		"Utilization": &utilization,
		"MinKm":       minKm,
		"Today":       time.Now().Format("2006-01-02"),
		"Error":       r.URL.Query().Get("error"),
	}
	h.templates["utilization-return"].ExecuteTemplate(w, "base", data)
}

func (h *UtilizationHandler) Return(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}
	back := fmt.Sprintf("/utilizations/return?id=%d", id)

	returnKm, err := strconv.Atoi(r.FormValue("return_km"))
	if err != nil || returnKm < 0 {
		http.Redirect(w, r, back+"&error=Invalid+return+odometer", http.StatusSeeOther)
		return
	}

	returnDate, err := time.Parse("2006-01-02", r.FormValue("return_date"))
	if err != nil {
		http.Redirect(w, r, back+"&error=Invalid+return+date", http.StatusSeeOther)
		return
	}

	if err := services.ReturnUtilization(database.GetDB(), id, returnKm, returnDate); err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyReturned):
			http.Redirect(w, r, "/dashboard?error=Utilization+already+returned", http.StatusSeeOther)
		case errors.Is(err, services.ErrFutureReturnDate):
			http.Redirect(w, r, back+"&error=Return+date+cannot+be+in+the+future", http.StatusSeeOther)
		case errors.Is(err, services.ErrReturnKmBelowDelivery):
			http.Redirect(w, r, back+"&error=Return+odometer+below+delivery+reading", http.StatusSeeOther)
		case errors.Is(err, services.ErrReturnKmBelowCheckpoint):
			http.Redirect(w, r, back+"&error=Return+odometer+below+last+checkpoint", http.StatusSeeOther)
		default:
			redirectError(w, r, "/dashboard", err.Error())
		}
		return
	}

	http.Redirect(w, r, "/dashboard?success=Vehicle+returned", http.StatusSeeOther)
}

func (h *UtilizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanDeleteRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}

	if err := services.DeleteUtilization(database.GetDB(), id); err != nil {
		redirectError(w, r, "/dashboard", err.Error())
		return
	}

	http.Redirect(w, r, "/dashboard?success=Utilization+deleted", http.StatusSeeOther)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// UploadChecklist stores the signed checklist PDF for a utilization under
// <id>_<unix-timestamp>_<sanitized original name> in the upload directory.
func (h *UtilizationHandler) UploadChecklist(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+upload", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}
	back := fmt.Sprintf("/utilizations/edit?id=%d", id)

	var utilization models.Utilization
	if err := database.GetDB().First(&utilization, id).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Utilization+not+found", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("checklist")
	if err != nil {
		http.Redirect(w, r, back+"&error=Select+a+PDF+file", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		http.Redirect(w, r, back+"&error=Checklist+must+be+a+PDF", http.StatusSeeOther)
		return
	}

	if err := os.MkdirAll(h.config.UploadDir, 0o755); err != nil {
		redirectError(w, r, back, err.Error())
		return
	}

	sanitized := unsafeFilenameChars.ReplaceAllString(filepath.Base(header.Filename), "_")
	stored := fmt.Sprintf("%d_%d_%s", utilization.ID, time.Now().Unix(), sanitized)

	dst, err := os.Create(filepath.Join(h.config.UploadDir, stored))
	if err != nil {
		redirectError(w, r, back, err.Error())
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		redirectError(w, r, back, err.Error())
		return
	}

	previous := utilization.ChecklistFile
	utilization.ChecklistFile = stored
	if err := database.GetDB().Save(&utilization).Error; err != nil {
		redirectError(w, r, back, err.Error())
		return
	}
	if previous != "" {
		os.Remove(filepath.Join(h.config.UploadDir, previous))
	}

	http.Redirect(w, r, back+"&success=Checklist+uploaded", http.StatusSeeOther)
}

func (h *UtilizationHandler) DownloadChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}

	var utilization models.Utilization
	if err := database.GetDB().First(&utilization, id).Error; err != nil || utilization.ChecklistFile == "" {
		http.Redirect(w, r, "/dashboard?error=Checklist+not+found", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", utilization.ChecklistFile))
	http.ServeFile(w, r, filepath.Join(h.config.UploadDir, utilization.ChecklistFile))
}
