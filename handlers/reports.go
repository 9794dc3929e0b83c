package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"
)

type ReportHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewReportHandler(cfg *config.Config, templates map[string]*template.Template) *ReportHandler {
	return &ReportHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *ReportHandler) MileagePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	vehicleID, _ := parseID(r.URL.Query().Get("vehicle_id"))
	driverID, _ := parseID(r.URL.Query().Get("driver_id"))
	fromMonth := r.URL.Query().Get("from")
	toMonth := r.URL.Query().Get("to")
	if fromMonth != "" && !services.ValidMonth(fromMonth) {
		fromMonth = ""
	}
	if toMonth != "" && !services.ValidMonth(toMonth) {
		toMonth = ""
	}

	report, err := services.MileageByDriver(database.GetDB(), vehicleID, driverID, fromMonth, toMonth)
	if err != nil {
		redirectError(w, r, "/dashboard", err.Error())
		return
	}

	db := database.GetDB()
	var vehicles []models.Vehicle
	db.Order("plate asc").Find(&vehicles)
	var drivers []models.Driver
	db.Order("name asc").Find(&drivers)

	data := map[string]interface{}{
		"User":              user,
		"Report":            report,
		"Vehicles":          vehicles,
		"Drivers":           drivers,
		"SelectedVehicleID": vehicleID,
		"SelectedDriverID":  driverID,
		"FromMonth":         fromMonth,
		"ToMonth":           toMonth,
		"Error":             r.URL.Query().Get("error"),
	}
	h.templates["report-mileage"].ExecuteTemplate(w, "base", data)
}

func (h *ReportHandler) FinesPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	vehicleID, from, to := finesReportFilters(r)
	fines, err := services.FinesInRange(database.GetDB(), vehicleID, from, to)
	if err != nil {
		redirectError(w, r, "/dashboard", err.Error())
		return
	}

	var total float64
	for _, f := range fines {
		total += f.Amount
	}

	var vehicles []models.Vehicle
	database.GetDB().Order("plate asc").Find(&vehicles)

	data := map[string]interface{}{
		"User":              user,
		"Fines":             fines,
		"Total":             total,
		"Vehicles":          vehicles,
		"SelectedVehicleID": vehicleID,
		"From":              r.URL.Query().Get("from"),
		"To":                r.URL.Query().Get("to"),
		"Error":             r.URL.Query().Get("error"),
	}
	h.templates["report-fines"].ExecuteTemplate(w, "base", data)
}

// ExportFines streams the filtered fine set as a single-sheet workbook with
// a timestamp-suffixed filename.
func (h *ReportHandler) ExportFines(w http.ResponseWriter, r *http.Request) {
	vehicleID, from, to := finesReportFilters(r)
	fines, err := services.FinesInRange(database.GetDB(), vehicleID, from, to)
	if err != nil {
		redirectError(w, r, "/reports/fines", err.Error())
		return
	}

	wb, err := services.FinesWorkbook(fines)
	if err != nil {
		redirectError(w, r, "/reports/fines", err.Error())
		return
	}

	filename := services.ExportFilename("multas")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	wb.Write(w)
}

func finesReportFilters(r *http.Request) (uint, time.Time, time.Time) {
	vehicleID, _ := parseID(r.URL.Query().Get("vehicle_id"))
	var from, to time.Time
	if t, err := time.Parse("2006-01-02", r.URL.Query().Get("from")); err == nil {
		from = t
	}
	if t, err := time.Parse("2006-01-02", r.URL.Query().Get("to")); err == nil {
		to = t
	}
	return vehicleID, from, to
}
