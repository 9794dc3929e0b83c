package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"
)

type FineHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewFineHandler(cfg *config.Config, templates map[string]*template.Template) *FineHandler {
	return &FineHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *FineHandler) FinesPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var fines []models.Fine
	database.GetDB().Preload("Driver").Preload("Vehicle").Preload("Company").
		Order("date desc, id desc").Limit(100).Find(&fines)

	var total float64
	for _, f := range fines {
		total += f.Amount
	}

	data := map[string]interface{}{
		"User":    user,
		"Fines":   fines,
		"Total":   total,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["fines"].ExecuteTemplate(w, "base", data)
}

func (h *FineHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	db := database.GetDB()
	var drivers []models.Driver
	db.Order("name asc").Find(&drivers)
	var vehicles []models.Vehicle
	db.Order("plate asc").Find(&vehicles)
	var companies []models.Company
	db.Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":      user,
		"Drivers":   drivers,
		"Vehicles":  vehicles,
		"Companies": companies,
		"Error":     r.URL.Query().Get("error"),
		"Today":     time.Now().Format("2006-01-02"),
		"Year":      time.Now().Year(),
	}
	h.templates["fine-form"].ExecuteTemplate(w, "base", data)
}

func (h *FineHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/fines/new?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	infraction := strings.TrimSpace(r.FormValue("infraction"))
	if infraction == "" {
		http.Redirect(w, r, "/fines/new?error=Infraction+description+is+required", http.StatusSeeOther)
		return
	}

	date, err := time.Parse("2006-01-02", r.FormValue("date"))
	if err != nil {
		http.Redirect(w, r, "/fines/new?error=Invalid+infraction+date", http.StatusSeeOther)
		return
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(r.FormValue("amount"), ",", "."), 64)
	if err != nil || amount < 0 {
		http.Redirect(w, r, "/fines/new?error=Invalid+amount", http.StatusSeeOther)
		return
	}

	// Reference month arrives as a month name plus year from the form.
	refMonth := ""
	if name := r.FormValue("ref_month_name"); name != "" {
		year := date.Year()
		if y, err := strconv.Atoi(r.FormValue("ref_year")); err == nil {
			year = y
		}
		refMonth, err = services.RefMonth(name, year)
		if err != nil {
			http.Redirect(w, r, "/fines/new?error=Invalid+reference+month", http.StatusSeeOther)
			return
		}
	}

	fine := models.Fine{
		DriverID:        parseOptionalID(r.FormValue("driver_id")),
		VehicleID:       parseOptionalID(r.FormValue("vehicle_id")),
		CompanyID:       parseOptionalID(r.FormValue("company_id")),
		Plate:           r.FormValue("plate"),
		CostCenter:      r.FormValue("cost_center"),
		Unit:            r.FormValue("unit"),
		Modality:        r.FormValue("modality"),
		RefMonth:        refMonth,
		Infraction:      infraction,
		Date:            date,
		Time:            r.FormValue("time"),
		Amount:          amount,
		DiscountApplied: r.FormValue("discount_applied") == "on",
		HRNotified:      r.FormValue("hr_notified") == "on",
		Notes:           r.FormValue("notes"),
	}

	if err := services.RegisterFine(database.GetDB(), &fine); err != nil {
		// The raw error text reaches the submitter, rollback already done.
		redirectError(w, r, "/fines/new", err.Error())
		return
	}

	http.Redirect(w, r, "/fines?success=Fine+registered", http.StatusSeeOther)
}

func (h *FineHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/fines?error=Invalid+fine+ID", http.StatusSeeOther)
		return
	}

	var fine models.Fine
	if err := database.GetDB().Preload("Driver").Preload("Vehicle").Preload("Company").
		First(&fine, id).Error; err != nil {
		http.Redirect(w, r, "/fines?error=Fine+not+found", http.StatusSeeOther)
		return
	}

	db := database.GetDB()
	var drivers []models.Driver
	db.Order("name asc").Find(&drivers)
	var vehicles []models.Vehicle
	db.Order("plate asc").Find(&vehicles)
	var companies []models.Company
	db.Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":      user,
		"Fine":      &fine,
		"Drivers":   drivers,
		"Vehicles":  vehicles,
		"Companies": companies,
		"Error":     r.URL.Query().Get("error"),
	}
	h.templates["fine-edit"].ExecuteTemplate(w, "base", data)
}

func (h *FineHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/fines?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/fines?error=Invalid+fine+ID", http.StatusSeeOther)
		return
	}
	back := fmt.Sprintf("/fines/edit?id=%d", id)

	var fine models.Fine
	if err := database.GetDB().First(&fine, id).Error; err != nil {
		http.Redirect(w, r, "/fines?error=Fine+not+found", http.StatusSeeOther)
		return
	}

	if date, err := time.Parse("2006-01-02", r.FormValue("date")); err == nil {
		fine.Date = date
	}
	if amount, err := strconv.ParseFloat(strings.ReplaceAll(r.FormValue("amount"), ",", "."), 64); err == nil && amount >= 0 {
		fine.Amount = amount
	}

	fine.DriverID = parseOptionalID(r.FormValue("driver_id"))
	fine.VehicleID = parseOptionalID(r.FormValue("vehicle_id"))
	fine.CompanyID = parseOptionalID(r.FormValue("company_id"))
	fine.Plate = r.FormValue("plate")
	fine.CostCenter = r.FormValue("cost_center")
	fine.Unit = r.FormValue("unit")
	fine.Modality = r.FormValue("modality")
	fine.Infraction = r.FormValue("infraction")
	fine.Time = r.FormValue("time")
	fine.DiscountApplied = r.FormValue("discount_applied") == "on"
	fine.HRNotified = r.FormValue("hr_notified") == "on"
	fine.Notes = r.FormValue("notes")

	if err := services.UpdateFine(database.GetDB(), &fine); err != nil {
		redirectError(w, r, back, err.Error())
		return
	}

	http.Redirect(w, r, "/fines?success=Fine+updated", http.StatusSeeOther)
}

func (h *FineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanDeleteRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/fines?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/fines?error=Invalid+fine+ID", http.StatusSeeOther)
		return
	}

	if err := services.DeleteFine(database.GetDB(), id); err != nil {
		redirectError(w, r, "/fines", err.Error())
		return
	}

	http.Redirect(w, r, "/fines?success=Fine+deleted", http.StatusSeeOther)
}

func (h *FineHandler) ImportPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	data := map[string]interface{}{
		"User":    user,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["fine-import"].ExecuteTemplate(w, "base", data)
}

func (h *FineHandler) Import(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Redirect(w, r, "/fines/import?error=Invalid+upload", http.StatusSeeOther)
		return
	}

	file, _, err := r.FormFile("spreadsheet")
	if err != nil {
		http.Redirect(w, r, "/fines/import?error=Select+a+spreadsheet+file", http.StatusSeeOther)
		return
	}
	defer file.Close()

	result, err := services.ImportFines(database.GetDB(), file)
	if err != nil {
		redirectError(w, r, "/fines/import", err.Error())
		return
	}

	msg := fmt.Sprintf("Imported %d fines, skipped %d rows", result.Inserted, result.Skipped)
	if len(result.RowErrors) > 0 {
		// Flash only the first few row problems; the rest would not fit a URL.
		limit := len(result.RowErrors)
		if limit > 3 {
			limit = 3
		}
		msg += " (" + strings.Join(result.RowErrors[:limit], "; ") + ")"
	}
	redirectSuccess(w, r, "/fines/import", msg)
}
