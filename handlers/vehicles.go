package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"

	"gorm.io/gorm"
)

type VehicleHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewVehicleHandler(cfg *config.Config, templates map[string]*template.Template) *VehicleHandler {
	return &VehicleHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *VehicleHandler) VehiclesPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var vehicles []models.Vehicle
	database.GetDB().Preload("Company").Order("plate asc").Find(&vehicles)

	var companies []models.Company
	database.GetDB().Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":      user,
		"Vehicles":  vehicles,
		"Companies": companies,
		"Error":     r.URL.Query().Get("error"),
		"Success":   r.URL.Query().Get("success"),
	}
	h.templates["vehicles"].ExecuteTemplate(w, "base", data)
}

func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/vehicles?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	companyID, ok := parseID(r.FormValue("company_id"))
	if !ok {
		http.Redirect(w, r, "/vehicles?error=Select+a+company", http.StatusSeeOther)
		return
	}

	vehicle := models.Vehicle{
		MakeModel: r.FormValue("make_model"),
		Plate:     r.FormValue("plate"),
		Color:     r.FormValue("color"),
		CompanyID: companyID,
	}
	if allowance, err := strconv.Atoi(r.FormValue("allowance_km")); err == nil {
		vehicle.AllowanceKm = allowance
	}
	if lease, err := time.Parse("2006-01-02", r.FormValue("lease_start")); err == nil {
		vehicle.LeaseStart = lease
	}

	if err := services.CreateVehicle(database.GetDB(), &vehicle); err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicatePlate):
			http.Redirect(w, r, "/vehicles?error=Plate+already+registered", http.StatusSeeOther)
		case errors.Is(err, services.ErrEmptyName):
			http.Redirect(w, r, "/vehicles?error=Plate+and+make%2Fmodel+are+required", http.StatusSeeOther)
		default:
			redirectError(w, r, "/vehicles", err.Error())
		}
		return
	}

	http.Redirect(w, r, "/vehicles?success=Vehicle+registered", http.StatusSeeOther)
}

func (h *VehicleHandler) EditVehiclePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/vehicles?error=Invalid+vehicle+ID", http.StatusSeeOther)
		return
	}

	var vehicle models.Vehicle
	if err := database.GetDB().First(&vehicle, id).Error; err != nil {
		http.Redirect(w, r, "/vehicles?error=Vehicle+not+found", http.StatusSeeOther)
		return
	}

	var companies []models.Company
	database.GetDB().Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":      user,
		"Vehicle":   &vehicle,
		"Companies": companies,
		"Error":     r.URL.Query().Get("error"),
	}
	h.templates["vehicle-edit"].ExecuteTemplate(w, "base", data)
}

func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/vehicles?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/vehicles?error=Invalid+vehicle+ID", http.StatusSeeOther)
		return
	}

	var vehicle models.Vehicle
	if err := database.GetDB().First(&vehicle, id).Error; err != nil {
		http.Redirect(w, r, "/vehicles?error=Vehicle+not+found", http.StatusSeeOther)
		return
	}

	vehicle.MakeModel = r.FormValue("make_model")
	vehicle.Plate = r.FormValue("plate")
	vehicle.Color = r.FormValue("color")
	if companyID, ok := parseID(r.FormValue("company_id")); ok {
		vehicle.CompanyID = companyID
	}
	if allowance, err := strconv.Atoi(r.FormValue("allowance_km")); err == nil {
		vehicle.AllowanceKm = allowance
	}
	if lease, err := time.Parse("2006-01-02", r.FormValue("lease_start")); err == nil {
		vehicle.LeaseStart = lease
	}

	if err := services.UpdateVehicle(database.GetDB(), &vehicle); err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicatePlate):
			http.Redirect(w, r, "/vehicles?error=Plate+already+registered", http.StatusSeeOther)
		case errors.Is(err, services.ErrEmptyName):
			http.Redirect(w, r, "/vehicles?error=Plate+and+make%2Fmodel+are+required", http.StatusSeeOther)
		default:
			redirectError(w, r, "/vehicles", err.Error())
		}
		return
	}

	http.Redirect(w, r, "/vehicles?success=Vehicle+updated", http.StatusSeeOther)
}

func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanDeleteRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/vehicles?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/vehicles?error=Invalid+vehicle+ID", http.StatusSeeOther)
		return
	}

	if err := services.DeleteVehicle(database.GetDB(), id); err != nil {
		if errors.Is(err, services.ErrHasDependents) {
			http.Redirect(w, r, "/vehicles?error=Vehicle+has+linked+records+and+cannot+be+deleted", http.StatusSeeOther)
			return
		}
		redirectError(w, r, "/vehicles", err.Error())
		return
	}

	http.Redirect(w, r, "/vehicles?success=Vehicle+deleted", http.StatusSeeOther)
}

// LookupVehicle is the one JSON endpoint: plate -> vehicle row, used by the
// fine form to fill vehicle details client-side.
func (h *VehicleHandler) LookupVehicle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	plate := r.URL.Query().Get("plate")
	if plate == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "plate is required"})
		return
	}

	vehicle, err := services.FindVehicleByPlate(database.GetDB(), plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "vehicle not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(vehicle)
}
