package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"
)

type DriverHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewDriverHandler(cfg *config.Config, templates map[string]*template.Template) *DriverHandler {
	return &DriverHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *DriverHandler) DriversPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var drivers []models.Driver
	database.GetDB().Order("name asc").Find(&drivers)

	data := map[string]interface{}{
		"User":    user,
		"Drivers": drivers,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["drivers"].ExecuteTemplate(w, "base", data)
}

func (h *DriverHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/drivers?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/drivers?error=Driver+name+must+not+be+empty", http.StatusSeeOther)
		return
	}

	driver := models.Driver{
		Name:       name,
		Role:       r.FormValue("role"),
		Department: r.FormValue("department"),
	}
	if err := database.GetDB().Create(&driver).Error; err != nil {
		redirectError(w, r, "/drivers", err.Error())
		return
	}

	http.Redirect(w, r, "/drivers?success=Driver+registered", http.StatusSeeOther)
}

func (h *DriverHandler) EditDriverPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/drivers?error=Invalid+driver+ID", http.StatusSeeOther)
		return
	}

	var driver models.Driver
	if err := database.GetDB().First(&driver, id).Error; err != nil {
		http.Redirect(w, r, "/drivers?error=Driver+not+found", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User":   user,
		"Driver": &driver,
		"Error":  r.URL.Query().Get("error"),
	}
	h.templates["driver-edit"].ExecuteTemplate(w, "base", data)
}

func (h *DriverHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/drivers?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/drivers?error=Invalid+driver+ID", http.StatusSeeOther)
		return
	}

	var driver models.Driver
	if err := database.GetDB().First(&driver, id).Error; err != nil {
		http.Redirect(w, r, "/drivers?error=Driver+not+found", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/drivers?error=Driver+name+must+not+be+empty", http.StatusSeeOther)
		return
	}

	driver.Name = name
	driver.Role = r.FormValue("role")
	driver.Department = r.FormValue("department")
	if err := database.GetDB().Save(&driver).Error; err != nil {
		redirectError(w, r, "/drivers", err.Error())
		return
	}

	http.Redirect(w, r, "/drivers?success=Driver+updated", http.StatusSeeOther)
}

func (h *DriverHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanDeleteRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/drivers?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/drivers?error=Invalid+driver+ID", http.StatusSeeOther)
		return
	}

	if err := services.DeleteDriver(database.GetDB(), id); err != nil {
		if errors.Is(err, services.ErrHasDependents) {
			http.Redirect(w, r, "/drivers?error=Driver+has+linked+records+and+cannot+be+deleted", http.StatusSeeOther)
			return
		}
		redirectError(w, r, "/drivers", err.Error())
		return
	}

	http.Redirect(w, r, "/drivers?success=Driver+deleted", http.StatusSeeOther)
}
