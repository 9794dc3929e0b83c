package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"
)

type CompanyHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewCompanyHandler(cfg *config.Config, templates map[string]*template.Template) *CompanyHandler {
	return &CompanyHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *CompanyHandler) CompaniesPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var companies []models.Company
	database.GetDB().Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":      user,
		"Companies": companies,
		"Error":     r.URL.Query().Get("error"),
		"Success":   r.URL.Query().Get("success"),
	}
	h.templates["companies"].ExecuteTemplate(w, "base", data)
}

func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/companies?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	company := models.Company{Name: r.FormValue("name")}
	if err := services.CreateCompany(database.GetDB(), &company); err != nil {
		if errors.Is(err, services.ErrEmptyName) {
			http.Redirect(w, r, "/companies?error=Company+name+must+not+be+empty", http.StatusSeeOther)
			return
		}
		redirectError(w, r, "/companies", err.Error())
		return
	}

	http.Redirect(w, r, "/companies?success=Company+registered", http.StatusSeeOther)
}

func (h *CompanyHandler) EditCompanyPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/companies?error=Invalid+company+ID", http.StatusSeeOther)
		return
	}

	var company models.Company
	if err := database.GetDB().First(&company, id).Error; err != nil {
		http.Redirect(w, r, "/companies?error=Company+not+found", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User":    user,
		"Company": &company,
		"Error":   r.URL.Query().Get("error"),
	}
	h.templates["company-edit"].ExecuteTemplate(w, "base", data)
}

func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/companies?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/companies?error=Invalid+company+ID", http.StatusSeeOther)
		return
	}

	var company models.Company
	if err := database.GetDB().First(&company, id).Error; err != nil {
		http.Redirect(w, r, "/companies?error=Company+not+found", http.StatusSeeOther)
		return
	}

	company.Name = r.FormValue("name")
	if err := services.UpdateCompany(database.GetDB(), &company); err != nil {
		if errors.Is(err, services.ErrEmptyName) {
			http.Redirect(w, r, "/companies?error=Company+name+must+not+be+empty", http.StatusSeeOther)
			return
		}
		redirectError(w, r, "/companies", err.Error())
		return
	}

	http.Redirect(w, r, "/companies?success=Company+updated", http.StatusSeeOther)
}

func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanDeleteRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/companies?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/companies?error=Invalid+company+ID", http.StatusSeeOther)
		return
	}

	if err := services.DeleteCompany(database.GetDB(), id); err != nil {
		if errors.Is(err, services.ErrHasDependents) {
			http.Redirect(w, r, "/companies?error=Company+has+linked+records+and+cannot+be+deleted", http.StatusSeeOther)
			return
		}
		redirectError(w, r, "/companies", err.Error())
		return
	}

	http.Redirect(w, r, "/companies?success=Company+deleted", http.StatusSeeOther)
}
