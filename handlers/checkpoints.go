package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"
)

type CheckpointHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewCheckpointHandler(cfg *config.Config, templates map[string]*template.Template) *CheckpointHandler {
	return &CheckpointHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *CheckpointHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	utilizationID, ok := parseID(r.URL.Query().Get("utilization_id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}

	db := database.GetDB()
	var utilization models.Utilization
	if err := db.Preload("Vehicle").Preload("Driver").First(&utilization, utilizationID).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Utilization+not+found", http.StatusSeeOther)
		return
	}

	// Pre-fill with the previous checkpoint's end reading; the submitter
	// can override it, continuity is not enforced.
	suggestedKm, err := services.SuggestedStartKm(db, &utilization)
	if err != nil {
		suggestedKm = utilization.DeliveryKm
	}

	data := map[string]interface{}{
		"User":         user,
		"Utilization":  &utilization,
		"SuggestedKm":  suggestedKm,
		"CurrentMonth": time.Now().Format("2006-01"),
		"Error":        r.URL.Query().Get("error"),
	}
	h.templates["checkpoint-form"].ExecuteTemplate(w, "base", data)
}

func (h *CheckpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanEditRecords() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	utilizationID, ok := parseID(r.FormValue("utilization_id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+utilization+ID", http.StatusSeeOther)
		return
	}
	back := fmt.Sprintf("/checkpoints/new?utilization_id=%d", utilizationID)

	startKm, errStart := strconv.Atoi(r.FormValue("start_km"))
	endKm, errEnd := strconv.Atoi(r.FormValue("end_km"))
	if errStart != nil || errEnd != nil || startKm < 0 || endKm < 0 {
		http.Redirect(w, r, back+"&error=Invalid+odometer+readings", http.StatusSeeOther)
		return
	}

	checkpoint := models.Checkpoint{
		UtilizationID: utilizationID,
		Month:         r.FormValue("month"),
		StartKm:       startKm,
		EndKm:         endKm,
	}

	if err := services.CreateCheckpoint(database.GetDB(), &checkpoint); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMonth):
			http.Redirect(w, r, back+"&error=Month+must+use+the+YYYY-MM+format", http.StatusSeeOther)
		case errors.Is(err, services.ErrCheckpointKmOrder):
			http.Redirect(w, r, back+"&error=End+reading+below+start+reading", http.StatusSeeOther)
		default:
			redirectError(w, r, back, err.Error())
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/utilizations/edit?id=%d&success=Checkpoint+registered", utilizationID), http.StatusSeeOther)
}

func (h *CheckpointHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/dashboard?error=Invalid+checkpoint+ID", http.StatusSeeOther)
		return
	}

	var checkpoint models.Checkpoint
	if err := database.GetDB().Preload("Utilization").Preload("Utilization.Vehicle").
		First(&checkpoint, id).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Checkpoint+not+found", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User":       user,
		"Checkpoint": &checkpoint,
		"Error":      r.URL.Query().Get("error"),
	}
	h.templates["checkpoint-edit"].ExecuteTemplate(w, "base", data)
}

func (h *CheckpointHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		http.Redirect(w, r, "/dashboard?error=Invalid+checkpoint+ID", http.StatusSeeOther)
		return
	}
	back := fmt.Sprintf("/checkpoints/edit?id=%d", id)

	var checkpoint models.Checkpoint
	if err := database.GetDB().First(&checkpoint, id).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Checkpoint+not+found", http.StatusSeeOther)
		return
	}

	startKm, errStart := strconv.Atoi(r.FormValue("start_km"))
	endKm, errEnd := strconv.Atoi(r.FormValue("end_km"))
	if errStart != nil || errEnd != nil || startKm < 0 || endKm < 0 {
		http.Redirect(w, r, back+"&error=Invalid+odometer+readings", http.StatusSeeOther)
		return
	}

	checkpoint.Month = r.FormValue("month")
	checkpoint.StartKm = startKm
	checkpoint.EndKm = endKm

	if err := services.UpdateCheckpoint(database.GetDB(), &checkpoint); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMonth):
			http.Redirect(w, r, back+"&error=Month+must+use+the+YYYY-MM+format", http.StatusSeeOther)
		case errors.Is(err, services.ErrCheckpointKmOrder):
			http.Redirect(w, r, back+"&error=End+reading+below+start+reading", http.StatusSeeOther)
		default:
			redirectError(w, r, back, err.Error())
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/utilizations/edit?id=%d&success=Checkpoint+updated", checkpoint.UtilizationID), http.StatusSeeOther)
}

func (h *CheckpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		http.Redirect(w, r, "/dashboard?error=Invalid+checkpoint+ID", http.StatusSeeOther)
		return
	}

	var checkpoint models.Checkpoint
	if err := database.GetDB().First(&checkpoint, id).Error; err != nil {
		http.Redirect(w, r, "/dashboard?error=Checkpoint+not+found", http.StatusSeeOther)
		return
	}

	if err := services.DeleteCheckpoint(database.GetDB(), id); err != nil {
		redirectError(w, r, "/dashboard", err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/utilizations/edit?id=%d&success=Checkpoint+deleted", checkpoint.UtilizationID), http.StatusSeeOther)
}
