package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"
	"fleetdesk/services"
)

type UserHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewUserHandler(cfg *config.Config, templates map[string]*template.Template) *UserHandler {
	return &UserHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *UserHandler) UsersPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var users []models.User
	database.GetDB().Order("username asc").Find(&users)

	data := map[string]interface{}{
		"User":    user,
		"Users":   users,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["users"].ExecuteTemplate(w, "base", data)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/users?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if len(username) < 3 {
		http.Redirect(w, r, "/users?error=Username+must+be+at+least+3+characters", http.StatusSeeOther)
		return
	}
	if len(password) < 5 {
		http.Redirect(w, r, "/users?error=Password+must+be+at+least+5+characters", http.StatusSeeOther)
		return
	}

	var existing models.User
	if err := database.GetDB().Where("username = ?", username).First(&existing).Error; err == nil {
		http.Redirect(w, r, "/users?error=Username+already+exists", http.StatusSeeOther)
		return
	}

	newUser := models.User{
		Username:           username,
		Name:               r.FormValue("name"),
		IsAdmin:            r.FormValue("is_admin") == "on",
		CanEdit:            r.FormValue("can_edit") == "on",
		CanDelete:          r.FormValue("can_delete") == "on",
		CanManageUsers:     r.FormValue("can_manage_users") == "on",
		Active:             true,
		MustChangePassword: true,
	}

	if err := services.CreateUser(database.GetDB(), &newUser, password); err != nil {
		redirectError(w, r, "/users", err.Error())
		return
	}

	http.Redirect(w, r, "/users?success=User+created", http.StatusSeeOther)
}

func (h *UserHandler) EditUserPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		http.Redirect(w, r, "/users?error=Invalid+user+ID", http.StatusSeeOther)
		return
	}

	var target models.User
	if err := database.GetDB().First(&target, id).Error; err != nil {
		http.Redirect(w, r, "/users?error=User+not+found", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User":   user,
		"Target": &target,
		"Error":  r.URL.Query().Get("error"),
	}
	h.templates["user-edit"].ExecuteTemplate(w, "base", data)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/users?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/users?error=Invalid+user+ID", http.StatusSeeOther)
		return
	}
	back := fmt.Sprintf("/users/edit?id=%d", id)

	var target models.User
	if err := database.GetDB().First(&target, id).Error; err != nil {
		http.Redirect(w, r, "/users?error=User+not+found", http.StatusSeeOther)
		return
	}

	target.Name = r.FormValue("name")
	target.IsAdmin = r.FormValue("is_admin") == "on"
	target.CanEdit = r.FormValue("can_edit") == "on"
	target.CanDelete = r.FormValue("can_delete") == "on"
	target.CanManageUsers = r.FormValue("can_manage_users") == "on"
	target.Active = r.FormValue("active") == "on"

	if err := services.SaveUser(database.GetDB(), &target); err != nil {
		if errors.Is(err, services.ErrLastAdmin) {
			http.Redirect(w, r, back+"&error=Cannot+remove+the+last+active+admin", http.StatusSeeOther)
			return
		}
		redirectError(w, r, back, err.Error())
		return
	}

	http.Redirect(w, r, "/users?success=User+updated", http.StatusSeeOther)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/users?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, ok := parseID(r.FormValue("id"))
	if !ok {
		http.Redirect(w, r, "/users?error=Invalid+user+ID", http.StatusSeeOther)
		return
	}

	if id == user.ID {
		http.Redirect(w, r, "/users?error=You+cannot+delete+your+own+account", http.StatusSeeOther)
		return
	}

	if err := services.DeleteUser(database.GetDB(), id); err != nil {
		if errors.Is(err, services.ErrLastAdmin) {
			http.Redirect(w, r, "/users?error=Cannot+remove+the+last+active+admin", http.StatusSeeOther)
			return
		}
		redirectError(w, r, "/users", err.Error())
		return
	}

	http.Redirect(w, r, "/users?success=User+deleted", http.StatusSeeOther)
}
