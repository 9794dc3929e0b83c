package handlers

import (
	"html/template"
	"net/http"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/middleware"
	"fleetdesk/models"

	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewAuthHandler(cfg *config.Config, templates map[string]*template.Template) *AuthHandler {
	return &AuthHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Error": r.URL.Query().Get("error"),
	}
	h.templates["login"].ExecuteTemplate(w, "base", data)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	var user models.User
	if err := database.GetDB().Where("username = ?", username).First(&user).Error; err != nil {
		http.Redirect(w, r, "/login?error=Invalid+credentials", http.StatusSeeOther)
		return
	}

	if !user.Active {
		http.Redirect(w, r, "/login?error=Account+is+deactivated", http.StatusSeeOther)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		http.Redirect(w, r, "/login?error=Invalid+credentials", http.StatusSeeOther)
		return
	}

	token, err := middleware.GenerateToken(&user, h.config.JWTExpiration)
	if err != nil {
		http.Redirect(w, r, "/login?error=Failed+to+generate+token", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	if user.MustChangePassword {
		http.Redirect(w, r, "/change-password", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	data := map[string]interface{}{
		"User":  user,
		"Error": r.URL.Query().Get("error"),
	}
	h.templates["change-password"].ExecuteTemplate(w, "base", data)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/change-password?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	// Verify current password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		http.Redirect(w, r, "/change-password?error=Current+password+is+incorrect", http.StatusSeeOther)
		return
	}

	if newPassword != confirmPassword {
		http.Redirect(w, r, "/change-password?error=Passwords+do+not+match", http.StatusSeeOther)
		return
	}

	if len(newPassword) < 5 {
		http.Redirect(w, r, "/change-password?error=Password+must+be+at+least+5+characters", http.StatusSeeOther)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Redirect(w, r, "/change-password?error=Failed+to+hash+password", http.StatusSeeOther)
		return
	}

	user.PasswordHash = string(hashedPassword)
	user.MustChangePassword = false
	if err := database.GetDB().Save(user).Error; err != nil {
		http.Redirect(w, r, "/change-password?error=Failed+to+update+password", http.StatusSeeOther)
		return
	}

	// Regenerate token with updated user info
	token, err := middleware.GenerateToken(user, h.config.JWTExpiration)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
