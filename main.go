package main

import (
	"html/template"
	"log"
	"net/http"

	"fleetdesk/config"
	"fleetdesk/database"
	"fleetdesk/handlers"
	"fleetdesk/middleware"
	"fleetdesk/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	if err := database.Init(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Define template functions
	funcMap := template.FuncMap{
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		"derefInt": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
	}

	// Parse templates - each page template paired with base
	templates := make(map[string]*template.Template)
	pages := []string{
		"login", "change-password", "dashboard",
		"companies", "company-edit", "drivers", "driver-edit",
		"vehicles", "vehicle-edit",
		"utilization-form", "utilization-edit", "utilization-return",
		"checkpoint-form", "checkpoint-edit",
		"fines", "fine-form", "fine-edit", "fine-import",
		"report-mileage", "report-fines",
		"users", "user-edit",
	}
	for _, page := range pages {
		templates[page] = template.Must(template.New("").Funcs(funcMap).ParseFiles(
			"templates/base.html",
			"templates/"+page+".html",
		))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, templates)
	companyHandler := handlers.NewCompanyHandler(cfg, templates)
	driverHandler := handlers.NewDriverHandler(cfg, templates)
	vehicleHandler := handlers.NewVehicleHandler(cfg, templates)
	utilizationHandler := handlers.NewUtilizationHandler(cfg, templates)
	checkpointHandler := handlers.NewCheckpointHandler(cfg, templates)
	fineHandler := handlers.NewFineHandler(cfg, templates)
	reportHandler := handlers.NewReportHandler(cfg, templates)
	userHandler := handlers.NewUserHandler(cfg, templates)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		// Logout (doesn't need password change check)
		r.Get("/logout", authHandler.Logout)

		// Password change routes (accessible even when password change required)
		r.Get("/change-password", authHandler.ChangePasswordPage)
		r.Post("/change-password", authHandler.ChangePassword)

		// Routes that require password to be changed first
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePasswordChange)

			// Dashboard
			r.Get("/dashboard", utilizationHandler.Dashboard)

			// Registries
			r.Get("/companies", companyHandler.CompaniesPage)
			r.Post("/companies", companyHandler.CreateCompany)
			r.Get("/companies/edit", companyHandler.EditCompanyPage)
			r.Post("/companies/edit", companyHandler.UpdateCompany)
			r.Post("/companies/delete", companyHandler.DeleteCompany)

			r.Get("/drivers", driverHandler.DriversPage)
			r.Post("/drivers", driverHandler.CreateDriver)
			r.Get("/drivers/edit", driverHandler.EditDriverPage)
			r.Post("/drivers/edit", driverHandler.UpdateDriver)
			r.Post("/drivers/delete", driverHandler.DeleteDriver)

			r.Get("/vehicles", vehicleHandler.VehiclesPage)
			r.Post("/vehicles", vehicleHandler.CreateVehicle)
			r.Get("/vehicles/edit", vehicleHandler.EditVehiclePage)
			r.Post("/vehicles/edit", vehicleHandler.UpdateVehicle)
			r.Post("/vehicles/delete", vehicleHandler.DeleteVehicle)
			r.Get("/api/vehicles/lookup", vehicleHandler.LookupVehicle)

			// Utilizations
			r.Get("/utilizations/new", utilizationHandler.NewPage)
			r.Post("/utilizations/new", utilizationHandler.Create)
			r.Get("/utilizations/edit", utilizationHandler.EditPage)
			r.Post("/utilizations/edit", utilizationHandler.Update)
			r.Get("/utilizations/return", utilizationHandler.ReturnPage)
			r.Post("/utilizations/return", utilizationHandler.Return)
			r.Post("/utilizations/delete", utilizationHandler.Delete)
			r.Post("/utilizations/checklist", utilizationHandler.UploadChecklist)
			r.Get("/utilizations/checklist", utilizationHandler.DownloadChecklist)

			// Monthly checkpoints
			r.Get("/checkpoints/new", checkpointHandler.NewPage)
			r.Post("/checkpoints/new", checkpointHandler.Create)
			r.Get("/checkpoints/edit", checkpointHandler.EditPage)
			r.Post("/checkpoints/edit", checkpointHandler.Update)
			r.Post("/checkpoints/delete", checkpointHandler.Delete)

			// Fines
			r.Get("/fines", fineHandler.FinesPage)
			r.Get("/fines/new", fineHandler.NewPage)
			r.Post("/fines/new", fineHandler.Create)
			r.Get("/fines/edit", fineHandler.EditPage)
			r.Post("/fines/edit", fineHandler.Update)
			r.Post("/fines/delete", fineHandler.Delete)
			r.Get("/fines/import", fineHandler.ImportPage)
			r.Post("/fines/import", fineHandler.Import)

			// Reports
			r.Get("/reports/mileage", reportHandler.MileagePage)
			r.Get("/reports/fines", reportHandler.FinesPage)
			r.Get("/reports/fines/export", reportHandler.ExportFines)

			// User management
			r.Group(func(r chi.Router) {
				r.Use(middleware.Require((*models.User).CanManageAccounts))
				r.Get("/users", userHandler.UsersPage)
				r.Post("/users", userHandler.CreateUser)
				r.Get("/users/edit", userHandler.EditUserPage)
				r.Post("/users/edit", userHandler.UpdateUser)
				r.Post("/users/delete", userHandler.DeleteUser)
			})
		})
	})

	log.Printf("Server starting on port %s", cfg.ServerPort)
	log.Printf("Default admin credentials: admin / admin")
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, router))
}
