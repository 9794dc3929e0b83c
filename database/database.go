package database

import (
	"log"

	"fleetdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(dsn string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return err
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	// Seed default admin if not exists
	if err := seedDefaultAdmin(DB); err != nil {
		return err
	}

	return nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.Driver{},
		&models.Vehicle{},
		&models.Utilization{},
		&models.Checkpoint{},
		&models.Fine{},
		&models.User{},
	)
}

func seedDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:           "admin",
		Name:               "Administrator",
		PasswordHash:       string(hashedPassword),
		IsAdmin:            true,
		CanEdit:            true,
		CanDelete:          true,
		CanManageUsers:     true,
		Active:             true,
		MustChangePassword: true,
	}

	if result := db.Create(&admin); result.Error != nil {
		return result.Error
	}

	log.Println("Default admin user created (username: admin, password: admin)")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
