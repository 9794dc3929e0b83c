package services

import (
	"fleetdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func CreateUser(db *gorm.DB, u *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return db.Create(u).Error
}

// SaveUser persists flag or profile changes, refusing any change that would
// leave the system without an active admin.
func SaveUser(db *gorm.DB, u *models.User) error {
	if !u.IsAdmin || !u.Active {
		n, err := activeAdminCount(db, u.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLastAdmin
		}
	}
	return db.Save(u).Error
}

func DeleteUser(db *gorm.DB, id uint) error {
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return err
	}
	if u.IsAdmin && u.Active {
		n, err := activeAdminCount(db, u.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLastAdmin
		}
	}
	return db.Delete(&u).Error
}

func activeAdminCount(db *gorm.DB, excludeID uint) (int64, error) {
	var n int64
	err := db.Model(&models.User{}).
		Where("is_admin = ? AND active = ? AND id <> ?", true, true, excludeID).
		Count(&n).Error
	return n, err
}
