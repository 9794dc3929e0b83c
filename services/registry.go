package services

import (
	"strings"

	"fleetdesk/models"

	"gorm.io/gorm"
)

// The registries have no database-enforced foreign keys; deletion is
// refused manually while any utilization or fine still references the row.

func CreateCompany(db *gorm.DB, c *models.Company) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrEmptyName
	}
	return db.Create(c).Error
}

func UpdateCompany(db *gorm.DB, c *models.Company) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrEmptyName
	}
	return db.Save(c).Error
}

func DeleteCompany(db *gorm.DB, id uint) error {
	var n int64
	db.Model(&models.Utilization{}).Where("company_id = ?", id).Count(&n)
	if n > 0 {
		return ErrHasDependents
	}
	db.Model(&models.Fine{}).Where("company_id = ?", id).Count(&n)
	if n > 0 {
		return ErrHasDependents
	}
	db.Model(&models.Vehicle{}).Where("company_id = ?", id).Count(&n)
	if n > 0 {
		return ErrHasDependents
	}
	return db.Delete(&models.Company{}, id).Error
}

func DeleteDriver(db *gorm.DB, id uint) error {
	var n int64
	db.Model(&models.Utilization{}).Where("driver_id = ?", id).Count(&n)
	if n > 0 {
		return ErrHasDependents
	}
	db.Model(&models.Fine{}).Where("driver_id = ?", id).Count(&n)
	if n > 0 {
		return ErrHasDependents
	}
	return db.Delete(&models.Driver{}, id).Error
}
