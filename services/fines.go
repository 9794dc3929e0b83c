package services

import (
	"fleetdesk/models"

	"gorm.io/gorm"
)

// RegisterFine inserts a single fine. Referenced registry rows must exist;
// the cost center defaults to the driver's department when the form left it
// blank. The insert runs in a transaction rolled back on any error.
func RegisterFine(db *gorm.DB, f *models.Fine) error {
	if f.DriverID != nil {
		var d models.Driver
		if err := db.First(&d, *f.DriverID).Error; err != nil {
			return err
		}
		if f.CostCenter == "" {
			f.CostCenter = d.Department
		}
	}
	if f.VehicleID != nil {
		var v models.Vehicle
		if err := db.First(&v, *f.VehicleID).Error; err != nil {
			return err
		}
		if f.Plate == "" {
			f.Plate = v.Plate
		}
	}
	if f.CompanyID != nil {
		var c models.Company
		if err := db.First(&c, *f.CompanyID).Error; err != nil {
			return err
		}
	}
	f.Plate = models.NormalizePlate(f.Plate)

	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(f).Error
	})
}

func UpdateFine(db *gorm.DB, f *models.Fine) error {
	f.Plate = models.NormalizePlate(f.Plate)
	return db.Save(f).Error
}

func DeleteFine(db *gorm.DB, id uint) error {
	return db.Delete(&models.Fine{}, id).Error
}
