package services

import (
	"fleetdesk/models"

	"gorm.io/gorm"
)

func CreateVehicle(db *gorm.DB, v *models.Vehicle) error {
	v.Plate = models.NormalizePlate(v.Plate)
	if v.Plate == "" || v.MakeModel == "" {
		return ErrEmptyName
	}
	if v.AllowanceKm <= 0 {
		v.AllowanceKm = models.DefaultAllowanceKm
	}
	if err := checkPlateFree(db, v.Plate, 0); err != nil {
		return err
	}
	v.Available = true
	return db.Create(v).Error
}

func UpdateVehicle(db *gorm.DB, v *models.Vehicle) error {
	v.Plate = models.NormalizePlate(v.Plate)
	if v.Plate == "" || v.MakeModel == "" {
		return ErrEmptyName
	}
	if v.AllowanceKm <= 0 {
		v.AllowanceKm = models.DefaultAllowanceKm
	}
	if err := checkPlateFree(db, v.Plate, v.ID); err != nil {
		return err
	}
	return db.Save(v).Error
}

// Plates are stored normalized (upper-cased, trimmed), so a plain equality
// check gives case-insensitive uniqueness.
func checkPlateFree(db *gorm.DB, plate string, excludeID uint) error {
	var n int64
	q := db.Model(&models.Vehicle{}).Where("plate = ?", plate)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicatePlate
	}
	return nil
}

func DeleteVehicle(db *gorm.DB, id uint) error {
	var n int64
	db.Model(&models.Utilization{}).Where("vehicle_id = ?", id).Count(&n)
	if n > 0 {
		return ErrHasDependents
	}
	db.Model(&models.Fine{}).Where("vehicle_id = ?", id).Count(&n)
	if n > 0 {
		return ErrHasDependents
	}
	return db.Delete(&models.Vehicle{}, id).Error
}

func FindVehicleByPlate(db *gorm.DB, plate string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := db.Where("plate = ?", models.NormalizePlate(plate)).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
