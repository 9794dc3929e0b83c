package services

import (
	"time"

	"fleetdesk/models"

	"gorm.io/gorm"
)

// Creating a utilization takes the vehicle out of the available pool.
// There is no uniqueness constraint on "one open utilization per vehicle":
// single-writer assumption, last write wins.
func CreateUtilization(db *gorm.DB, u *models.Utilization) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Model(&models.Vehicle{}).Where("id = ?", u.VehicleID).
			Update("available", false).Error
	})
}

// ReturnUtilization records the devolution. The return odometer must not be
// below the delivery reading nor below the most recent checkpoint's end,
// and the return date must not be in the future.
func ReturnUtilization(db *gorm.DB, id uint, returnKm int, returnDate time.Time) error {
	var u models.Utilization
	if err := db.First(&u, id).Error; err != nil {
		return err
	}
	if !u.Open() {
		return ErrAlreadyReturned
	}
	if returnDate.After(time.Now()) {
		return ErrFutureReturnDate
	}
	if returnKm < u.DeliveryKm {
		return ErrReturnKmBelowDelivery
	}
	last, err := LastCheckpoint(db, u.ID)
	if err != nil {
		return err
	}
	if last != nil && returnKm < last.EndKm {
		return ErrReturnKmBelowCheckpoint
	}

	return db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"return_date": returnDate,
			"return_km":   returnKm,
		}
		if err := tx.Model(&u).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Vehicle{}).Where("id = ?", u.VehicleID).
			Update("available", true).Error
	})
}

// UpdateUtilization saves an edited utilization. Re-targeting an open
// utilization to a different vehicle restores the previous vehicle's
// availability and clears the new one's.
func UpdateUtilization(db *gorm.DB, u *models.Utilization, prevVehicleID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		if u.Open() && u.VehicleID != prevVehicleID {
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", prevVehicleID).
				Update("available", true).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", u.VehicleID).
				Update("available", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteUtilization removes the record and its checkpoints; an open
// utilization gives the vehicle back on deletion.
func DeleteUtilization(db *gorm.DB, id uint) error {
	var u models.Utilization
	if err := db.First(&u, id).Error; err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("utilization_id = ?", u.ID).Delete(&models.Checkpoint{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&u).Error; err != nil {
			return err
		}
		if u.Open() {
			return tx.Model(&models.Vehicle{}).Where("id = ?", u.VehicleID).
				Update("available", true).Error
		}
		return nil
	})
}
