package services

import (
	"fleetdesk/models"

	"gorm.io/gorm"
)

// LastCheckpoint returns the utilization's most recent checkpoint by month
// label (not by creation order), or nil when none exists.
func LastCheckpoint(db *gorm.DB, utilizationID uint) (*models.Checkpoint, error) {
	var cps []models.Checkpoint
	err := db.Where("utilization_id = ?", utilizationID).
		Order("month desc, id desc").Limit(1).Find(&cps).Error
	if err != nil {
		return nil, err
	}
	if len(cps) == 0 {
		return nil, nil
	}
	return &cps[0], nil
}

// SuggestedStartKm pre-fills the new-checkpoint form: the previous
// checkpoint's end reading, or the delivery odometer when the utilization
// has no checkpoints yet. A suggestion only; the stored value is whatever
// the submitter confirms.
func SuggestedStartKm(db *gorm.DB, u *models.Utilization) (int, error) {
	last, err := LastCheckpoint(db, u.ID)
	if err != nil {
		return 0, err
	}
	if last != nil {
		return last.EndKm, nil
	}
	return u.DeliveryKm, nil
}

func CreateCheckpoint(db *gorm.DB, c *models.Checkpoint) error {
	if !ValidMonth(c.Month) {
		return ErrInvalidMonth
	}
	if c.EndKm < c.StartKm {
		return ErrCheckpointKmOrder
	}
	return db.Create(c).Error
}

func UpdateCheckpoint(db *gorm.DB, c *models.Checkpoint) error {
	if !ValidMonth(c.Month) {
		return ErrInvalidMonth
	}
	if c.EndKm < c.StartKm {
		return ErrCheckpointKmOrder
	}
	return db.Save(c).Error
}

func DeleteCheckpoint(db *gorm.DB, id uint) error {
	return db.Delete(&models.Checkpoint{}, id).Error
}
