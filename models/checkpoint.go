package models

import (
	"time"
)

// Checkpoint is a monthly odometer snapshot subdividing a utilization.
// Month uses the "YYYY-MM" label, which also gives checkpoints their
// chronological order regardless of creation order.
type Checkpoint struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	UtilizationID uint        `gorm:"not null;index" json:"utilization_id"`
	Utilization   Utilization `gorm:"foreignKey:UtilizationID" json:"utilization,omitempty"`
	Month         string      `gorm:"not null;size:7" json:"month"`
	StartKm       int         `gorm:"not null" json:"start_km"`
	EndKm         int         `gorm:"not null" json:"end_km"`
}

func (c Checkpoint) KmUsed() int {
	return c.EndKm - c.StartKm
}

func (c Checkpoint) OverageKm(allowanceKm int) int {
	over := c.KmUsed() - allowanceKm
	if over < 0 {
		return 0
	}
	return over
}
