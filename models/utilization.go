package models

import (
	"time"
)

// Utilization is one driver's continuous assignment to a vehicle, bounded
// by the delivery and return events. Return fields are both nil while the
// assignment is open and both set once the vehicle comes back.
type Utilization struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	VehicleID     uint       `gorm:"not null;index" json:"vehicle_id"`
	Vehicle       Vehicle    `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID      uint       `gorm:"not null;index" json:"driver_id"`
	Driver        Driver     `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	CompanyID     uint       `gorm:"not null;index" json:"company_id"`
	Company       Company    `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	DeliveryDate  time.Time  `gorm:"not null;type:date" json:"delivery_date"`
	DeliveryKm    int        `gorm:"not null" json:"delivery_km"`
	ReturnDate    *time.Time `gorm:"type:date" json:"return_date"`
	ReturnKm      *int       `json:"return_km"`
	ChecklistFile string     `gorm:"size:255" json:"checklist_file"`
}

func (u Utilization) Open() bool {
	return u.ReturnDate == nil
}

// KmUsed is zero while the vehicle has not been returned.
func (u Utilization) KmUsed() int {
	if u.ReturnKm == nil {
		return 0
	}
	return *u.ReturnKm - u.DeliveryKm
}

// OverageKm is the mileage driven beyond the allowance, floored at zero.
func (u Utilization) OverageKm(allowanceKm int) int {
	over := u.KmUsed() - allowanceKm
	if over < 0 {
		return 0
	}
	return over
}
