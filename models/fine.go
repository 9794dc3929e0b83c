package models

import (
	"time"
)

// Fine is a traffic-infraction ledger entry. The driver/vehicle/company
// links are optional and the plate is stored as free text, so a fine can
// outlive (or never match) the registries. RefMonth uses "YYYY-MM".
type Fine struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DriverID        *uint     `gorm:"index" json:"driver_id"`
	Driver          *Driver   `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	VehicleID       *uint     `gorm:"index" json:"vehicle_id"`
	Vehicle         *Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	CompanyID       *uint     `gorm:"index" json:"company_id"`
	Company         *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Plate           string    `gorm:"size:10" json:"plate"`
	CostCenter      string    `gorm:"size:100" json:"cost_center"`
	Unit            string    `gorm:"size:100" json:"unit"`
	Modality        string    `gorm:"size:100" json:"modality"`
	RefMonth        string    `gorm:"size:7" json:"ref_month"`
	Infraction      string    `gorm:"not null;size:255" json:"infraction"`
	Date            time.Time `gorm:"not null;type:date" json:"date"`
	Time            string    `gorm:"size:5" json:"time"`
	Amount          float64   `gorm:"not null" json:"amount"`
	DiscountApplied bool      `gorm:"default:false" json:"discount_applied"`
	HRNotified      bool      `gorm:"default:false" json:"hr_notified"`
	Notes           string    `gorm:"size:500" json:"notes"`
}
