package models

import (
	"strings"
	"time"
)

const DefaultAllowanceKm = 2000

type Vehicle struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	MakeModel   string    `gorm:"not null;size:100" json:"make_model"`
	Plate       string    `gorm:"uniqueIndex;not null;size:10" json:"plate"`
	Color       string    `gorm:"not null;size:30" json:"color"`
	AllowanceKm int       `gorm:"not null;default:2000" json:"allowance_km"`
	CompanyID   uint      `gorm:"not null;index" json:"company_id"`
	Company     Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	LeaseStart  time.Time `gorm:"type:date" json:"lease_start"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
}

// NormalizePlate is applied before every store or lookup so plate
// uniqueness holds case-insensitively.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
