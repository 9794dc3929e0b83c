package models

import (
	"time"
)

type Driver struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `gorm:"not null;size:200" json:"name"`
	Role       string    `gorm:"not null;size:100" json:"role"`
	Department string    `gorm:"not null;size:100" json:"department"`
}
