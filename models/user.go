package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an application login. Capabilities are four independent boolean
// flags rather than a single role; an admin implicitly has all of them.
// At least one active admin must exist at all times (enforced in services).
type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Username           string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Name               string         `gorm:"not null;size:200" json:"name"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	IsAdmin            bool           `gorm:"default:false" json:"is_admin"`
	CanEdit            bool           `gorm:"default:false" json:"can_edit"`
	CanDelete          bool           `gorm:"default:false" json:"can_delete"`
	CanManageUsers     bool           `gorm:"default:false" json:"can_manage_users"`
	Active             bool           `gorm:"default:true" json:"active"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`
}

func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func (u *User) CanEditRecords() bool {
	return u.IsAdmin || u.CanEdit
}

func (u *User) CanDeleteRecords() bool {
	return u.IsAdmin || u.CanDelete
}

func (u *User) CanManageAccounts() bool {
	return u.IsAdmin || u.CanManageUsers
}
