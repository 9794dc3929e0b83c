package services

import (
	"errors"
	"testing"

	"fleetdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, username string, admin bool) models.User {
	t.Helper()
	u := models.User{
		Username: username,
		Name:     username,
		IsAdmin:  admin,
		Active:   true,
	}
	if err := CreateUser(db, &u, "segredo1"); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func TestCreateUserHashesPassword(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "maria", false)

	if u.PasswordHash == "segredo1" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestDemoteLastActiveAdminRejected(t *testing.T) {
	db := testDB(t)
	admin := seedUser(t, db, "admin", true)

	admin.IsAdmin = false
	if err := SaveUser(db, &admin); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	var got models.User
	if err := db.First(&got, admin.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.IsAdmin {
		t.Fatalf("rejected demotion must not be persisted")
	}
}

func TestDeactivateLastActiveAdminRejected(t *testing.T) {
	db := testDB(t)
	admin := seedUser(t, db, "admin", true)

	admin.Active = false
	if err := SaveUser(db, &admin); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestDemoteAdminWithBackupAllowed(t *testing.T) {
	db := testDB(t)
	first := seedUser(t, db, "admin", true)
	seedUser(t, db, "backup", true)

	first.IsAdmin = false
	if err := SaveUser(db, &first); err != nil {
		t.Fatalf("demotion with another active admin should pass, got %v", err)
	}
}

func TestDeleteLastActiveAdminRejected(t *testing.T) {
	db := testDB(t)
	admin := seedUser(t, db, "admin", true)
	seedUser(t, db, "comum", false)

	if err := DeleteUser(db, admin.ID); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestDeleteRegularUserAllowed(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "admin", true)
	other := seedUser(t, db, "comum", false)

	if err := DeleteUser(db, other.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	var n int64
	db.Model(&models.User{}).Where("username = ?", "comum").Count(&n)
	if n != 0 {
		t.Fatalf("expected user gone, found %d", n)
	}
}

func TestAdminImpliesAllCapabilities(t *testing.T) {
	u := models.User{IsAdmin: true}
	if !u.CanEditRecords() || !u.CanDeleteRecords() || !u.CanManageAccounts() {
		t.Fatalf("admin flag must imply every capability")
	}

	limited := models.User{CanEdit: true}
	if !limited.CanEditRecords() {
		t.Fatalf("explicit edit flag ignored")
	}
	if limited.CanDeleteRecords() || limited.CanManageAccounts() {
		t.Fatalf("unset flags must not grant capabilities")
	}
}
