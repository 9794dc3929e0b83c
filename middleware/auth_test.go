package middleware

import (
	"testing"
	"time"

	"fleetdesk/models"
)

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	user := &models.User{Username: "maria"}
	user.ID = 42

	token, err := GenerateToken(user, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "maria" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	SetJWTSecret("test-secret")

	user := &models.User{Username: "maria"}
	user.ID = 42

	token, err := GenerateToken(user, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestTamperedSecretRejected(t *testing.T) {
	SetJWTSecret("test-secret")
	user := &models.User{Username: "maria"}
	user.ID = 42

	token, err := GenerateToken(user, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	SetJWTSecret("another-secret")
	defer SetJWTSecret("test-secret")

	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("expected token signed under another secret to be rejected")
	}
}
