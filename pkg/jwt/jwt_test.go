package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour, "")
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "ann@example.com", "Ann Lee")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.FullName != "Ann Lee" || claims.Email != "ann@example.com" {
		t.Errorf("unexpected identity: %+v", claims)
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour, "")
	verifier := NewManager("secret-b", time.Hour, "")

	token, err := issuer.GenerateAccessToken(uuid.New(), "a@example.com", "A")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if _, err := verifier.ValidateAccessToken(token); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

func TestValidateExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute, "")

	token, err := m.GenerateAccessToken(uuid.New(), "a@example.com", "A")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	_, err = m.ValidateAccessToken(token)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("ValidateAccessToken() error = %v, want ErrExpired", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	m := NewManager("secret", time.Hour, "")
	if _, err := m.ValidateAccessToken("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
