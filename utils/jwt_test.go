package utils

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func init() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
}

func TestGenerateToken(t *testing.T) {
	userID := uuid.New()
	email := "tokengen@test.com"
	role := "customer"

	token, err := GenerateToken(userID, email, role, nil)
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	if token == "" {
		t.Fatal("expected non-empty token string")
	}

	// Verify the token has three parts (header.payload.signature)
	parts := 0
	for _, c := range token {
		if c == '.' {
			parts++
		}
	}
	if parts != 2 {
		t.Errorf("expected JWT with 2 dots, got %d dots", parts)
	}
}

func TestValidateToken(t *testing.T) {
	userID := uuid.New()
	email := "validate@test.com"
	role := "merchant_owner"
	businessID := uuid.New()

	token, err := GenerateToken(userID, email, role, &businessID)
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("expected no error validating token, got: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != email {
		t.Errorf("expected email %s, got %s", email, claims.Email)
	}
	if claims.Role != role {
		t.Errorf("expected role %s, got %s", role, claims.Role)
	}
	if claims.BusinessID == nil || *claims.BusinessID != businessID {
		t.Errorf("expected business_id %s, got %v", businessID, claims.BusinessID)
	}
	if claims.Issuer != "tiendita-backend" {
		t.Errorf("expected issuer 'tiendita-backend', got %s", claims.Issuer)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := os.Getenv("JWT_SECRET")
	userID := uuid.New()

	claims := Claims{
		UserID: userID,
		Email:  "expired@test.com",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "tiendita-backend",
		},
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expiredToken, err := tokenObj.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}

	_, err = ValidateToken(expiredToken)
	if err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestTokenWithoutBusinessID(t *testing.T) {
	userID := uuid.New()
	email := "nobusiness@test.com"
	role := "customer"

	token, err := GenerateToken(userID, email, role, nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if claims.BusinessID != nil {
		t.Errorf("expected nil business_id, got %v", claims.BusinessID)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "tamper@test.com", "customer", nil)
	if err != nil {
		t.Fatal(err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := ValidateToken(tampered); err == nil {
		t.Fatal("expected error for tampered token, got nil")
	}
}
