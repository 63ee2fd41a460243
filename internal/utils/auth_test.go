package utils

import (
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "pricedesk-secret-1"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not equal the plain password")
	}

	if !CheckPasswordHash(password, hash) {
		t.Error("Correct password should verify")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("Wrong password should not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateToken("admin@pricedesk", "admin", secret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims["sub"] != "admin@pricedesk" {
		t.Errorf("Expected subject admin@pricedesk, got %v", claims["sub"])
	}
	if claims["role"] != "admin" {
		t.Errorf("Expected role admin, got %v", claims["role"])
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("admin@pricedesk", "admin", "secret-a")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ValidateToken(token, "secret-b"); err == nil {
		t.Error("Token signed with a different secret should not validate")
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token", "secret"); err == nil {
		t.Error("Garbage token should not validate")
	}
}
