package jwtutil

import (
	"testing"
	"time"

	"estimator-service/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{
		SigningKey:     "test-signing-key",
		ExpirationTime: time.Hour,
	})

	token, err := GenerateToken("staff@example.com", 42, "editor")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.Email != "staff@example.com" {
		t.Fatalf("email = %q, want %q", claims.Email, "staff@example.com")
	}
	if claims.UserID != 42 {
		t.Fatalf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Role != "editor" {
		t.Fatalf("role = %q, want %q", claims.Role, "editor")
	}
}

func TestValidateToken_RejectsWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{
		SigningKey:     "first-key",
		ExpirationTime: time.Hour,
	})
	token, err := GenerateToken("staff@example.com", 42, "editor")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	Initialize(&config.JWTConfig{
		SigningKey:     "second-key",
		ExpirationTime: time.Hour,
	})
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("token signed with a different key should not validate")
	}
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	Initialize(&config.JWTConfig{
		SigningKey:     "test-signing-key",
		ExpirationTime: -time.Minute,
	})

	token, err := GenerateToken("staff@example.com", 42, "editor")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expired token should not validate")
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	Initialize(&config.JWTConfig{
		SigningKey:     "test-signing-key",
		ExpirationTime: time.Hour,
	})

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatal("malformed token should not validate")
	}
}
