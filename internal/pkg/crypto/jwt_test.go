package crypto

import (
	"testing"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("U1", "alice@example.com", "admin", "citizen", testSecret, 24)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if claims.UserID != "U1" {
		t.Errorf("UserID = %q, want U1", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
	if claims.Citizenship != "citizen" {
		t.Errorf("Citizenship = %q, want citizen", claims.Citizenship)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("U1", "alice@example.com", "user", "citizen", testSecret, 24)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "a-different-secret"); err == nil {
		t.Fatal("expected an error for a token signed with another secret")
	}
}

func TestParseTokenTampered(t *testing.T) {
	token, err := GenerateToken("U1", "alice@example.com", "user", "citizen", testSecret, 24)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := ParseToken(tampered, testSecret); err == nil {
		t.Fatal("expected an error for a tampered token")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("U1", "alice@example.com", "user", "citizen", testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("expected an error for an expired token")
	}
}
