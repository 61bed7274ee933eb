package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	manager := NewTokenManager("test-secret-test-secret-12345678", time.Hour, "gatherhub")

	token, err := manager.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("Generate returned empty token")
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "alice@example.com" {
		t.Errorf("subject = %q, want alice@example.com", claims.Subject)
	}
	if claims.Issuer != "gatherhub" {
		t.Errorf("issuer = %q, want gatherhub", claims.Issuer)
	}
}

func TestValidate_EmptyToken(t *testing.T) {
	manager := NewTokenManager("test-secret-test-secret-12345678", time.Hour, "gatherhub")

	if _, err := manager.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Validate(\"\") = %v, want ErrMissingToken", err)
	}
	if _, err := manager.Validate("   "); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Validate(blank) = %v, want ErrMissingToken", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one-secret-one-1234567890", time.Hour, "gatherhub")
	verifier := NewTokenManager("secret-two-secret-two-1234567890", time.Hour, "gatherhub")

	token, err := issuer.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestValidate_Expired(t *testing.T) {
	manager := NewTokenManager("test-secret-test-secret-12345678", -time.Minute, "gatherhub")

	token, err := manager.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate expired token = %v, want ErrInvalidToken", err)
	}
}

func TestGenerate_EmptyEmail(t *testing.T) {
	manager := NewTokenManager("test-secret-test-secret-12345678", time.Hour, "gatherhub")

	if _, err := manager.Generate(""); err == nil {
		t.Error("Generate with empty email should fail")
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lowercase scheme", "bearer abc.def.ghi", "abc.def.ghi", false},
		{"empty", "", "", true},
		{"no scheme", "abc.def.ghi", "", true},
		{"wrong scheme", "Basic dXNlcg==", "", true},
		{"extra parts", "Bearer a b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenFromHeader(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Errorf("TokenFromHeader(%q) expected error", tt.header)
				}
				return
			}
			if err != nil {
				t.Fatalf("TokenFromHeader(%q): %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("TokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestMagicLink_Expiry(t *testing.T) {
	link := NewMagicLink("alice@example.com", time.Minute)
	if link.Token == "" {
		t.Fatal("NewMagicLink returned empty token")
	}
	if link.Expired(time.Now()) {
		t.Error("fresh link should not be expired")
	}
	if !link.Expired(time.Now().Add(2 * time.Minute)) {
		t.Error("link should expire after its ttl")
	}
}

func TestMagicLink_URL(t *testing.T) {
	link := MagicLink{Token: "tok-123", Email: "alice@example.com"}
	got := link.URL("https://hub.example.com")
	want := "https://hub.example.com/v1/auth/redeem?token=tok-123"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
