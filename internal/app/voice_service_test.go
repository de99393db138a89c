package app

import (
	"fmt"
	"testing"

	"github.com/form3tech-oss/jwt-go"
)

func parseVoiceClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		t.Fatal("token claims invalid")
	}
	return claims
}

func assertClaim(t *testing.T, claims jwt.MapClaims, key, want string) {
	t.Helper()
	got, ok := claims[key].(string)
	if !ok {
		t.Fatalf("claim %q missing or not a string", key)
	}
	if got != want {
		t.Fatalf("claim %q = %q, want %q", key, got, want)
	}
}

func TestGenerateLoginToken(t *testing.T) {
	svc := NewVoiceService("secret", "issuer", "example.com")
	token, err := svc.GenerateToken("user123", VoiceTokenActionLogin, "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims := parseVoiceClaims(t, token, "secret")
	assertClaim(t, claims, "iss", "issuer")
	assertClaim(t, claims, "sub", "user123")
	assertClaim(t, claims, "vxa", "login")
	assertClaim(t, claims, "f", "sip:.issuer.user123.@example.com")
	assertClaim(t, claims, "t", "sip:.issuer.user123.@example.com")
	if _, ok := claims["exp"].(float64); !ok {
		t.Fatal("exp claim missing")
	}
}

func TestGenerateJoinToken(t *testing.T) {
	svc := NewVoiceService("secret", "issuer", "example.com")
	token, err := svc.GenerateToken("user123", VoiceTokenActionJoin, "ABC123")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims := parseVoiceClaims(t, token, "secret")
	assertClaim(t, claims, "vxa", "join")
	assertClaim(t, claims, "f", "sip:.issuer.user123.@example.com")
	assertClaim(t, claims, "t", "sip:confctl-g-issuer.ABC123@example.com")
}

func TestGenerateTokenUniqueIDs(t *testing.T) {
	svc := NewVoiceService("secret", "issuer", "example.com")
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		token, err := svc.GenerateToken("user123", VoiceTokenActionLogin, "")
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		claims := parseVoiceClaims(t, token, "secret")
		vxi, ok := claims["vxi"].(string)
		if !ok || vxi == "" {
			t.Fatal("vxi claim missing")
		}
		if seen[vxi] {
			t.Fatalf("vxi %q repeated", vxi)
		}
		seen[vxi] = true
	}
}

func TestGenerateTokenRejectsBadInput(t *testing.T) {
	svc := NewVoiceService("secret", "issuer", "example.com")

	if _, err := svc.GenerateToken("", VoiceTokenActionLogin, ""); err == nil {
		t.Fatal("expected an error for a missing user")
	}
	if _, err := svc.GenerateToken("user123", VoiceTokenActionJoin, ""); err == nil {
		t.Fatal("expected an error for a join without a channel")
	}
	if _, err := svc.GenerateToken("user123", "mute", ""); err == nil {
		t.Fatal("expected an error for an unsupported action")
	}

	incomplete := NewVoiceService("", "issuer", "example.com")
	if _, err := incomplete.GenerateToken("user123", VoiceTokenActionLogin, ""); err == nil {
		t.Fatal("expected an error for incomplete config")
	}

	var nilSvc *VoiceService
	if _, err := nilSvc.GenerateToken("user123", VoiceTokenActionLogin, ""); err == nil {
		t.Fatal("expected an error from a nil service")
	}
}
