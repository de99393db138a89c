package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"uno/internal/app"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/runtime"
)

func injectVoiceService(t *testing.T) {
	t.Helper()
	prev := voiceService
	voiceService = app.NewVoiceService("secret", "issuer", "example.com")
	t.Cleanup(func() { voiceService = prev })
}

func voiceCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, map[string]string{})
	if userID != "" {
		ctx = context.WithValue(ctx, runtime.RUNTIME_CTX_USER_ID, userID)
	}
	return ctx
}

func tokenClaims(t *testing.T, resp string) jwt.MapClaims {
	t.Helper()
	var body VoiceTokenResponse
	if err := json.Unmarshal([]byte(resp), &body); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	token, err := jwt.Parse(body.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte("secret"), nil
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

func TestRpcVoiceTokenLogin(t *testing.T) {
	injectVoiceService(t)

	resp, err := rpcVoiceToken(voiceCtx("user123"), noopLogger{}, nil, nil, `{"action":"login"}`)
	if err != nil {
		t.Fatalf("rpcVoiceToken: %v", err)
	}

	claims := tokenClaims(t, resp)
	if got := claims["iss"]; got != "issuer" {
		t.Fatalf("iss = %v, want issuer", got)
	}
	if got := claims["sub"]; got != "user123" {
		t.Fatalf("sub = %v, want user123", got)
	}
	if got := claims["vxa"]; got != "login" {
		t.Fatalf("vxa = %v, want login", got)
	}
	if got := claims["f"]; got != "sip:.issuer.user123.@example.com" {
		t.Fatalf("f = %v", got)
	}
}

func TestRpcVoiceTokenDefaultsToLogin(t *testing.T) {
	injectVoiceService(t)

	resp, err := rpcVoiceToken(voiceCtx("user123"), noopLogger{}, nil, nil, "")
	if err != nil {
		t.Fatalf("rpcVoiceToken: %v", err)
	}
	if got := tokenClaims(t, resp)["vxa"]; got != "login" {
		t.Fatalf("vxa = %v, want login", got)
	}
}

func TestRpcVoiceTokenJoinTargetsRoomChannel(t *testing.T) {
	injectVoiceService(t)

	resp, err := rpcVoiceToken(voiceCtx("user123"), noopLogger{}, nil, nil, `{"action":"join","channel":"ABC123"}`)
	if err != nil {
		t.Fatalf("rpcVoiceToken: %v", err)
	}
	if got := tokenClaims(t, resp)["t"]; got != "sip:confctl-g-issuer.ABC123@example.com" {
		t.Fatalf("t = %v", got)
	}
}

func TestRpcVoiceTokenJoinWithoutChannelFails(t *testing.T) {
	injectVoiceService(t)

	if _, err := rpcVoiceToken(voiceCtx("user123"), noopLogger{}, nil, nil, `{"action":"join"}`); err == nil {
		t.Fatal("expected an error for a join without a channel")
	}
}

func TestRpcVoiceTokenRequiresAuth(t *testing.T) {
	injectVoiceService(t)

	if _, err := rpcVoiceToken(voiceCtx(""), noopLogger{}, nil, nil, `{"action":"login"}`); err == nil {
		t.Fatal("expected an error without an authenticated user")
	}
}
