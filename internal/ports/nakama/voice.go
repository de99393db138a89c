package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"uno/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// voiceService is built lazily from the runtime environment. Tests inject
// their own instance.
var voiceService *app.VoiceService

// VoiceTokenRequest is the payload for the voice_token RPC. Channel is the
// room code and is only required for join tokens.
type VoiceTokenRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// VoiceTokenResponse carries the signed access token.
type VoiceTokenResponse struct {
	Token string `json:"token"`
}

// rpcVoiceToken signs a voice access token for the calling user.
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16) // UNAUTHENTICATED
	}

	var req VoiceTokenRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
		}
	}
	if req.Action == "" {
		req.Action = app.VoiceTokenActionLogin
	}

	svc := voiceService
	if svc == nil {
		env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
		secret, issuer, domainName := env["vivox_secret"], env["vivox_issuer"], env["vivox_domain"]
		if secret == "" || issuer == "" || domainName == "" {
			secret, issuer, domainName = "test-secret", "test-issuer", "test.vivox.com"
			logger.Warn("rpcVoiceToken: Vivox credentials missing from env, using test defaults.")
		}
		svc = app.NewVoiceService(secret, issuer, domainName)
		voiceService = svc
	}

	token, err := svc.GenerateToken(userID, req.Action, req.Channel)
	if err != nil {
		logger.Warn("rpcVoiceToken [User:%s]: %v", userID, err)
		return "", runtime.NewError("invalid voice token request", 3)
	}

	resp, _ := json.Marshal(VoiceTokenResponse{Token: token})
	return string(resp), nil
}
