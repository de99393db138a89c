package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"uno/internal/registry"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateRoomRequest is the payload for the create_room RPC. Name and avatar
// seed the creator's roster entry when their presence arrives.
type CreateRoomRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// JoinRoomRequest is the payload for the join_room RPC.
type JoinRoomRequest struct {
	Code string `json:"code"`
}

// RoomResponse answers both room RPCs; the client joins the match by id.
type RoomResponse struct {
	Code    string `json:"code"`
	MatchID string `json:"match_id"`
}

// registerRPCs wires the room and voice RPC endpoints.
func registerRPCs(initializer runtime.Initializer, reg *registry.Registry) error {
	if err := initializer.RegisterRpc(RpcCreateRoom, rpcCreateRoom(reg)); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcJoinRoom, rpcJoinRoom(reg)); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVoiceToken, rpcVoiceToken)
}

// rpcCreateRoom reserves a fresh room code, creates the authoritative match
// and binds the code to it. The caller becomes host when they join the match.
func rpcCreateRoom(reg *registry.Registry) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return "", runtime.NewError("authentication required", 16) // UNAUTHENTICATED
		}

		var req CreateRoomRequest
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
			}
		}

		code, err := reg.NewCode()
		if err != nil {
			logger.Error("rpcCreateRoom [User:%s]: Failed to allocate code: %v", userID, err)
			return "", runtime.NewError("could not allocate a room code", 13) // INTERNAL
		}

		params := map[string]interface{}{
			"code":           code,
			"creator_id":     userID,
			"creator_name":   strings.TrimSpace(req.Name),
			"creator_avatar": req.Avatar,
		}
		matchID, err := nk.MatchCreate(ctx, MatchNameUnoRoom, params)
		if err != nil {
			reg.Remove(code)
			logger.Error("rpcCreateRoom [User:%s]: Failed to create match: %v", userID, err)
			return "", runtime.NewError("could not create the room", 13)
		}
		reg.Bind(code, matchID)

		logger.Info("rpcCreateRoom [User:%s]: Created room %s (%s)", userID, code, matchID)
		resp, _ := json.Marshal(RoomResponse{Code: code, MatchID: matchID})
		return string(resp), nil
	}
}

// rpcJoinRoom resolves a room code to its match id. Seating and rejoin rules
// are enforced by the match handler when the client joins.
func rpcJoinRoom(reg *registry.Registry) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return "", runtime.NewError("authentication required", 16)
		}

		var req JoinRoomRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3)
		}
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		if code == "" {
			return "", runtime.NewError("room code is required", 3)
		}

		matchID, ok := reg.Resolve(code)
		if !ok {
			logger.Debug("rpcJoinRoom [User:%s]: Unknown code %s", userID, code)
			return "", runtime.NewError("room code not found", 5) // NOT_FOUND
		}

		resp, _ := json.Marshal(RoomResponse{Code: code, MatchID: matchID})
		return string(resp), nil
	}
}
