package nakama

import (
	"context"
	"database/sql"
	"time"

	"uno/internal/bot"
	"uno/internal/config"
	"uno/internal/registry"

	"github.com/heroiclabs/nakama-common/runtime"
)

// janitorInterval is how often the registry sweeps for leaked room codes.
// Live rooms refresh their entries from the match loop, so only rooms that
// died without cleaning up are ever old enough to sweep.
const janitorInterval = 10 * time.Minute

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Using default game config: %v", err)
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: Using built-in bot identities: %v", err)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := config.Resolve(env)

	reg := registry.New()
	reg.StartJanitor(janitorInterval, time.Duration(cfg.RoomIdleMinutes)*time.Minute)

	if err := registerRPCs(initializer, reg); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameUnoRoom, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(reg), nil
	}); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	logger.Info("UNO room module loaded.")
	return nil
}
