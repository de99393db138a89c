package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// GameConfig holds the server tunables. Values resolve in three layers:
// compiled defaults, an optional JSON file, then per-deployment overrides
// from the runtime environment.
type GameConfig struct {
	StartingHandSize int `json:"starting_hand_size"`
	// UnoPenaltyDelayMs is how long a player on one card has to call UNO
	// before the forced draw lands.
	UnoPenaltyDelayMs int `json:"uno_penalty_delay_ms"`
	BotDelayEasyMs    int `json:"bot_delay_easy_ms"`
	BotDelayMediumMs  int `json:"bot_delay_medium_ms"`
	BotDelayHardMs    int `json:"bot_delay_hard_ms"`
	// RoomIdleMinutes is how long a room survives without any inbound
	// activity before it shuts down.
	RoomIdleMinutes int `json:"room_idle_minutes"`
	// ChatIntervalMs is the minimum gap between chat messages per player.
	ChatIntervalMs int `json:"chat_interval_ms"`
}

func defaults() GameConfig {
	return GameConfig{
		StartingHandSize:  7,
		UnoPenaltyDelayMs: 1500,
		BotDelayEasyMs:    3000,
		BotDelayMediumMs:  1800,
		BotDelayHardMs:    900,
		RoomIdleMinutes:   120,
		ChatIntervalMs:    800,
	}
}

var (
	fileCfg  *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the configuration file from the given path. Missing
// files are reported but leave the compiled defaults in place.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := defaults()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		fileCfg = &c
	})
	return loadErr
}

// Resolve returns the effective configuration for one match: the loaded (or
// default) config with any `uno_*` keys from the runtime environment applied
// on top.
func Resolve(env map[string]string) GameConfig {
	c := defaults()
	if fileCfg != nil {
		c = *fileCfg
	}
	overrideInt(env, "uno_starting_hand_size", &c.StartingHandSize)
	overrideInt(env, "uno_penalty_delay_ms", &c.UnoPenaltyDelayMs)
	overrideInt(env, "uno_bot_delay_easy_ms", &c.BotDelayEasyMs)
	overrideInt(env, "uno_bot_delay_medium_ms", &c.BotDelayMediumMs)
	overrideInt(env, "uno_bot_delay_hard_ms", &c.BotDelayHardMs)
	overrideInt(env, "uno_room_idle_minutes", &c.RoomIdleMinutes)
	overrideInt(env, "uno_chat_interval_ms", &c.ChatIntervalMs)
	return c
}

func overrideInt(env map[string]string, key string, dst *int) {
	raw, ok := env[key]
	if !ok || raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return
	}
	*dst = v
}

// BotDelayMs returns the think delay for a difficulty string, medium when
// unknown.
func (c GameConfig) BotDelayMs(difficulty string) int {
	switch difficulty {
	case "easy":
		return c.BotDelayEasyMs
	case "hard":
		return c.BotDelayHardMs
	default:
		return c.BotDelayMediumMs
	}
}
