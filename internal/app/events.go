package app

import "uno/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventLobbyState      EventKind = "lobby_state"
	EventPlayerJoined    EventKind = "player_joined"
	EventPlayerLeft      EventKind = "player_left"
	EventPlayerRejoined  EventKind = "player_rejoined"
	EventNewHost         EventKind = "new_host"
	EventSettingsUpdated EventKind = "settings_updated"
	EventGameStart       EventKind = "game_start"
	EventGameState       EventKind = "game_state"
	EventYourHand        EventKind = "your_hand"
	EventActionBanner    EventKind = "action_banner"
	EventGameOver        EventKind = "game_over"
	EventRematchState    EventKind = "rematch_state"
	EventRejoinState     EventKind = "rejoin_state"

	// EventUnoWindow never reaches clients. It tells the match runner to
	// schedule the missed-call penalty check for a player who just went
	// down to one card without flagging.
	EventUnoWindow EventKind = "uno_window"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

// LobbyStatePayload is the full public room snapshot.
type LobbyStatePayload struct {
	Code     string           `json:"code"`
	Phase    domain.Phase     `json:"phase"`
	HostID   string           `json:"host_id"`
	Players  []*domain.Player `json:"players"`
	Settings domain.Settings  `json:"settings"`
}

type PlayerJoinedPayload struct {
	Player *domain.Player `json:"player"`
}

// PlayerLeftPayload announces a departure. Disconnected marks a dropped
// connection whose seat is being held for a reconnect, as opposed to a player
// who is gone for good.
type PlayerLeftPayload struct {
	PlayerID     string `json:"player_id"`
	Name         string `json:"name"`
	Disconnected bool   `json:"disconnected,omitempty"`
}

type PlayerRejoinedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type NewHostPayload struct {
	HostID string `json:"host_id"`
	Name   string `json:"name"`
}

type SettingsUpdatedPayload struct {
	Settings domain.Settings `json:"settings"`
}

// GameStatePayload is the public projection of a match: everything except the
// contents of hands.
type GameStatePayload struct {
	Generation    int64           `json:"generation"`
	TurnOrder     []string        `json:"turn_order"`
	CurrentPlayer string          `json:"current_player"`
	Direction     int             `json:"direction"`
	ActiveColor   domain.Color    `json:"active_color"`
	ActiveValue   domain.Value    `json:"active_value"`
	TopDiscard    *domain.Card    `json:"top_discard,omitempty"`
	DeckCount     int             `json:"deck_count"`
	HandCounts    map[string]int  `json:"hand_counts"`
	FinishOrder   []string        `json:"finish_order"`
	UnoFlags      map[string]bool `json:"uno_flags"`
}

// GameStartPayload is personalized per player: own hand plus public state.
type GameStartPayload struct {
	Hand  []domain.Card    `json:"hand"`
	State GameStatePayload `json:"state"`
}

type YourHandPayload struct {
	Hand []domain.Card `json:"hand"`
}

type ActionBannerPayload struct {
	Text string `json:"text"`
}

type GameOverPayload struct {
	Winner      string   `json:"winner"`
	FinishOrder []string `json:"finish_order"`
}

type RematchStatePayload struct {
	Votes  []string `json:"votes"`
	Needed int      `json:"needed"`
}

// RejoinStatePayload is the private catch-up snapshot for a returning player.
// Game and Hand are nil outside an active match.
type RejoinStatePayload struct {
	Room LobbyStatePayload `json:"room"`
	Game *GameStatePayload `json:"game,omitempty"`
	Hand []domain.Card     `json:"hand,omitempty"`
}

// UnoWindowPayload is internal; see EventUnoWindow.
type UnoWindowPayload struct {
	PlayerID   string
	Generation int64
}
