package app

import "uno/internal/domain"

// MinPlayersToStart defines the minimum roster size (humans and bots) required
// to start a game. Keep this centralized so tests or local runs can adjust the
// rule without touching multiple call sites.
const MinPlayersToStart = 2

const (
	// MaxPlayers caps the roster, humans and bots combined.
	MaxPlayers = 8
	// MaxBots caps how many bots the host may seat.
	MaxBots = 3
)

const (
	MinStartingHandSize     = 1
	MaxStartingHandSize     = 12
	DefaultStartingHandSize = 7
)

// UnoPenaltyCardCount is the forced draw for missing the one-card call window.
const UnoPenaltyCardCount = 2

// FallbackWildColor is applied when a wild is played without a usable color
// choice.
const FallbackWildColor = domain.ColorRed
