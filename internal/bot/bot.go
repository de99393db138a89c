package bot

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"uno/internal/domain"
)

// idPrefix marks bot player ids apart from real user ids everywhere.
const idPrefix = "bot-"

// NewID mints a fresh bot player id.
func NewID() string {
	return idPrefix + uuid.NewString()
}

// IsBot reports whether a player id belongs to a bot.
func IsBot(id string) bool {
	return strings.HasPrefix(id, idPrefix)
}

// Difficulty selects a think-delay tier. Every tier plays the same heuristic;
// a harder bot only answers faster.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes client input, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(s)) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Move represents the decision made by the AI.
type Move struct {
	Draw        bool
	Card        domain.Card
	ChosenColor domain.Color
	CallUno     bool
}

// Brain is the interface all bot strategies implement.
type Brain interface {
	CalculateMove(m *domain.Match, playerID string) (Move, error)
}

// Agent represents an autonomous bot player.
type Agent struct {
	ID         string
	Name       string
	Difficulty Difficulty
	Strategy   Brain
}

// NewAgent builds an agent with the standard heuristic brain.
func NewAgent(id, name string, difficulty Difficulty, rng *rand.Rand) *Agent {
	return &Agent{
		ID:         id,
		Name:       name,
		Difficulty: difficulty,
		Strategy:   NewBrain(rng),
	}
}

// Play asks the agent to calculate its move for the current match state.
func (a *Agent) Play(m *domain.Match) (Move, error) {
	return a.Strategy.CalculateMove(m, a.ID)
}
