package bot

import (
	"math/rand"
	"time"

	"uno/internal/domain"
)

// HeuristicBrain plays a simple tiered preference: action cards first, then
// numbers, plain wilds last, drawing only when nothing is legal. Ties inside
// the preferred tier break uniformly at random.
type HeuristicBrain struct {
	rng *rand.Rand
}

// NewBrain constructs a HeuristicBrain with the provided rng or a time-seeded
// default.
func NewBrain(rng *rand.Rand) *HeuristicBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &HeuristicBrain{rng: rng}
}

func (b *HeuristicBrain) CalculateMove(m *domain.Match, playerID string) (Move, error) {
	hand := m.Hands[playerID]
	if len(hand) == 0 {
		return Move{Draw: true}, nil
	}

	// Announce on two cards so the play down to one is already covered.
	move := Move{CallUno: len(hand) == 2}

	var action, numeric, wilds []int
	for i, c := range hand {
		if !domain.CanPlay(m.ActiveColor, m.ActiveValue, c) {
			continue
		}
		switch {
		case c.IsAction():
			action = append(action, i)
		case c.Value == domain.ValueWild:
			wilds = append(wilds, i)
		default:
			numeric = append(numeric, i)
		}
	}

	pool := action
	if len(pool) == 0 {
		pool = numeric
	}
	if len(pool) == 0 {
		pool = wilds
	}
	if len(pool) == 0 {
		move.Draw = true
		return move, nil
	}

	pick := pool[b.rng.Intn(len(pool))]
	move.Card = hand[pick]
	if move.Card.IsWild() {
		move.ChosenColor = dominantColor(hand, pick)
	}
	return move, nil
}

// dominantColor returns the color occurring most often in the hand after the
// chosen card is gone, with the fixed color priority breaking ties.
func dominantColor(hand []domain.Card, exclude int) domain.Color {
	counts := make(map[domain.Color]int, 4)
	for i, c := range hand {
		if i == exclude || c.IsWild() {
			continue
		}
		counts[c.Color]++
	}
	best := domain.Colors[0]
	bestCount := -1
	for _, col := range domain.Colors {
		if counts[col] > bestCount {
			best = col
			bestCount = counts[col]
		}
	}
	return best
}
