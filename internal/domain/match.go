package domain

import "math/rand"

// Match holds the authoritative state of one game inside a room. A room keeps
// the most recent Match around after it ends so late game_over reads and
// rematch votes still have something to look at; Generation distinguishes it
// from any match started later.
type Match struct {
	Generation int64

	// Deck and Discard are stacks: the last element is the top.
	Deck    []Card
	Discard []Card

	Hands map[string][]Card // playerId -> hand

	// ActiveColor/ActiveValue are the legality target for the next play.
	// After a wild they diverge from the literal top discard card.
	ActiveColor Color
	ActiveValue Value

	TurnOrder []string // playerIds, shuffled at start
	Current   int      // index into TurnOrder
	Direction int      // +1 or -1

	FinishOrder []string // playerIds in the order they went out
	UnoFlags    map[string]bool
}

// CurrentPlayer returns the id whose turn it is, or "" when nobody is left.
func (m *Match) CurrentPlayer() string {
	if len(m.TurnOrder) == 0 {
		return ""
	}
	return m.TurnOrder[m.Current]
}

// Advance moves the turn one step in the current direction, wrapping at both
// ends.
func (m *Match) Advance() {
	n := len(m.TurnOrder)
	if n == 0 {
		return
	}
	m.Current = ((m.Current+m.Direction)%n + n) % n
}

// Reverse flips the play direction.
func (m *Match) Reverse() {
	m.Direction = -m.Direction
}

// RemoveFromOrder takes a player out of the rotation and keeps Current
// pointing at the same player when possible. If the removed slot was before
// the current one the index shifts down with it; if the index falls off the
// end it wraps to 0, so the player who slid into the vacated slot acts next.
func (m *Match) RemoveFromOrder(id string) bool {
	idx := -1
	for i, pid := range m.TurnOrder {
		if pid == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	m.TurnOrder = append(m.TurnOrder[:idx], m.TurnOrder[idx+1:]...)
	if idx < m.Current {
		m.Current--
	}
	if m.Current >= len(m.TurnOrder) {
		m.Current = 0
	}
	return true
}

// InOrder reports whether the player is still in the rotation.
func (m *Match) InOrder(id string) bool {
	for _, pid := range m.TurnOrder {
		if pid == id {
			return true
		}
	}
	return false
}

// Draw pops up to n cards off the deck. The deck is replenished eagerly: the
// moment it empties, everything under the discard top is shuffled back in, so
// an empty deck after Draw means the game is genuinely out of cards. Fewer
// than n cards may be returned in that case.
func (m *Match) Draw(rng *rand.Rand, n int) []Card {
	drawn := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		if len(m.Deck) == 0 {
			m.reshuffle(rng)
		}
		if len(m.Deck) == 0 {
			break
		}
		last := len(m.Deck) - 1
		drawn = append(drawn, m.Deck[last])
		m.Deck = m.Deck[:last]
		if len(m.Deck) == 0 {
			m.reshuffle(rng)
		}
	}
	return drawn
}

func (m *Match) reshuffle(rng *rand.Rand) {
	if len(m.Discard) <= 1 {
		return
	}
	top := m.Discard[len(m.Discard)-1]
	m.Deck = append(m.Deck, m.Discard[:len(m.Discard)-1]...)
	rng.Shuffle(len(m.Deck), func(i, j int) {
		m.Deck[i], m.Deck[j] = m.Deck[j], m.Deck[i]
	})
	m.Discard = []Card{top}
}

// TopDiscard returns the face-up discard card.
func (m *Match) TopDiscard() (Card, bool) {
	if len(m.Discard) == 0 {
		return Card{}, false
	}
	return m.Discard[len(m.Discard)-1], true
}

// HandCounts returns the public per-player card counts.
func (m *Match) HandCounts() map[string]int {
	counts := make(map[string]int, len(m.Hands))
	for id, h := range m.Hands {
		counts[id] = len(h)
	}
	return counts
}

// TotalCards counts every card in play: deck, discard and all hands.
func (m *Match) TotalCards() int {
	n := len(m.Deck) + len(m.Discard)
	for _, h := range m.Hands {
		n += len(h)
	}
	return n
}
