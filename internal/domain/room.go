package domain

// Phase represents the lifecycle stage of a room.
type Phase string

const (
	// PhaseLobby is the pre-game state where the roster can change freely.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active game state.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after a game concludes, before a rematch.
	PhaseEnded Phase = "ended"
)

// Settings are the host-tunable room options.
type Settings struct {
	StartingHandSize int  `json:"starting_hand_size"`
	StackingEnabled  bool `json:"stacking_enabled"`
}

// Player is a roster entry. Bots carry a Difficulty; humans leave it empty.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	IsHost     bool   `json:"is_host"`
	IsBot      bool   `json:"is_bot"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Room holds everything about one room: the roster in join order, the host,
// the current settings and the match in progress (nil before the first
// start). Players are keyed by their persistent id everywhere; connection ids
// never reach this layer.
type Room struct {
	Code     string
	Settings Settings

	Players []*Player // join order
	HostID  string

	Phase    Phase
	Match    *Match
	MatchSeq int64 // generation source; incremented on every start

	RematchVotes map[string]bool
}

// NewRoom creates an empty lobby with the given code and settings.
func NewRoom(code string, settings Settings) *Room {
	return &Room{
		Code:         code,
		Settings:     settings,
		Phase:        PhaseLobby,
		RematchVotes: make(map[string]bool),
	}
}

// FindPlayer returns the roster entry for id, or nil.
func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AddPlayer appends to the roster. The first player in becomes host.
func (r *Room) AddPlayer(p *Player) {
	if len(r.Players) == 0 && r.HostID == "" {
		p.IsHost = true
		r.HostID = p.ID
	}
	r.Players = append(r.Players, p)
}

// RemovePlayer drops id from the roster and returns the removed entry, or
// nil if id was not seated. Host reassignment is the caller's job.
func (r *Room) RemovePlayer(id string) *Player {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			delete(r.RematchVotes, id)
			return p
		}
	}
	return nil
}

// ReassignHost promotes the earliest-joined remaining human, falling back to
// the earliest bot when no human is left (a bots-only room is about to close
// anyway, but the host slot stays filled until it does). Returns the new
// host, or nil for an empty roster.
func (r *Room) ReassignHost() *Player {
	for _, p := range r.Players {
		p.IsHost = false
	}
	r.HostID = ""
	var fallback *Player
	for _, p := range r.Players {
		if !p.IsBot {
			p.IsHost = true
			r.HostID = p.ID
			return p
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback != nil {
		fallback.IsHost = true
		r.HostID = fallback.ID
	}
	return fallback
}

// HumanCount returns the number of seated humans.
func (r *Room) HumanCount() int {
	n := 0
	for _, p := range r.Players {
		if !p.IsBot {
			n++
		}
	}
	return n
}

// BotCount returns the number of seated bots.
func (r *Room) BotCount() int {
	n := 0
	for _, p := range r.Players {
		if p.IsBot {
			n++
		}
	}
	return n
}

// PlayerIDs returns the roster ids in join order.
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// MatchActive reports whether a game is currently being played.
func (r *Room) MatchActive() bool {
	return r.Phase == PhasePlaying && r.Match != nil
}
