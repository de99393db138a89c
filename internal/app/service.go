package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"uno/internal/domain"
)

// Service contains the room and game use-cases operating on domain state.
// Every entry point mutates the room in place and returns the events the
// caller should dispatch, in order.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNotHost          = errors.New("actor is not the room host")
	ErrNotPlaying       = errors.New("no active match")
	ErrMatchInProgress  = errors.New("match already in progress")
	ErrMatchNotEnded    = errors.New("match not ended")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrCardNotHeld      = errors.New("card not in hand")
	ErrCardNotPlayable  = errors.New("card does not match the active color or value")
	ErrUnknownPlayer    = errors.New("player not found")
	ErrUnknownBot       = errors.New("bot not found")
	ErrUnoNotApplicable = errors.New("uno call does not apply")
	ErrBadSettings      = errors.New("settings out of range")

	ErrTooFewPlayers = errors.New("not enough players to start")
	ErrRoomFull      = errors.New("room is full")
	ErrTooManyBots   = errors.New("bot limit reached")
)

// IsSilent reports whether an action failure should be dropped quietly
// instead of answered with an error message. These are failures a
// well-behaved client never produces (stale turn, card not held) or that
// duplicate and late messages cause naturally.
func IsSilent(err error) bool {
	for _, e := range []error{
		ErrNotHost, ErrNotPlaying, ErrMatchInProgress, ErrMatchNotEnded,
		ErrNotYourTurn, ErrCardNotHeld, ErrCardNotPlayable,
		ErrUnknownPlayer, ErrUnknownBot, ErrUnoNotApplicable, ErrBadSettings,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Join seats a new player. A player already on the roster is treated as a
// reconnect instead.
func (s *Service) Join(room *domain.Room, p *domain.Player) ([]Event, error) {
	if room.FindPlayer(p.ID) != nil {
		return s.Rejoin(room, p.ID)
	}
	if room.MatchActive() {
		return nil, ErrMatchInProgress
	}
	if len(room.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	room.AddPlayer(p)
	return []Event{
		{Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{Player: p}},
		s.lobbyStateEvent(room),
	}, nil
}

// Rejoin emits the catch-up snapshot for a player whose connection came back.
// The roster entry never left, so only the returning player needs state.
func (s *Service) Rejoin(room *domain.Room, playerID string) ([]Event, error) {
	p := room.FindPlayer(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	events := []Event{
		{Kind: EventPlayerRejoined, Payload: PlayerRejoinedPayload{PlayerID: p.ID, Name: p.Name}},
	}
	snap := RejoinStatePayload{Room: s.buildLobbyState(room)}
	if room.Match != nil {
		state := s.buildGameState(room)
		snap.Game = &state
		if hand, ok := room.Match.Hands[playerID]; ok {
			snap.Hand = append([]domain.Card{}, hand...)
		}
	}
	events = append(events, Event{Kind: EventRejoinState, Payload: snap, Recipients: []string{playerID}})
	return events, nil
}

// Leave removes a player for good: roster seat, host role, and any stake in
// the running match. A leaver is ranked at the back of the finish order and
// their cards drop out of play.
func (s *Service) Leave(room *domain.Room, playerID string) ([]Event, error) {
	p := room.RemovePlayer(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	events := []Event{
		{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{PlayerID: p.ID, Name: p.Name}},
	}
	if playerID == room.HostID {
		if h := room.ReassignHost(); h != nil {
			events = append(events, Event{Kind: EventNewHost, Payload: NewHostPayload{HostID: h.ID, Name: h.Name}})
		}
	}
	if room.MatchActive() && room.Match.InOrder(playerID) {
		m := room.Match
		m.FinishOrder = append(m.FinishOrder, playerID)
		delete(m.Hands, playerID)
		delete(m.UnoFlags, playerID)
		m.RemoveFromOrder(playerID)
		if len(m.TurnOrder) <= 1 {
			events = s.endMatch(room, events)
		} else {
			events = append(events, s.gameStateEvent(room))
		}
	}
	events = append(events, s.lobbyStateEvent(room))
	return s.checkRematch(room, events), nil
}

// StartMatch deals a fresh match for the current roster. Host only.
func (s *Service) StartMatch(room *domain.Room, actorID string) ([]Event, error) {
	if room.FindPlayer(actorID) == nil {
		return nil, ErrUnknownPlayer
	}
	if actorID != room.HostID {
		return nil, ErrNotHost
	}
	if room.MatchActive() {
		return nil, ErrMatchInProgress
	}
	if len(room.Players) < MinPlayersToStart {
		return nil, ErrTooFewPlayers
	}
	return s.beginMatch(room), nil
}

// PlayCard validates and applies a play for the player whose turn it is:
// discard, active color/value, card effects, the one-card call window and the
// win check, in that order.
func (s *Service) PlayCard(room *domain.Room, actorID string, card domain.Card, chosen domain.Color) ([]Event, error) {
	if !room.MatchActive() {
		return nil, ErrNotPlaying
	}
	m := room.Match
	if m.CurrentPlayer() != actorID {
		return nil, ErrNotYourTurn
	}
	hand, ok := m.Hands[actorID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if !domain.Holds(hand, card) {
		return nil, ErrCardNotHeld
	}
	if !domain.CanPlay(m.ActiveColor, m.ActiveValue, card) {
		return nil, ErrCardNotPlayable
	}

	hand, _ = domain.RemoveFirst(hand, card)
	m.Hands[actorID] = hand
	m.Discard = append(m.Discard, card)
	m.ActiveValue = card.Value
	text := fmt.Sprintf("%s played %s", s.nameOf(room, actorID), cardLabel(card))
	if card.IsWild() {
		if !domain.ValidColor(chosen) {
			chosen = FallbackWildColor
		}
		m.ActiveColor = chosen
		text += fmt.Sprintf(", chose %s", chosen)
	} else {
		m.ActiveColor = card.Color
	}
	events := []Event{bannerEvent(text)}

	var ended bool
	switch card.Value {
	case domain.ValueSkip:
		m.Advance()
		events = append(events, bannerEvent(fmt.Sprintf("%s is skipped", s.nameOf(room, m.CurrentPlayer()))))
		m.Advance()
	case domain.ValueReverse:
		m.Reverse()
		if len(m.TurnOrder) == 2 {
			// With two players the flipped direction still lands on the
			// opponent, so the reverse acts as a skip.
			m.Advance()
			events = append(events, bannerEvent(fmt.Sprintf("%s is skipped", s.nameOf(room, m.CurrentPlayer()))))
			m.Advance()
		} else {
			m.Advance()
			events = append(events, bannerEvent("Play direction reversed"))
		}
	case domain.ValueDrawTwo:
		m.Advance()
		victim := m.CurrentPlayer()
		events, ended = s.forceDraw(room, victim, 2,
			fmt.Sprintf("%s draws 2 and loses the turn", s.nameOf(room, victim)), events)
		if !ended {
			m.Advance()
		}
	case domain.ValueWildDraw:
		m.Advance()
		victim := m.CurrentPlayer()
		events, ended = s.forceDraw(room, victim, 4,
			fmt.Sprintf("%s draws 4 and loses the turn", s.nameOf(room, victim)), events)
		if !ended {
			m.Advance()
		}
	default:
		m.Advance()
	}
	if ended {
		// The penalty draw ran the deck dry. The actor's hand changed
		// on this play too and still needs its refresh.
		return append(events, s.handEvent(room, actorID)), nil
	}

	switch {
	case len(hand) == 0:
		m.FinishOrder = append(m.FinishOrder, actorID)
		delete(m.Hands, actorID)
		delete(m.UnoFlags, actorID)
		m.RemoveFromOrder(actorID)
		events = append(events, bannerEvent(fmt.Sprintf("%s went out", s.nameOf(room, actorID))))
		if len(m.TurnOrder) <= 1 {
			return s.endMatch(room, events), nil
		}
	case len(hand) == 1:
		// A call made on two cards is spent by this play; without one
		// the penalty clock starts.
		if m.UnoFlags[actorID] {
			delete(m.UnoFlags, actorID)
		} else {
			events = append(events, Event{
				Kind:    EventUnoWindow,
				Payload: UnoWindowPayload{PlayerID: actorID, Generation: m.Generation},
			})
		}
		events = append(events, s.handEvent(room, actorID))
	default:
		delete(m.UnoFlags, actorID)
		events = append(events, s.handEvent(room, actorID))
	}

	events = append(events, s.gameStateEvent(room))
	return events, nil
}

// DrawCard draws a single card for the player whose turn it is and passes the
// turn. The drawn card is never auto-played.
func (s *Service) DrawCard(room *domain.Room, actorID string) ([]Event, error) {
	if !room.MatchActive() {
		return nil, ErrNotPlaying
	}
	m := room.Match
	if m.CurrentPlayer() != actorID {
		return nil, ErrNotYourTurn
	}
	cards := m.Draw(s.rng, 1)
	if len(cards) == 0 {
		events := []Event{bannerEvent("The deck is exhausted")}
		return s.endMatch(room, events), nil
	}
	m.Hands[actorID] = append(m.Hands[actorID], cards...)
	delete(m.UnoFlags, actorID)
	m.Advance()
	return []Event{
		bannerEvent(fmt.Sprintf("%s drew a card", s.nameOf(room, actorID))),
		s.handEvent(room, actorID),
		s.gameStateEvent(room),
	}, nil
}

// CallUno flags the caller. Valid on one card (inside the window) or on two
// (declaring before the play). Duplicate calls are accepted and ignored.
func (s *Service) CallUno(room *domain.Room, actorID string) ([]Event, error) {
	if !room.MatchActive() {
		return nil, ErrNotPlaying
	}
	m := room.Match
	hand, ok := m.Hands[actorID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if len(hand) != 1 && len(hand) != 2 {
		return nil, ErrUnoNotApplicable
	}
	if m.UnoFlags[actorID] {
		return nil, nil
	}
	m.UnoFlags[actorID] = true
	return []Event{
		bannerEvent(fmt.Sprintf("%s called UNO!", s.nameOf(room, actorID))),
		s.gameStateEvent(room),
	}, nil
}

// ApplyUnoPenalty runs the deferred missed-call check. The schedule is only a
// hint: the penalty applies solely when the same match is still running and
// the player still sits on one unflagged card.
func (s *Service) ApplyUnoPenalty(room *domain.Room, playerID string, generation int64) []Event {
	if !room.MatchActive() {
		return nil
	}
	m := room.Match
	if m.Generation != generation || m.UnoFlags[playerID] {
		return nil
	}
	hand, ok := m.Hands[playerID]
	if !ok || len(hand) != 1 {
		return nil
	}
	text := fmt.Sprintf("%s forgot to call UNO and draws %d", s.nameOf(room, playerID), UnoPenaltyCardCount)
	events, ended := s.forceDraw(room, playerID, UnoPenaltyCardCount, text, nil)
	if ended {
		return events
	}
	return append(events, s.gameStateEvent(room))
}

// VoteRematch records a rematch vote. Once every seated human has voted and
// the roster is still big enough, a fresh match starts immediately.
func (s *Service) VoteRematch(room *domain.Room, actorID string) ([]Event, error) {
	if room.Phase != domain.PhaseEnded {
		return nil, ErrMatchNotEnded
	}
	p := room.FindPlayer(actorID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if room.RematchVotes[actorID] {
		return nil, nil
	}
	room.RematchVotes[actorID] = true
	events := []Event{
		bannerEvent(fmt.Sprintf("%s wants a rematch", p.Name)),
		s.rematchStateEvent(room),
	}
	return s.checkRematch(room, events), nil
}

// UpdateSettings replaces the room settings. Host only, never mid-match.
func (s *Service) UpdateSettings(room *domain.Room, actorID string, settings domain.Settings) ([]Event, error) {
	if actorID != room.HostID {
		return nil, ErrNotHost
	}
	if room.MatchActive() {
		return nil, ErrMatchInProgress
	}
	if settings.StartingHandSize < MinStartingHandSize || settings.StartingHandSize > MaxStartingHandSize {
		return nil, ErrBadSettings
	}
	room.Settings = settings
	return []Event{
		{Kind: EventSettingsUpdated, Payload: SettingsUpdatedPayload{Settings: settings}},
	}, nil
}

// AddBot seats a bot built by the caller. Host only, never mid-match.
func (s *Service) AddBot(room *domain.Room, actorID string, b *domain.Player) ([]Event, error) {
	if actorID != room.HostID {
		return nil, ErrNotHost
	}
	if room.MatchActive() {
		return nil, ErrMatchInProgress
	}
	if len(room.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if room.BotCount() >= MaxBots {
		return nil, ErrTooManyBots
	}
	b.IsBot = true
	room.AddPlayer(b)
	events := []Event{
		{Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{Player: b}},
		s.lobbyStateEvent(room),
	}
	return s.checkRematch(room, events), nil
}

// RemoveBot unseats a bot. Host only, never mid-match.
func (s *Service) RemoveBot(room *domain.Room, actorID, botID string) ([]Event, error) {
	if actorID != room.HostID {
		return nil, ErrNotHost
	}
	if room.MatchActive() {
		return nil, ErrMatchInProgress
	}
	p := room.FindPlayer(botID)
	if p == nil || !p.IsBot {
		return nil, ErrUnknownBot
	}
	room.RemovePlayer(botID)
	return []Event{
		{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{PlayerID: p.ID, Name: p.Name}},
		s.lobbyStateEvent(room),
	}, nil
}

// beginMatch shuffles, deals and flips the starting card for the current
// roster. Callers have already validated the roster.
func (s *Service) beginMatch(room *domain.Room) []Event {
	room.MatchSeq++
	order := room.PlayerIDs()
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	deck := domain.BuildDeck()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	m := &domain.Match{
		Generation: room.MatchSeq,
		Deck:       deck,
		Hands:      make(map[string][]domain.Card, len(order)),
		TurnOrder:  order,
		Direction:  1,
		UnoFlags:   make(map[string]bool),
	}

	handSize := room.Settings.StartingHandSize
	if handSize < MinStartingHandSize || handSize > MaxStartingHandSize {
		handSize = DefaultStartingHandSize
	}
	for _, id := range order {
		m.Hands[id] = m.Draw(s.rng, handSize)
	}

	for {
		card := m.Draw(s.rng, 1)[0]
		if !card.IsWild() {
			m.Discard = append(m.Discard, card)
			m.ActiveColor = card.Color
			m.ActiveValue = card.Value
			break
		}
		// Wilds cannot open the game; cycle them to the bottom.
		m.Deck = append([]domain.Card{card}, m.Deck...)
	}

	// A starting skip or draw2 costs the opening player their turn. A single
	// advance, not the double one a played skip causes.
	var opening []Event
	switch m.ActiveValue {
	case domain.ValueSkip:
		skipped := m.CurrentPlayer()
		m.Advance()
		opening = append(opening, bannerEvent(fmt.Sprintf("%s is skipped", s.nameOf(room, skipped))))
	case domain.ValueDrawTwo:
		victim := m.CurrentPlayer()
		m.Hands[victim] = append(m.Hands[victim], m.Draw(s.rng, 2)...)
		m.Advance()
		opening = append(opening, bannerEvent(fmt.Sprintf("%s draws 2 and loses the turn", s.nameOf(room, victim))))
	}

	room.Match = m
	room.Phase = domain.PhasePlaying
	room.RematchVotes = make(map[string]bool)

	state := s.buildGameState(room)
	events := make([]Event, 0, len(order)+3)
	for _, id := range order {
		events = append(events, Event{
			Kind:       EventGameStart,
			Payload:    GameStartPayload{Hand: append([]domain.Card{}, m.Hands[id]...), State: state},
			Recipients: []string{id},
		})
	}
	events = append(events, opening...)
	events = append(events, bannerEvent(fmt.Sprintf("%s goes first", s.nameOf(room, m.CurrentPlayer()))))
	return events
}

// endMatch ranks everyone still in the rotation by ascending hand size (ties
// keep their rotation order), closes the match and emits the final events.
func (s *Service) endMatch(room *domain.Room, events []Event) []Event {
	m := room.Match
	remaining := append([]string{}, m.TurnOrder...)
	sort.SliceStable(remaining, func(i, j int) bool {
		return len(m.Hands[remaining[i]]) < len(m.Hands[remaining[j]])
	})
	m.FinishOrder = append(m.FinishOrder, remaining...)
	room.Phase = domain.PhaseEnded

	winner := ""
	if len(m.FinishOrder) > 0 {
		winner = m.FinishOrder[0]
	}
	return append(events,
		bannerEvent(fmt.Sprintf("Game over! %s wins", s.nameOf(room, winner))),
		Event{Kind: EventGameOver, Payload: GameOverPayload{
			Winner:      winner,
			FinishOrder: append([]string{}, m.FinishOrder...),
		}},
		s.gameStateEvent(room),
	)
}

// forceDraw pushes cards into a hand outside the normal turn flow. A short
// draw means even the reshuffled deck ran dry, which ends the match.
func (s *Service) forceDraw(room *domain.Room, playerID string, n int, text string, events []Event) ([]Event, bool) {
	m := room.Match
	cards := m.Draw(s.rng, n)
	m.Hands[playerID] = append(m.Hands[playerID], cards...)
	if len(m.Hands[playerID]) != 1 {
		delete(m.UnoFlags, playerID)
	}
	events = append(events, bannerEvent(text), s.handEvent(room, playerID))
	if len(cards) < n {
		return s.endMatch(room, events), true
	}
	return events, false
}

func (s *Service) checkRematch(room *domain.Room, events []Event) []Event {
	if !rematchReady(room) {
		return events
	}
	return append(events, s.beginMatch(room)...)
}

func rematchReady(room *domain.Room) bool {
	if room.Phase != domain.PhaseEnded || len(room.Players) < MinPlayersToStart {
		return false
	}
	humans := 0
	for _, p := range room.Players {
		if p.IsBot {
			continue
		}
		humans++
		if !room.RematchVotes[p.ID] {
			return false
		}
	}
	return humans > 0
}

func (s *Service) buildGameState(room *domain.Room) GameStatePayload {
	m := room.Match
	flags := make(map[string]bool, len(m.UnoFlags))
	for id, v := range m.UnoFlags {
		flags[id] = v
	}
	state := GameStatePayload{
		Generation:    m.Generation,
		TurnOrder:     append([]string{}, m.TurnOrder...),
		CurrentPlayer: m.CurrentPlayer(),
		Direction:     m.Direction,
		ActiveColor:   m.ActiveColor,
		ActiveValue:   m.ActiveValue,
		DeckCount:     len(m.Deck),
		HandCounts:    m.HandCounts(),
		FinishOrder:   append([]string{}, m.FinishOrder...),
		UnoFlags:      flags,
	}
	if top, ok := m.TopDiscard(); ok {
		state.TopDiscard = &top
	}
	return state
}

func (s *Service) buildLobbyState(room *domain.Room) LobbyStatePayload {
	return LobbyStatePayload{
		Code:     room.Code,
		Phase:    room.Phase,
		HostID:   room.HostID,
		Players:  append([]*domain.Player{}, room.Players...),
		Settings: room.Settings,
	}
}

func (s *Service) gameStateEvent(room *domain.Room) Event {
	return Event{Kind: EventGameState, Payload: s.buildGameState(room)}
}

func (s *Service) lobbyStateEvent(room *domain.Room) Event {
	return Event{Kind: EventLobbyState, Payload: s.buildLobbyState(room)}
}

func (s *Service) rematchStateEvent(room *domain.Room) Event {
	votes := make([]string, 0, len(room.RematchVotes))
	for id := range room.RematchVotes {
		votes = append(votes, id)
	}
	sort.Strings(votes)
	return Event{Kind: EventRematchState, Payload: RematchStatePayload{
		Votes:  votes,
		Needed: room.HumanCount(),
	}}
}

func (s *Service) handEvent(room *domain.Room, playerID string) Event {
	hand := append([]domain.Card{}, room.Match.Hands[playerID]...)
	return Event{Kind: EventYourHand, Payload: YourHandPayload{Hand: hand}, Recipients: []string{playerID}}
}

func (s *Service) nameOf(room *domain.Room, id string) string {
	if p := room.FindPlayer(id); p != nil {
		return p.Name
	}
	return id
}

func bannerEvent(text string) Event {
	return Event{Kind: EventActionBanner, Payload: ActionBannerPayload{Text: text}}
}

func cardLabel(c domain.Card) string {
	switch c.Value {
	case domain.ValueWild:
		return "wild"
	case domain.ValueWildDraw:
		return "wild draw 4"
	case domain.ValueDrawTwo:
		return fmt.Sprintf("%s draw 2", c.Color)
	default:
		return fmt.Sprintf("%s %s", c.Color, c.Value)
	}
}
