package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"uno/internal/app"
	"uno/internal/bot"
	"uno/internal/config"
	"uno/internal/domain"
	"uno/internal/registry"

	"github.com/heroiclabs/nakama-common/runtime"
)

// matchTickRate is the loop frequency in ticks per second. All deferred work
// is stamped in ticks at this rate.
const matchTickRate = 10

// registryTouchTicks is how often a live match refreshes its registry entry.
const registryTouchTicks = 60 * matchTickRate

// msToTicks converts a millisecond delay to a tick count, at least one tick.
func msToTicks(ms int) int64 {
	t := int64(ms) * matchTickRate / 1000
	if t < 1 {
		t = 1
	}
	return t
}

// botPlan is the pending think-delay for the bot currently on turn. The plan
// is only a hint: it is re-validated against generation and turn holder when
// it fires, so plans staled by a faster human action dissolve into no-ops.
type botPlan struct {
	BotID      string `json:"bot_id"`
	Generation int64  `json:"generation"`
	DueTick    int64  `json:"due_tick"`
}

// penaltyCheck is a deferred missed-UNO-call check. Validation happens at
// fire time in the app layer; a stale check is a no-op.
type penaltyCheck struct {
	PlayerID   string `json:"player_id"`
	Generation int64  `json:"generation"`
	DueTick    int64  `json:"due_tick"`
}

// joinProfile carries the display identity a client staged during its join
// attempt, consumed when the presence lands in MatchJoin.
type joinProfile struct {
	Name   string
	Avatar string
}

// MatchState holds the authoritative runtime state for one room.
type MatchState struct {
	Room *domain.Room      `json:"room"`
	App  *app.Service      `json:"-"`
	Cfg  config.GameConfig `json:"-"`

	Tick           int64 `json:"tick"`
	LastActiveTick int64 `json:"last_active_tick"`

	Presences map[string]runtime.Presence `json:"-"` // user id -> live connection
	Sessions  map[string]string           `json:"-"` // session id -> user id
	JoinMeta  map[string]joinProfile      `json:"-"`

	Bots map[string]*bot.Agent `json:"-"`

	BotPlan   *botPlan       `json:"bot_plan,omitempty"`
	Penalties []penaltyCheck `json:"penalties,omitempty"`

	Voice        map[string]bool  `json:"-"` // session id -> in the voice channel
	LastChatTick map[string]int64 `json:"-"`
}

// matchLabel is the JSON advertisement kept current on the match listing.
type matchLabel struct {
	Game  string `json:"game"`
	Code  string `json:"code"`
	Open  int    `json:"open"`
	Phase string `json:"phase"`
}

type matchHandler struct {
	reg *registry.Registry
}

func newMatchHandler(reg *registry.Registry) *matchHandler {
	return &matchHandler{reg: reg}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	code, _ := params["code"].(string)
	if code == "" {
		logger.Error("MatchInit: Missing room code in params.")
		return nil, 0, ""
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := config.Resolve(env)

	room := domain.NewRoom(code, domain.Settings{StartingHandSize: cfg.StartingHandSize})
	state := &MatchState{
		Room:         room,
		App:          app.NewService(nil),
		Cfg:          cfg,
		Presences:    make(map[string]runtime.Presence),
		Sessions:     make(map[string]string),
		JoinMeta:     make(map[string]joinProfile),
		Bots:         make(map[string]*bot.Agent),
		Voice:        make(map[string]bool),
		LastChatTick: make(map[string]int64),
	}

	// The creator's display identity travels in the match params so their
	// join lands with a name even when the client sends no join metadata.
	if creatorID, _ := params["creator_id"].(string); creatorID != "" {
		name, _ := params["creator_name"].(string)
		avatar, _ := params["creator_avatar"].(string)
		state.JoinMeta[creatorID] = joinProfile{Name: name, Avatar: avatar}
	}

	logger.Debug("MatchInit: Room %s initialized.", code)
	return state, matchTickRate, mh.labelFor(state, logger)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	uid := presence.GetUserId()
	seated := matchState.Room.FindPlayer(uid) != nil

	if !seated {
		if matchState.Room.MatchActive() {
			return matchState, false, app.ErrMatchInProgress.Error()
		}
		if len(matchState.Room.Players) >= app.MaxPlayers {
			return matchState, false, app.ErrRoomFull.Error()
		}
	}

	if name, ok := metadata["name"]; ok && name != "" {
		matchState.JoinMeta[uid] = joinProfile{Name: name, Avatar: metadata["avatar"]}
	}

	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	matchState.Tick = tick
	matchState.LastActiveTick = tick

	for _, p := range presences {
		uid := p.GetUserId()
		matchState.Presences[uid] = p
		matchState.Sessions[p.GetSessionId()] = uid

		var events []app.Event
		var err error
		if matchState.Room.FindPlayer(uid) != nil {
			events, err = matchState.App.Rejoin(matchState.Room, uid)
			logger.Info("MatchJoin: User %s reconnected to room %s.", uid, matchState.Room.Code)
		} else {
			profile := matchState.JoinMeta[uid]
			if profile.Name == "" {
				profile.Name = p.GetUsername()
			}
			events, err = matchState.App.Join(matchState.Room, &domain.Player{
				ID:     uid,
				Name:   profile.Name,
				Avatar: profile.Avatar,
			})
			logger.Info("MatchJoin: User %s joined room %s.", uid, matchState.Room.Code)
		}
		delete(matchState.JoinMeta, uid)
		if err != nil {
			// The room filled or went active between the approved attempt
			// and this join. Tell the client and drop the unseated
			// connection.
			logger.Warn("MatchJoin: User %s could not be seated: %v", uid, err)
			mh.sendError(matchState, dispatcher, logger, uid, err.Error())
			if matchState.Room.FindPlayer(uid) == nil {
				delete(matchState.Sessions, p.GetSessionId())
				delete(matchState.Presences, uid)
				if kickErr := dispatcher.MatchKick([]runtime.Presence{p}); kickErr != nil {
					logger.Error("MatchJoin: Failed to kick %s: %v", uid, kickErr)
				}
			}
			continue
		}
		mh.dispatchEvents(matchState, dispatcher, logger, events)
	}

	if mh.reg != nil {
		mh.reg.Touch(matchState.Room.Code)
	}
	return matchState
}

// MatchLeave is called when one or more presences drop out of the match. A
// deliberate leave removes the player; a mid-game socket drop keeps the seat
// so the player can reconnect into the running match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	matchState.Tick = tick

	for _, p := range presences {
		uid := p.GetUserId()
		sid := p.GetSessionId()

		delete(matchState.Sessions, sid)
		if matchState.Voice[sid] {
			delete(matchState.Voice, sid)
			mh.broadcastVoiceRoster(matchState, dispatcher, logger)
		}
		// A fresh session may already have replaced this one.
		if current, ok := matchState.Presences[uid]; ok && current.GetSessionId() == sid {
			delete(matchState.Presences, uid)
		}

		player := matchState.Room.FindPlayer(uid)
		if player == nil {
			continue
		}

		if p.GetReason() == runtime.PresenceReasonDisconnect && matchState.Room.MatchActive() && matchState.Room.Match.InOrder(uid) {
			// Seat survives the dropped socket; only the connection is gone.
			logger.Info("MatchLeave: User %s disconnected from room %s, holding seat.", uid, matchState.Room.Code)
			mh.dispatchEvents(matchState, dispatcher, logger, []app.Event{{
				Kind:    app.EventPlayerLeft,
				Payload: app.PlayerLeftPayload{PlayerID: uid, Name: player.Name, Disconnected: true},
			}})
			continue
		}

		events, err := matchState.App.Leave(matchState.Room, uid)
		if err != nil {
			logger.Warn("MatchLeave: User %s could not be removed: %v", uid, err)
			continue
		}
		logger.Info("MatchLeave: User %s left room %s.", uid, matchState.Room.Code)
		mh.dispatchEvents(matchState, dispatcher, logger, events)
	}

	if matchState.Room.HumanCount() == 0 {
		logger.Info("MatchLeave: Room %s has no humans left, closing.", matchState.Room.Code)
		mh.retire(matchState)
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		matchState.LastActiveTick = tick
		mh.handleMessage(matchState, dispatcher, logger, msg)
	}

	mh.firePenalties(matchState, dispatcher, logger)
	mh.ensureBotPlan(matchState)
	mh.fireBotPlan(matchState, dispatcher, logger)

	if mh.reg != nil && tick%registryTouchTicks == 0 {
		mh.reg.Touch(matchState.Room.Code)
	}

	idleTicks := int64(matchState.Cfg.RoomIdleMinutes) * 60 * matchTickRate
	if tick-matchState.LastActiveTick >= idleTicks {
		logger.Info("MatchLoop: Room %s idle for %d minutes, closing.", matchState.Room.Code, matchState.Cfg.RoomIdleMinutes)
		mh.retire(matchState)
		return nil
	}

	return matchState
}

func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	switch msg.GetOpCode() {
	case OpStartGame:
		mh.handleStartGame(state, dispatcher, logger, msg)
	case OpPlayCard:
		mh.handlePlayCard(state, dispatcher, logger, msg)
	case OpDrawCard:
		mh.handleDrawCard(state, dispatcher, logger, msg)
	case OpCallUno:
		mh.handleCallUno(state, dispatcher, logger, msg)
	case OpVoteRematch:
		mh.handleVoteRematch(state, dispatcher, logger, msg)
	case OpUpdateSettings:
		mh.handleUpdateSettings(state, dispatcher, logger, msg)
	case OpAddBot:
		mh.handleAddBot(state, dispatcher, logger, msg)
	case OpRemoveBot:
		mh.handleRemoveBot(state, dispatcher, logger, msg)
	case OpChat:
		mh.handleChat(state, dispatcher, logger, msg)
	case OpVoiceJoin:
		mh.handleVoiceJoin(state, dispatcher, logger, msg)
	case OpVoiceLeave:
		mh.handleVoiceLeave(state, dispatcher, logger, msg)
	case OpVoiceSignal:
		mh.handleVoiceSignal(state, dispatcher, logger, msg)
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
	}
}

func (mh *matchHandler) handleStartGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	events, err := state.App.StartMatch(state.Room, msg.GetUserId())
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "StartGame", events, err)
}

// PlayCardRequest is the client payload for OpPlayCard.
type PlayCardRequest struct {
	Card domain.Card `json:"card"`
	// ChosenColor applies to wild-family cards; ignored otherwise.
	ChosenColor domain.Color `json:"chosen_color,omitempty"`
}

func (mh *matchHandler) handlePlayCard(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req PlayCardRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handlePlayCard: Invalid payload from %s: %v", msg.GetUserId(), err)
		return
	}
	events, err := state.App.PlayCard(state.Room, msg.GetUserId(), req.Card, req.ChosenColor)
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "PlayCard", events, err)
}

func (mh *matchHandler) handleDrawCard(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	events, err := state.App.DrawCard(state.Room, msg.GetUserId())
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "DrawCard", events, err)
}

func (mh *matchHandler) handleCallUno(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	events, err := state.App.CallUno(state.Room, msg.GetUserId())
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "CallUno", events, err)
}

func (mh *matchHandler) handleVoteRematch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	events, err := state.App.VoteRematch(state.Room, msg.GetUserId())
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "VoteRematch", events, err)
}

// UpdateSettingsRequest is the client payload for OpUpdateSettings.
type UpdateSettingsRequest struct {
	StartingHandSize int  `json:"starting_hand_size"`
	StackingEnabled  bool `json:"stacking_enabled"`
}

func (mh *matchHandler) handleUpdateSettings(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req UpdateSettingsRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleUpdateSettings: Invalid payload from %s: %v", msg.GetUserId(), err)
		return
	}
	events, err := state.App.UpdateSettings(state.Room, msg.GetUserId(), domain.Settings{
		StartingHandSize: req.StartingHandSize,
		StackingEnabled:  req.StackingEnabled,
	})
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "UpdateSettings", events, err)
}

// AddBotRequest is the client payload for OpAddBot.
type AddBotRequest struct {
	Difficulty string `json:"difficulty"`
}

// RemoveBotRequest is the client payload for OpRemoveBot.
type RemoveBotRequest struct {
	BotID string `json:"bot_id"`
}

func (mh *matchHandler) handleAddBot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req AddBotRequest
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			logger.Warn("handleAddBot: Invalid payload from %s: %v", msg.GetUserId(), err)
			return
		}
	}

	identity := bot.IdentityAt(state.Room.BotCount())
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = identity.Difficulty
	}
	player := &domain.Player{
		ID:         bot.NewID(),
		Name:       identity.DisplayName,
		Avatar:     avatarRef(identity.AvatarIndex),
		IsBot:      true,
		Difficulty: string(bot.ParseDifficulty(difficulty)),
	}

	events, err := state.App.AddBot(state.Room, msg.GetUserId(), player)
	if err == nil {
		state.Bots[player.ID] = bot.NewAgent(player.ID, player.Name, bot.Difficulty(player.Difficulty), nil)
		logger.Info("handleAddBot: Bot %s (%s) seated in room %s.", player.Name, player.ID, state.Room.Code)
	}
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "AddBot", events, err)
}

// avatarRef renders a pool avatar index the way clients reference avatars.
func avatarRef(index int) string {
	return strconv.Itoa(index)
}

func (mh *matchHandler) handleRemoveBot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req RemoveBotRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleRemoveBot: Invalid payload from %s: %v", msg.GetUserId(), err)
		return
	}
	events, err := state.App.RemoveBot(state.Room, msg.GetUserId(), req.BotID)
	if err == nil {
		delete(state.Bots, req.BotID)
	}
	mh.deliver(state, dispatcher, logger, msg.GetUserId(), "RemoveBot", events, err)
}

// deliver dispatches the outcome of an app call: silent failures are dropped
// with a debug log, explicit failures go back to the sender only, successes
// broadcast their events.
func (mh *matchHandler) deliver(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID, op string, events []app.Event, err error) {
	if err != nil {
		if app.IsSilent(err) {
			logger.Debug("%s: Dropped action from %s: %v", op, senderID, err)
			return
		}
		logger.Warn("%s: Rejected action from %s: %v", op, senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err.Error())
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
}

// dispatchEvents converts app events to Nakama broadcasts. The internal UNO
// window event becomes a scheduled penalty check instead of a message.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	labelDirty := false
	for _, ev := range events {
		if ev.Kind == app.EventUnoWindow {
			p, ok := ev.Payload.(app.UnoWindowPayload)
			if !ok {
				logger.Error("dispatchEvents: Bad uno window payload")
				continue
			}
			state.Penalties = append(state.Penalties, penaltyCheck{
				PlayerID:   p.PlayerID,
				Generation: p.Generation,
				DueTick:    state.Tick + msToTicks(state.Cfg.UnoPenaltyDelayMs),
			})
			continue
		}

		opCode, ok := opCodeFor(ev.Kind)
		if !ok {
			logger.Warn("dispatchEvents: Unknown event kind: %s", ev.Kind)
			continue
		}
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("dispatchEvents: Failed to marshal %s: %v", ev.Kind, err)
			continue
		}

		// Determine recipients (default to broadcast).
		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// The addressed players are bots or disconnected; sending with
			// an empty filter would broadcast a private payload.
			if len(recipients) == 0 {
				continue
			}
		}
		dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)

		switch ev.Kind {
		case app.EventLobbyState, app.EventGameStart, app.EventGameOver:
			labelDirty = true
		}
	}
	if labelDirty {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func opCodeFor(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventLobbyState:
		return OpLobbyState, true
	case app.EventPlayerJoined:
		return OpPlayerJoined, true
	case app.EventPlayerLeft:
		return OpPlayerLeft, true
	case app.EventPlayerRejoined:
		return OpPlayerRejoined, true
	case app.EventNewHost:
		return OpNewHost, true
	case app.EventSettingsUpdated:
		return OpSettingsUpdated, true
	case app.EventGameStart:
		return OpGameStart, true
	case app.EventGameState:
		return OpGameState, true
	case app.EventYourHand:
		return OpYourHand, true
	case app.EventActionBanner:
		return OpActionBanner, true
	case app.EventGameOver:
		return OpGameOver, true
	case app.EventRematchState:
		return OpRematchState, true
	case app.EventRejoinState:
		return OpRejoinState, true
	default:
		return 0, false
	}
}

// firePenalties runs the due missed-call checks. The app re-validates each
// one against the live match, so stale checks fizzle quietly.
func (mh *matchHandler) firePenalties(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if len(state.Penalties) == 0 {
		return
	}
	var pending []penaltyCheck
	for _, pc := range state.Penalties {
		if state.Tick < pc.DueTick {
			pending = append(pending, pc)
			continue
		}
		events := state.App.ApplyUnoPenalty(state.Room, pc.PlayerID, pc.Generation)
		if len(events) > 0 {
			logger.Debug("firePenalties: Missed call penalty for %s.", pc.PlayerID)
		}
		mh.dispatchEvents(state, dispatcher, logger, events)
	}
	state.Penalties = pending
}

// ensureBotPlan stamps a think-delay for the bot on turn and clears plans
// that no longer match the live turn holder or generation.
func (mh *matchHandler) ensureBotPlan(state *MatchState) {
	if !state.Room.MatchActive() {
		state.BotPlan = nil
		return
	}
	m := state.Room.Match
	current := m.CurrentPlayer()
	agent, isBot := state.Bots[current]
	if !isBot {
		state.BotPlan = nil
		return
	}
	if plan := state.BotPlan; plan != nil && plan.Generation == m.Generation && plan.BotID == current {
		return
	}
	delay := state.Cfg.BotDelayMs(string(agent.Difficulty))
	state.BotPlan = &botPlan{
		BotID:      current,
		Generation: m.Generation,
		DueTick:    state.Tick + msToTicks(delay),
	}
}

func (mh *matchHandler) fireBotPlan(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	plan := state.BotPlan
	if plan == nil || state.Tick < plan.DueTick {
		return
	}
	state.BotPlan = nil

	m := state.Room.Match
	if !state.Room.MatchActive() || m.Generation != plan.Generation || m.CurrentPlayer() != plan.BotID {
		return
	}
	agent, ok := state.Bots[plan.BotID]
	if !ok {
		logger.Error("fireBotPlan: No agent for bot %s", plan.BotID)
		return
	}

	move, err := agent.Play(m)
	if err != nil {
		logger.Error("fireBotPlan: Bot %s failed to calculate move: %v", plan.BotID, err)
		return
	}

	if move.CallUno {
		events, err := state.App.CallUno(state.Room, plan.BotID)
		if err != nil {
			logger.Debug("fireBotPlan: Bot %s uno call dropped: %v", plan.BotID, err)
		} else {
			mh.dispatchEvents(state, dispatcher, logger, events)
		}
	}

	var events []app.Event
	if move.Draw {
		events, err = state.App.DrawCard(state.Room, plan.BotID)
	} else {
		events, err = state.App.PlayCard(state.Room, plan.BotID, move.Card, move.ChosenColor)
	}
	if err != nil {
		// Bots get no error messages; a rejected move just logs.
		if app.IsSilent(err) {
			logger.Debug("fireBotPlan: Bot %s move dropped: %v", plan.BotID, err)
		} else {
			logger.Warn("fireBotPlan: Bot %s move rejected: %v", plan.BotID, err)
		}
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
}

// ErrorMessage is sent privately to a player whose action was rejected.
type ErrorMessage struct {
	Message string `json:"message"`
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Debug("sendError: No presence for %s", userID)
		return
	}
	data, err := json.Marshal(ErrorMessage{Message: message})
	if err != nil {
		logger.Error("sendError: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpErrorMsg, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) labelFor(state *MatchState, logger runtime.Logger) string {
	open := app.MaxPlayers - len(state.Room.Players)
	if open < 0 {
		open = 0
	}
	label := matchLabel{
		Game:  "uno",
		Code:  state.Room.Code,
		Open:  open,
		Phase: string(state.Room.Phase),
	}
	data, err := json.Marshal(label)
	if err != nil {
		logger.Error("labelFor: Failed to marshal: %v", err)
		return ""
	}
	return string(data)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := mh.labelFor(state, logger)
	if label == "" {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

// retire releases the room code. Safe to call more than once.
func (mh *matchHandler) retire(state *MatchState) {
	if mh.reg != nil && state.Room != nil {
		mh.reg.Remove(state.Room.Code)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		mh.retire(matchState)
	}
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
