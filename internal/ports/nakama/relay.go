package nakama

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"github.com/heroiclabs/nakama-common/runtime"
)

// maxChatRunes caps a single chat message after sanitization.
const maxChatRunes = 200

// ChatRequest is the client payload for OpChat.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatMessage is the broadcast form of an accepted chat line.
type ChatMessage struct {
	From string `json:"from"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// VoiceParticipant identifies one connection in the room voice channel.
// Voice is connection-scoped: a reconnect rejoins the channel with its new
// session id.
type VoiceParticipant struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
}

// VoiceRoster is broadcast whenever the voice channel membership changes.
type VoiceRoster struct {
	Participants []VoiceParticipant `json:"participants"`
}

// VoiceSignalRequest asks the server to relay opaque signaling data to one
// other voice participant.
type VoiceSignalRequest struct {
	Target string          `json:"target"` // session id
	Data   json.RawMessage `json:"data"`
}

// VoiceSignalMessage is the relayed form delivered to the target only.
type VoiceSignalMessage struct {
	From string          `json:"from"` // session id
	Data json.RawMessage `json:"data"`
}

func (mh *matchHandler) handleChat(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	uid := msg.GetUserId()
	player := state.Room.FindPlayer(uid)
	if player == nil {
		logger.Debug("handleChat: Dropped chat from non-player %s", uid)
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleChat: Invalid payload from %s: %v", uid, err)
		return
	}
	text := sanitizeChat(req.Text)
	if text == "" {
		return
	}

	gap := msToTicks(state.Cfg.ChatIntervalMs)
	if last, ok := state.LastChatTick[uid]; ok && state.Tick-last < gap {
		logger.Debug("handleChat: Rate limited %s", uid)
		return
	}
	state.LastChatTick[uid] = state.Tick

	data, err := json.Marshal(ChatMessage{From: uid, Name: player.Name, Text: text})
	if err != nil {
		logger.Error("handleChat: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpChatMessage, data, nil, nil, true)
}

// sanitizeChat trims, strips control runes and caps the message length.
func sanitizeChat(s string) string {
	var b strings.Builder
	count := 0
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count == maxChatRunes {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func (mh *matchHandler) handleVoiceJoin(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	sid := msg.GetSessionId()
	if state.Room.FindPlayer(msg.GetUserId()) == nil {
		logger.Debug("handleVoiceJoin: Dropped join from non-player %s", msg.GetUserId())
		return
	}
	if state.Voice[sid] {
		return
	}
	state.Voice[sid] = true
	mh.broadcastVoiceRoster(state, dispatcher, logger)
}

func (mh *matchHandler) handleVoiceLeave(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	sid := msg.GetSessionId()
	if !state.Voice[sid] {
		return
	}
	delete(state.Voice, sid)
	mh.broadcastVoiceRoster(state, dispatcher, logger)
}

func (mh *matchHandler) handleVoiceSignal(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	sid := msg.GetSessionId()
	if !state.Voice[sid] {
		logger.Debug("handleVoiceSignal: Sender %s is not in the voice channel", sid)
		return
	}

	var req VoiceSignalRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleVoiceSignal: Invalid payload from %s: %v", msg.GetUserId(), err)
		return
	}
	if !state.Voice[req.Target] {
		logger.Debug("handleVoiceSignal: Target %s is not in the voice channel", req.Target)
		return
	}
	targetUID, ok := state.Sessions[req.Target]
	if !ok {
		logger.Debug("handleVoiceSignal: Unknown target session %s", req.Target)
		return
	}
	presence, ok := state.Presences[targetUID]
	if !ok || presence.GetSessionId() != req.Target {
		logger.Debug("handleVoiceSignal: Target session %s has no live presence", req.Target)
		return
	}

	data, err := json.Marshal(VoiceSignalMessage{From: sid, Data: req.Data})
	if err != nil {
		logger.Error("handleVoiceSignal: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpVoiceSignalRelay, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) broadcastVoiceRoster(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	roster := VoiceRoster{Participants: make([]VoiceParticipant, 0, len(state.Voice))}
	for sid := range state.Voice {
		uid := state.Sessions[sid]
		name := ""
		if p := state.Room.FindPlayer(uid); p != nil {
			name = p.Name
		}
		roster.Participants = append(roster.Participants, VoiceParticipant{
			SessionID: sid,
			PlayerID:  uid,
			Name:      name,
		})
	}
	sort.Slice(roster.Participants, func(i, j int) bool {
		return roster.Participants[i].SessionID < roster.Participants[j].SessionID
	})

	data, err := json.Marshal(roster)
	if err != nil {
		logger.Error("broadcastVoiceRoster: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpVoiceRoster, data, nil, nil, true)
}
