package nakama

const (
	// RpcCreateRoom is the Nakama RPC id clients call to open a new room.
	RpcCreateRoom = "create_room"

	// RpcJoinRoom is the Nakama RPC id clients call to resolve a room code
	// before joining the match.
	RpcJoinRoom = "join_room"

	// RpcVoiceToken is the Nakama RPC id clients call for a voice access token.
	RpcVoiceToken = "voice_token"

	// MatchNameUnoRoom is the authoritative match handler name registered with Nakama.
	MatchNameUnoRoom = "uno_room"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpPlayCard       int64 = 2
	OpDrawCard       int64 = 3
	OpCallUno        int64 = 4
	OpVoteRematch    int64 = 5
	OpUpdateSettings int64 = 6
	OpAddBot         int64 = 7
	OpRemoveBot      int64 = 8
	OpChat           int64 = 9
	OpVoiceJoin      int64 = 10
	OpVoiceLeave     int64 = 11
	OpVoiceSignal    int64 = 12

	// Server -> Client events
	OpLobbyState      int64 = 101
	OpPlayerJoined    int64 = 102
	OpPlayerLeft      int64 = 103
	OpPlayerRejoined  int64 = 104
	OpNewHost         int64 = 105
	OpSettingsUpdated int64 = 106
	OpGameStart       int64 = 107 // send privately
	OpGameState       int64 = 108
	OpYourHand        int64 = 109 // send privately
	OpActionBanner    int64 = 110
	OpGameOver        int64 = 111
	OpRematchState    int64 = 112
	OpRejoinState     int64 = 113 // send privately
	OpErrorMsg        int64 = 114 // send privately
	OpChatMessage     int64 = 115
	OpVoiceRoster     int64 = 116
	// OpVoiceSignalRelay carries an OpVoiceSignal payload to its target.
	OpVoiceSignalRelay int64 = 117
)
