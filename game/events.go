package game

import (
	"encoding/json"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
)

// Clients speak a Socket.IO-style envelope over the websocket: a named
// event plus a JSON payload. Inbound events are dispatched on the hub
// goroutine; outbound events are fanned out through each client's write
// pump.

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	evCreateRoom       = "create-room"
	evJoinRoom         = "join-room"
	evStartPrivateGame = "start-private-game"
	evJoinMatchmaking  = "join-matchmaking"
	evLeaveMatchmaking = "leave-matchmaking"
	evLeaveCurrentGame = "leave-current-game"
	evMatchFoundAck    = "match-found-ack"
	evGuessPlayer      = "guess-player"
	evSetDisplayName   = "set-display-name"
)

// Outbound event names.
const (
	evRoomCreated        = "room-created"
	evRoomError          = "room-error"
	evRoomPlayersUpdate  = "room-players-update"
	evGameStart          = "game-start"
	evGuessResult        = "guess-result"
	evBattleStatusUpdate = "battle-status-update"
	evBattleGameOver     = "battle-game-over"
	evGameOver           = "game-over"
	evRoundCountdown     = "round-countdown"
	evMatchmakingJoined  = "matchmaking-joined"
	evMatchmakingLeft    = "matchmaking-left"
	evMatchmakingError   = "matchmaking-error"
	evMatchFound         = "match-found"
	evMatchmakingTimeout = "matchmaking-timeout"
	evPlayerLeft         = "player-left"
)

// Terminal battle reasons.
const (
	reasonCorrectGuess       = "CORRECT_GUESS"
	reasonAllGuessesUsed     = "ALL_GUESSES_USED"
	reasonPlayerDisconnected = "PLAYER_DISCONNECTED"
)

// Inbound payloads.

type createRoomIn struct {
	SeriesBestOf int `json:"seriesBestOf,omitempty"`
}

type joinRoomIn struct {
	RoomCode string `json:"roomCode"`
}

type startPrivateGameIn struct {
	RoomCode string `json:"roomCode"`
}

type joinMatchmakingIn struct {
	SeriesBestOf int    `json:"seriesBestOf"`
	DisplayName  string `json:"displayName"`
}

type leaveCurrentGameIn struct {
	RoomCode string `json:"roomCode"`
}

type matchFoundAckIn struct {
	RoomCode string `json:"roomCode"`
}

type guessPlayerIn struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type setDisplayNameIn struct {
	Name string `json:"name"`
}

// Outbound payloads.

type roomCreatedOut struct {
	RoomCode string `json:"roomCode"`
}

type roomErrorOut struct {
	Message string `json:"message"`
}

type rosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roomPlayersOut struct {
	Players []rosterEntry `json:"players"`
	HostID  string        `json:"hostId,omitempty"`
}

type gameStartOut struct {
	TargetPlayer catalog.Player `json:"targetPlayer"`
}

type guessResultOut struct {
	IsCorrect   bool   `json:"isCorrect"`
	PlayerID    string `json:"playerId"`
	GuessesUsed int    `json:"guessesUsed,omitempty"`
	MaxGuesses  int    `json:"maxGuesses,omitempty"`
	Error       string `json:"error,omitempty"`
}

type battleStatusOut struct {
	PlayersStatus map[string]PlayerStatus `json:"playersStatus"`
}

type battleGameOverOut struct {
	Winner        string                  `json:"winner,omitempty"`
	Loser         string                  `json:"loser,omitempty"`
	TargetPlayer  catalog.Player          `json:"targetPlayer"`
	GameEndReason string                  `json:"gameEndReason"`
	PlayersStatus map[string]PlayerStatus `json:"playersStatus,omitempty"`
}

type seriesOut struct {
	BestOf       int            `json:"bestOf"`
	TargetWins   int            `json:"targetWins"`
	Wins         map[string]int `json:"wins"`
	CurrentRound int            `json:"currentRound"`
	FinalWinner  string         `json:"finalWinner,omitempty"`
}

type gameOverOut struct {
	Winner       string         `json:"winner"`
	TargetPlayer catalog.Player `json:"targetPlayer"`
	Series       *seriesOut     `json:"series,omitempty"`
}

type roundCountdownOut struct {
	Seconds   int        `json:"seconds"`
	NextRound int        `json:"nextRound"`
	Series    *seriesOut `json:"series,omitempty"`
}

type matchmakingErrorOut struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type matchFoundOut struct {
	RoomCode     string         `json:"roomCode"`
	TargetPlayer catalog.Player `json:"targetPlayer"`
	OpponentID   string         `json:"opponentId"`
}

type playerLeftOut struct {
	ConnID string `json:"connId"`
}
