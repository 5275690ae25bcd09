package game

// Room error messages surfaced to the requesting connection. Non-fatal,
// never mutate state.
const (
	errRoomNotFound     = "room not found"
	errRoomUnavailable  = "room is full or already started"
	errNotHost          = "only the host can start the game"
	errNotEnoughPlayers = "need at least 2 players to start"
	errGameNotStartable = "game cannot be started right now"
	errInvalidPayload   = "invalid payload"
)

// Matchmaking error codes.
const (
	mmErrInvalidName   = "invalid-name"
	mmErrInvalidSeries = "invalid-series"
	mmErrAlreadyInRoom = "already-in-room"
	mmErrMatchPending  = "match-pending"
	mmErrMatchNotFound = "match-not-found"
)
