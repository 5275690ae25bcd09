package game

import (
	"slices"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
)

type GameState string

const (
	StateWaiting  GameState = "waiting"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

const (
	maxGuesses       = 8
	maxRoomPlayers   = 4
	minBattlePlayers = 2
	nameMaxLen       = 20
)

// PlayerStatus tracks one player's progress through the current round.
// Reset at every round start.
type PlayerStatus struct {
	Guesses    int  `json:"guesses"`
	IsFinished bool `json:"isFinished"`
	IsWinner   bool `json:"isWinner"`
}

// Series is best-of-N state. Disabled until the game starts so a private
// room can be configured before the first round.
type Series struct {
	Enabled      bool
	BestOf       int
	TargetWins   int
	Wins         map[string]int
	CurrentRound int
}

func validBestOf(n int) bool {
	return n == 3 || n == 5 || n == 7
}

func newSeries(bestOf int) *Series {
	return &Series{
		BestOf:     bestOf,
		TargetWins: (bestOf + 1) / 2,
		Wins:       make(map[string]int),
	}
}

// Room groups 1-4 connections around one target player. All access happens
// on the hub goroutine.
type Room struct {
	code    string
	players []string          // join order
	names   map[string]string // conn id -> display name, may be ""
	hostID  string            // private rooms only
	state   GameState
	locked  bool
	target  catalog.Player
	status  map[string]*PlayerStatus
	series  *Series

	// roundPending guards the countdown between series rounds against
	// double resolution; cancelCountdown stops the timer outright when the
	// room is torn down mid-countdown.
	roundPending    bool
	cancelCountdown func()
}

func (r *Room) contains(id string) bool {
	return slices.Contains(r.players, id)
}

func (r *Room) removePlayer(id string) {
	r.players = slices.DeleteFunc(r.players, func(p string) bool { return p == id })
	delete(r.names, id)
	delete(r.status, id)
}

// resetStatus rebuilds the status map so its keys are exactly the current
// players, all at zero guesses.
func (r *Room) resetStatus() {
	r.status = make(map[string]*PlayerStatus, len(r.players))
	for _, id := range r.players {
		r.status[id] = &PlayerStatus{}
	}
}

func (r *Room) allFinished() bool {
	for _, id := range r.players {
		st := r.status[id]
		if st == nil || (!st.IsFinished && st.Guesses < maxGuesses) {
			return false
		}
	}
	return true
}

func (r *Room) roster() []rosterEntry {
	out := make([]rosterEntry, 0, len(r.players))
	for _, id := range r.players {
		out = append(out, rosterEntry{ID: id, Name: r.names[id]})
	}
	return out
}

func (r *Room) statusSnapshot() map[string]PlayerStatus {
	out := make(map[string]PlayerStatus, len(r.status))
	for id, st := range r.status {
		out[id] = *st
	}
	return out
}

func (r *Room) seriesSnapshot() *seriesOut {
	if r.series == nil {
		return nil
	}
	wins := make(map[string]int, len(r.series.Wins))
	for id, n := range r.series.Wins {
		wins[id] = n
	}
	return &seriesOut{
		BestOf:       r.series.BestOf,
		TargetWins:   r.series.TargetWins,
		Wins:         wins,
		CurrentRound: r.series.CurrentRound,
	}
}

// stopCountdown cancels an in-flight round countdown, if any.
func (r *Room) stopCountdown() {
	if r.cancelCountdown != nil {
		r.cancelCountdown()
		r.cancelCountdown = nil
	}
	r.roundPending = false
}
