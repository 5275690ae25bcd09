package game

import (
	"slices"
	"time"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
)

// pendingMatch is a proposed pairing awaiting both sides' acknowledgement.
// It only becomes a real Room once both distinct connections have acked;
// until then a disconnect or the sweep tears it down.
type pendingMatch struct {
	code        string
	players     [2]string
	target      catalog.Player
	acks        map[string]bool
	gameStarted bool
	createdAt   time.Time
	bestOf      int
}

func (pm *pendingMatch) involves(id string) bool {
	return pm.players[0] == id || pm.players[1] == id
}

func (pm *pendingMatch) opponentOf(id string) string {
	if pm.players[0] == id {
		return pm.players[1]
	}
	return pm.players[0]
}

func (h *Hub) handleJoinMatchmaking(c *Client, in joinMatchmakingIn) {
	name := trimName(in.DisplayName)
	if name == "" || name == c.id {
		c.send(evMatchmakingError, matchmakingErrorOut{Code: mmErrInvalidName, Message: "a display name is required"})
		return
	}
	if !validBestOf(in.SeriesBestOf) {
		c.send(evMatchmakingError, matchmakingErrorOut{Code: mmErrInvalidSeries, Message: "series length must be 3, 5 or 7"})
		return
	}
	if h.roomOf(c.id) != nil {
		c.send(evMatchmakingError, matchmakingErrorOut{Code: mmErrAlreadyInRoom, Message: "leave your current game first"})
		return
	}
	if h.pendingFor(c.id) != nil {
		c.send(evMatchmakingError, matchmakingErrorOut{Code: mmErrMatchPending, Message: "acknowledge your pending match first"})
		return
	}

	h.names[c.id] = name

	// A connection sits in at most one queue; re-joining with a different
	// length moves it.
	for bestOf := range h.queues {
		if bestOf != in.SeriesBestOf {
			h.dequeue(bestOf, c.id)
		}
	}
	if !slices.Contains(h.queues[in.SeriesBestOf], c.id) {
		h.queues[in.SeriesBestOf] = append(h.queues[in.SeriesBestOf], c.id)
	}

	h.log.Info().Str("conn", c.id).Int("bestOf", in.SeriesBestOf).Msg("joined matchmaking")
	c.send(evMatchmakingJoined, nil)

	h.matchFromQueue(in.SeriesBestOf)
}

func (h *Hub) handleLeaveMatchmaking(c *Client) {
	if h.dequeueEverywhere(c.id) {
		c.send(evMatchmakingLeft, nil)
	}
}

// pendingFor finds the pending match the connection is party to, if any.
// A connection sits in at most one: it cannot re-queue while one exists.
func (h *Hub) pendingFor(id string) *pendingMatch {
	for _, pm := range h.pending {
		if pm.involves(id) {
			return pm
		}
	}
	return nil
}

func (h *Hub) dequeue(bestOf int, id string) bool {
	q := h.queues[bestOf]
	i := slices.Index(q, id)
	if i < 0 {
		return false
	}
	h.queues[bestOf] = slices.Delete(q, i, i+1)
	return true
}

func (h *Hub) dequeueEverywhere(id string) bool {
	removed := false
	for bestOf := range h.queues {
		if h.dequeue(bestOf, id) {
			removed = true
		}
	}
	return removed
}

// matchFromQueue pairs the two oldest waiters, first come first served.
func (h *Hub) matchFromQueue(bestOf int) {
	for len(h.queues[bestOf]) >= 2 {
		q := h.queues[bestOf]
		a, b := q[0], q[1]
		h.queues[bestOf] = q[2:]

		target, ok := h.randomTarget()
		if !ok {
			// Put them back; nothing can be matched without a target.
			h.queues[bestOf] = append([]string{a, b}, h.queues[bestOf]...)
			return
		}

		pm := &pendingMatch{
			code:      newRoomCode(h.codeTaken),
			players:   [2]string{a, b},
			target:    target,
			acks:      make(map[string]bool, 2),
			createdAt: time.Now(),
			bestOf:    bestOf,
		}
		h.pending[pm.code] = pm

		h.log.Info().Str("room", pm.code).Str("p1", a).Str("p2", b).Int("bestOf", bestOf).Msg("match proposed")
		h.sendToID(a, evMatchFound, matchFoundOut{RoomCode: pm.code, TargetPlayer: pm.target, OpponentID: b})
		h.sendToID(b, evMatchFound, matchFoundOut{RoomCode: pm.code, TargetPlayer: pm.target, OpponentID: a})
	}
}

func (h *Hub) handleMatchFoundAck(c *Client, in matchFoundAckIn) {
	pm, ok := h.pending[in.RoomCode]
	if !ok || !pm.involves(c.id) {
		c.send(evMatchmakingError, matchmakingErrorOut{Code: mmErrMatchNotFound, Message: "no pending match for that room"})
		return
	}
	if pm.gameStarted {
		return
	}

	pm.acks[c.id] = true // repeat acks collapse here
	if len(pm.acks) < 2 {
		return
	}

	pm.gameStarted = true
	delete(h.pending, pm.code)
	h.promoteMatch(pm)
}

// promoteMatch turns an acked pending match into a live battle room.
func (h *Hub) promoteMatch(pm *pendingMatch) {
	r := &Room{
		code:    pm.code,
		players: pm.players[:],
		names: map[string]string{
			pm.players[0]: h.names[pm.players[0]],
			pm.players[1]: h.names[pm.players[1]],
		},
		state:  StatePlaying,
		locked: true,
		target: pm.target,
	}
	if validBestOf(pm.bestOf) {
		r.series = newSeries(pm.bestOf)
		r.series.Enabled = true
		r.series.CurrentRound = 1
		for _, id := range r.players {
			r.series.Wins[id] = 0
		}
	}
	r.resetStatus()
	h.rooms[r.code] = r

	h.log.Info().Str("room", r.code).Msg("match promoted to room")
	h.broadcastRoster(r)
	h.broadcastRoom(r, evBattleStatusUpdate, battleStatusOut{PlayersStatus: r.statusSnapshot()})
}

// sweepPending expires unacknowledged matches. Run drives this every
// sweepInterval; tests call it with a chosen clock.
func (h *Hub) sweepPending(now time.Time) {
	for code, pm := range h.pending {
		if pm.gameStarted || now.Sub(pm.createdAt) <= pendingMatchTTL {
			continue
		}
		delete(h.pending, code)
		h.log.Info().Str("room", code).Msg("pending match timed out")
		h.sendToID(pm.players[0], evMatchmakingTimeout, nil)
		h.sendToID(pm.players[1], evMatchmakingTimeout, nil)
	}
}

// failPendingFor tears down any pending match the connection was party to.
// The peer sees a matchmaking timeout: from its side the match simply
// failed to form.
func (h *Hub) failPendingFor(id string) {
	for code, pm := range h.pending {
		if !pm.involves(id) {
			continue
		}
		delete(h.pending, code)
		h.sendToID(pm.opponentOf(id), evMatchmakingTimeout, nil)
	}
}
