package game

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
)

const (
	pendingMatchTTL    = 30 * time.Second
	sweepInterval      = 30 * time.Second
	pingInterval       = 30 * time.Second
	roundCountdownSecs = 8
)

// envelope is one inbound client event awaiting dispatch.
type envelope struct {
	from  *Client
	event string
	data  []byte
}

// Hub is the single owner of all matchmaking, room, and series state. One
// goroutine (Run) consumes client envelopes, registrations, and scheduled
// tasks; every mutation happens there, so the maps below need no locks and
// guess ordering is exactly arrival order.
type Hub struct {
	log     zerolog.Logger
	catalog catalog.Provider
	sched   Scheduler
	ctx     context.Context

	clients map[string]*Client
	names   map[string]string // conn id -> display name, survives queue/room moves
	rooms   map[string]*Room
	queues  map[int][]string // bestOf -> FIFO of conn ids
	pending map[string]*pendingMatch

	events     chan envelope
	tasks      chan func()
	register   chan *Client
	unregister chan *Client
}

func NewHub(log zerolog.Logger, provider catalog.Provider, sched Scheduler) *Hub {
	return &Hub{
		log:        log,
		catalog:    provider,
		sched:      sched,
		ctx:        context.Background(),
		clients:    make(map[string]*Client),
		names:      make(map[string]string),
		rooms:      make(map[string]*Room),
		queues:     map[int][]string{3: {}, 5: {}, 7: {}},
		pending:    make(map[string]*pendingMatch),
		events:     make(chan envelope, 1024),
		tasks:      make(chan func(), 256),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
	}
}

func (h *Hub) Post(e envelope) {
	select {
	case h.events <- e:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Register(c *Client) {
	h.register <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Run processes events until ctx is cancelled. Timer callbacks re-enter
// through the tasks channel so they mutate state on this goroutine like
// any other event.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.handleDisconnect(c)
		case e := <-h.events:
			h.dispatch(e)
		case fn := <-h.tasks:
			fn()
		case now := <-sweep.C:
			h.sweepPending(now)
		case <-ping.C:
			for _, c := range h.clients {
				c.ping()
			}
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.clients[c.id] = c
	h.log.Debug().Str("conn", c.id).Msg("client connected")
}

// schedule arms a one-shot timer whose callback runs on the hub goroutine.
// The returned handle cancels it outright.
func (h *Hub) schedule(d time.Duration, fn func()) func() {
	return h.sched.AfterFunc(d, func() {
		select {
		case h.tasks <- fn:
		case <-h.ctx.Done():
		}
	})
}

func (h *Hub) dispatch(e envelope) {
	// A disconnect may be processed ahead of envelopes the connection
	// posted just before closing; answering those would write to a
	// torn-down client.
	if h.clients[e.from.id] != e.from {
		return
	}

	switch e.event {
	case evCreateRoom:
		var in createRoomIn
		if !h.decode(e, &in) {
			return
		}
		h.handleCreateRoom(e.from, in)
	case evJoinRoom:
		var in joinRoomIn
		if !h.decode(e, &in) {
			return
		}
		h.handleJoinRoom(e.from, in)
	case evStartPrivateGame:
		var in startPrivateGameIn
		if !h.decode(e, &in) {
			return
		}
		h.handleStartPrivateGame(e.from, in)
	case evJoinMatchmaking:
		var in joinMatchmakingIn
		if !h.decode(e, &in) {
			return
		}
		h.handleJoinMatchmaking(e.from, in)
	case evLeaveMatchmaking:
		h.handleLeaveMatchmaking(e.from)
	case evLeaveCurrentGame:
		var in leaveCurrentGameIn
		if !h.decode(e, &in) {
			return
		}
		h.handleLeaveCurrentGame(e.from, in)
	case evMatchFoundAck:
		var in matchFoundAckIn
		if !h.decode(e, &in) {
			return
		}
		h.handleMatchFoundAck(e.from, in)
	case evGuessPlayer:
		var in guessPlayerIn
		if !h.decode(e, &in) {
			return
		}
		h.handleGuessPlayer(e.from, in)
	case evSetDisplayName:
		var in setDisplayNameIn
		if !h.decode(e, &in) {
			return
		}
		h.handleSetDisplayName(e.from, in)
	default:
		h.log.Debug().Str("event", e.event).Str("conn", e.from.id).Msg("unknown event")
	}
}

func (h *Hub) decode(e envelope, out any) bool {
	if len(e.data) == 0 {
		return true
	}
	if err := json.Unmarshal(e.data, out); err != nil {
		e.from.send(evRoomError, roomErrorOut{Message: errInvalidPayload})
		return false
	}
	return true
}

// --- outbound helpers ---

func (h *Hub) sendToID(id, event string, payload any) {
	if c, ok := h.clients[id]; ok {
		c.send(event, payload)
	}
}

func (h *Hub) broadcastRoom(r *Room, event string, payload any) {
	for _, id := range r.players {
		h.sendToID(id, event, payload)
	}
}

func (h *Hub) broadcastRoster(r *Room) {
	h.broadcastRoom(r, evRoomPlayersUpdate, roomPlayersOut{Players: r.roster(), HostID: r.hostID})
}

// --- room lifecycle ---

func (h *Hub) roomOf(id string) *Room {
	for _, r := range h.rooms {
		if r.contains(id) {
			return r
		}
	}
	return nil
}

func (h *Hub) codeTaken(code string) bool {
	if _, ok := h.rooms[code]; ok {
		return true
	}
	_, ok := h.pending[code]
	return ok
}

func (h *Hub) randomTarget() (catalog.Player, bool) {
	p, err := h.catalog.Random(h.ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("picking target player")
		return catalog.Player{}, false
	}
	return p, true
}

func (h *Hub) handleCreateRoom(c *Client, in createRoomIn) {
	target, ok := h.randomTarget()
	if !ok {
		c.send(evRoomError, roomErrorOut{Message: errRoomNotFound})
		return
	}

	// Entering a room and waiting in a queue are mutually exclusive.
	if h.dequeueEverywhere(c.id) {
		c.send(evMatchmakingLeft, nil)
	}

	r := &Room{
		code:    newRoomCode(h.codeTaken),
		players: []string{c.id},
		names:   map[string]string{c.id: h.names[c.id]},
		hostID:  c.id,
		state:   StateWaiting,
		target:  target,
	}
	if validBestOf(in.SeriesBestOf) {
		r.series = newSeries(in.SeriesBestOf)
	}
	h.rooms[r.code] = r

	h.log.Info().Str("room", r.code).Str("host", c.id).Int("bestOf", in.SeriesBestOf).Msg("room created")
	c.send(evRoomCreated, roomCreatedOut{RoomCode: r.code})
	h.broadcastRoster(r)
}

func (h *Hub) handleJoinRoom(c *Client, in joinRoomIn) {
	r, ok := h.rooms[in.RoomCode]
	if !ok {
		c.send(evRoomError, roomErrorOut{Message: errRoomNotFound})
		return
	}
	if r.state != StateWaiting || r.locked || len(r.players) >= maxRoomPlayers || r.contains(c.id) {
		c.send(evRoomError, roomErrorOut{Message: errRoomUnavailable})
		return
	}

	if h.dequeueEverywhere(c.id) {
		c.send(evMatchmakingLeft, nil)
	}
	r.players = append(r.players, c.id)
	r.names[c.id] = ""
	h.broadcastRoster(r)
}

func (h *Hub) handleStartPrivateGame(c *Client, in startPrivateGameIn) {
	r, ok := h.rooms[in.RoomCode]
	if !ok {
		c.send(evRoomError, roomErrorOut{Message: errRoomNotFound})
		return
	}
	if r.hostID != c.id {
		c.send(evRoomError, roomErrorOut{Message: errNotHost})
		return
	}
	if r.state != StateWaiting {
		c.send(evRoomError, roomErrorOut{Message: errGameNotStartable})
		return
	}
	if len(r.players) < minBattlePlayers || len(r.players) > maxRoomPlayers {
		c.send(evRoomError, roomErrorOut{Message: errNotEnoughPlayers})
		return
	}

	r.locked = true
	r.state = StatePlaying
	if r.target.ID == "" {
		target, ok := h.randomTarget()
		if !ok {
			return
		}
		r.target = target
	}
	if r.series != nil {
		r.series.Enabled = true
		r.series.CurrentRound = 1
		r.series.Wins = make(map[string]int, len(r.players))
		for _, id := range r.players {
			r.series.Wins[id] = 0
		}
	}
	r.resetStatus()

	h.log.Info().Str("room", r.code).Int("players", len(r.players)).Msg("private game started")
	h.broadcastRoom(r, evBattleStatusUpdate, battleStatusOut{PlayersStatus: r.statusSnapshot()})
	h.broadcastRoom(r, evGameStart, gameStartOut{TargetPlayer: r.target})
}

// trimName strips surrounding whitespace and truncates to nameMaxLen
// runes, so multi-byte names stay valid UTF-8.
func trimName(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > nameMaxLen {
		return string(r[:nameMaxLen])
	}
	return s
}

func (h *Hub) handleSetDisplayName(c *Client, in setDisplayNameIn) {
	name := trimName(in.Name)
	h.names[c.id] = name

	for _, r := range h.rooms {
		if r.contains(c.id) {
			r.names[c.id] = name
			h.broadcastRoster(r)
		}
	}
}

// --- leave / disconnect ---

func (h *Hub) handleLeaveCurrentGame(c *Client, in leaveCurrentGameIn) {
	if h.dequeueEverywhere(c.id) {
		c.send(evMatchmakingLeft, nil)
	}
	h.failPendingFor(c.id)
	if r, ok := h.rooms[in.RoomCode]; ok && r.contains(c.id) {
		h.leaveRoom(r, c.id)
	}
}

// handleDisconnect is the connection-closed path: same cleanup as a
// voluntary leave, across every room, plus registry teardown.
func (h *Hub) handleDisconnect(c *Client) {
	if h.clients[c.id] != c {
		return
	}
	h.log.Debug().Str("conn", c.id).Msg("client disconnected")

	h.dequeueEverywhere(c.id)
	h.failPendingFor(c.id)
	for _, r := range h.rooms {
		if r.contains(c.id) {
			h.leaveRoom(r, c.id)
		}
	}

	delete(h.clients, c.id)
	delete(h.names, c.id)
	close(c.inbox)
	close(c.pingChan)
	c.session.Close("")
}

func (h *Hub) deleteRoom(r *Room) {
	r.stopCountdown()
	delete(h.rooms, r.code)
	h.log.Info().Str("room", r.code).Msg("room deleted")
}

// leaveRoom applies the disconnect/leave rules: notify the others, delete
// lone rooms, finalize in-flight games.
func (h *Hub) leaveRoom(r *Room, id string) {
	for _, other := range r.players {
		if other != id {
			h.sendToID(other, evPlayerLeft, playerLeftOut{ConnID: id})
		}
	}

	// The leaver was the only occupant: nothing to hand over.
	if len(r.players) <= 1 {
		h.deleteRoom(r)
		return
	}

	wasPlaying := r.state == StatePlaying
	r.removePlayer(id)

	if wasPlaying {
		r.stopCountdown()
		r.state = StateFinished

		if r.series != nil && r.series.Enabled && len(r.players) == 1 {
			// Sole survivor takes the series by forfeit.
			out := r.seriesSnapshot()
			out.FinalWinner = r.players[0]
			h.broadcastRoom(r, evGameOver, gameOverOut{TargetPlayer: r.target, Series: out})
		} else {
			for _, other := range r.players {
				h.sendToID(other, evBattleGameOver, battleGameOverOut{
					TargetPlayer:  r.target,
					GameEndReason: reasonPlayerDisconnected,
					PlayersStatus: r.statusSnapshot(),
				})
			}
		}
	}

	h.broadcastRoster(r)
}
