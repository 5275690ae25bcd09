package game

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
)

// --- catalog.Provider ---

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) All(ctx context.Context) ([]catalog.Player, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Player), args.Error(1)
}

func (m *MockProvider) Random(ctx context.Context) (catalog.Player, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.Player), args.Error(1)
}

// --- NetworkSession ---

type nopSession struct{}

func (nopSession) Close(reason string)     {}
func (nopSession) Write(data []byte) error { return nil }
func (nopSession) Read() ([]byte, error)   { return nil, nil }
func (nopSession) Ping() error             { return nil }

// --- Scheduler ---

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.stopped = true }
}

// --- hub harness ---

// testHub drives hub handlers synchronously, the way the hub goroutine
// would, without running the Run loop.
type testHub struct {
	*Hub
	sched    *fakeScheduler
	provider *MockProvider
}

func newTestHub(t *testing.T) *testHub {
	t.Helper()
	sched := &fakeScheduler{}
	provider := &MockProvider{}
	return &testHub{
		Hub:      NewHub(zerolog.Nop(), provider, sched),
		sched:    sched,
		provider: provider,
	}
}

// connect registers a client whose outbound events can be inspected with
// drain.
func (th *testHub) connect(id string) *Client {
	c := NewClient(id, nopSession{}, th.Hub)
	th.addClient(c)
	return c
}

// fireTimer invokes timer i as if it had elapsed, then runs the tasks it
// posted onto the hub.
func (th *testHub) fireTimer(t *testing.T, i int) {
	t.Helper()
	require.Less(t, i, len(th.sched.timers), "no timer %d was armed", i)
	th.sched.timers[i].fn()
	th.runTasks()
}

func (th *testHub) runTasks() {
	for {
		select {
		case fn := <-th.tasks:
			fn()
		default:
			return
		}
	}
}

// --- outbound event inspection ---

type recordedEvent struct {
	Event string
	Data  json.RawMessage
}

func drain(t *testing.T, c *Client) []recordedEvent {
	t.Helper()
	var out []recordedEvent
	for {
		select {
		case raw := <-c.inbox:
			var ev wireEvent
			require.NoError(t, json.Unmarshal(raw, &ev))
			out = append(out, recordedEvent{Event: ev.Event, Data: ev.Data})
		default:
			return out
		}
	}
}

func eventNames(events []recordedEvent) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Event
	}
	return names
}

func findEvent(t *testing.T, events []recordedEvent, name string) recordedEvent {
	t.Helper()
	for _, e := range events {
		if e.Event == name {
			return e
		}
	}
	t.Fatalf("no %q among %v", name, eventNames(events))
	return recordedEvent{}
}

func decodeAs[T any](t *testing.T, e recordedEvent) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}

func expectEvent[T any](t *testing.T, c *Client, name string) T {
	t.Helper()
	return decodeAs[T](t, findEvent(t, drain(t, c), name))
}

// --- fixtures ---

var (
	targetGawn   = catalog.Player{ID: "max-gawn", Name: "Max Gawn", Team: "Melbourne", Number: 11, Position: "Ruck"}
	targetDaicos = catalog.Player{ID: "nick-daicos", Name: "Nick Daicos", Team: "Collingwood", Number: 35, Position: "Midfield"}
	targetNeale  = catalog.Player{ID: "lachie-neale", Name: "Lachie Neale", Team: "Brisbane Lions", Number: 9, Position: "Midfield"}
)

// setupPrivateBattle creates a two-player private room and starts the
// game, returning the clients and the room code.
func setupPrivateBattle(t *testing.T, th *testHub, bestOf int) (host, guest *Client, code string) {
	t.Helper()
	host = th.connect("conn-host")
	guest = th.connect("conn-guest")

	th.handleCreateRoom(host, createRoomIn{SeriesBestOf: bestOf})
	created := expectEvent[roomCreatedOut](t, host, evRoomCreated)
	code = created.RoomCode

	th.handleJoinRoom(guest, joinRoomIn{RoomCode: code})
	th.handleStartPrivateGame(host, startPrivateGameIn{RoomCode: code})

	drain(t, host)
	drain(t, guest)
	return host, guest, code
}

// wrongGuess is any id that never matches a fixture target.
const wrongGuess = "patrick-cripps"
