package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJoinMatchmaking_RejectsBadNames(t *testing.T) {
	th := newTestHub(t)
	c := th.connect("conn-1")

	testCases := []struct {
		desc string
		in   joinMatchmakingIn
		code string
	}{
		{desc: "empty name", in: joinMatchmakingIn{SeriesBestOf: 3, DisplayName: ""}, code: mmErrInvalidName},
		{desc: "whitespace name", in: joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "   "}, code: mmErrInvalidName},
		{desc: "name equals conn id", in: joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "conn-1"}, code: mmErrInvalidName},
		{desc: "invalid series length", in: joinMatchmakingIn{SeriesBestOf: 4, DisplayName: "kanga"}, code: mmErrInvalidSeries},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			th.handleJoinMatchmaking(c, tc.in)
			ev := expectEvent[matchmakingErrorOut](t, c, evMatchmakingError)
			assert.Equal(t, tc.code, ev.Code)
			assert.Empty(t, th.queues[3], "rejection must not enqueue")
		})
	}
}

func TestJoinMatchmaking_RejectedWhileInRoom(t *testing.T) {
	th := newTestHub(t)
	th.provider.On("Random", mock.Anything).Return(targetGawn, nil)

	c := th.connect("conn-1")
	th.handleCreateRoom(c, createRoomIn{})
	drain(t, c)

	th.handleJoinMatchmaking(c, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "kanga"})
	ev := expectEvent[matchmakingErrorOut](t, c, evMatchmakingError)
	assert.Equal(t, mmErrAlreadyInRoom, ev.Code)
	assert.Empty(t, th.queues[3])
}

func TestJoinMatchmaking_PairsOldestTwoFIFO(t *testing.T) {
	th := newTestHub(t)
	th.provider.On("Random", mock.Anything).Return(targetGawn, nil)

	c1 := th.connect("conn-1")
	c2 := th.connect("conn-2")
	c3 := th.connect("conn-3")

	th.handleJoinMatchmaking(c1, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "alpha"})
	assert.Equal(t, []string{evMatchmakingJoined}, eventNames(drain(t, c1)))

	th.handleJoinMatchmaking(c2, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "beta"})
	found1 := expectEvent[matchFoundOut](t, c1, evMatchFound)
	found2 := expectEvent[matchFoundOut](t, c2, evMatchFound)

	assert.Equal(t, found1.RoomCode, found2.RoomCode)
	assert.True(t, ValidCode(found1.RoomCode))
	assert.Equal(t, "conn-2", found1.OpponentID)
	assert.Equal(t, "conn-1", found2.OpponentID)
	assert.Equal(t, targetGawn, found1.TargetPlayer)

	th.handleJoinMatchmaking(c3, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "gamma"})
	events := drain(t, c3)
	assert.Equal(t, []string{evMatchmakingJoined}, eventNames(events), "third joiner keeps waiting")
	assert.Equal(t, []string{"conn-3"}, th.queues[3])

	// Paired players are out of the queue and only in the pending match.
	require.Len(t, th.pending, 1)
	pm := th.pending[found1.RoomCode]
	require.NotNil(t, pm)
	assert.Equal(t, [2]string{"conn-1", "conn-2"}, pm.players)
}

func TestJoinMatchmaking_MovesBetweenQueues(t *testing.T) {
	th := newTestHub(t)
	c := th.connect("conn-1")

	th.handleJoinMatchmaking(c, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "kanga"})
	th.handleJoinMatchmaking(c, joinMatchmakingIn{SeriesBestOf: 5, DisplayName: "kanga"})
	drain(t, c)

	assert.Empty(t, th.queues[3])
	assert.Equal(t, []string{"conn-1"}, th.queues[5])

	// Re-joining the same queue does not duplicate the entry.
	th.handleJoinMatchmaking(c, joinMatchmakingIn{SeriesBestOf: 5, DisplayName: "kanga"})
	assert.Equal(t, []string{"conn-1"}, th.queues[5])
}

func TestJoinMatchmaking_RejectedWhileMatchPending(t *testing.T) {
	th := newTestHub(t)
	th.provider.On("Random", mock.Anything).Return(targetGawn, nil)

	c1 := th.connect("conn-1")
	c2 := th.connect("conn-2")
	th.handleJoinMatchmaking(c1, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "alpha"})
	th.handleJoinMatchmaking(c2, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "beta"})
	drain(t, c1)
	drain(t, c2)
	require.Len(t, th.pending, 1)

	// Re-queueing before the match resolves would let one connection sit
	// in two pending matches at once.
	th.handleJoinMatchmaking(c1, joinMatchmakingIn{SeriesBestOf: 5, DisplayName: "alpha"})
	ev := expectEvent[matchmakingErrorOut](t, c1, evMatchmakingError)
	assert.Equal(t, mmErrMatchPending, ev.Code)
	assert.Empty(t, th.queues[5])
	assert.Len(t, th.pending, 1)
}

func TestJoinRoom_LeavesQueue(t *testing.T) {
	th := newTestHub(t)
	th.provider.On("Random", mock.Anything).Return(targetGawn, nil)

	host := th.connect("conn-host")
	th.handleCreateRoom(host, createRoomIn{})
	code := expectEvent[roomCreatedOut](t, host, evRoomCreated).RoomCode

	c := th.connect("conn-2")
	th.handleJoinMatchmaking(c, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "kanga"})
	drain(t, c)

	th.handleJoinRoom(c, joinRoomIn{RoomCode: code})
	assert.Empty(t, th.queues[3], "joining a room removes the queue entry")
	assert.Contains(t, eventNames(drain(t, c)), evMatchmakingLeft)
}

func TestLeaveMatchmaking(t *testing.T) {
	th := newTestHub(t)
	c := th.connect("conn-1")

	// Not queued: no confirmation.
	th.handleLeaveMatchmaking(c)
	assert.Empty(t, drain(t, c))

	th.handleJoinMatchmaking(c, joinMatchmakingIn{SeriesBestOf: 7, DisplayName: "kanga"})
	drain(t, c)

	th.handleLeaveMatchmaking(c)
	assert.Equal(t, []string{evMatchmakingLeft}, eventNames(drain(t, c)))
	assert.Empty(t, th.queues[7])
}

func TestMatchFoundAck_PromotesOnBothAcks(t *testing.T) {
	th := newTestHub(t)
	th.provider.On("Random", mock.Anything).Return(targetGawn, nil)

	c1 := th.connect("conn-1")
	c2 := th.connect("conn-2")
	th.handleJoinMatchmaking(c1, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "alpha"})
	th.handleJoinMatchmaking(c2, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "beta"})
	code := expectEvent[matchFoundOut](t, c1, evMatchFound).RoomCode
	drain(t, c2)

	// A repeat ack from the same connection counts once.
	th.handleMatchFoundAck(c1, matchFoundAckIn{RoomCode: code})
	th.handleMatchFoundAck(c1, matchFoundAckIn{RoomCode: code})
	assert.Empty(t, th.rooms, "one acker must not promote")

	th.handleMatchFoundAck(c2, matchFoundAckIn{RoomCode: code})

	require.Contains(t, th.rooms, code)
	r := th.rooms[code]
	assert.Equal(t, StatePlaying, r.state)
	assert.Equal(t, []string{"conn-1", "conn-2"}, r.players)
	assert.Equal(t, "alpha", r.names["conn-1"])
	assert.Equal(t, "beta", r.names["conn-2"])
	require.NotNil(t, r.series)
	assert.True(t, r.series.Enabled)
	assert.Equal(t, 2, r.series.TargetWins)
	assert.Equal(t, 1, r.series.CurrentRound)
	assert.Empty(t, th.pending, "pending match is consumed")

	for _, c := range []*Client{c1, c2} {
		events := drain(t, c)
		roster := decodeAs[roomPlayersOut](t, findEvent(t, events, evRoomPlayersUpdate))
		assert.Len(t, roster.Players, 2)
		status := decodeAs[battleStatusOut](t, findEvent(t, events, evBattleStatusUpdate))
		require.Len(t, status.PlayersStatus, 2)
		for _, st := range status.PlayersStatus {
			assert.Zero(t, st.Guesses)
			assert.False(t, st.IsFinished)
		}
	}
}

func TestMatchFoundAck_UnknownRoom(t *testing.T) {
	th := newTestHub(t)
	c := th.connect("conn-1")

	th.handleMatchFoundAck(c, matchFoundAckIn{RoomCode: "ZZZZZZ"})
	ev := expectEvent[matchmakingErrorOut](t, c, evMatchmakingError)
	assert.Equal(t, mmErrMatchNotFound, ev.Code)
}

func TestSweepPending_TimesOutUnacked(t *testing.T) {
	th := newTestHub(t)
	th.provider.On("Random", mock.Anything).Return(targetGawn, nil)

	c1 := th.connect("conn-1")
	c2 := th.connect("conn-2")
	th.handleJoinMatchmaking(c1, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "alpha"})
	th.handleJoinMatchmaking(c2, joinMatchmakingIn{SeriesBestOf: 3, DisplayName: "beta"})
	code := expectEvent[matchFoundOut](t, c1, evMatchFound).RoomCode
	drain(t, c2)

	// Only one side acks.
	th.handleMatchFoundAck(c1, matchFoundAckIn{RoomCode: code})

	// A sweep before the deadline leaves the match alone.
	th.sweepPending(th.pending[code].createdAt.Add(pendingMatchTTL))
	assert.Contains(t, th.pending, code)

	th.sweepPending(th.pending[code].createdAt.Add(pendingMatchTTL + time.Second))
	assert.NotContains(t, th.pending, code)
	assert.Equal(t, []string{evMatchmakingTimeout}, eventNames(drain(t, c1)))
	assert.Equal(t, []string{evMatchmakingTimeout}, eventNames(drain(t, c2)))
	assert.Empty(t, th.rooms)
}

func TestDisconnectBeforePromotion_FailsMatchForPeer(t *testing.T) {
	th := newTestHub(t)
	th.provider.On("Random", mock.Anything).Return(targetGawn, nil)

	c1 := th.connect("conn-1")
	c2 := th.connect("conn-2")
	th.handleJoinMatchmaking(c1, joinMatchmakingIn{SeriesBestOf: 5, DisplayName: "alpha"})
	th.handleJoinMatchmaking(c2, joinMatchmakingIn{SeriesBestOf: 5, DisplayName: "beta"})
	drain(t, c1)
	drain(t, c2)

	th.handleDisconnect(c1)

	assert.Empty(t, th.pending)
	// The peer sees a timeout, not a disconnect: the match failed to form.
	assert.Equal(t, []string{evMatchmakingTimeout}, eventNames(drain(t, c2)))
	assert.NotContains(t, th.clients, "conn-1")
	assert.NotContains(t, th.names, "conn-1")
}
