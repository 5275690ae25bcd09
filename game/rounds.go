package game

import "time"

// Round resolution. Both room shapes (matchmade battles and private rooms)
// funnel through handleGuessPlayer; the branches below are one state
// machine keyed on correctness and series mode.

func (h *Hub) handleGuessPlayer(c *Client, in guessPlayerIn) {
	r, ok := h.rooms[in.RoomCode]
	if !ok || !r.contains(c.id) {
		c.send(evRoomError, roomErrorOut{Message: errRoomNotFound})
		return
	}

	// A room finished by a win or a disconnect takes no further guesses.
	if r.state == StateFinished {
		c.send(evGuessResult, guessResultOut{
			IsCorrect:  false,
			PlayerID:   in.PlayerID,
			MaxGuesses: maxGuesses,
			Error:      "game already finished",
		})
		return
	}

	// Private rooms created before a battle-status reset still accept
	// guesses; give them a status map on first use.
	if r.status == nil {
		r.status = make(map[string]*PlayerStatus, len(r.players))
	}
	st := r.status[c.id]
	if st == nil {
		st = &PlayerStatus{}
		r.status[c.id] = st
	}

	if st.IsFinished || st.Guesses >= maxGuesses {
		c.send(evGuessResult, guessResultOut{
			IsCorrect:   false,
			PlayerID:    in.PlayerID,
			GuessesUsed: st.Guesses,
			MaxGuesses:  maxGuesses,
			Error:       "guess limit reached",
		})
		return
	}

	st.Guesses++
	correct := in.PlayerID != "" && in.PlayerID == r.target.ID

	switch {
	case correct && r.series != nil && r.series.Enabled:
		h.resolveSeriesRound(r, c.id)
	case correct:
		h.resolveBattleWin(r, c.id)
	case st.Guesses >= maxGuesses:
		st.IsFinished = true
		if r.allFinished() {
			r.stopCountdown()
			r.state = StateFinished
			h.broadcastRoom(r, evBattleGameOver, battleGameOverOut{
				TargetPlayer:  r.target,
				GameEndReason: reasonAllGuessesUsed,
				PlayersStatus: r.statusSnapshot(),
			})
		} else {
			h.broadcastRoom(r, evBattleStatusUpdate, battleStatusOut{PlayersStatus: r.statusSnapshot()})
		}
	default:
		h.broadcastRoom(r, evBattleStatusUpdate, battleStatusOut{PlayersStatus: r.statusSnapshot()})
	}

	c.send(evGuessResult, guessResultOut{
		IsCorrect:   correct,
		PlayerID:    in.PlayerID,
		GuessesUsed: st.Guesses,
		MaxGuesses:  maxGuesses,
	})
}

// resolveSeriesRound credits the round to winner and either finishes the
// series or arms the countdown to the next round.
func (h *Hub) resolveSeriesRound(r *Room, winner string) {
	s := r.series
	s.Wins[winner]++

	for id, st := range r.status {
		st.IsFinished = true
		st.IsWinner = id == winner
	}
	h.broadcastRoom(r, evBattleStatusUpdate, battleStatusOut{PlayersStatus: r.statusSnapshot()})

	out := r.seriesSnapshot()
	if s.Wins[winner] >= s.TargetWins {
		out.FinalWinner = winner
		r.state = StateFinished
		h.log.Info().Str("room", r.code).Str("winner", winner).Msg("series won")
		h.broadcastRoom(r, evGameOver, gameOverOut{Winner: winner, TargetPlayer: r.target, Series: out})
		return
	}

	h.broadcastRoom(r, evGameOver, gameOverOut{Winner: winner, TargetPlayer: r.target, Series: out})

	r.roundPending = true
	next := s.CurrentRound + 1
	h.broadcastRoom(r, evRoundCountdown, roundCountdownOut{
		Seconds:   roundCountdownSecs,
		NextRound: next,
		Series:    r.seriesSnapshot(),
	})

	code := r.code
	r.cancelCountdown = h.schedule(roundCountdownSecs*time.Second, func() {
		h.startNextRound(code)
	})
}

// startNextRound fires after the countdown. The room may have been torn
// down or finished in the meantime, so every precondition is re-checked.
func (h *Hub) startNextRound(code string) {
	r, ok := h.rooms[code]
	if !ok || r.series == nil || !r.series.Enabled || !r.roundPending || r.state != StatePlaying {
		return
	}
	r.roundPending = false
	r.cancelCountdown = nil

	target, ok := h.randomTarget()
	if !ok {
		return
	}
	r.series.CurrentRound++
	r.target = target
	r.resetStatus()

	h.log.Debug().Str("room", r.code).Int("round", r.series.CurrentRound).Msg("round started")
	h.broadcastRoom(r, evBattleStatusUpdate, battleStatusOut{PlayersStatus: r.statusSnapshot()})
	h.broadcastRoom(r, evGameStart, gameStartOut{TargetPlayer: r.target})
}

// resolveBattleWin ends a non-series battle on the first correct guess.
func (h *Hub) resolveBattleWin(r *Room, winner string) {
	for id, st := range r.status {
		st.IsFinished = true
		st.IsWinner = id == winner
	}
	r.stopCountdown()
	r.state = StateFinished

	loser := ""
	if len(r.players) == 2 {
		for _, id := range r.players {
			if id != winner {
				loser = id
			}
		}
	}

	h.broadcastRoom(r, evBattleStatusUpdate, battleStatusOut{PlayersStatus: r.statusSnapshot()})
	h.log.Info().Str("room", r.code).Str("winner", winner).Msg("battle won")
	h.broadcastRoom(r, evBattleGameOver, battleGameOverOut{
		Winner:        winner,
		Loser:         loser,
		TargetPlayer:  r.target,
		GameEndReason: reasonCorrectGuess,
		PlayersStatus: r.statusSnapshot(),
	})
}
