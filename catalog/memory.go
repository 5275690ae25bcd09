package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

//go:embed players.json
var seedPlayers []byte

// Memory serves the catalog from a slice. The zero value is unusable; use
// NewMemory for the embedded seed or NewMemoryFromPlayers for tests and
// import previews.
type Memory struct {
	players []Player
}

func NewMemory() (*Memory, error) {
	var players []Player
	if err := json.Unmarshal(seedPlayers, &players); err != nil {
		return nil, fmt.Errorf("parsing embedded player seed: %w", err)
	}
	return NewMemoryFromPlayers(players), nil
}

func NewMemoryFromPlayers(players []Player) *Memory {
	return &Memory{players: players}
}

func (m *Memory) All(ctx context.Context) ([]Player, error) {
	out := make([]Player, len(m.players))
	copy(out, m.players)
	return out, nil
}

func (m *Memory) Random(ctx context.Context) (Player, error) {
	if len(m.players) == 0 {
		return Player{}, ErrEmptyCatalog
	}
	return m.players[rand.IntN(len(m.players))], nil
}
