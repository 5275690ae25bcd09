// Package catalog provides the AFL player catalog the game draws its
// secret targets from. Two stores implement Provider: an embedded
// in-memory seed used by default, and a postgres-backed store fed by the
// import pipeline.
package catalog

import (
	"context"
	"errors"
)

// Player is one guessable entry in the catalog. Heights are centimetres,
// weights kilograms.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Number   int    `json:"number"`
	Position string `json:"position"`
	Height   int    `json:"height"`
	Weight   int    `json:"weight"`
	Age      int    `json:"age"`
}

// Provider is what the game core needs from a catalog: the full list for
// client-side autocomplete, and a uniformly random target per round.
type Provider interface {
	All(ctx context.Context) ([]Player, error)
	Random(ctx context.Context) (Player, error)
}

var (
	ErrEmptyCatalog = errors.New("player catalog is empty")
	ErrDatabase     = errors.New("unexpected database error")
)
