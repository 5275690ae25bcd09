package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo serves the catalog from the players table. Schema lives in
// migrations/.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) All(ctx context.Context) ([]Player, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, team, number, position, height, weight, age FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer rows.Close()

	players := make([]Player, 0, 64)
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &p.Number, &p.Position, &p.Height, &p.Weight, &p.Age); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	return players, nil
}

func (r *PostgresRepo) Random(ctx context.Context) (Player, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, team, number, position, height, weight, age FROM players ORDER BY RANDOM() LIMIT 1`)

	var p Player
	err := row.Scan(&p.ID, &p.Name, &p.Team, &p.Number, &p.Position, &p.Height, &p.Weight, &p.Age)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Player{}, ErrEmptyCatalog
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return Player{}, err
		default:
			return Player{}, fmt.Errorf("%w: %w", ErrDatabase, err)
		}
	}
	return p, nil
}

// ReplaceAll swaps the whole catalog for the given set in one transaction.
// Used by the import pipeline, so a half-loaded file never goes live.
func (r *PostgresRepo) ReplaceAll(ctx context.Context, players []Player) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE players`); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"players"},
		[]string{"id", "name", "team", "number", "position", "height", "weight", "age"},
		pgx.CopyFromSlice(len(players), func(i int) ([]any, error) {
			p := players[i]
			return []any{p.ID, p.Name, p.Team, p.Number, p.Position, p.Height, p.Weight, p.Age}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	return nil
}
