package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The import pipeline takes the raw player dumps the catalog is maintained
// in (CSV exports and JSON scrapes), fixes up the usual defects (stray
// whitespace, missing ids, duplicate rows) and hands the result to a store.

// ReadJSON parses a JSON array of players.
func ReadJSON(r io.Reader) ([]Player, error) {
	var players []Player
	if err := json.NewDecoder(r).Decode(&players); err != nil {
		return nil, fmt.Errorf("parsing player json: %w", err)
	}
	return players, nil
}

// ReadCSV parses a player CSV. The header row names the columns; unknown
// columns are ignored so exports with extra stats still load.
func ReadCSV(r io.Reader) ([]Player, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, fmt.Errorf("csv is missing a name column")
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	intField := func(rec []string, name string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(field(rec, name)))
		return n
	}

	var players []Player
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		players = append(players, Player{
			ID:       field(rec, "id"),
			Name:     field(rec, "name"),
			Team:     field(rec, "team"),
			Number:   intField(rec, "number"),
			Position: field(rec, "position"),
			Height:   intField(rec, "height"),
			Weight:   intField(rec, "weight"),
			Age:      intField(rec, "age"),
		})
	}
	return players, nil
}

// Normalize trims every text field, drops rows without a name, backfills
// missing ids from the name, and dedupes by id keeping the first
// occurrence.
func Normalize(players []Player) []Player {
	out := make([]Player, 0, len(players))
	seen := make(map[string]bool, len(players))

	for _, p := range players {
		p.Name = strings.TrimSpace(p.Name)
		p.Team = strings.TrimSpace(p.Team)
		p.Position = strings.TrimSpace(p.Position)
		p.ID = strings.TrimSpace(p.ID)
		if p.Name == "" {
			continue
		}
		if p.ID == "" {
			p.ID = Slug(p.Name)
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// Slug turns a display name into a stable lowercase id ("Nick Daicos" →
// "nick-daicos").
func Slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
