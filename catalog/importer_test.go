package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := strings.Join([]string{
		"name,team,number,position,height,weight,age,supercoach_avg",
		"Nick Daicos,Collingwood,35,Midfield,184,79,23,112.4",
		"Max Gawn, Melbourne ,11,Ruck,208,109,33,98.1",
	}, "\n")

	players, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, players, 2)

	want := Player{Name: "Nick Daicos", Team: "Collingwood", Number: 35, Position: "Midfield", Height: 184, Weight: 79, Age: 23}
	if diff := cmp.Diff(want, players[0]); diff != "" {
		t.Errorf("first player mismatch (-want +got):\n%s", diff)
	}
	// Unknown columns are ignored; trailing whitespace survives until
	// Normalize.
	assert.Equal(t, "Melbourne ", players[1].Team)
}

func TestReadCSV_MissingNameColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("team,number\nCarlton,9\n"))
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	in := `[{"name": "Lachie Neale", "team": "Brisbane Lions", "number": 9}]`
	players, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Lachie Neale", players[0].Name)
	assert.Equal(t, 9, players[0].Number)
}

func TestNormalize(t *testing.T) {
	in := []Player{
		{Name: "  Max Gawn ", Team: " Melbourne "},
		{Name: ""},
		{ID: "max-gawn", Name: "Max Gawn"},
		{Name: "Kysaiah Pickett"},
	}

	out := Normalize(in)
	require.Len(t, out, 2)

	assert.Equal(t, "max-gawn", out[0].ID)
	assert.Equal(t, "Max Gawn", out[0].Name)
	assert.Equal(t, "Melbourne", out[0].Team)
	assert.Equal(t, "kysaiah-pickett", out[1].ID)
}

func TestSlug(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Nick Daicos", "nick-daicos"},
		{"Tom O'Connell", "tom-o-connell"},
		{"  Jason   Horne-Francis ", "jason-horne-francis"},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Slug(tc.in), "slug of %q", tc.in)
	}
}
