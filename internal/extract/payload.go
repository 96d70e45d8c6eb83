package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TeamPayload is the data block of league_table and team_stats replies.
type TeamPayload struct {
	TeamName     string
	Position     int
	Points       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	GamesPlayed  *int
	Form         string
}

// PlayerPayload is one player line of a player_stats reply.
type PlayerPayload struct {
	Name        string
	Position    string
	Rating      float64
	Goals       int
	Assists     int
	Appearances int
	Age         *int
	Nationality string
}

// Models do not always respect the requested types: numbers arrive as
// strings ("4", "+18") and form guides as lists. The wire types below accept
// those shapes and decode anything unusable to its zero value.

type flexInt struct {
	value int
	set   bool
}

func (n *flexInt) UnmarshalJSON(b []byte) error {
	f, ok := parseNumber(b)
	*n = flexInt{value: int(math.Round(f)), set: ok}
	return nil
}

func (n flexInt) ptr() *int {
	if !n.set {
		return nil
	}
	v := n.value
	return &v
}

type flexFloat float64

func (n *flexFloat) UnmarshalJSON(b []byte) error {
	f, _ := parseNumber(b)
	*n = flexFloat(f)
	return nil
}

type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = flexText(strings.TrimSpace(s))
		return nil
	}
	var parts []string
	if err := json.Unmarshal(b, &parts); err == nil {
		*t = flexText(strings.Join(parts, ""))
		return nil
	}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || b[0] == '{' || b[0] == '[' {
		*t = ""
		return nil
	}
	*t = flexText(b)
	return nil
}

func parseNumber(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	var f *float64
	if err := json.Unmarshal(b, &f); err == nil {
		if f == nil {
			return 0, false
		}
		return *f, true
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return 0, false
	}
	f64, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "+"), 64)
	if err != nil || math.IsNaN(f64) || math.IsInf(f64, 0) {
		return 0, false
	}
	return f64, true
}

type teamWire struct {
	TeamName     flexText `json:"teamName"`
	Position     flexInt  `json:"position"`
	Points       flexInt  `json:"points"`
	Wins         flexInt  `json:"wins"`
	Draws        flexInt  `json:"draws"`
	Losses       flexInt  `json:"losses"`
	GoalsFor     flexInt  `json:"goalsFor"`
	GoalsAgainst flexInt  `json:"goalsAgainst"`
	GamesPlayed  flexInt  `json:"gamesPlayed"`
	Form         flexText `json:"form"`
}

func (p *TeamPayload) UnmarshalJSON(b []byte) error {
	var w teamWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = TeamPayload{
		TeamName:     string(w.TeamName),
		Position:     w.Position.value,
		Points:       w.Points.value,
		Wins:         w.Wins.value,
		Draws:        w.Draws.value,
		Losses:       w.Losses.value,
		GoalsFor:     w.GoalsFor.value,
		GoalsAgainst: w.GoalsAgainst.value,
		GamesPlayed:  w.GamesPlayed.ptr(),
		Form:         string(w.Form),
	}
	return nil
}

type playerWire struct {
	Name        flexText  `json:"name"`
	Position    flexText  `json:"position"`
	Rating      flexFloat `json:"rating"`
	Goals       flexInt   `json:"goals"`
	Assists     flexInt   `json:"assists"`
	Appearances flexInt   `json:"appearances"`
	Age         flexInt   `json:"age"`
	Nationality flexText  `json:"nationality"`
}

func (p *PlayerPayload) UnmarshalJSON(b []byte) error {
	var w playerWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = PlayerPayload{
		Name:        string(w.Name),
		Position:    string(w.Position),
		Rating:      float64(w.Rating),
		Goals:       w.Goals.value,
		Assists:     w.Assists.value,
		Appearances: w.Appearances.value,
		Age:         w.Age.ptr(),
		Nationality: string(w.Nationality),
	}
	return nil
}

// Team decodes the payload of a team-level extraction.
func (e Extraction) Team() (*TeamPayload, error) {
	if e.Type != TypeLeagueTable && e.Type != TypeTeamStats {
		return nil, fmt.Errorf("extraction of type %s has no team payload", e.Type)
	}
	if !e.HasData() {
		return nil, fmt.Errorf("extraction has no data")
	}
	var p TeamPayload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode team payload: %w", err)
	}
	return &p, nil
}

// Players decodes the payload of a player_stats extraction. The data block is
// either {"players": [...]} or a single player object.
func (e Extraction) Players() ([]PlayerPayload, error) {
	if e.Type != TypePlayerStats {
		return nil, fmt.Errorf("extraction of type %s has no player payload", e.Type)
	}
	if !e.HasData() {
		return nil, fmt.Errorf("extraction has no data")
	}

	var wrapped struct {
		Players []PlayerPayload `json:"players"`
	}
	if err := json.Unmarshal(e.Data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode player payload: %w", err)
	}
	if wrapped.Players != nil {
		return wrapped.Players, nil
	}

	var single PlayerPayload
	if err := json.Unmarshal(e.Data, &single); err != nil {
		return nil, fmt.Errorf("failed to decode player payload: %w", err)
	}
	if single.Name == "" {
		return nil, nil
	}
	return []PlayerPayload{single}, nil
}
