package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertUnknown(t *testing.T, ex Extraction) {
	t.Helper()
	assert.Equal(t, TypeUnknown, ex.Type)
	assert.Equal(t, 0.0, ex.Confidence)
	assert.Nil(t, ex.Data)
	assert.False(t, ex.HasData())
	assert.NotEmpty(t, ex.Errors)
}

func TestInterpret_NoJSONObject(t *testing.T) {
	tests := []string{
		"",
		"I could not read this screenshot.",
		"closing only }",
		`{"type": "league_table", "confidence": 0.9`,
		`{"type": "league_table", "note": "}"`,
	}
	for _, reply := range tests {
		t.Run(reply, func(t *testing.T) {
			assertUnknown(t, Interpret(reply))
		})
	}
}

func TestInterpret_MalformedJSON(t *testing.T) {
	ex := Interpret(`Sure! {type: league_table}`)
	assertUnknown(t, ex)
	assert.Contains(t, ex.Errors[0], "malformed")
}

func TestInterpret_UnexpectedType(t *testing.T) {
	tests := []string{
		`{"type": "match_report", "confidence": 0.9, "data": {}}`,
		`{"confidence": 0.9, "data": {}}`,
		`{"type": 3, "confidence": 0.9}`,
		`{"type": "LEAGUE_TABLE", "confidence": 0.9}`,
	}
	for _, reply := range tests {
		t.Run(reply, func(t *testing.T) {
			ex := Interpret(reply)
			assertUnknown(t, ex)
			assert.Contains(t, ex.Errors[0], "unexpected screenshot type")
		})
	}
}

func TestInterpret_ValidReply(t *testing.T) {
	reply := "Here is the analysis:\n```json\n" +
		`{"type": "league_table", "confidence": 0.92, "data": {"position": 3, "points": 41, "teamName": "Wrexham {AFC}"}, "errors": []}` +
		"\n```\nLet me know if you need anything else {ok}."

	ex := Interpret(reply)
	assert.Equal(t, TypeLeagueTable, ex.Type)
	assert.Equal(t, 0.92, ex.Confidence)
	assert.JSONEq(t, `{"position": 3, "points": 41, "teamName": "Wrexham {AFC}"}`, string(ex.Data))
	assert.Empty(t, ex.Errors)
	assert.True(t, ex.HasData())
}

func TestInterpret_UnknownTypePassesThrough(t *testing.T) {
	ex := Interpret(`{"type": "unknown", "confidence": 0.1, "data": null, "errors": ["menu screen"]}`)
	assert.Equal(t, TypeUnknown, ex.Type)
	assert.Equal(t, 0.1, ex.Confidence)
	assert.False(t, ex.HasData())
	assert.Equal(t, []string{"menu screen"}, ex.Errors)
}

func TestInterpret_ConfidenceCoercion(t *testing.T) {
	tests := []struct {
		name       string
		confidence string
		want       float64
	}{
		{"above range", `1.7`, DefaultConfidence},
		{"below range", `-0.2`, DefaultConfidence},
		{"string", `"high"`, DefaultConfidence},
		{"null", `null`, DefaultConfidence},
		{"bool", `true`, DefaultConfidence},
		{"lower bound", `0`, 0},
		{"upper bound", `1`, 1},
		{"in range", `0.31`, 0.31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := Interpret(`{"type": "team_stats", "confidence": ` + tt.confidence + `, "data": {"wins": 5}, "errors": ["blurry"]}`)
			assert.Equal(t, TypeTeamStats, ex.Type)
			assert.Equal(t, tt.want, ex.Confidence)
			assert.JSONEq(t, `{"wins": 5}`, string(ex.Data))
			assert.Equal(t, []string{"blurry"}, ex.Errors)
		})
	}
}

func TestInterpret_MissingConfidence(t *testing.T) {
	ex := Interpret(`{"type": "player_stats", "data": {"players": []}}`)
	assert.Equal(t, TypePlayerStats, ex.Type)
	assert.Equal(t, DefaultConfidence, ex.Confidence)
}

func TestInterpret_SingleStringError(t *testing.T) {
	ex := Interpret(`{"type": "team_stats", "confidence": 0.4, "errors": "partially cropped"}`)
	assert.Equal(t, []string{"partially cropped"}, ex.Errors)
	assert.False(t, ex.HasData())
}

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"nested", `x {"a":{"b":2}} y {"c":3}`, `{"a":{"b":2}}`, true},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`, true},
		{"escaped quote", `{"a":"say \"}\" now"} trailing`, `{"a":"say \"}\" now"}`, true},
		{"unbalanced", `{"a":{"b":1}`, "", false},
		{"none", `no json here`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstJSONObject(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFailed(t *testing.T) {
	ex := Failed(assert.AnError)
	assertUnknown(t, ex)
	assert.Contains(t, ex.Errors[0], assert.AnError.Error())
}

func TestExtraction_Team(t *testing.T) {
	ex := Interpret(`{"type": "league_table", "confidence": 0.8, "data": {"position": 2, "points": 50, "wins": 15, "draws": 5, "losses": 4, "goalsFor": 44, "goalsAgainst": 20, "form": "WWDLW"}}`)
	team, err := ex.Team()
	require.NoError(t, err)
	assert.Equal(t, 2, team.Position)
	assert.Equal(t, 50, team.Points)
	assert.Equal(t, 44, team.GoalsFor)
	assert.Nil(t, team.GamesPlayed)
	assert.Equal(t, "WWDLW", team.Form)

	_, err = ex.Players()
	assert.Error(t, err)
}

func TestExtraction_Players(t *testing.T) {
	ex := Interpret(`{"type": "player_stats", "confidence": 0.8, "data": {"players": [
		{"name": "K. Mbappé", "position": "ST", "rating": 91, "goals": 20, "assists": 7, "appearances": 25, "age": 26},
		{"name": "Pedri", "position": "CM", "rating": 87.5, "goals": 4, "assists": 11, "appearances": 24, "nationality": "Spain"}
	]}}`)
	players, err := ex.Players()
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "K. Mbappé", players[0].Name)
	require.NotNil(t, players[0].Age)
	assert.Equal(t, 26, *players[0].Age)
	assert.Equal(t, 87.5, players[1].Rating)
	assert.Equal(t, "Spain", players[1].Nationality)
}

func TestExtraction_SinglePlayerObject(t *testing.T) {
	ex := Interpret(`{"type": "player_stats", "confidence": 0.7, "data": {"name": "Rodri", "position": "CDM", "rating": 90, "goals": 3}}`)
	players, err := ex.Players()
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Rodri", players[0].Name)
	assert.Equal(t, 3, players[0].Goals)
}

func TestInterpret_NonStringErrorsAreKept(t *testing.T) {
	ex := Interpret(`{"type": "player_stats", "confidence": 0.6, "data": null, "errors": ["cropped", {"field": "goals"}, 1, null]}`)
	assert.Equal(t, []string{"cropped", `{"field": "goals"}`, "1"}, ex.Errors)

	ex = Interpret(`{"type": "player_stats", "confidence": 0.6, "errors": {"field": "goals"}}`)
	assert.Equal(t, []string{`{"field": "goals"}`}, ex.Errors)
}

func TestExtraction_TeamLenientValues(t *testing.T) {
	ex := Interpret(`{"type": "team_stats", "confidence": 0.8, "data": {"teamName": "Wrexham", "position": "4", "points": "52.0", "wins": "15", "draws": null, "losses": "n/a", "goalsFor": 48, "gamesPlayed": "28", "form": ["W", "D", "W"]}}`)
	team, err := ex.Team()
	require.NoError(t, err)
	assert.Equal(t, "Wrexham", team.TeamName)
	assert.Equal(t, 4, team.Position)
	assert.Equal(t, 52, team.Points)
	assert.Equal(t, 15, team.Wins)
	assert.Equal(t, 0, team.Draws)
	assert.Equal(t, 0, team.Losses)
	require.NotNil(t, team.GamesPlayed)
	assert.Equal(t, 28, *team.GamesPlayed)
	assert.Equal(t, "WDW", team.Form)
}

func TestExtraction_PlayersLenientValues(t *testing.T) {
	ex := Interpret(`{"type": "player_stats", "confidence": 0.8, "data": {"players": [{"name": "Pedri", "rating": "87.5", "goals": "4", "age": null, "nationality": 34}]}}`)
	players, err := ex.Players()
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, 87.5, players[0].Rating)
	assert.Equal(t, 4, players[0].Goals)
	assert.Nil(t, players[0].Age)
	assert.Equal(t, "34", players[0].Nationality)
}
