package vision

import (
	"strings"

	"github.com/lithammer/dedent"
)

// screenshotPrompt describes the three screen layouts the tracker understands
// and the JSON envelope the reply has to use.
var screenshotPrompt = strings.TrimSpace(dedent.Dedent(`
	Analyze this screenshot from a football game career mode and extract the data it shows.

	Decide which of these screens it is:
	- league_table: a league standings table. Report the row of the user's team.
	- team_stats: a team overview or season statistics screen for the user's team.
	- player_stats: a squad or player statistics screen listing one or more players.
	- unknown: anything else.

	Respond in JSON format with these fields:
	- type: one of "league_table", "team_stats", "player_stats", "unknown"
	- confidence: a number between 0 and 1 describing how sure you are about the extracted values
	- data: the extracted values (null when type is "unknown")
	- errors: a list of problems you noticed (empty list when none)

	For league_table and team_stats, data has these fields:
	{"teamName": string, "position": number, "points": number, "wins": number, "draws": number, "losses": number, "goalsFor": number, "goalsAgainst": number, "gamesPlayed": number, "form": string}

	For player_stats, data has a "players" list. Each player has these fields:
	{"name": string, "position": string, "rating": number, "goals": number, "assists": number, "appearances": number, "age": number, "nationality": string}

	Omit fields that are not visible. Use the form string exactly as shown, for example "WWDLW".

	Example response:
	{"type": "league_table", "confidence": 0.9, "data": {"teamName": "Wrexham", "position": 4, "points": 52, "wins": 15, "draws": 7, "losses": 6, "goalsFor": 48, "goalsAgainst": 30, "gamesPlayed": 28, "form": "WDWWL"}, "errors": []}

	Respond ONLY with the JSON object, no markdown or other text.
`))

// Prompt returns the instruction text sent alongside every screenshot.
func Prompt() string {
	return screenshotPrompt
}
