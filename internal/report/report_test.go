package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/raine/career-tracker/internal/extract"
	"github.com/raine/career-tracker/internal/processor"
	"github.com/raine/career-tracker/internal/storage"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seasonStart = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	snapshotAt  = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	exportedAt  = time.Date(2025, 9, 14, 18, 30, 0, 0, time.UTC)
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleDocument() *storage.ExportDocument {
	age := 30
	return &storage.ExportDocument{
		ExportDate: exportedAt,
		Seasons: []storage.Season{{
			ID:          1,
			Name:        "Wrexham S1",
			StartDate:   seasonStart,
			GameVersion: "FC 25",
			IsActive:    true,
			CreatedAt:   seasonStart,
		}},
		TeamSnapshots: []storage.TeamSnapshot{{
			ID:             1,
			SeasonID:       1,
			Timestamp:      snapshotAt,
			Source:         "league_table",
			TeamName:       "Wrexham",
			Position:       4,
			Points:         52,
			Wins:           15,
			Draws:          7,
			Losses:         6,
			GoalsFor:       48,
			GoalsAgainst:   30,
			GoalDifference: 18,
			GamesPlayed:    28,
			Form:           "WDWWL",
		}},
		PlayerRecords: []storage.PlayerRecord{{
			ID:          1,
			SeasonID:    1,
			Timestamp:   snapshotAt,
			Name:        "Paul Mullin",
			Position:    "ST",
			Rating:      74,
			Goals:       14,
			Assists:     3,
			Appearances: 20,
			Age:         &age,
			Nationality: "England",
		}},
	}
}

func TestWriteExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, sampleDocument()))
	newGoldie(t).Assert(t, "export", buf.Bytes())
}

func TestWriteExport_Empty(t *testing.T) {
	doc := &storage.ExportDocument{
		ExportDate:    exportedAt,
		Seasons:       []storage.Season{},
		TeamSnapshots: []storage.TeamSnapshot{},
		PlayerRecords: []storage.PlayerRecord{},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, doc))
	newGoldie(t).Assert(t, "export_empty", buf.Bytes())
}

func TestRender(t *testing.T) {
	doc := sampleDocument()
	earlier := doc.TeamSnapshots[0]
	earlier.Timestamp = seasonStart.AddDate(0, 0, 14)
	earlier.Position = 9
	earlier.Points = 10

	progress := &storage.SeasonProgress{
		Snapshots:    []storage.TeamSnapshot{earlier, doc.TeamSnapshots[0]},
		TopScorers:   doc.PlayerRecords,
		TopAssisters: doc.PlayerRecords,
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &doc.Seasons[0], progress))
	out := buf.String()

	assert.Contains(t, out, "Wrexham S1 (FC 25)")
	assert.Contains(t, out, "Position 4, 52 points from 28 games (15-7-6), goal difference +18")
	assert.Contains(t, out, "Form WDWWL")
	assert.Contains(t, out, "2025-08-15")
	assert.Contains(t, out, "2025-09-01")
	assert.Contains(t, out, "Top scorers")
	assert.Contains(t, out, "Top assisters")
	assert.Contains(t, out, "Paul Mullin")
}

func TestRender_EmptySeason(t *testing.T) {
	season := &storage.Season{ID: 2, Name: "Fresh Save"}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, season, &storage.SeasonProgress{}))

	out := buf.String()
	assert.Contains(t, out, "Fresh Save")
	assert.Contains(t, out, "No team snapshots yet.")
	assert.Contains(t, out, "No player records yet.")
	assert.NotContains(t, out, "Current standing")
}

func TestRenderResults(t *testing.T) {
	results := []processor.FileResult{
		{
			Filename:   "table.png",
			Status:     processor.StatusSaved,
			Extraction: extract.Extraction{Type: extract.TypeLeagueTable, Confidence: 0.92},
			Snapshots:  1,
		},
		{Filename: "table.png", Status: processor.StatusSkipped},
		{
			Filename:   "menu.png",
			Status:     processor.StatusUnrecognized,
			Extraction: extract.Unknown("no JSON object found in response"),
		},
		{
			Filename:   "squad.png",
			Status:     processor.StatusFailed,
			Extraction: extract.Failed(errors.New("boom")),
			Err:        errors.New("boom"),
		},
		{
			Filename: "players.png",
			Status:   processor.StatusSaved,
			Extraction: extract.Extraction{
				Type:       extract.TypePlayerStats,
				Confidence: 0.8,
			},
			Players:  2,
			Warnings: []string{`player 3 ("") rejected`},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderResults(&buf, results))
	out := buf.String()

	assert.Contains(t, out, "1 snapshot(s), 0 player(s)")
	assert.Contains(t, out, "already processed")
	assert.Contains(t, out, "no JSON object found in response")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "0.92")
	assert.Contains(t, out, "2 saved, 1 skipped, 1 not saved, 1 failed")
	assert.Contains(t, out, `players.png: player 3 ("") rejected`)
}

func TestRenderSeasons(t *testing.T) {
	end := seasonStart.AddDate(1, 0, 0)
	seasons := []storage.Season{
		{ID: 2, Name: "Season 2", GameVersion: "FC 25", StartDate: end, IsActive: true},
		{ID: 1, Name: "Season 1", GameVersion: "FC 24", StartDate: seasonStart, EndDate: &end},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSeasons(&buf, seasons))
	out := buf.String()
	assert.Contains(t, out, "Season 2")
	assert.Contains(t, out, "FC 24")
	assert.Contains(t, out, "2026-08-01")
	assert.Contains(t, out, "*")

	buf.Reset()
	require.NoError(t, RenderSeasons(&buf, nil))
	assert.Contains(t, buf.String(), "No seasons yet")
}

func TestRenderProcessed(t *testing.T) {
	markers := []storage.ProcessedScreenshot{{
		Filename:    "table.png",
		Type:        "league_table",
		Confidence:  0.9,
		ProcessedAt: snapshotAt,
	}}

	var buf bytes.Buffer
	require.NoError(t, RenderProcessed(&buf, markers))
	out := buf.String()
	assert.Contains(t, out, "table.png")
	assert.Contains(t, out, "league_table")
	assert.Contains(t, out, "2025-09-01 00:00")

	buf.Reset()
	require.NoError(t, RenderProcessed(&buf, nil))
	assert.Contains(t, buf.String(), "No screenshots processed yet.")
}
