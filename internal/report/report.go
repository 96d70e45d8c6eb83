// Package report renders tracker data for the terminal and writes exports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/raine/career-tracker/internal/processor"
	"github.com/raine/career-tracker/internal/storage"
)

const dateLayout = "2006-01-02"

// Render writes the progress summary of a season: the latest standing, the
// snapshot history and the top scorer and assister lists.
func Render(w io.Writer, season *storage.Season, progress *storage.SeasonProgress) error {
	var b strings.Builder

	title := season.Name
	if season.GameVersion != "" {
		title += " (" + season.GameVersion + ")"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(progress.Snapshots) == 0 {
		b.WriteString(mutedStyle.Render("No team snapshots yet."))
		b.WriteString("\n")
	} else {
		latest := progress.Snapshots[len(progress.Snapshots)-1]
		b.WriteString(headingStyle.Render("Current standing"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Position %d, %d points from %d games (%d-%d-%d), goal difference %+d\n",
			latest.Position, latest.Points, latest.GamesPlayed,
			latest.Wins, latest.Draws, latest.Losses, latest.GoalDifference)
		if latest.Form != "" {
			fmt.Fprintf(&b, "Form %s\n", latest.Form)
		}

		b.WriteString("\n")
		b.WriteString(headingStyle.Render("History"))
		b.WriteString("\n")
		rows := make([][]string, 0, len(progress.Snapshots))
		for _, s := range progress.Snapshots {
			rows = append(rows, []string{
				s.Timestamp.Format(dateLayout),
				strconv.Itoa(s.Position),
				strconv.Itoa(s.Points),
				strconv.Itoa(s.GamesPlayed),
				fmt.Sprintf("%d-%d-%d", s.Wins, s.Draws, s.Losses),
				fmt.Sprintf("%d:%d", s.GoalsFor, s.GoalsAgainst),
				s.Form,
			})
		}
		b.WriteString(renderTable([]string{"Date", "Pos", "Pts", "GP", "W-D-L", "Goals", "Form"}, rows))
		b.WriteString("\n")
	}

	writePlayers(&b, "Top scorers", "Goals", progress.TopScorers, func(p storage.PlayerRecord) int { return p.Goals })
	writePlayers(&b, "Top assisters", "Assists", progress.TopAssisters, func(p storage.PlayerRecord) int { return p.Assists })

	_, err := io.WriteString(w, b.String())
	return err
}

func writePlayers(b *strings.Builder, heading, statName string, players []storage.PlayerRecord, stat func(storage.PlayerRecord) int) {
	b.WriteString("\n")
	b.WriteString(headingStyle.Render(heading))
	b.WriteString("\n")
	if len(players) == 0 {
		b.WriteString(mutedStyle.Render("No player records yet."))
		b.WriteString("\n")
		return
	}

	rows := make([][]string, 0, len(players))
	for i, p := range players {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Name,
			p.Position,
			strconv.Itoa(stat(p)),
			strconv.Itoa(p.Appearances),
		})
	}
	b.WriteString(renderTable([]string{"#", "Name", "Pos", statName, "Apps"}, rows))
	b.WriteString("\n")
}

// RenderResults writes one line per processed upload.
func RenderResults(w io.Writer, results []processor.FileResult) error {
	var b strings.Builder
	rows := make([][]string, 0, len(results))
	counts := map[processor.Status]int{}

	for _, r := range results {
		counts[r.Status]++
		style, ok := statusStyles[string(r.Status)]
		if !ok {
			style = cellStyle
		}
		rows = append(rows, []string{
			r.Filename,
			style.Render(string(r.Status)),
			string(r.Extraction.Type),
			confidence(r),
			resultDetail(r),
		})
	}

	b.WriteString(renderTable([]string{"File", "Status", "Type", "Conf", "Detail"}, rows))
	b.WriteString("\n")
	fmt.Fprintf(&b, "\n%d saved, %d skipped, %d not saved, %d failed\n",
		counts[processor.StatusSaved],
		counts[processor.StatusSkipped],
		counts[processor.StatusLowConfidence]+counts[processor.StatusUnrecognized]+counts[processor.StatusRejected],
		counts[processor.StatusFailed])

	for _, r := range results {
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "%s: %s\n", r.Filename, mutedStyle.Render(warning))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func confidence(r processor.FileResult) string {
	if r.Status == processor.StatusSkipped {
		return ""
	}
	return strconv.FormatFloat(r.Extraction.Confidence, 'f', 2, 64)
}

func resultDetail(r processor.FileResult) string {
	switch r.Status {
	case processor.StatusSaved:
		return fmt.Sprintf("%d snapshot(s), %d player(s)", r.Snapshots, r.Players)
	case processor.StatusSkipped:
		return "already processed"
	case processor.StatusFailed:
		if r.Err != nil {
			return r.Err.Error()
		}
	}
	if len(r.Extraction.Errors) > 0 {
		return strings.Join(r.Extraction.Errors, "; ")
	}
	return ""
}

// RenderSeasons lists seasons, marking the active one.
func RenderSeasons(w io.Writer, seasons []storage.Season) error {
	if len(seasons) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No seasons yet. Create one with `career-tracker season create NAME`."))
		return err
	}

	rows := make([][]string, 0, len(seasons))
	for _, s := range seasons {
		active := ""
		if s.IsActive {
			active = "*"
		}
		end := ""
		if s.EndDate != nil {
			end = s.EndDate.Format(dateLayout)
		}
		rows = append(rows, []string{
			active,
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.GameVersion,
			s.StartDate.Format(dateLayout),
			end,
		})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"", "ID", "Name", "Version", "Start", "End"}, rows))
	return err
}

// RenderProcessed lists the filenames already extracted.
func RenderProcessed(w io.Writer, markers []storage.ProcessedScreenshot) error {
	if len(markers) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No screenshots processed yet."))
		return err
	}

	rows := make([][]string, 0, len(markers))
	for _, m := range markers {
		rows = append(rows, []string{
			m.Filename,
			m.Type,
			strconv.FormatFloat(m.Confidence, 'f', 2, 64),
			m.ProcessedAt.Format("2006-01-02 15:04"),
		})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"File", "Type", "Conf", "Processed"}, rows))
	return err
}

// WriteExport writes the export document as indented JSON.
func WriteExport(w io.Writer, doc *storage.ExportDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}
