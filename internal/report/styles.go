package report

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			PaddingRight(2)

	cellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusStyles = map[string]lipgloss.Style{
		"saved":          lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"skipped":        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		"low_confidence": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"unrecognized":   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"rejected":       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"failed":         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// renderTable lays out rows in left-aligned columns sized to their widest cell.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(headerCellStyle, widths, headers))
	for _, row := range rows {
		lines = append(lines, renderRow(cellStyle, widths, row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(style lipgloss.Style, widths []int, cells []string) string {
	rendered := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		// Width includes the right padding.
		rendered[i] = style.Width(w + 2).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
