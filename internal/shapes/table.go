// internal/shapes/table.go
package shapes

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// maxColumnWidth caps a rendered column, padding included.
const maxColumnWidth = 20

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// columnWidths returns min(longest value + 2, maxColumnWidth) per column.
func columnWidths(headers []string, rows [][]string) []int {
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
	for i := range widths {
		widths[i] += 2
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}
	return widths
}

// truncate shortens value to fit a column of the given width.
func truncate(value string, width int) string {
	if len(value) <= width-2 {
		return value
	}
	cut := width - 5
	if cut < 0 {
		cut = 0
	}
	return value[:cut] + "..."
}

// RenderTable draws rows as a box table. An empty row set renders nothing.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := columnWidths(headers, rows)

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(headers))
		for c := range headers {
			if c < len(row) {
				cells[r][c] = truncate(row[c], widths[c])
			}
		}
	}
	head := make([]string, len(headers))
	for c, h := range headers {
		head[c] = truncate(h, widths[c])
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(head...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if col < len(widths) {
				style = style.Width(widths[col])
			}
			return style
		})
	return t.Render()
}
