package formatter

import (
	"strings"

	"charm.land/lipgloss/v2"
)

const columnSep = "  "

// RenderTable renders rows under headers. The last column absorbs any
// shrinking needed to fit maxWidth (0 means no limit); earlier columns keep
// their natural width.
func RenderTable(headers []string, rows [][]string, noColor bool, maxWidth int) string {
	n := len(headers)
	if n == 0 {
		return ""
	}
	widths := make([]int, n)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < n && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	if maxWidth > 0 {
		fixed := len(columnSep) * (n - 1)
		for _, w := range widths[:n-1] {
			fixed += w
		}
		widths[n-1] = max(min(widths[n-1], maxWidth-fixed), 5)
	}

	total := len(columnSep) * (n - 1)
	for _, w := range widths {
		total += w
	}

	var b strings.Builder
	cells := make([]string, n)
	for i, h := range headers {
		cells[i] = padRight(h, widths[i])
		if !noColor {
			cells[i] = headerStyle.Render(cells[i])
		}
	}
	b.WriteString(strings.TrimRight(strings.Join(cells, columnSep), " ") + "\n")

	sep := strings.Repeat("─", total)
	if !noColor {
		sep = separatorStyle.Render(sep)
	}
	b.WriteString(sep + "\n")

	for _, row := range rows {
		for i := range cells {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cell := truncate(val, widths[i])
			if i < n-1 {
				cell = padRight(cell, widths[i])
			}
			if !noColor {
				if i == 0 {
					cell = keyStyle.Render(cell)
				} else {
					cell = valueStyle.Render(cell)
				}
			}
			cells[i] = cell
		}
		b.WriteString(strings.Join(cells, columnSep) + "\n")
	}
	return b.String()
}
