package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/net/html"
)

// ExtractTable pulls the cells of the first table in markup, one slice per
// row. It reports false when markup has no table rows.
func ExtractTable(markup string) ([][]string, bool) {
	z := html.NewTokenizer(strings.NewReader(markup))

	var (
		rows    [][]string
		row     []string
		cell    strings.Builder
		inCell  bool
		inTable bool
		done    bool
	)

	for !done {
		switch z.Next() {
		case html.ErrorToken:
			done = true

		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "table":
				inTable = true
			case "tr":
				if inTable {
					row = nil
				}
			case "td", "th":
				if inTable {
					inCell = true
					cell.Reset()
				}
			case "br":
				if inCell {
					cell.WriteByte(' ')
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "td", "th":
				if inCell {
					row = append(row, strings.Join(strings.Fields(cell.String()), " "))
					inCell = false
				}
			case "tr":
				if inTable && len(row) > 0 {
					rows = append(rows, row)
				}
				row = nil
			case "table":
				done = inTable
			}

		case html.TextToken:
			if inCell {
				cell.Write(z.Text())
			}
		}
	}

	return rows, len(rows) > 0
}

// PlainText strips tags from markup and collapses blank lines.
func PlainText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "p", "div", "tr", "li", "pre":
				b.WriteByte('\n')
			}
		}
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " \t"))
		}
	}
	return strings.Join(lines, "\n")
}

// TerminalMarkup renders markup for a terminal: a bordered table when it
// holds one, its text otherwise. The first row is used as the header.
func TerminalMarkup(markup string, border lipgloss.Style, header lipgloss.Style) string {
	rows, ok := ExtractTable(markup)
	if !ok {
		return PlainText(markup)
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers(rows[0]...).
		Rows(rows[1:]...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}
