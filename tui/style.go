package tui

import (
	"slices"
	"strings"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
	"github.com/burntcarrot/histdiff/render"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Styles controls how the document is drawn. The palettes are indexed by the
// position of a span's version among the document's versions.
type Styles struct {
	Inserted []lipgloss.Style
	Deleted  []lipgloss.Style
	Heading  lipgloss.Style
	Gutter   lipgloss.Style
	Source   lipgloss.Style
}

var palette = []lipgloss.Color{"6", "2", "3", "5", "4", "1"}

// DefaultStyles returns the styles used by the viewer.
func DefaultStyles() Styles {
	s := Styles{
		Heading: lipgloss.NewStyle().Bold(true),
		Gutter:  lipgloss.NewStyle().Faint(true),
		Source:  lipgloss.NewStyle().Italic(true).Faint(true),
	}
	for _, c := range palette {
		s.Inserted = append(s.Inserted, lipgloss.NewStyle().Background(c).Foreground(lipgloss.Color("0")))
		s.Deleted = append(s.Deleted, lipgloss.NewStyle().Foreground(c).Strikethrough(true))
	}
	return s
}

func pick(styles []lipgloss.Style, i int) lipgloss.Style {
	if len(styles) == 0 {
		return lipgloss.Style{}
	}
	return styles[i%len(styles)]
}

// content draws lines one per row, each prefixed by its identifier.
func (s Styles) content(lines []commons.Line, versions []history.Version) string {
	gutter := 0
	for _, line := range lines {
		gutter = max(gutter, runewidth.StringWidth(line.ID))
	}

	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		b.WriteString(s.Gutter.Render(runewidth.FillLeft(line.ID, gutter)))
		b.WriteString(" ")

		for _, span := range line.Spans {
			i := max(slices.Index(versions, span.Version), 0)
			style := lipgloss.Style{}
			switch span.Type {
			case commons.Inserted:
				style = pick(s.Inserted, i)
			case commons.Deleted:
				style = pick(s.Deleted, i)
			case commons.Plain:
				if line.Kind == commons.Heading {
					style = s.Heading
				}
			}
			b.WriteString(style.Render(span.Text))
		}
		for _, src := range line.Sources {
			b.WriteString(" ")
			b.WriteString(s.Source.Render(render.SourceText(src)))
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}

