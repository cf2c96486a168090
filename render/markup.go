package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/burntcarrot/histdiff/commons"
)

// Markup writes lines as HTML fragments. Insertions and deletions are ins and
// del elements with a changed-in-X-Y-Z class naming their version.
func Markup(w io.Writer, lines []commons.Line) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		fmt.Fprintf(bw, "<div class=paranum>%s</div>\n", html.EscapeString(line.ID))
		if len(line.Sources) > 0 {
			bw.WriteString("<div class=sources>")
			for _, s := range line.Sources {
				fmt.Fprintf(bw, `<ins class="changed-in-%s sources">%s</ins>`, s.Version.Class(), html.EscapeString(SourceText(s)))
			}
			bw.WriteString("</div>\n")
		}

		var inner strings.Builder
		for _, s := range line.Spans {
			text := strings.ReplaceAll(html.EscapeString(s.Text), "\u2028", "<br>")
			switch s.Type {
			case commons.Inserted, commons.Deleted:
				fmt.Fprintf(&inner, `<%s class="changed-in-%s">%s</%s>`, s.Type, s.Version.Class(), text, s.Type)
			default:
				inner.WriteString(text)
			}
		}
		bw.WriteString(wrap(line, inner.String()))
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// wrap encloses inner in the element for the line's kind.
func wrap(line commons.Line, inner string) string {
	switch line.Kind {
	case commons.Heading:
		level := min(max(line.Level, 1), 6)
		return fmt.Sprintf("<h%d>%s</h%d>", level, inner, level)
	case commons.Rule:
		return fmt.Sprintf("<p class=rule>%s</p>", inner)
	case commons.Formula:
		return fmt.Sprintf("<p class=formula>%s</p>", inner)
	case commons.TableRow:
		return fmt.Sprintf("<table><tr><td>%s</td></tr></table>", inner)
	case commons.CodeLine:
		return fmt.Sprintf("<pre><code>%s</code></pre>", inner)
	default:
		return fmt.Sprintf("<p>%s</p>", inner)
	}
}

// SourceText formats a source as "{5.0.0: 92-A64; L2/00-258}".
func SourceText(s commons.Source) string {
	var parts []string
	if len(s.Refs) > 0 {
		parts = append(parts, strings.Join(s.Refs, ", "))
	}
	if len(s.Docs) > 0 {
		parts = append(parts, strings.Join(s.Docs, ", "))
	}
	return "{" + s.Version.String() + ": " + strings.Join(parts, "; ") + "}"
}
