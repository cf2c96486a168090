package render

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// TerminalOptions configures Terminal.
type TerminalOptions struct {
	// Versions orders the palette: a version's colour is picked by its index.
	Versions []history.Version

	// Color enables ANSI colours. Without colours insertions are marked
	// {+like this+} and deletions [-like this-].
	Color bool

	// Width wraps lines at this many columns. Zero disables wrapping.
	Width int
}

var (
	backgrounds = []color.Attribute{color.BgCyan, color.BgGreen, color.BgYellow, color.BgMagenta, color.BgBlue, color.BgRed}
	foregrounds = []color.Attribute{color.FgCyan, color.FgGreen, color.FgYellow, color.FgMagenta, color.FgBlue, color.FgRed}
)

const separator = " │ "

// Terminal writes lines for a terminal, each prefixed by its identifier.
func Terminal(w io.Writer, lines []commons.Line, opts TerminalOptions) error {
	gutter := 0
	for _, line := range lines {
		gutter = max(gutter, runewidth.StringWidth(line.ID))
	}

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		t := &terminalLine{
			opts:   opts,
			indent: strings.Repeat(" ", gutter) + separator,
			avail:  opts.Width - gutter - runewidth.StringWidth(separator),
		}
		t.b.WriteString(runewidth.FillLeft(line.ID, gutter) + separator)

		heading := line.Kind == commons.Heading
		for _, s := range line.Spans {
			t.span(s, heading)
		}
		for _, s := range line.Sources {
			t.span(commons.Span{Type: commons.Plain, Text: " " + SourceText(s)}, false)
		}

		bw.WriteString(t.b.String())
		bw.WriteString("\n")
	}
	return bw.Flush()
}

type terminalLine struct {
	opts   TerminalOptions
	indent string
	avail  int
	col    int
	b      strings.Builder
}

func (t *terminalLine) span(s commons.Span, heading bool) {
	c := t.opts.style(s, heading)
	if !t.opts.Color {
		switch s.Type {
		case commons.Inserted:
			t.write("{+", nil)
			defer t.write("+}", nil)
		case commons.Deleted:
			t.write("[-", nil)
			defer t.write("-]", nil)
		}
	}

	for _, chunk := range strings.SplitAfter(s.Text, " ") {
		if chunk != "" {
			t.write(chunk, c)
		}
	}
}

// write appends text, breaking the line first when text would not fit.
func (t *terminalLine) write(text string, c *color.Color) {
	width := runewidth.StringWidth(text)
	if t.opts.Width > 0 && t.col > 0 && t.col+width > t.avail {
		t.b.WriteString("\n" + t.indent)
		t.col = 0
	}
	t.col += width
	if c != nil {
		t.b.WriteString(c.Sprint(text))
		return
	}
	t.b.WriteString(text)
}

func (o TerminalOptions) style(s commons.Span, heading bool) *color.Color {
	if !o.Color {
		return nil
	}

	var attrs []color.Attribute
	if heading {
		attrs = append(attrs, color.Bold)
	}
	i := max(slices.Index(o.Versions, s.Version), 0)
	switch s.Type {
	case commons.Inserted:
		attrs = append(attrs, backgrounds[i%len(backgrounds)], color.FgBlack)
	case commons.Deleted:
		attrs = append(attrs, foregrounds[i%len(foregrounds)], color.CrossedOut)
	}
	if len(attrs) == 0 {
		return nil
	}

	c := color.New(attrs...)
	c.EnableColor()
	return c
}
