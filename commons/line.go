package commons

import (
	"strings"

	"github.com/burntcarrot/histdiff/history"
)

// Line represents one rendered block of the annotated document.
type Line struct {
	// ID is the block's position identifier, e.g. "33.2".
	ID string `json:"id"`

	Kind  Kind `json:"kind"`
	Level int  `json:"level,omitempty"`

	Spans []Span `json:"spans"`

	// Sources lists the reasons given for changes to the block within the window.
	Sources []Source `json:"sources,omitempty"`
}

// Text returns the text of the line as shown, deletions excluded.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		if s.Type != Deleted {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// SpanType represents how a span is shown.
type SpanType string

const (
	Plain    SpanType = "plain"
	Inserted SpanType = "ins"
	Deleted  SpanType = "del"
)

// Span represents a run of text with a single presentation.
type Span struct {
	Type SpanType `json:"type"`
	Text string   `json:"text"`

	// Version is the version that inserted or deleted the span. It is zero for plain spans.
	Version history.Version `json:"version"`
}

// Source represents a documented reason for a change.
type Source struct {
	Version history.Version `json:"version"`
	Refs    []string        `json:"refs,omitempty"`
	Docs    []string        `json:"docs,omitempty"`
}
