// Package render turns a finished history into views of a version window.
//
// A window (base, head] shows what changed after base up to and including
// head: text added in the window is inserted, text removed in the window is
// deleted, text from base or earlier is plain, and text added after head or
// removed at or before base is not shown.
package render

import (
	"errors"
	"fmt"

	"github.com/burntcarrot/histdiff/annotator"
	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
)

// ErrWindow is returned for a window whose base is after its head.
var ErrWindow = errors.New("invalid version window")

// Window selects the changes shown by a view.
type Window struct {
	Base history.Version
	Head history.Version
}

// DefaultWindow shows every change after the first version.
func DefaultWindow(r *annotator.Result) Window {
	if len(r.Versions) == 0 {
		return Window{Base: r.Latest, Head: r.Latest}
	}
	return Window{Base: r.Versions[0], Head: r.Latest}
}

// Validate checks that base is not after head.
func (w Window) Validate() error {
	if w.Head.Less(w.Base) {
		return fmt.Errorf("%w: base %s is after head %s", ErrWindow, w.Base, w.Head)
	}
	return nil
}

func (w Window) contains(v history.Version) bool {
	return w.Base.Less(v) && !w.Head.Less(v)
}

// classify returns how the atom shows in w.
func (w Window) classify(a *history.Atom) (commons.SpanType, history.Version, bool) {
	if a.Anomalous() {
		return "", history.Version{}, false
	}
	added := a.Added()
	removed, gone := a.Removed()
	switch {
	case gone && !w.Base.Less(removed), w.Head.Less(added):
		return "", history.Version{}, false
	case gone && w.contains(removed):
		return commons.Deleted, removed, true
	case w.contains(added):
		return commons.Inserted, added, true
	default:
		return commons.Plain, history.Version{}, true
	}
}

// View renders every block with something to show in w.
func View(r *annotator.Result, w Window) ([]commons.Line, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	var lines []commons.Line
	var err error
	r.Document.Each(func(id history.ElementID, t history.Timeline) bool {
		words, ok := t.(*annotator.Words)
		if !ok {
			err = fmt.Errorf("%s: %w", id, history.ErrNotSequence)
			return false
		}

		line := commons.Line{ID: id.String()}
		if b, ok := r.Block(id); ok {
			line.Kind, line.Level = b.Kind, b.Level
		}

		words.Each(func(_ history.ElementID, t history.Timeline) bool {
			atom, ok := t.(*history.Atom)
			if !ok {
				return true
			}
			typ, v, visible := w.classify(atom)
			if visible {
				line.Spans = appendSpan(line.Spans, commons.Span{Type: typ, Text: atom.Text(), Version: v})
			}
			return true
		})
		if len(line.Spans) == 0 {
			return true
		}

		for _, reason := range r.Reasons(id) {
			if w.contains(reason.Version) {
				line.Sources = append(line.Sources, reason.Source())
			}
		}
		lines = append(lines, line)
		return true
	})

	return lines, err
}

func appendSpan(spans []commons.Span, s commons.Span) []commons.Span {
	if n := len(spans); n > 0 && spans[n-1].Type == s.Type && spans[n-1].Version == s.Version {
		spans[n-1].Text += s.Text
		return spans
	}
	return append(spans, s)
}

// Versions returns the versions in which something changed inside w, oldest first.
func Versions(r *annotator.Result, w Window) []history.Version {
	var versions []history.Version
	for _, v := range r.Versions {
		if w.contains(v) {
			versions = append(versions, v)
		}
	}
	return versions
}
