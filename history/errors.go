package history

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedVersion is returned when a version string cannot be parsed.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrMalformedID is returned when an element identifier mixes its main and
	// annotation parts, or contains an invalid component.
	ErrMalformedID = errors.New("malformed element identifier")

	// ErrUnrepresentableInsertion is returned when no identifier exists strictly
	// between two neighbouring identifiers under the insertion rule.
	ErrUnrepresentableInsertion = errors.New("unrepresentable insertion point")

	// ErrSpliceNonEmpty is returned when an ancestry splice targets a sequence
	// that already has children.
	ErrSpliceNonEmpty = errors.New("ancestry splice into non-empty sequence")

	// ErrVersionOrder is returned when a version older than the latest applied one is applied.
	ErrVersionOrder = errors.New("version applied out of order")

	// ErrZeroVersion is returned when the zero Version is applied.
	ErrZeroVersion = errors.New("zero version")

	// ErrUnknownPosition is returned when an identifier names no child.
	ErrUnknownPosition = errors.New("unknown position")

	// ErrNotSequence is returned when a sequence operation targets an atom.
	ErrNotSequence = errors.New("position does not hold a sequence")
)

// WarningKind classifies a data-quality problem.
type WarningKind string

const (
	// AddedAndRemoved: an element was introduced and removed in the same version.
	AddedAndRemoved WarningKind = "added-and-removed"

	// HintNotMatched: no block matched a preserved position's hint.
	HintNotMatched WarningKind = "hint-not-matched"

	// KindChanged: a position changed block kind without an allowed kind change.
	KindChanged WarningKind = "kind-changed"

	// UnexplainedChange: a position changed in a version with no reason attached.
	UnexplainedChange WarningKind = "unexplained-change"

	// ReasonWithoutChange: a reason targets a label that did not change.
	ReasonWithoutChange WarningKind = "reason-without-change"
)

// Warning is a data-quality problem that is reported but does not stop a build.
// It implements error so that timelines can return it from Remove.
type Warning struct {
	Kind    WarningKind
	Version Version
	// Path locates the element, outermost identifier first. It may be empty.
	Path    []ElementID
	Message string
}

func (w *Warning) Error() string {
	if len(w.Path) == 0 {
		return fmt.Sprintf("%s in %s: %s", w.Kind, w.Version, w.Message)
	}
	return fmt.Sprintf("%s at %s in %s: %s", w.Kind, FormatPath(w.Path), w.Version, w.Message)
}

// Reporter receives warnings as they are detected.
type Reporter interface {
	Report(w *Warning)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(w *Warning)

// Report calls f(w).
func (f ReporterFunc) Report(w *Warning) {
	f(w)
}

// AsWarning returns err as a *Warning when it is one.
func AsWarning(err error) (*Warning, bool) {
	var w *Warning
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}

// Nested returns a Reporter that prefixes every warning's path with id before
// passing it to r. It is meant for the Reporter of a nested sequence.
func Nested(r Reporter, id ElementID) Reporter {
	if r == nil {
		return nil
	}
	return ReporterFunc(func(w *Warning) {
		w.Path = append([]ElementID{id}, w.Path...)
		r.Report(w)
	})
}
