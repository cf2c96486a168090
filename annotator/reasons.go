package annotator

import (
	"fmt"
	"slices"

	"github.com/burntcarrot/histdiff/curation"
	"github.com/burntcarrot/histdiff/history"
)

// attribute walks the document in order, attaching the reasons documented for
// v to every position that changed in v under a matching label. It reports
// whether anything changed.
//
// A block's label is the one of the last labelled block at or before it.
// Reasons match by the current label through Targets and Affected, and by the
// label in the previous version through Deleted.
func (a *Annotator) attribute(v history.Version) bool {
	reasons := a.tables.Reasons(v)
	used := make([]bool, len(reasons))

	var (
		label    string
		matching []int
		changed  bool
	)
	a.doc.Each(func(id history.ElementID, t history.Timeline) bool {
		if l, ok := a.tables.Label(t.Value()); ok {
			label = l
			previous := ""
			if !a.previous.IsZero() {
				previous, _ = a.tables.Label(t.ValueAt(a.previous))
			}
			matching = matchReasons(reasons, label, previous)
		}

		if t.LastChanged() != v {
			return true
		}
		changed = true

		for _, i := range matching {
			a.reasons[id.String()] = append(a.reasons[id.String()], reasons[i])
			used[i] = true
		}
		if label != "" && len(matching) == 0 && len(reasons) > 0 {
			a.report(&history.Warning{
				Kind:    history.UnexplainedChange,
				Version: v,
				Path:    []history.ElementID{id},
				Message: fmt.Sprintf("%s changed with no documented reason", label),
			})
		}
		return true
	})

	for i, r := range reasons {
		if used[i] {
			continue
		}
		a.report(&history.Warning{
			Kind:    history.ReasonWithoutChange,
			Version: v,
			Message: fmt.Sprintf("reason %v for %v changed nothing", r.Refs, slices.Concat(r.Targets, r.Affected, r.Deleted)),
		})
	}

	return changed
}

func matchReasons(reasons []curation.Reason, label, previous string) []int {
	var matching []int
	for i, r := range reasons {
		if slices.Contains(r.Targets, label) || slices.Contains(r.Affected, label) ||
			(previous != "" && slices.Contains(r.Deleted, previous)) {
			matching = append(matching, i)
		}
	}
	return matching
}
