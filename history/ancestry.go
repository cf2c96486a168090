package history

import (
	"fmt"
	"maps"
	"slices"
)

// Splice makes s continue the history of origin from version v on: s receives a
// copy of every child origin had before v, with removals at or after v undone,
// and origin records self as its descendant at v. s must be empty.
//
// The copy is independent of origin; both evolve separately afterwards.
func (s *Sequence[T]) Splice(v Version, self, originID ElementID, origin *Sequence[T]) error {
	if len(s.children) > 0 {
		return fmt.Errorf("%w: %s continuing %s in %s", ErrSpliceNonEmpty, self, originID, v)
	}
	if v.IsZero() {
		return ErrZeroVersion
	}

	for _, c := range origin.children {
		if t := c.timeline.cloneBefore(v); t != nil {
			s.children = append(s.children, entry{id: c.id, timeline: t})
		}
	}
	s.ancestry = &Ancestry{Version: v, Origin: originID}
	if s.added.IsZero() {
		s.added = v
	}
	origin.descendants[v] = append(origin.descendants[v], self)

	return nil
}

func (s *Sequence[T]) cloneBefore(v Version) Timeline {
	out := &Sequence[T]{cfg: s.cfg, descendants: make(map[Version][]ElementID)}
	for _, c := range s.children {
		if t := c.timeline.cloneBefore(v); t != nil {
			out.children = append(out.children, entry{id: c.id, timeline: t})
		}
	}
	if s.ancestry != nil && s.ancestry.Version.Less(v) {
		a := *s.ancestry
		out.ancestry = &a
	}
	for dv, ids := range s.descendants {
		if dv.Less(v) {
			out.descendants[dv] = slices.Clone(ids)
		}
	}
	if s.added.Less(v) {
		out.added = s.added
		if s.removed.Less(v) {
			out.removed = s.removed
		}
	}
	if len(out.children) == 0 && out.ancestry == nil && out.added.IsZero() {
		return nil
	}
	out.latest = MaxVersion(out.added, out.removed)
	for _, c := range out.children {
		out.latest = MaxVersion(out.latest, c.timeline.LastChanged())
	}
	return out
}

// DescendantsAt returns the positions that continue s's history from v on.
func (s *Sequence[T]) DescendantsAt(v Version) []ElementID {
	return slices.Clone(s.descendants[v])
}

// DescendantVersions returns the versions at which s was continued elsewhere, oldest first.
func (s *Sequence[T]) DescendantVersions() []Version {
	versions := slices.Collect(maps.Keys(s.descendants))
	slices.SortFunc(versions, func(a, b Version) int { return a.Compare(b) })
	return versions
}
