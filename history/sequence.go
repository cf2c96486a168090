package history

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Config customises a Sequence. The zero Config is valid for Sequence[string]:
// every element becomes an Atom and whitespace-only tokens are junk.
type Config[T any] struct {
	// Junk marks alignment keys the matcher may only match loosely
	// (whitespace, stopwords). Defaults to whitespace-only strings.
	Junk func(key string) bool

	// Value returns the alignment key of a raw element. Defaults to the
	// element itself for strings.
	Value func(raw T) string

	// New builds the timeline of a newly inserted position holding raw.
	// Defaults to NewAtom for strings.
	New func(v Version, raw T, id ElementID) (Timeline, error)

	// Update pushes whole new content into the existing child at id and reports
	// whether it changed. When set, equal-length replace runs over nested
	// sequences are applied elementwise instead of as delete+insert.
	Update func(child Timeline, v Version, raw T, id ElementID) (bool, error)

	// NumberNicely lets insertions skip over deleted positions to find a
	// shallower identifier.
	NumberNicely bool

	// Reporter receives warnings raised while applying versions.
	Reporter Reporter
}

// Ancestry records that a sequence's history continues another position's
// history from Version on.
type Ancestry struct {
	Version Version
	Origin  ElementID
}

type entry struct {
	id       ElementID
	timeline Timeline
}

// Sequence is an ordered list of identified positions, each with its own
// Timeline. Positions are never dropped, only marked absent, so identifiers
// stay valid across the whole history.
//
// A sequence has a lifecycle of its own: it is live from the first version
// applied to it until Remove, even while it has no live children.
type Sequence[T any] struct {
	cfg         Config[T]
	children    []entry
	latest      Version
	added       Version
	removed     Version
	ancestry    *Ancestry
	descendants map[Version][]ElementID
}

// NewSequence returns an empty sequence.
func NewSequence[T any](cfg Config[T]) *Sequence[T] {
	if cfg.Junk == nil {
		cfg.Junk = IsSpace
	}
	if cfg.Value == nil {
		cfg.Value = func(raw T) string {
			if s, ok := any(raw).(string); ok {
				return s
			}
			return fmt.Sprint(raw)
		}
	}
	if cfg.New == nil {
		value := cfg.Value
		cfg.New = func(v Version, raw T, _ ElementID) (Timeline, error) {
			return NewAtom(v, value(raw)), nil
		}
	}
	return &Sequence[T]{cfg: cfg, descendants: make(map[Version][]ElementID)}
}

// IsSpace is the default junk predicate: non-empty and all whitespace.
func IsSpace(s string) bool {
	return s != "" && strings.TrimSpace(s) == ""
}

// slot is a child plus its index among the children that were live when the
// current version started applying, or -1.
type slot struct {
	live int
	entry
}

// Apply reconciles the live children with the new content of version v and
// reports whether anything changed.
//
// The edit script comes from an LCS alignment of the live children's values
// against the values of raw. Deleted children are marked absent; inserted
// content gets fresh identifiers between its neighbours; equal-length replace
// runs over nested sequences push the new content into the existing children.
//
// Errors other than warnings leave the sequence partially updated and should
// be treated as fatal.
func (s *Sequence[T]) Apply(v Version, raw []T) (bool, error) {
	if err := s.advance(v); err != nil {
		return false, err
	}
	if s.added.IsZero() {
		s.added = v
	}
	if len(raw) > 0 && !s.removed.IsZero() {
		s.removed = Version{}
	}

	slots := make([]slot, len(s.children))
	var old []string
	for i, c := range s.children {
		slots[i] = slot{live: -1, entry: c}
		if c.timeline.Present() {
			slots[i].live = len(old)
			old = append(old, c.timeline.Value())
		}
	}

	values := make([]string, len(raw))
	for i, r := range raw {
		values[i] = s.cfg.Value(r)
	}

	matcher := difflib.NewMatcherWithJunk(old, values, true, s.cfg.Junk)
	changed := false
	for _, op := range matcher.GetOpCodes() {
		var err error
		switch op.Tag {
		case 'e':
			continue
		case 'd':
			err = s.remove(v, slots, op.I1, op.I2)
		case 'i':
			slots, err = s.insert(v, slots, op.I1-1, raw[op.J1:op.J2])
		case 'r':
			if s.elementwise(slots, op) {
				var updated bool
				updated, err = s.replace(v, slots, op.I1, op.I2, raw[op.J1:op.J2])
				changed = changed || updated
				if err != nil {
					return changed, err
				}
				continue
			}
			// Replacements go after the run they replace.
			if err = s.remove(v, slots, op.I1, op.I2); err == nil {
				slots, err = s.insert(v, slots, op.I2-1, raw[op.J1:op.J2])
			}
		}
		if err != nil {
			return true, err
		}
		changed = true
	}

	children := make([]entry, len(slots))
	for i, sl := range slots {
		children[i] = sl.entry
	}
	if err := checkOrder(children); err != nil {
		return changed, err
	}
	s.children = children

	return changed, nil
}

// Remove marks the sequence and every live child absent from v on. Applying
// non-empty content later makes the sequence live again.
func (s *Sequence[T]) Remove(v Version) error {
	if _, err := s.Apply(v, nil); err != nil {
		return err
	}
	if s.removed.IsZero() {
		s.removed = v
	}
	return nil
}

// UpdateChild pushes raw into the child at id as its content for version v,
// outside of the alignment. It is how curated tables pin content to a position.
func (s *Sequence[T]) UpdateChild(v Version, id ElementID, raw T) (bool, error) {
	if s.cfg.Update == nil {
		return false, fmt.Errorf("%w: %s cannot be updated in place", ErrNotSequence, id)
	}
	child, ok := s.Child(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownPosition, id)
	}
	if err := s.advance(v); err != nil {
		return false, err
	}
	return s.cfg.Update(child, v, raw, id)
}

// RemoveChild marks the child at id absent from v on.
func (s *Sequence[T]) RemoveChild(v Version, id ElementID) error {
	child, ok := s.Child(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPosition, id)
	}
	if err := s.advance(v); err != nil {
		return err
	}
	return s.settle(child.Remove(v), v, id)
}

func (s *Sequence[T]) advance(v Version) error {
	if v.IsZero() {
		return ErrZeroVersion
	}
	if v.Less(s.latest) {
		return fmt.Errorf("%w: %s after %s", ErrVersionOrder, v, s.latest)
	}
	s.latest = v
	return nil
}

func (s *Sequence[T]) remove(v Version, slots []slot, begin, end int) error {
	for _, sl := range slots {
		if sl.live < begin || sl.live >= end {
			continue
		}
		if err := s.settle(sl.timeline.Remove(v), v, sl.id); err != nil {
			return err
		}
	}
	return nil
}

// settle reports warnings and passes real errors through.
func (s *Sequence[T]) settle(err error, v Version, id ElementID) error {
	if err == nil {
		return nil
	}
	w, ok := AsWarning(err)
	if !ok {
		return fmt.Errorf("removing %s in %s: %w", id, v, err)
	}
	w.Path = append([]ElementID{id}, w.Path...)
	s.report(w)
	return nil
}

func (s *Sequence[T]) report(w *Warning) {
	if s.cfg.Reporter != nil {
		s.cfg.Reporter.Report(w)
	}
}

// insert places new children for raw after the slot whose live index is
// after, or at the very start when after is -1.
func (s *Sequence[T]) insert(v Version, slots []slot, after int, raw []T) ([]slot, error) {
	var (
		prefix ElementID
		offset = 1
		at     = -1
		err    error
	)

	switch {
	case after < 0 && len(slots) > 0:
		if prefix, offset, err = FirstInsertionPoint(slots[0].id); err != nil {
			return slots, err
		}
	case after >= 0:
		at = slices.IndexFunc(slots, func(sl slot) bool { return sl.live == after })
		if at < 0 {
			return slots, fmt.Errorf("%w: no live position %d", ErrUnrepresentableInsertion, after)
		}
		if prefix, offset, err = InsertionPoint(slots[at].id, nextID(slots, at)); err != nil {
			return slots, err
		}
		if s.cfg.NumberNicely {
			prefix, offset, at = niceInsertionPoint(slots, at, prefix, offset)
		}
	}

	inserted := make([]slot, len(raw))
	for i, r := range raw {
		id := prefix.Insertion(offset + i)
		child, err := s.cfg.New(v, r, id)
		if err != nil {
			return slots, fmt.Errorf("building %s in %s: %w", id, v, err)
		}
		inserted[i] = slot{live: -1, entry: entry{id: id, timeline: child}}
	}

	return slices.Insert(slots, at+1, inserted...), nil
}

// niceInsertionPoint looks past the deleted positions following at for an
// insertion point with fewer levels. The first shallowest candidate wins.
func niceInsertionPoint(slots []slot, at int, prefix ElementID, offset int) (ElementID, int, int) {
	for j := at + 1; j < len(slots) && !slots[j].timeline.Present(); j++ {
		p, o, err := InsertionPoint(slots[j].id, nextID(slots, j))
		if err != nil {
			continue
		}
		if p.Depth() < prefix.Depth() {
			prefix, offset, at = p, o, j
		}
	}
	return prefix, offset, at
}

func nextID(slots []slot, i int) *ElementID {
	if i+1 >= len(slots) {
		return nil
	}
	id := slots[i+1].id
	return &id
}

func (s *Sequence[T]) elementwise(slots []slot, op difflib.OpCode) bool {
	if s.cfg.Update == nil || op.I2-op.I1 != op.J2-op.J1 {
		return false
	}
	for _, sl := range slots {
		if sl.live < op.I1 || sl.live >= op.I2 {
			continue
		}
		if _, ok := sl.timeline.(nested); !ok {
			return false
		}
	}
	return true
}

func (s *Sequence[T]) replace(v Version, slots []slot, begin, end int, raw []T) (bool, error) {
	changed := false
	for _, sl := range slots {
		if sl.live < begin || sl.live >= end {
			continue
		}
		updated, err := s.cfg.Update(sl.timeline, v, raw[sl.live-begin], sl.id)
		if err != nil {
			return changed, fmt.Errorf("updating %s in %s: %w", sl.id, v, err)
		}
		changed = changed || updated
	}
	return changed, nil
}

func checkOrder(children []entry) error {
	for i := 1; i < len(children); i++ {
		if !children[i-1].id.Less(children[i].id) {
			return fmt.Errorf("%w: %s does not sort before %s", ErrUnrepresentableInsertion, children[i-1].id, children[i].id)
		}
	}
	return nil
}

// nested is implemented by every Sequence, whatever its element type.
type nested interface {
	Timeline
	nestedSequence()
}

func (s *Sequence[T]) nestedSequence() {}

func (s *Sequence[T]) Present() bool {
	return !s.added.IsZero() && s.removed.IsZero()
}

// Value concatenates the values of the present children.
func (s *Sequence[T]) Value() string {
	var b strings.Builder
	for _, c := range s.children {
		if c.timeline.Present() {
			b.WriteString(c.timeline.Value())
		}
	}
	return b.String()
}

// ValueAt concatenates every child's value at v, including children removed since.
func (s *Sequence[T]) ValueAt(v Version) string {
	var b strings.Builder
	for _, c := range s.children {
		b.WriteString(c.timeline.ValueAt(v))
	}
	return b.String()
}

func (s *Sequence[T]) LastChanged() Version {
	last := MaxVersion(s.added, s.removed)
	if s.ancestry != nil {
		last = MaxVersion(last, s.ancestry.Version)
	}
	for _, c := range s.children {
		last = MaxVersion(last, c.timeline.LastChanged())
	}
	return last
}

func (s *Sequence[T]) VersionsChanged() []Version {
	seen := make(map[Version]struct{})
	for _, v := range []Version{s.added, s.removed} {
		if !v.IsZero() {
			seen[v] = struct{}{}
		}
	}
	if s.ancestry != nil {
		seen[s.ancestry.Version] = struct{}{}
	}
	for _, c := range s.children {
		for _, v := range c.timeline.VersionsChanged() {
			seen[v] = struct{}{}
		}
	}

	versions := make([]Version, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Less(versions[j]) })
	return versions
}

// Len is the number of children, present or not.
func (s *Sequence[T]) Len() int {
	return len(s.children)
}

// Latest is the latest version applied to the sequence.
func (s *Sequence[T]) Latest() Version {
	return s.latest
}

// IDs returns the identifiers of all children in order.
func (s *Sequence[T]) IDs() []ElementID {
	ids := make([]ElementID, len(s.children))
	for i, c := range s.children {
		ids[i] = c.id
	}
	return ids
}

// Each calls fn for every child in order until fn returns false.
func (s *Sequence[T]) Each(fn func(id ElementID, t Timeline) bool) {
	for _, c := range s.children {
		if !fn(c.id, c.timeline) {
			return
		}
	}
}

// Child returns the timeline at id.
func (s *Sequence[T]) Child(id ElementID) (Timeline, bool) {
	i := sort.Search(len(s.children), func(i int) bool { return !s.children[i].id.Less(id) })
	if i < len(s.children) && s.children[i].id.Equal(id) {
		return s.children[i].timeline, true
	}
	return nil, false
}

// Ancestry returns the position this sequence's history continues, if any.
func (s *Sequence[T]) Ancestry() (Ancestry, bool) {
	if s.ancestry == nil {
		return Ancestry{}, false
	}
	return *s.ancestry, true
}

// Descendants returns, per version, the positions that continue this
// sequence's history from that version on.
func (s *Sequence[T]) Descendants() map[Version][]ElementID {
	out := make(map[Version][]ElementID, len(s.descendants))
	for v, ids := range s.descendants {
		out[v] = slices.Clone(ids)
	}
	return out
}
