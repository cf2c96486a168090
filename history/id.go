package history

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ElementID is a hierarchical, totally ordered position identifier.
//
// An identifier has a main part, a sequence of non-negative integers giving the
// structural position (e.g. 33.2), and an optional annotation part: one lower-case
// letter followed by integers (e.g. 12.a.1). Identifiers order lexicographically on
// (main, annotation), a prefix sorting before its extensions.
type ElementID struct {
	main       []int
	letter     byte
	annotation []int
}

// ID returns the identifier with the given main components.
// It panics on a negative component; use ParseElementID for untrusted input.
func ID(main ...int) ElementID {
	for _, n := range main {
		if n < 0 {
			panic(fmt.Sprintf("history: negative component in %v", main))
		}
	}
	return ElementID{main: slices.Clone(main)}
}

// ParseElementID parses the dotted form produced by ElementID.String.
func ParseElementID(s string) (ElementID, error) {
	if s == "" {
		return ElementID{}, fmt.Errorf("%w: empty", ErrMalformedID)
	}

	var id ElementID
	for _, part := range strings.Split(s, ".") {
		if n, err := strconv.Atoi(part); err == nil && part[0] != '+' && part[0] != '-' {
			if id.letter != 0 {
				id.annotation = append(id.annotation, n)
			} else {
				id.main = append(id.main, n)
			}
			continue
		}

		if len(part) != 1 || part[0] < 'a' || part[0] > 'z' {
			return ElementID{}, fmt.Errorf("%w: unexpected %q in %q", ErrMalformedID, part, s)
		}
		if id.letter != 0 {
			return ElementID{}, fmt.Errorf("%w: letter %q in annotation part of %q", ErrMalformedID, part, s)
		}
		if len(id.main) == 0 {
			return ElementID{}, fmt.Errorf("%w: %q has no main part", ErrMalformedID, s)
		}
		id.letter = part[0]
	}

	return id, nil
}

// MustParseElementID is like ParseElementID but panics on malformed input.
func MustParseElementID(s string) ElementID {
	id, err := ParseElementID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Annotate returns id extended with an annotation part.
func (id ElementID) Annotate(letter byte, n ...int) (ElementID, error) {
	if id.letter != 0 {
		return ElementID{}, fmt.Errorf("%w: %s is already annotated", ErrMalformedID, id)
	}
	if letter < 'a' || letter > 'z' {
		return ElementID{}, fmt.Errorf("%w: annotation letter %q", ErrMalformedID, letter)
	}
	if len(id.main) == 0 {
		return ElementID{}, fmt.Errorf("%w: annotating an empty identifier", ErrMalformedID)
	}
	for _, c := range n {
		if c < 0 {
			return ElementID{}, fmt.Errorf("%w: negative component %d", ErrMalformedID, c)
		}
	}
	return ElementID{main: slices.Clone(id.main), letter: letter, annotation: slices.Clone(n)}, nil
}

// Main returns a copy of the main components.
func (id ElementID) Main() []int {
	return slices.Clone(id.main)
}

// Depth is the number of main components.
func (id ElementID) Depth() int {
	return len(id.main)
}

// Annotated reports whether id has an annotation part.
func (id ElementID) Annotated() bool {
	return id.letter != 0
}

// IsZero reports whether id has no components at all.
func (id ElementID) IsZero() bool {
	return len(id.main) == 0 && id.letter == 0
}

// Last returns the last main component, or -1 for the zero identifier.
func (id ElementID) Last() int {
	if len(id.main) == 0 {
		return -1
	}
	return id.main[len(id.main)-1]
}

// Parent returns id without its last main component. Annotations are dropped.
func (id ElementID) Parent() ElementID {
	if len(id.main) == 0 {
		return ElementID{}
	}
	return ElementID{main: slices.Clone(id.main[:len(id.main)-1])}
}

// Insertion returns id with n appended as a new trailing component. The new
// identifier sorts after id and before every identifier that sorts after id
// without extending it.
func (id ElementID) Insertion(n int) ElementID {
	out := ElementID{main: slices.Clone(id.main), letter: id.letter, annotation: slices.Clone(id.annotation)}
	if out.letter != 0 {
		out.annotation = append(out.annotation, n)
	} else {
		out.main = append(out.main, n)
	}
	return out
}

// Compare returns -1, 0 or +1 depending on whether id sorts before, equal to or after o.
func (id ElementID) Compare(o ElementID) int {
	if c := slices.Compare(id.main, o.main); c != 0 {
		return c
	}
	if id.letter != o.letter {
		return cmpInt(int(id.letter), int(o.letter))
	}
	return slices.Compare(id.annotation, o.annotation)
}

// Less reports whether id sorts before o.
func (id ElementID) Less(o ElementID) bool {
	return id.Compare(o) < 0
}

// Equal reports whether id and o are the same identifier.
func (id ElementID) Equal(o ElementID) bool {
	return id.Compare(o) == 0
}

// String returns the dotted form, e.g. "33.2.1" or "12.a.1".
func (id ElementID) String() string {
	parts := make([]string, 0, len(id.main)+len(id.annotation)+1)
	for _, n := range id.main {
		parts = append(parts, strconv.Itoa(n))
	}
	if id.letter != 0 {
		parts = append(parts, string(rune(id.letter)))
	}
	for _, n := range id.annotation {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ".")
}

// MarshalText implements encoding.TextMarshaler.
func (id ElementID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ElementID) UnmarshalText(text []byte) error {
	parsed, err := ParseElementID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// FormatPath joins a nested identifier path as "33.2/5".
func FormatPath(path []ElementID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, "/")
}

// InsertionPoint returns the (prefix, offset) pair such that prefix.Insertion(offset),
// prefix.Insertion(offset+1), ... all sort strictly between prev and next. A nil next
// means prev is the last identifier.
//
//   - next absent, or prev one level deeper than next: prefix is prev's parent,
//     offset is prev's last component plus one;
//   - prev and next at the same depth: prefix is prev, offset 1;
//   - next's last component is 1: prefix is next's parent extended with 0, offset 1.
//
// Anything else, and any annotated neighbour, is ErrUnrepresentableInsertion.
func InsertionPoint(prev ElementID, next *ElementID) (ElementID, int, error) {
	if prev.Annotated() || (next != nil && next.Annotated()) {
		return ElementID{}, 0, fmt.Errorf("%w: between annotations %s and %s", ErrUnrepresentableInsertion, prev, describe(next))
	}
	if prev.Depth() == 0 {
		return ElementID{}, 0, fmt.Errorf("%w: empty previous identifier", ErrUnrepresentableInsertion)
	}

	var (
		prefix ElementID
		offset int
	)
	switch {
	case next == nil || prev.Depth() == next.Depth()+1:
		prefix, offset = prev.Parent(), prev.Last()+1
	case prev.Depth() == next.Depth():
		prefix, offset = prev, 1
	case next.Last() == 1:
		prefix, offset = next.Parent().Insertion(0), 1
	default:
		return ElementID{}, 0, fmt.Errorf("%w: between %s and %s", ErrUnrepresentableInsertion, prev, next)
	}

	// Every rule only grows the last component, so checking the first
	// identifier against both neighbours covers the whole run.
	first := prefix.Insertion(offset)
	if !prev.Less(first) || (next != nil && !first.Less(*next)) {
		return ElementID{}, 0, fmt.Errorf("%w: between %s and %s", ErrUnrepresentableInsertion, prev, describe(next))
	}
	return prefix, offset, nil
}

// FirstInsertionPoint returns the (prefix, offset) pair for identifiers inserted
// before first, which must end in 1.
func FirstInsertionPoint(first ElementID) (ElementID, int, error) {
	if first.Annotated() || first.Last() != 1 {
		return ElementID{}, 0, fmt.Errorf("%w: before %s", ErrUnrepresentableInsertion, first)
	}
	return first.Parent().Insertion(0), 1, nil
}

func describe(id *ElementID) string {
	if id == nil {
		return "end"
	}
	return id.String()
}
