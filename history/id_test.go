package history

import (
	"errors"
	"testing"
)

func TestParseElementID(t *testing.T) {
	tests := []struct {
		description string
		input       string
		want        string
		wantErr     bool
	}{
		{description: "single", input: "33", want: "33"},
		{description: "nested", input: "33.2.1", want: "33.2.1"},
		{description: "zero sentinel", input: "1.0.1", want: "1.0.1"},
		{description: "annotation", input: "12.a.1", want: "12.a.1"},
		{description: "bare annotation", input: "12.b", want: "12.b"},
		{description: "empty", input: "", wantErr: true},
		{description: "letter first", input: "a.1", wantErr: true},
		{description: "two letters", input: "1.a.b", wantErr: true},
		{description: "upper case", input: "1.A", wantErr: true},
		{description: "negative", input: "1.-2", wantErr: true},
		{description: "negative zero", input: "-0", wantErr: true},
		{description: "negative zero component", input: "1.-0", wantErr: true},
		{description: "plus sign", input: "1.+2", wantErr: true},
		{description: "empty component", input: "1..2", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, err := ParseElementID(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedID) {
					t.Errorf("expected ErrMalformedID, got %v\n", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("error: %v\n", err)
			}
			if got.String() != tc.want {
				t.Errorf("got != want; got = %v, expected = %v\n", got, tc.want)
			}
		})
	}
}

func TestElementIDOrdering(t *testing.T) {
	// Each identifier sorts strictly before the next one.
	ordered := []string{"0.1", "0.2", "1", "1.0.1", "1.1", "1.1.1", "1.2", "2", "2.a", "2.a.1", "2.a.2", "2.b", "2.1", "10"}

	ids := make([]ElementID, len(ordered))
	for i, s := range ordered {
		ids[i] = MustParseElementID(s)
	}
	for i := range ids {
		for j := range ids {
			if got, want := ids[i].Compare(ids[j]), cmpInt(i, j); got != want {
				t.Errorf("%s.Compare(%s) = %d, expected %d\n", ids[i], ids[j], got, want)
			}
		}
	}
}

func TestInsertion(t *testing.T) {
	tests := []struct {
		description string
		id          ElementID
		n           int
		want        string
	}{
		{description: "main part", id: ID(3), n: 1, want: "3.1"},
		{description: "empty", id: ElementID{}, n: 1, want: "1"},
		{description: "annotation part", id: MustParseElementID("3.a"), n: 2, want: "3.a.2"},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got := tc.id.Insertion(tc.n)
			if got.String() != tc.want {
				t.Errorf("got != want; got = %v, expected = %v\n", got, tc.want)
			}
			if !tc.id.Less(got) {
				t.Errorf("%s does not sort before %s\n", tc.id, got)
			}
		})
	}
}

func TestInsertionPoint(t *testing.T) {
	tests := []struct {
		description string
		prev        string
		next        string
		want        []string
		wantErr     bool
	}{
		{description: "at the end", prev: "3", want: []string{"4", "5"}},
		{description: "at the end of a nested run", prev: "3.2", want: []string{"3.3", "3.4"}},
		{description: "same depth", prev: "3", next: "4", want: []string{"3.1", "3.2"}},
		{description: "leaving a nested run", prev: "3.2", next: "4", want: []string{"3.3", "3.4"}},
		{description: "before a first child", prev: "3", next: "3.1", want: []string{"3.0.1", "3.0.2"}},
		{description: "two levels deeper", prev: "3.5.1", next: "4.1", want: []string{"3.5.2", "3.5.3"}},
		{description: "sentinel below prev", prev: "0.5.1", next: "1", wantErr: true},
		{description: "unrepresentable", prev: "3", next: "3.2", wantErr: true},
		{description: "annotated neighbour", prev: "3.a", next: "4", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			prev := MustParseElementID(tc.prev)
			var next *ElementID
			if tc.next != "" {
				n := MustParseElementID(tc.next)
				next = &n
			}

			prefix, offset, err := InsertionPoint(prev, next)
			if tc.wantErr {
				if !errors.Is(err, ErrUnrepresentableInsertion) {
					t.Errorf("expected ErrUnrepresentableInsertion, got %v\n", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("error: %v\n", err)
			}

			for i, want := range tc.want {
				got := prefix.Insertion(offset + i)
				if got.String() != want {
					t.Errorf("got != want; got = %v, expected = %v\n", got, want)
				}
				if !prev.Less(got) || (next != nil && !got.Less(*next)) {
					t.Errorf("%s is not between %s and %s\n", got, prev, describe(next))
				}
			}
		})
	}
}

func TestFirstInsertionPoint(t *testing.T) {
	prefix, offset, err := FirstInsertionPoint(ID(1))
	if err != nil {
		t.Fatalf("error: %v\n", err)
	}
	first, second := prefix.Insertion(offset), prefix.Insertion(offset+1)
	if first.String() != "0.1" || second.String() != "0.2" {
		t.Errorf("got %s, %s; expected 0.1, 0.2\n", first, second)
	}
	if !second.Less(ID(1)) {
		t.Errorf("%s does not sort before 1\n", second)
	}

	if _, _, err := FirstInsertionPoint(ID(2)); !errors.Is(err, ErrUnrepresentableInsertion) {
		t.Errorf("expected ErrUnrepresentableInsertion, got %v\n", err)
	}
}

func TestAnnotate(t *testing.T) {
	id, err := ID(12).Annotate('a', 1)
	if err != nil {
		t.Fatalf("error: %v\n", err)
	}
	if got, want := id.String(), "12.a.1"; got != want {
		t.Errorf("got != want; got = %v, expected = %v\n", got, want)
	}
	if _, err := id.Annotate('b'); !errors.Is(err, ErrMalformedID) {
		t.Errorf("expected ErrMalformedID, got %v\n", err)
	}
}
