package curation

import (
	"strings"
	"testing"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const sample = `
label_pattern = 'LB\s*(\d+[a-z]?)'
label_prefix  = "LB"
default_junk  = ["of", "and", "the"]

[[version]]
version = "4.1.0"
delete = ["12"]
junk = { "33.3" = ["LB"] }

[[version.preserve]]
id = "39"
hint = "LB 7a"

[[version.ancestry]]
id = "9"
origin = "7"

[[version.kind_change]]
id = "84"
from = "paragraph"
to = "formula"

[[version]]
version = "5.0.0"

[[version.renumber]]
old = "13"
new = "11b"

[[version.renumber]]
new = "30a"

[[reason]]
version = "5.0.0"
targets = ["LB11b"]
refs = ["92-A64"]
docs = ["L2/00-258"]
`

func TestRead(t *testing.T) {
	tables, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	v41 := history.V(4, 1, 0)
	v5 := history.V(5, 0, 0)

	require.Equal(t, []string{"12"}, idStrings(tables.Deletions(v41)))
	require.Empty(t, tables.Deletions(v5))

	preserved := tables.Preserved(v41)
	require.Len(t, preserved, 1)
	require.Equal(t, "39", preserved[0].ID.String())
	require.Equal(t, "LB 7a", preserved[0].Hint)

	origin, ok := tables.Ancestor(v41, history.ID(9))
	require.True(t, ok)
	require.Equal(t, "7", origin.String())
	_, ok = tables.Ancestor(v5, history.ID(9))
	require.False(t, ok)

	require.Equal(t, []string{"LB"}, tables.ExtraJunk(v41, history.ID(33, 3)))
	require.Empty(t, tables.ExtraJunk(v5, history.ID(33, 3)))
	require.Equal(t, []string{"of", "and", "the"}, tables.DefaultJunk())

	require.True(t, tables.KindChangeAllowed(v41, history.ID(84), commons.Paragraph, commons.Formula))
	require.False(t, tables.KindChangeAllowed(v41, history.ID(84), commons.Formula, commons.Paragraph))
	require.False(t, tables.KindChangeAllowed(v5, history.ID(84), commons.Paragraph, commons.Formula))

	reasons := tables.Reasons(v5)
	require.Len(t, reasons, 1)
	want := commons.Source{Version: v5, Refs: []string{"92-A64"}, Docs: []string{"L2/00-258"}}
	if got := reasons[0].Source(); !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}

	require.Equal(t, []history.Version{v41, v5}, tables.Versions())
}

func TestLabel(t *testing.T) {
	tables, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	tests := []struct {
		description string
		text        string
		want        string
		wantOK      bool
	}{
		{description: "spaced", text: "LB 7 Do not break before spaces.", want: "LB7", wantOK: true},
		{description: "with letter", text: "LB11b Do not break", want: "LB11b", wantOK: true},
		{description: "no label", text: "Break after spaces.", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, ok := tables.Label(tc.text)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("got != want; got = %q, %v, expected = %q, %v\n", got, ok, tc.want, tc.wantOK)
			}
		})
	}

	if _, ok := Empty().Label("LB 7"); ok {
		t.Errorf("empty tables extracted a label\n")
	}
}

func TestPreviousLabel(t *testing.T) {
	tables, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	tests := []struct {
		description string
		version     history.Version
		label       string
		want        string
		wantOK      bool
	}{
		{description: "no renumbering", version: history.V(4, 1, 0), label: "LB13", want: "LB13", wantOK: true},
		{description: "renumbered", version: history.V(5, 0, 0), label: "LB11b", want: "LB13", wantOK: true},
		{description: "label given away", version: history.V(5, 0, 0), label: "LB13", wantOK: false},
		{description: "new rule", version: history.V(5, 0, 0), label: "LB30a", wantOK: false},
		{description: "unchanged", version: history.V(5, 0, 0), label: "LB7", want: "LB7", wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, ok := tables.PreviousLabel(tc.version, tc.label)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("got != want; got = %q, %v, expected = %q, %v\n", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		description string
		input       string
	}{
		{description: "unknown key", input: "colour = \"red\"\n"},
		{description: "bad version", input: "[[version]]\nversion = \"five\"\n"},
		{description: "bad id", input: "[[version]]\nversion = \"5.0.0\"\ndelete = [\"a.1\"]\n"},
		{description: "bad kind", input: "[[version]]\nversion = \"5.0.0\"\n[[version.kind_change]]\nid = \"1\"\nfrom = \"paragraph\"\nto = \"sidebar\"\n"},
		{description: "duplicate version", input: "[[version]]\nversion = \"5.0.0\"\n[[version]]\nversion = \"5.0\"\n"},
		{description: "pattern without group", input: "label_pattern = 'LB'\n"},
		{description: "bad pattern", input: "label_pattern = '('\n"},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.input))
			require.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestReadMalformedID(t *testing.T) {
	_, err := Read(strings.NewReader("[[version]]\nversion = \"5.0.0\"\ndelete = [\"1.a.b\"]\n"))
	require.ErrorIs(t, err, history.ErrMalformedID)
}

func idStrings(ids []history.ElementID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func TestLabelAnchored(t *testing.T) {
	tables, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	_, ok := tables.Label("See LB 7 for details.")
	require.False(t, ok)
}
