package annotator

import (
	"errors"
	"strings"
	"testing"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/curation"
	"github.com/burntcarrot/histdiff/history"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var (
	v1 = history.V(1, 0, 0)
	v2 = history.V(2, 0, 0)
	v3 = history.V(3, 0, 0)
)

func para(text string) commons.Block {
	return commons.Block{Kind: commons.Paragraph, Text: text}
}

func rule(text string) commons.Block {
	return commons.Block{Kind: commons.Rule, Text: text}
}

func snapshot(v history.Version, blocks ...commons.Block) commons.Snapshot {
	return commons.Snapshot{Version: v, Blocks: blocks}
}

func tables(t *testing.T, input string) *curation.Tables {
	t.Helper()
	tables, err := curation.Read(strings.NewReader(input))
	require.NoError(t, err)
	return tables
}

func build(t *testing.T, opts Options, snapshots ...commons.Snapshot) *Result {
	t.Helper()
	if opts.Logger == nil {
		logger, _ := test.NewNullLogger()
		opts.Logger = logger
	}
	result, err := Build(snapshots, opts)
	require.NoError(t, err)
	return result
}

func ids(r *Result) []string {
	var out []string
	for _, id := range r.Document.IDs() {
		out = append(out, id.String())
	}
	return out
}

func kinds(warnings []*history.Warning) []history.WarningKind {
	var out []history.WarningKind
	for _, w := range warnings {
		out = append(out, w.Kind)
	}
	return out
}

func TestBuild(t *testing.T) {
	result := build(t, Options{},
		snapshot(v1, commons.Block{Kind: commons.Heading, Level: 2, Text: "Introduction"}, rule("LB 7 Do not break before spaces.")),
		snapshot(v2, commons.Block{Kind: commons.Heading, Level: 2, Text: "Introduction"}, rule("LB 7 Do not break before spaces or tabs.")),
		snapshot(v3, commons.Block{Kind: commons.Heading, Level: 2, Text: "Introduction"}, rule("LB 7 Do not break before spaces or tabs.")),
	)

	if got, want := ids(result), []string{"1", "2"}; !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
	if got, want := result.Versions, []history.Version{v1, v2}; !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
	require.Equal(t, v3, result.Latest)
	require.Empty(t, result.Warnings)

	words, ok := result.Words(history.ID(2))
	require.True(t, ok)
	require.Equal(t, "LB 7 Do not break before spaces.", words.ValueAt(v1))
	require.Equal(t, "LB 7 Do not break before spaces or tabs.", words.Value())
	require.Equal(t, v2, words.LastChanged())

	heading, ok := result.Block(history.ID(1))
	require.True(t, ok)
	require.Equal(t, commons.Heading, heading.Kind)
	require.Equal(t, 2, heading.Level)
}

func TestBuildVersionOrder(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := New(Options{Logger: logger})
	require.NoError(t, a.Apply(snapshot(v2, para("a"))))

	err := a.Apply(snapshot(v1, para("a")))
	if !errors.Is(err, history.ErrVersionOrder) {
		t.Errorf("expected ErrVersionOrder, got %v\n", err)
	}
}

func TestReasons(t *testing.T) {
	curated := tables(t, `
label_pattern = 'LB\s*(\d+[a-z]?)'
label_prefix = "LB"

[[reason]]
version = "2.0.0"
targets = ["LB7"]
refs = ["92-A64"]

[[reason]]
version = "2.0.0"
targets = ["LB9"]
refs = ["99-X"]
`)

	logger, hook := test.NewNullLogger()
	result := build(t, Options{Tables: curated, Logger: logger},
		snapshot(v1, rule("LB 7 Do not break before spaces."), rule("LB 8 Break after zero width space.")),
		snapshot(v2, rule("LB 7 Do not break before spaces or tabs."), rule("LB 8 Break after any zero width space.")),
	)

	reasons := result.Reasons(history.ID(1))
	require.Len(t, reasons, 1)
	require.Equal(t, []string{"92-A64"}, reasons[0].Refs)
	require.Empty(t, result.Reasons(history.ID(2)))

	want := []history.WarningKind{history.UnexplainedChange, history.ReasonWithoutChange}
	if got := kinds(result.Warnings); !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
	require.Equal(t, "2", history.FormatPath(result.Warnings[0].Path))

	// Every warning is logged as it is found.
	var logged int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			logged++
		}
	}
	require.Equal(t, len(result.Warnings), logged)
}

func TestFollowLabels(t *testing.T) {
	curated := tables(t, `
label_pattern = 'LB\s*(\d+[a-z]?)'
label_prefix = "LB"

[[version]]
version = "2.0.0"

[[version.renumber]]
old = "13"
new = "11b"

[[version.renumber]]
new = "11a"
`)

	result := build(t, Options{Tables: curated, NumberNicely: true},
		snapshot(v1, rule("LB 12 Alpha beta."), rule("LB 13 Gamma delta.")),
		snapshot(v2, rule("LB 12 Alpha beta."), rule("LB 11a New rule."), rule("LB 11b Gamma delta.")),
	)

	if got, want := ids(result), []string{"1", "1.1", "2"}; !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}

	words, ok := result.Words(history.ID(2))
	require.True(t, ok)
	require.Equal(t, "LB 13 Gamma delta.", words.ValueAt(v1))
	require.Equal(t, "LB 11b Gamma delta.", words.Value())
}

func TestPreserve(t *testing.T) {
	curated := tables(t, `
[[version]]
version = "2.0.0"

[[version.preserve]]
id = "2"
hint = "Completely"
`)

	result := build(t, Options{Tables: curated},
		snapshot(v1, para("Alpha beta."), para("Zero width space rules apply.")),
		snapshot(v2, para("Alpha beta."), para("New paragraph."), para("Completely rewritten sentence.")),
	)

	if got, want := ids(result), []string{"1", "1.1", "2"}; !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
	words, _ := result.Words(history.ID(2))
	require.Equal(t, "Zero width space rules apply.", words.ValueAt(v1))
	require.Equal(t, "Completely rewritten sentence.", words.Value())
	require.Empty(t, result.Warnings)
}

func TestPreserveHintNotMatched(t *testing.T) {
	curated := tables(t, `
[[version]]
version = "2.0.0"

[[version.preserve]]
id = "1"
hint = "Zzz"
`)

	result := build(t, Options{Tables: curated},
		snapshot(v1, para("Alpha beta gamma.")),
		snapshot(v2, para("Alpha beta gamma delta."), para("Unrelated.")),
	)

	want := []history.WarningKind{history.HintNotMatched}
	if got := kinds(result.Warnings); !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
	words, _ := result.Words(history.ID(1))
	require.Equal(t, "Alpha beta gamma delta.", words.Value())
}

func TestCuratedDeletion(t *testing.T) {
	curated := tables(t, `
[[version]]
version = "2.0.0"
delete = ["1"]
`)

	result := build(t, Options{Tables: curated},
		snapshot(v1, para("Same text.")),
		snapshot(v2, para("Same text.")),
	)

	// The deleted position stays deleted; the block comes back as a new position.
	if got, want := ids(result), []string{"0.1", "1"}; !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
	first, _ := result.Document.Child(history.ID(1))
	require.False(t, first.Present())
	require.Equal(t, "Same text.", result.Document.Value())
}

func TestAncestry(t *testing.T) {
	curated := tables(t, `
[[version]]
version = "2.0.0"

[[version.ancestry]]
id = "3"
origin = "2"
`)

	result := build(t, Options{Tables: curated},
		snapshot(v1, para("Para one."), para("Para two.")),
		snapshot(v2, para("Para one."), para("Para two."), para("Para two continued.")),
	)

	split, ok := result.Words(history.ID(3))
	require.True(t, ok)
	require.Equal(t, "Para two.", split.ValueAt(v1))
	require.Equal(t, "Para two continued.", split.Value())

	ancestry, ok := split.Ancestry()
	require.True(t, ok)
	require.Equal(t, "2", ancestry.Origin.String())
	require.Equal(t, v2, ancestry.Version)

	origin, _ := result.Words(history.ID(2))
	descendants := origin.DescendantsAt(v2)
	require.Len(t, descendants, 1)
	require.Equal(t, "3", descendants[0].String())
}

func TestKindChange(t *testing.T) {
	tests := []struct {
		description string
		curated     string
		want        []history.WarningKind
	}{
		{
			description: "unexpected",
			want:        []history.WarningKind{history.KindChanged},
		},
		{
			description: "allowed",
			curated:     "[[version]]\nversion = \"2.0.0\"\n[[version.kind_change]]\nid = \"1\"\nfrom = \"paragraph\"\nto = \"formula\"\n",
			want:        nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			result := build(t, Options{Tables: tables(t, tc.curated)},
				snapshot(v1, para("x = y")),
				snapshot(v2, commons.Block{Kind: commons.Formula, Text: "x = y + z"}),
			)

			if got := kinds(result.Warnings); !cmp.Equal(got, tc.want) {
				t.Errorf("got != want; diff = %v\n", cmp.Diff(got, tc.want))
			}
			block, _ := result.Block(history.ID(1))
			require.Equal(t, commons.Formula, block.Kind)
		})
	}
}

func TestAddedAndRemovedPath(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := New(Options{Logger: logger})
	require.NoError(t, a.Apply(snapshot(v1, para("a b"))))
	require.NoError(t, a.Apply(snapshot(v2, para("a b c"))))

	// Words 4 and 5 were added in 2.0.0.
	require.NoError(t, a.doc.RemoveChild(v2, history.ID(1)))

	got := make([]string, 0, len(a.warnings))
	for _, w := range a.Result().Warnings {
		require.Equal(t, history.AddedAndRemoved, w.Kind)
		got = append(got, history.FormatPath(w.Path))
	}
	if want := []string{"1/4", "1/5"}; !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
}

func TestCuratedJunk(t *testing.T) {
	tests := []struct {
		description string
		curated     string
		want        []string
		kept        bool
	}{
		{
			description: "no curated junk",
			curated:     ``,
			want:        []string{"0.1", "0.2", "1", "2", "3"},
			kept:        true,
		},
		{
			description: "junk in the applied version",
			curated: `
[[version]]
version = "2.0.0"
junk = { "1" = ["the"] }
`,
			want: []string{"1", "2", "3", "4", "5", "6"},
			kept: false,
		},
		{
			description: "junk in a later version",
			curated: `
[[version]]
version = "3.0.0"
junk = { "1" = ["the"] }
`,
			want: []string{"0.1", "0.2", "1", "2", "3"},
			kept: true,
		},
		{
			description: "junk in another block",
			curated: `
[[version]]
version = "2.0.0"
junk = { "2" = ["the"] }
`,
			want: []string{"0.1", "0.2", "1", "2", "3"},
			kept: true,
		},
		{
			description: "default junk",
			curated:     `default_junk = ["the"]`,
			want:        []string{"1", "2", "3", "4", "5", "6"},
			kept:        false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			result := build(t, Options{Tables: tables(t, tc.curated)},
				snapshot(v1, para("the a")),
				snapshot(v2, para("b the")),
			)

			words, ok := result.Words(history.ID(1))
			require.True(t, ok)
			var got []string
			for _, id := range words.IDs() {
				got = append(got, id.String())
			}
			if !cmp.Equal(got, tc.want) {
				t.Errorf("got != want; diff = %v\n", cmp.Diff(got, tc.want))
			}
			require.Equal(t, "b the", words.Value())

			the, ok := words.Child(history.ID(1))
			require.True(t, ok)
			require.Equal(t, tc.kept, the.Present())
		})
	}
}
