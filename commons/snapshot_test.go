package commons

import (
	"strings"
	"testing"

	"github.com/burntcarrot/histdiff/history"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReadSnapshots(t *testing.T) {
	input := `
versions:
  - version: "4.0.0"
    blocks:
      - {kind: heading, level: 2, text: "Introduction"}
      - {kind: rule, text: "LB 7 Do not break before spaces."}
  - version: Unicode 4.1.0
    blocks:
      - {kind: paragraph, text: "café"}
`
	got, err := ReadSnapshots(strings.NewReader(input))
	require.NoError(t, err)

	want := []Snapshot{
		{
			Version: history.V(4, 0, 0),
			Blocks: []Block{
				{Kind: Heading, Level: 2, Text: "Introduction"},
				{Kind: Rule, Text: "LB 7 Do not break before spaces."},
			},
		},
		{
			Version: history.V(4, 1, 0),
			Blocks:  []Block{{Kind: Paragraph, Text: "café"}},
		},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
}

func TestReadSnapshotsErrors(t *testing.T) {
	tests := []struct {
		description string
		input       string
		want        error
	}{
		{
			description: "versions out of order",
			input:       "versions:\n  - version: \"5.0.0\"\n  - version: \"4.0.0\"\n",
			want:        ErrSnapshotOrder,
		},
		{
			description: "repeated version",
			input:       "versions:\n  - version: \"5.0.0\"\n  - version: \"5.0.0\"\n",
			want:        ErrSnapshotOrder,
		},
		{
			description: "unknown kind",
			input:       "versions:\n  - version: \"5.0.0\"\n    blocks:\n      - {kind: sidebar, text: x}\n",
			want:        ErrUnknownKind,
		},
		{
			description: "malformed version",
			input:       "versions:\n  - version: \"five\"\n",
			want:        history.ErrMalformedVersion,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			_, err := ReadSnapshots(strings.NewReader(tc.input))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReadSnapshotsUnknownField(t *testing.T) {
	_, err := ReadSnapshots(strings.NewReader("versions:\n  - version: \"5.0.0\"\n    colour: red\n"))
	require.Error(t, err)
}

func TestKindText(t *testing.T) {
	for k := Paragraph; k <= Formula; k++ {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, k, back)
	}
}
