package commons

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a block kind name is not recognised.
var ErrUnknownKind = errors.New("unknown block kind")

// Kind represents the structural role of a block.
type Kind int

// Currently, histdiff supports 6 block kinds:
// - paragraph (running text)
// - heading (with a level)
// - rule (a numbered rule statement)
// - table-row
// - code-line
// - formula

const (
	Paragraph Kind = iota
	Heading
	Rule
	TableRow
	CodeLine
	Formula
)

var kindNames = [...]string{
	Paragraph: "paragraph",
	Heading:   "heading",
	Rule:      "rule",
	TableRow:  "table-row",
	CodeLine:  "code-line",
	Formula:   "formula",
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Block represents one top-level unit of a document snapshot.
type Block struct {
	Kind Kind `yaml:"kind" json:"kind"`

	// Level is only meaningful for headings.
	Level int `yaml:"level,omitempty" json:"level,omitempty"`

	Text string `yaml:"text" json:"text"`
}

// Words returns the tokens of the block's text.
func (b Block) Words() []string {
	return Words(b.Text)
}
