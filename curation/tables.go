package curation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidTable is returned when a curated table fails validation.
var ErrInvalidTable = errors.New("invalid curated table")

// Preserve pins the content of a position: in its version, the position takes
// the block that starts with Hint and is most similar to its current text.
// An empty Hint considers every block.
type Preserve struct {
	ID   history.ElementID
	Hint string
}

// KindChange allows the block at ID to change kind from From to To.
type KindChange struct {
	ID   history.ElementID
	From commons.Kind
	To   commons.Kind
}

// Reason documents why a version changed the blocks under some labels.
type Reason struct {
	Version history.Version

	// Targets and Affected name labels the change was about.
	Targets  []string
	Affected []string
	// Deleted names labels the change removed; it matches a block by the label it had before.
	Deleted []string

	Refs []string
	Docs []string
}

// Source returns the wire form of r.
func (r Reason) Source() commons.Source {
	return commons.Source{Version: r.Version, Refs: slices.Clone(r.Refs), Docs: slices.Clone(r.Docs)}
}

type versionTable struct {
	deletions   []history.ElementID
	preserve    []Preserve
	ancestors   map[string]history.ElementID
	junk        map[string][]string
	kindChanges []KindChange
	// renumbered maps a new label to its old label; an empty old label marks a new rule.
	renumbered map[string]string
	// renamedAway holds old labels that were given to another rule.
	renamedAway map[string]bool
	reasons     []Reason
}

// Tables holds every curated table, indexed by version.
type Tables struct {
	label       *regexp.Regexp
	labelPrefix string
	defaultJunk []string
	versions    map[history.Version]*versionTable
}

// Empty returns tables with no curated data and labels disabled.
func Empty() *Tables {
	return &Tables{versions: make(map[history.Version]*versionTable)}
}

// Load reads the TOML tables at path.
func Load(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read decodes and validates TOML tables. Unknown keys are rejected.
func Read(r io.Reader) (*Tables, error) {
	var raw rawTables
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return raw.compile()
}

// Label extracts the section label at the start of text, e.g. "LB11b" from
// "LB 11b Do not break...".
func (t *Tables) Label(text string) (string, bool) {
	if t.label == nil {
		return "", false
	}
	m := t.label.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return t.labelPrefix + m[1], true
}

// DefaultJunk lists tokens that are junk in every block.
func (t *Tables) DefaultJunk() []string {
	return slices.Clone(t.defaultJunk)
}

// Deletions lists the positions removed explicitly in v.
func (t *Tables) Deletions(v history.Version) []history.ElementID {
	if vt, ok := t.versions[v]; ok {
		return slices.Clone(vt.deletions)
	}
	return nil
}

// Preserved lists the positions whose content is pinned by hint in v.
func (t *Tables) Preserved(v history.Version) []Preserve {
	if vt, ok := t.versions[v]; ok {
		return slices.Clone(vt.preserve)
	}
	return nil
}

// Ancestor returns the position whose history the position id, new in v, continues.
func (t *Tables) Ancestor(v history.Version, id history.ElementID) (history.ElementID, bool) {
	vt, ok := t.versions[v]
	if !ok {
		return history.ElementID{}, false
	}
	origin, ok := vt.ancestors[id.String()]
	return origin, ok
}

// ExtraJunk lists tokens that are junk within the block at id while v is applied.
func (t *Tables) ExtraJunk(v history.Version, id history.ElementID) []string {
	if vt, ok := t.versions[v]; ok {
		return vt.junk[id.String()]
	}
	return nil
}

// KindChangeAllowed reports whether the block at id may change kind from one to another in v.
func (t *Tables) KindChangeAllowed(v history.Version, id history.ElementID, from, to commons.Kind) bool {
	vt, ok := t.versions[v]
	if !ok {
		return false
	}
	return slices.ContainsFunc(vt.kindChanges, func(c KindChange) bool {
		return c.ID.Equal(id) && c.From == from && c.To == to
	})
}

// PreviousLabel returns the label that the rule labelled label in v had in the
// previous version. It reports false for rules new in v and for labels that
// were given to a different rule in v.
func (t *Tables) PreviousLabel(v history.Version, label string) (string, bool) {
	vt, ok := t.versions[v]
	if !ok {
		return label, true
	}
	if old, ok := vt.renumbered[label]; ok {
		return old, old != ""
	}
	if vt.renamedAway[label] {
		return "", false
	}
	return label, true
}

// Reasons lists the reasons documented for v.
func (t *Tables) Reasons(v history.Version) []Reason {
	if vt, ok := t.versions[v]; ok {
		return slices.Clone(vt.reasons)
	}
	return nil
}

// Versions lists the versions that have curated data, oldest first.
func (t *Tables) Versions() []history.Version {
	versions := make([]history.Version, 0, len(t.versions))
	for v := range t.versions {
		versions = append(versions, v)
	}
	slices.SortFunc(versions, func(a, b history.Version) int { return a.Compare(b) })
	return versions
}
