package curation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
)

type rawTables struct {
	LabelPattern string       `toml:"label_pattern"`
	LabelPrefix  string       `toml:"label_prefix"`
	DefaultJunk  []string     `toml:"default_junk"`
	Versions     []rawVersion `toml:"version"`
	Reasons      []rawReason  `toml:"reason"`
}

type rawVersion struct {
	Version    string              `toml:"version"`
	Delete     []string            `toml:"delete"`
	Junk       map[string][]string `toml:"junk"`
	Preserve   []rawPreserve       `toml:"preserve"`
	Ancestry   []rawAncestry       `toml:"ancestry"`
	KindChange []rawKindChange     `toml:"kind_change"`
	Renumber   []rawRenumber       `toml:"renumber"`
}

type rawPreserve struct {
	ID   string `toml:"id"`
	Hint string `toml:"hint"`
}

type rawAncestry struct {
	ID     string `toml:"id"`
	Origin string `toml:"origin"`
}

type rawKindChange struct {
	ID   string `toml:"id"`
	From string `toml:"from"`
	To   string `toml:"to"`
}

type rawRenumber struct {
	Old string `toml:"old"`
	New string `toml:"new"`
}

type rawReason struct {
	Version  string   `toml:"version"`
	Targets  []string `toml:"targets"`
	Refs     []string `toml:"refs"`
	Docs     []string `toml:"docs"`
	Affected []string `toml:"affected"`
	Deleted  []string `toml:"deleted"`
}

func (raw *rawTables) compile() (*Tables, error) {
	t := Empty()
	t.labelPrefix = raw.LabelPrefix
	t.defaultJunk = raw.DefaultJunk

	if raw.LabelPattern != "" {
		// Labels only count at the start of a block.
		re, err := regexp.Compile(`^(?:` + raw.LabelPattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w: label_pattern: %v", ErrInvalidTable, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: label_pattern %q has no group", ErrInvalidTable, raw.LabelPattern)
		}
		t.label = re
	}

	for i, rv := range raw.Versions {
		v, err := history.ParseVersion(rv.Version)
		if err != nil {
			return nil, fmt.Errorf("%w: version table %d: %w", ErrInvalidTable, i, err)
		}
		if _, ok := t.versions[v]; ok {
			return nil, fmt.Errorf("%w: version %s listed twice", ErrInvalidTable, v)
		}
		vt, err := rv.compile(t.labelPrefix)
		if err != nil {
			return nil, fmt.Errorf("%w: version %s: %w", ErrInvalidTable, v, err)
		}
		t.versions[v] = vt
	}

	for i, rr := range raw.Reasons {
		v, err := history.ParseVersion(rr.Version)
		if err != nil {
			return nil, fmt.Errorf("%w: reason %d: %w", ErrInvalidTable, i, err)
		}
		vt, ok := t.versions[v]
		if !ok {
			vt = newVersionTable()
			t.versions[v] = vt
		}
		vt.reasons = append(vt.reasons, Reason{
			Version:  v,
			Targets:  rr.Targets,
			Affected: rr.Affected,
			Deleted:  rr.Deleted,
			Refs:     rr.Refs,
			Docs:     rr.Docs,
		})
	}

	return t, nil
}

func newVersionTable() *versionTable {
	return &versionTable{
		ancestors:   make(map[string]history.ElementID),
		junk:        make(map[string][]string),
		renumbered:  make(map[string]string),
		renamedAway: make(map[string]bool),
	}
}

func (rv *rawVersion) compile(prefix string) (*versionTable, error) {
	vt := newVersionTable()

	for _, s := range rv.Delete {
		id, err := history.ParseElementID(s)
		if err != nil {
			return nil, fmt.Errorf("delete: %w", err)
		}
		vt.deletions = append(vt.deletions, id)
	}

	for s, tokens := range rv.Junk {
		id, err := history.ParseElementID(s)
		if err != nil {
			return nil, fmt.Errorf("junk: %w", err)
		}
		vt.junk[id.String()] = tokens
	}

	for _, p := range rv.Preserve {
		id, err := history.ParseElementID(p.ID)
		if err != nil {
			return nil, fmt.Errorf("preserve: %w", err)
		}
		vt.preserve = append(vt.preserve, Preserve{ID: id, Hint: p.Hint})
	}

	for _, a := range rv.Ancestry {
		id, err := history.ParseElementID(a.ID)
		if err != nil {
			return nil, fmt.Errorf("ancestry: %w", err)
		}
		origin, err := history.ParseElementID(a.Origin)
		if err != nil {
			return nil, fmt.Errorf("ancestry of %s: %w", id, err)
		}
		vt.ancestors[id.String()] = origin
	}

	for _, k := range rv.KindChange {
		id, err := history.ParseElementID(k.ID)
		if err != nil {
			return nil, fmt.Errorf("kind_change: %w", err)
		}
		from, err := commons.ParseKind(k.From)
		if err != nil {
			return nil, fmt.Errorf("kind_change of %s: %w", id, err)
		}
		to, err := commons.ParseKind(k.To)
		if err != nil {
			return nil, fmt.Errorf("kind_change of %s: %w", id, err)
		}
		vt.kindChanges = append(vt.kindChanges, KindChange{ID: id, From: from, To: to})
	}

	for _, r := range rv.Renumber {
		if r.New == "" {
			if r.Old == "" {
				return nil, errors.New("renumber: empty entry")
			}
			vt.renamedAway[prefix+r.Old] = true
			continue
		}
		old := ""
		if r.Old != "" {
			old = prefix + r.Old
			vt.renamedAway[old] = true
		}
		vt.renumbered[prefix+r.New] = old
	}

	return vt, nil
}
