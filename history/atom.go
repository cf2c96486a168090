package history

import "fmt"

// Atom is the lifecycle of one indivisible token. Its text never changes:
// tokens are replaced, not edited.
type Atom struct {
	text      string
	added     Version
	removed   Version
	anomalous bool
}

// NewAtom returns an atom holding text, introduced at version v.
func NewAtom(v Version, text string) *Atom {
	return &Atom{text: text, added: v}
}

// Text returns the token.
func (a *Atom) Text() string {
	return a.text
}

// Added returns the version that introduced the token.
func (a *Atom) Added() Version {
	return a.added
}

// Removed returns the version that removed the token, if any.
func (a *Atom) Removed() (Version, bool) {
	return a.removed, !a.removed.IsZero()
}

// Anomalous reports whether the token was added and removed in the same version.
func (a *Atom) Anomalous() bool {
	return a.anomalous
}

// PresentAt reports whether the token is part of the content at version v.
func (a *Atom) PresentAt(v Version) bool {
	if a.added.IsZero() || v.Less(a.added) {
		return false
	}
	return a.removed.IsZero() || v.Less(a.removed)
}

func (a *Atom) Present() bool {
	return !a.added.IsZero() && a.removed.IsZero()
}

func (a *Atom) Value() string {
	return a.text
}

func (a *Atom) ValueAt(v Version) string {
	if a.PresentAt(v) {
		return a.text
	}
	return ""
}

func (a *Atom) LastChanged() Version {
	if !a.removed.IsZero() {
		return a.removed
	}
	return a.added
}

func (a *Atom) VersionsChanged() []Version {
	if a.removed.IsZero() || a.removed == a.added {
		return []Version{a.added}
	}
	return []Version{a.added, a.removed}
}

// Remove marks the token removed at v. Removing a token in the version that
// introduced it is recorded, flagged and reported as an AddedAndRemoved warning.
func (a *Atom) Remove(v Version) error {
	if !a.removed.IsZero() {
		return nil
	}
	if v.Less(a.added) {
		return fmt.Errorf("%w: removing %q at %s, added at %s", ErrVersionOrder, a.text, v, a.added)
	}

	a.removed = v
	if a.added == v {
		a.anomalous = true
		return &Warning{
			Kind:    AddedAndRemoved,
			Version: v,
			Message: fmt.Sprintf("%q added and removed in %s", a.text, v),
		}
	}
	return nil
}

func (a *Atom) cloneBefore(v Version) Timeline {
	if !a.added.Less(v) {
		return nil
	}
	out := *a
	if !out.removed.IsZero() && !out.removed.Less(v) {
		out.removed = Version{}
		out.anomalous = false
	}
	return &out
}
