package history

// Timeline is the history of one position: either an *Atom or a *Sequence.
// The set of implementations is closed; the unexported method keeps it that way.
type Timeline interface {
	// Present reports whether the position is live as of the latest applied version.
	Present() bool

	// Value is the current content, ignoring whether the position is present.
	Value() string

	// ValueAt replays the content as it read at version v.
	ValueAt(v Version) string

	// LastChanged is the latest version at which anything in the timeline changed.
	LastChanged() Version

	// VersionsChanged lists, in order, the distinct versions at which something
	// in the timeline was added or removed.
	VersionsChanged() []Version

	// Remove marks the position absent from version v on. A *Warning error
	// reports a non-fatal anomaly; the removal is recorded regardless.
	Remove(v Version) error

	// cloneBefore returns a deep copy holding only the history introduced
	// before v, with removals at or after v undone. It returns nil when
	// nothing predates v.
	cloneBefore(v Version) Timeline
}
