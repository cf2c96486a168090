package annotator

import (
	"slices"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/curation"
	"github.com/burntcarrot/histdiff/history"
)

// Result is a finished document history. It must not be modified; concurrent
// reads are safe.
type Result struct {
	Document *history.Sequence[commons.Block]

	// Warnings lists the data-quality problems found, in the order they were found.
	Warnings []*history.Warning

	// Versions lists the versions in which something changed, oldest first.
	Versions []history.Version

	// Latest is the last version applied.
	Latest history.Version

	blocks  map[string]commons.Block
	reasons map[string][]curation.Reason
}

// Block returns the last block applied to the position id. Its text may be
// stale; the words of the position are the source of truth.
func (r *Result) Block(id history.ElementID) (commons.Block, bool) {
	b, ok := r.blocks[id.String()]
	return b, ok
}

// Words returns the word history of the position id.
func (r *Result) Words(id history.ElementID) (*Words, bool) {
	t, ok := r.Document.Child(id)
	if !ok {
		return nil, false
	}
	words, ok := t.(*Words)
	return words, ok
}

// Reasons returns the documented reasons for changes to the position id, oldest first.
func (r *Result) Reasons(id history.ElementID) []curation.Reason {
	return slices.Clone(r.reasons[id.String()])
}
