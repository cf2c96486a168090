package annotator

import (
	"fmt"
	"slices"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
)

// Words is the history of one block's text.
type Words = history.Sequence[string]

// newBlock builds the word history of a block inserted at id. When the
// curated tables name an origin, the new history continues the origin's.
func (a *Annotator) newBlock(v history.Version, b commons.Block, id history.ElementID) (history.Timeline, error) {
	words := history.NewSequence(history.Config[string]{
		Junk:     a.junk(id),
		Reporter: history.Nested(history.ReporterFunc(a.report), id),
	})

	if origin, ok := a.tables.Ancestor(v, id); ok {
		child, ok := a.doc.Child(origin)
		if !ok {
			return nil, fmt.Errorf("ancestry of %s: origin %s: %w", id, origin, history.ErrUnknownPosition)
		}
		source, ok := child.(*Words)
		if !ok {
			return nil, fmt.Errorf("ancestry of %s: origin %s: %w", id, origin, history.ErrNotSequence)
		}
		if err := words.Splice(v, id, origin, source); err != nil {
			return nil, err
		}
		a.log.WithField("version", v.String()).WithField("id", id.String()).Infof("continuing %s", origin)
	}

	a.blocks[id.String()] = b
	if _, err := words.Apply(v, a.tokenize(b.Text)); err != nil {
		return nil, err
	}
	return words, nil
}

// updateBlock pushes new content into the existing block at id.
func (a *Annotator) updateBlock(t history.Timeline, v history.Version, b commons.Block, id history.ElementID) (bool, error) {
	words, ok := t.(*Words)
	if !ok {
		return false, fmt.Errorf("%s: %w", id, history.ErrNotSequence)
	}

	key := id.String()
	previous := a.blocks[key]
	if previous.Kind != b.Kind && !a.tables.KindChangeAllowed(v, id, previous.Kind, b.Kind) {
		a.report(&history.Warning{
			Kind:    history.KindChanged,
			Version: v,
			Path:    []history.ElementID{id},
			Message: fmt.Sprintf("%s becomes %s", previous.Kind, b.Kind),
		})
	}
	a.blocks[key] = b

	return words.Apply(v, a.tokenize(b.Text))
}

// junk returns the junk predicate for the words of the block at id. Curated
// extra junk applies to the version being applied.
func (a *Annotator) junk(id history.ElementID) func(string) bool {
	defaults := append(a.tables.DefaultJunk(), punctuation...)
	return func(token string) bool {
		return history.IsSpace(token) ||
			slices.Contains(defaults, token) ||
			slices.Contains(a.tables.ExtraJunk(a.current, id), token)
	}
}
