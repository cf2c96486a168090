// Package annotator builds the history of a document from its snapshots.
//
// Each snapshot is applied in version order: curated deletions, preserved
// positions and label-following updates first, then the generic diff, then
// the attribution of documented reasons to the positions that changed.
package annotator

import (
	"fmt"
	"strings"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/curation"
	"github.com/burntcarrot/histdiff/history"
	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"
)

// Options configures an Annotator.
type Options struct {
	// Tables holds the curated data. Nil means no curation.
	Tables *curation.Tables

	// Tokenize splits block text into words. Defaults to commons.Words.
	Tokenize func(text string) []string

	// NumberNicely lets new blocks skip over deleted positions for shallower identifiers.
	NumberNicely bool

	// Logger receives progress and warnings. Defaults to the standard logrus logger.
	Logger logrus.FieldLogger
}

// punctuation is always junk within a block.
var punctuation = []string{".", ",", ";", ":"}

// Annotator accumulates the history of a document, one snapshot at a time.
type Annotator struct {
	tables   *curation.Tables
	tokenize func(string) []string
	log      logrus.FieldLogger

	doc *history.Sequence[commons.Block]

	// blocks and reasons are keyed by the string form of a top-level ElementID.
	blocks  map[string]commons.Block
	reasons map[string][]curation.Reason

	warnings   []*history.Warning
	nonTrivial []history.Version
	current    history.Version
	previous   history.Version
}

// New returns an Annotator with an empty document.
func New(opts Options) *Annotator {
	if opts.Tables == nil {
		opts.Tables = curation.Empty()
	}
	if opts.Tokenize == nil {
		opts.Tokenize = commons.Words
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	a := &Annotator{
		tables:   opts.Tables,
		tokenize: opts.Tokenize,
		log:      opts.Logger.WithField("run", uuid.New().String()),
		blocks:   make(map[string]commons.Block),
		reasons:  make(map[string][]curation.Reason),
	}
	a.doc = history.NewSequence(history.Config[commons.Block]{
		Value:        func(b commons.Block) string { return b.Text },
		New:          a.newBlock,
		Update:       a.updateBlock,
		NumberNicely: opts.NumberNicely,
		Reporter:     history.ReporterFunc(a.report),
	})
	return a
}

// Build applies every snapshot in order and returns the finished history.
func Build(snapshots []commons.Snapshot, opts Options) (*Result, error) {
	a := New(opts)
	for _, s := range snapshots {
		if err := a.Apply(s); err != nil {
			return nil, err
		}
	}
	return a.Result(), nil
}

// Apply records the snapshot s. Versions must be applied in strictly increasing order.
// An error leaves the Annotator in an undefined state.
func (a *Annotator) Apply(s commons.Snapshot) error {
	v := s.Version
	if !a.previous.Less(v) {
		return fmt.Errorf("%w: %s after %s", history.ErrVersionOrder, v, a.previous)
	}
	a.current = v

	log := a.log.WithField("version", v.String())
	log.Infof("applying %d blocks", len(s.Blocks))

	if err := a.deleteCurated(v, log); err != nil {
		return err
	}
	if err := a.preserve(v, s.Blocks, log); err != nil {
		return err
	}
	if err := a.followLabels(v, s.Blocks); err != nil {
		return err
	}

	if _, err := a.doc.Apply(v, s.Blocks); err != nil {
		return fmt.Errorf("applying %s: %w", v, err)
	}

	if a.attribute(v) {
		a.nonTrivial = append(a.nonTrivial, v)
	} else {
		log.Infof("no change")
	}

	a.previous = v
	return nil
}

func (a *Annotator) deleteCurated(v history.Version, log logrus.FieldLogger) error {
	for _, id := range a.tables.Deletions(v) {
		log.WithField("id", id.String()).Debugf("deleting")
		if err := a.doc.RemoveChild(v, id); err != nil {
			return fmt.Errorf("deleting %s in %s: %w", id, v, err)
		}
	}
	return nil
}

// preserve pins curated positions to the block most similar to their current
// text among the blocks that start with the hint.
func (a *Annotator) preserve(v history.Version, blocks []commons.Block, log logrus.FieldLogger) error {
	if len(blocks) == 0 {
		return nil
	}

	for _, p := range a.tables.Preserved(v) {
		child, ok := a.doc.Child(p.ID)
		if !ok {
			return fmt.Errorf("preserving %s in %s: %w", p.ID, v, history.ErrUnknownPosition)
		}

		var candidates []commons.Block
		for _, b := range blocks {
			if strings.HasPrefix(b.Text, p.Hint) {
				candidates = append(candidates, b)
			}
		}
		if len(candidates) == 0 {
			a.report(&history.Warning{
				Kind:    history.HintNotMatched,
				Version: v,
				Path:    []history.ElementID{p.ID},
				Message: fmt.Sprintf("no block starts with %q", p.Hint),
			})
			candidates = blocks
		}

		best := closest(child.Value(), candidates)
		log.WithField("id", p.ID.String()).Debugf("preserving as %q", best.Text)
		if _, err := a.doc.UpdateChild(v, p.ID, best); err != nil {
			return fmt.Errorf("preserving %s in %s: %w", p.ID, v, err)
		}
	}
	return nil
}

// closest returns the first candidate with the highest character similarity to text.
func closest(text string, candidates []commons.Block) commons.Block {
	target := strings.Split(text, "")
	best, bestRatio := candidates[0], -1.0
	for _, b := range candidates {
		ratio := difflib.NewMatcher(strings.Split(b.Text, ""), target).Ratio()
		if ratio > bestRatio {
			best, bestRatio = b, ratio
		}
	}
	return best
}

// followLabels pushes each labelled block into the present position that
// carried the same rule in the previous version, so that renumbered or
// heavily edited rules keep their position.
func (a *Annotator) followLabels(v history.Version, blocks []commons.Block) error {
	byPrevious := make(map[string]commons.Block)
	for _, b := range blocks {
		label, ok := a.tables.Label(b.Text)
		if !ok {
			continue
		}
		if previous, ok := a.tables.PreviousLabel(v, label); ok {
			byPrevious[previous] = b
		}
	}
	if len(byPrevious) == 0 {
		return nil
	}

	type update struct {
		id    history.ElementID
		block commons.Block
	}
	var updates []update
	a.doc.Each(func(id history.ElementID, t history.Timeline) bool {
		if !t.Present() {
			return true
		}
		if label, ok := a.tables.Label(t.Value()); ok {
			if b, ok := byPrevious[label]; ok {
				updates = append(updates, update{id: id, block: b})
			}
		}
		return true
	})

	for _, u := range updates {
		if _, err := a.doc.UpdateChild(v, u.id, u.block); err != nil {
			return fmt.Errorf("following %s in %s: %w", u.id, v, err)
		}
	}
	return nil
}

func (a *Annotator) report(w *history.Warning) {
	a.warnings = append(a.warnings, w)
	a.log.WithFields(logrus.Fields{
		"version": w.Version.String(),
		"id":      history.FormatPath(w.Path),
		"kind":    string(w.Kind),
	}).Warn(w.Message)
}

// Result returns the history built so far.
func (a *Annotator) Result() *Result {
	return &Result{
		Document: a.doc,
		Warnings: a.warnings,
		Versions: a.nonTrivial,
		Latest:   a.previous,
		blocks:   a.blocks,
		reasons:  a.reasons,
	}
}
