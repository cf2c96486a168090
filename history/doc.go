// Package history records how a document changes across a series of versions.
//
// Content is modelled as timelines. An Atom is one token that is added once and
// possibly removed later. A Sequence is an ordered list of positions, each with
// its own timeline; sequences nest, so a document is a sequence of paragraphs
// and a paragraph is a sequence of words.
//
// Applying a version aligns the live content with the new content and records
// the edit script. Nothing is ever deleted: removed positions stay in place,
// marked absent, and keep their ElementID forever. Inserted positions get
// identifiers that sort between their neighbours, so the history of any
// position can be replayed with ValueAt.
package history
