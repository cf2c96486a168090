// Package curation loads the hand-maintained tables that steer the history
// builder where a lexical diff cannot: positions to delete or preserve, moved
// and split positions, extra junk tokens, allowed kind changes, renumbered
// labels and the documented reasons behind changes.
//
// Tables are loaded once, validated, and read-only afterwards.
package curation
