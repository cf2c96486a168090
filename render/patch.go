package render

import (
	"bytes"
	"io"

	"github.com/burntcarrot/histdiff/annotator"
	"github.com/burntcarrot/histdiff/history"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// contextLines is the number of unchanged blocks around each hunk.
const contextLines = 3

// Patch writes a unified diff of the document between w.Base and w.Head, one
// block per line. name labels both sides.
func Patch(out io.Writer, r *annotator.Result, w Window, name string) error {
	if err := w.Validate(); err != nil {
		return err
	}

	base, head := textAt(r, w.Base), textAt(r, w.Head)
	fd := &diff.FileDiff{
		OrigName: "a/" + name + "@" + w.Base.String(),
		NewName:  "b/" + name + "@" + w.Head.String(),
	}

	matcher := difflib.NewMatcher(base, head)
	for _, group := range matcher.GetGroupedOpCodes(contextLines) {
		first, last := group[0], group[len(group)-1]
		h := &diff.Hunk{
			OrigStartLine: hunkStart(first.I1, last.I2),
			OrigLines:     int32(last.I2 - first.I1),
			NewStartLine:  hunkStart(first.J1, last.J2),
			NewLines:      int32(last.J2 - first.J1),
		}

		var body bytes.Buffer
		for _, op := range group {
			if op.Tag == 'e' {
				writeLines(&body, ' ', base[op.I1:op.I2])
				continue
			}
			if op.Tag == 'r' || op.Tag == 'd' {
				writeLines(&body, '-', base[op.I1:op.I2])
			}
			if op.Tag == 'r' || op.Tag == 'i' {
				writeLines(&body, '+', head[op.J1:op.J2])
			}
		}
		h.Body = body.Bytes()
		fd.Hunks = append(fd.Hunks, h)
	}

	if len(fd.Hunks) == 0 {
		return nil
	}
	b, err := diff.PrintFileDiff(fd)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

// textAt returns the text of every block present at v, in document order.
func textAt(r *annotator.Result, v history.Version) []string {
	var lines []string
	r.Document.Each(func(_ history.ElementID, t history.Timeline) bool {
		if text := t.ValueAt(v); text != "" {
			lines = append(lines, text)
		}
		return true
	})
	return lines
}

// hunkStart is the 1-based first line of a hunk, or the line before an empty one.
func hunkStart(begin, end int) int32 {
	if begin == end {
		return int32(begin)
	}
	return int32(begin + 1)
}

func writeLines(b *bytes.Buffer, prefix byte, lines []string) {
	for _, line := range lines {
		b.WriteByte(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
