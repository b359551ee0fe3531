// Package diff models a staged git diff as structured hunks and flattens
// it into the line-prefixed text form embedded in completion prompts.
package diff

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Line origins as they appear in a unified diff body.
const (
	OriginContext = byte(' ')
	OriginAdded   = byte('+')
	OriginRemoved = byte('-')
)

// Line is one body line of a hunk. OldLine is the line number on the old
// side of the diff; pure additions have no old-side number and carry 0.
type Line struct {
	Origin  byte
	OldLine int
	Content string
}

// Hunk is one "@@ -a,b +c,d @@" block with its body lines.
type Hunk struct {
	Header string
	Lines  []Line
}

// File is one file's section of the diff: the header block from
// "diff --git" through the "+++" line, plus its hunks.
type File struct {
	Header []string
	Hunks  []Hunk
}

// Diff is a parsed staged diff, one File per changed path.
type Diff []File

// Empty reports whether the diff contains no hunks at all.
func (d Diff) Empty() bool {
	for _, f := range d {
		if len(f.Hunks) > 0 {
			return false
		}
	}
	return true
}

// Normalize flattens the diff into prompt text. Header lines and hunk
// headers pass through verbatim; every body line is rewritten as
// "<origin><old-line> <content>" so the model sees both the change marker
// and where it lands. Returns an error if any line content is not valid
// UTF-8; a diff that cannot be rendered as text is fatal for the run.
func Normalize(d Diff) (string, error) {
	var b strings.Builder
	for _, f := range d {
		for _, h := range f.Header {
			b.WriteString(h)
			b.WriteByte('\n')
		}
		for _, hunk := range f.Hunks {
			b.WriteString(hunk.Header)
			b.WriteByte('\n')
			for _, line := range hunk.Lines {
				if !utf8.ValidString(line.Content) {
					return "", fmt.Errorf("diff line %q is not valid UTF-8", line.Content)
				}
				b.WriteByte(line.Origin)
				b.WriteString(strconv.Itoa(line.OldLine))
				b.WriteByte(' ')
				b.WriteString(line.Content)
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}
