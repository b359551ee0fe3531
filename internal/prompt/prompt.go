// Package prompt builds the text sent to the completion endpoint. A
// Template is a pure value object; rendering the same template twice
// yields the same string. Presets supply the fixed framing text while the
// diff body and target language are always injected per run.
package prompt

import (
	"strings"
)

// separatorWidth is the number of separator characters in each divider
// line. The divider marks where instructions end and diff content begins,
// so a diff that happens to contain instruction-like lines cannot be
// mistaken for the prompt itself.
const separatorWidth = 16

// DefaultSeparator is the divider character used by every built-in preset.
const DefaultSeparator = '='

// Template is a parameterized completion prompt. Preamble, Postamble and
// ClosingInstruction come from a preset; Language and DiffBody are
// caller-supplied for each run.
type Template struct {
	Preamble           string
	Language           string
	Postamble          string
	Separator          rune
	DiffBody           string
	ClosingInstruction string
}

// Render produces the final prompt string:
//
//	{preamble} {language} {postamble}
//	{separator x16}
//	{diff}
//	{separator x16}
//	{closing instruction}
//
// Render is pure; it reads only the template fields.
func (t Template) Render() string {
	sep := t.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}
	divider := strings.Repeat(string(sep), separatorWidth)

	var b strings.Builder
	b.WriteString(t.Preamble)
	b.WriteByte(' ')
	b.WriteString(t.Language)
	b.WriteByte(' ')
	b.WriteString(t.Postamble)
	b.WriteByte('\n')
	b.WriteString(divider)
	b.WriteByte('\n')
	b.WriteString(t.DiffBody)
	b.WriteByte('\n')
	b.WriteString(divider)
	b.WriteByte('\n')
	b.WriteString(t.ClosingInstruction)
	return b.String()
}
