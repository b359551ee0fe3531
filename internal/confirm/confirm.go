// Package confirm implements the interactive accept/reject gate that sits
// between candidate selection and the commit step.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Gate asks the operator a yes/no question. AutoAccept bypasses the
// question entirely (the --auto-ai flag).
type Gate struct {
	In         io.Reader
	Out        io.Writer
	AutoAccept bool
}

// Confirm prints the question with a "[y/N]" suffix and reads one line.
// Any answer starting with y or Y is an accept; everything else, including
// EOF and an empty line, is a decline. With AutoAccept set it returns true
// without touching In or Out.
func (g Gate) Confirm(question string) (bool, error) {
	if g.AutoAccept {
		return true, nil
	}
	if _, err := fmt.Fprintf(g.Out, "%s [y/N] ", question); err != nil {
		return false, fmt.Errorf("writing confirmation prompt: %w", err)
	}
	reader := bufio.NewReader(g.In)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading confirmation answer: %w", err)
	}
	answer := strings.TrimSpace(strings.ToLower(line))
	return strings.HasPrefix(answer, "y"), nil
}
