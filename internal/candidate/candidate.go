// Package candidate cleans and collects generated commit-message
// candidates from completion responses.
package candidate

import (
	"fmt"
	"strings"

	"github.com/JakeFAU/gitai/internal/openai"
)

// Clean strips blank and whitespace-only lines from a candidate, keeping
// the remaining lines in order and otherwise untouched. Applying Clean
// twice is a no-op.
func Clean(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Collect extracts every non-empty choice text from the completion, in
// choice order, cleaned. Choices with no text are skipped; if every
// choice is empty the whole response is unusable and the error wraps
// openai.ErrEmptyCompletion.
func Collect(c *openai.Completion) ([]string, error) {
	if c == nil || len(c.Choices) == 0 {
		return nil, fmt.Errorf("collecting candidates: %w", openai.ErrEmptyCompletion)
	}
	var out []string
	for _, choice := range c.Choices {
		text := Clean(choice.Text)
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("collecting candidates: %w", openai.ErrEmptyCompletion)
	}
	return out, nil
}
