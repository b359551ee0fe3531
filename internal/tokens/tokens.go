// Package tokens computes the completion-length budget for a rendered
// prompt. The cap is a character-count heuristic, not a real tokenizer:
// a commit summary should be short relative to the diff it describes, so
// the budget grows with prompt length up to a hard ceiling.
package tokens

// Default budget parameters. The divisor has drifted between 3 and 10 over
// this tool's life; both knobs are configurable so nobody has to recompile
// to tune spend.
const (
	DefaultDivisor = 4
	DefaultCeiling = 256
)

// Budget derives a max_tokens value from prompt length.
type Budget struct {
	// Divisor scales prompt characters down to a response budget.
	Divisor int
	// Ceiling is the hard upper bound on the returned budget.
	Ceiling int
}

// DefaultBudget returns a Budget with the default divisor and ceiling.
func DefaultBudget() Budget {
	return Budget{Divisor: DefaultDivisor, Ceiling: DefaultCeiling}
}

// MaxTokens returns the response-length cap for the given rendered prompt:
// len(prompt)/Divisor clamped to [1, Ceiling]. Non-positive Divisor or
// Ceiling fall back to the defaults, so a zero Budget is still usable.
func (b Budget) MaxTokens(prompt string) int {
	divisor := b.Divisor
	if divisor <= 0 {
		divisor = DefaultDivisor
	}
	ceiling := b.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	n := len(prompt) / divisor
	if n < 1 {
		return 1
	}
	if n > ceiling {
		return ceiling
	}
	return n
}
