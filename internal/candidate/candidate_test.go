package candidate

import (
	"errors"
	"testing"

	"github.com/JakeFAU/gitai/internal/openai"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only_whitespace", " \n\t\n   \n", ""},
		{"no_blank_lines", "Fix bug\nin parser", "Fix bug\nin parser"},
		{"interior_blanks", "Fix bug\n\n  \nin parser\n", "Fix bug\nin parser"},
		{"leading_blanks", "\n\nFix bug", "Fix bug"},
		{"content_untouched", "  indented stays  \nnext", "  indented stays  \nnext"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Clean is idempotent: cleaning cleaned text changes nothing.
func TestCleanIdempotent(t *testing.T) {
	t.Parallel()

	in := "\nUpdate loop bound\n\n   \nAdd regression test\n"
	once := Clean(in)
	if twice := Clean(once); twice != once {
		t.Errorf("Clean not idempotent: %q -> %q", once, twice)
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	res := &openai.Completion{Choices: []openai.Choice{
		{Text: "\nFirst candidate\n\n", Index: 0, FinishReason: "stop"},
		{Text: "   \n", Index: 1, FinishReason: "stop"}, // empty after cleaning, skipped
		{Text: "Second candidate", Index: 2, FinishReason: "length"},
	}}

	got, err := Collect(res)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []string{"First candidate", "Second candidate"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectAllEmpty(t *testing.T) {
	t.Parallel()

	res := &openai.Completion{Choices: []openai.Choice{
		{Text: "", Index: 0},
		{Text: " \n ", Index: 1},
	}}
	_, err := Collect(res)
	if !errors.Is(err, openai.ErrEmptyCompletion) {
		t.Errorf("err = %v, want ErrEmptyCompletion", err)
	}
}

func TestCollectNilOrNoChoices(t *testing.T) {
	t.Parallel()

	if _, err := Collect(nil); !errors.Is(err, openai.ErrEmptyCompletion) {
		t.Errorf("nil completion err = %v, want ErrEmptyCompletion", err)
	}
	if _, err := Collect(&openai.Completion{}); !errors.Is(err, openai.ErrEmptyCompletion) {
		t.Errorf("no-choice completion err = %v, want ErrEmptyCompletion", err)
	}
}
