package confirm

import (
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes_uppercase", "Y\n", true},
		{"yes_word", "yes\n", true},
		{"yes_padded", "  yEah\n", true},
		{"no", "n\n", false},
		{"empty_line", "\n", false},
		{"eof", "", false},
		{"garbage", "maybe\n", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out strings.Builder
			g := Gate{In: strings.NewReader(tt.input), Out: &out}
			got, err := g.Confirm("Use this commit message?")
			if err != nil {
				t.Fatalf("Confirm: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Errorf("prompt %q missing [y/N] suffix", out.String())
			}
		})
	}
}

func TestAutoAcceptSkipsPrompt(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	g := Gate{In: strings.NewReader(""), Out: &out, AutoAccept: true}
	got, err := g.Confirm("anything")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !got {
		t.Error("AutoAccept gate declined")
	}
	if out.Len() != 0 {
		t.Errorf("AutoAccept wrote prompt: %q", out.String())
	}
}
