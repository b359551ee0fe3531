package prompt

import (
	"math/rand"
	"strings"
	"testing"
)

func TestRenderFormat(t *testing.T) {
	t.Parallel()

	tpl := Template{
		Preamble:           "Imagine you are an expert",
		Language:           "Go",
		Postamble:          "developer and were given a git diff file to look at:",
		Separator:          '=',
		DiffBody:           "+0 fmt.Println(\"hi\")",
		ClosingInstruction: "Summarize the change.",
	}

	got := tpl.Render()
	want := "Imagine you are an expert Go developer and were given a git diff file to look at:\n" +
		"================\n" +
		"+0 fmt.Println(\"hi\")\n" +
		"================\n" +
		"Summarize the change."
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

// Rendering is pure: identical inputs give identical outputs.
func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	tpl := ForPreset(PresetProfessor, "Python", "diff body")
	if tpl.Render() != tpl.Render() {
		t.Error("Render() is not deterministic")
	}
}

// Every rendered preset contains the divider exactly twice, 16 chars wide.
func TestRenderSeparatorLines(t *testing.T) {
	t.Parallel()

	for _, p := range Presets() {
		tpl := ForPreset(p, "Rust", "body without separators")
		out := tpl.Render()
		divider := strings.Repeat("=", 16)
		count := 0
		for _, line := range strings.Split(out, "\n") {
			if line == divider {
				count++
			}
		}
		if count != 2 {
			t.Errorf("preset %s: divider lines = %d, want 2", p, count)
		}
	}
}

func TestForPresetInjectsCallerFields(t *testing.T) {
	t.Parallel()

	tpl := ForPreset(PresetHaiku, "COBOL", "the diff")
	if tpl.Language != "COBOL" || tpl.DiffBody != "the diff" {
		t.Errorf("ForPreset did not inject caller fields: %+v", tpl)
	}
	out := tpl.Render()
	if !strings.Contains(out, "COBOL") || !strings.Contains(out, "the diff") {
		t.Errorf("rendered preset missing injected fields:\n%s", out)
	}
}

func TestPresetsClosedSet(t *testing.T) {
	t.Parallel()

	ps := Presets()
	if len(ps) != 6 {
		t.Fatalf("Presets() = %d entries, want 6", len(ps))
	}
	seen := map[string]bool{}
	for _, p := range ps {
		if _, ok := presetTemplates[p]; !ok {
			t.Errorf("preset %s has no template", p)
		}
		if seen[p.String()] {
			t.Errorf("duplicate preset name %s", p)
		}
		seen[p.String()] = true
	}
}

func TestSampleStaysInRange(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	hits := map[Preset]int{}
	for i := 0; i < 1000; i++ {
		p := Sample(rng)
		if p < 0 || p >= numPresets {
			t.Fatalf("Sample returned out-of-range preset %d", p)
		}
		hits[p]++
	}
	// With 1000 draws every preset should appear at least once.
	for _, p := range Presets() {
		if hits[p] == 0 {
			t.Errorf("preset %s never sampled", p)
		}
	}
}
