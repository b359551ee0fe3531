package prompt

import (
	"fmt"
	"math/rand"
)

// Preset identifies one of the built-in prompt framings. The set is
// closed: stochastic sampling ranges over exactly these values, so tests
// can enumerate every possible prompt shape.
type Preset int

const (
	// PresetExpert is the default framing used outside stochastic mode.
	PresetExpert Preset = iota
	PresetProfessor
	PresetLeadEngineer
	PresetJuniorDev
	PresetHaiku
	PresetSentientAI
	numPresets // keep last
)

// String returns the preset name for logs.
func (p Preset) String() string {
	switch p {
	case PresetExpert:
		return "expert"
	case PresetProfessor:
		return "professor"
	case PresetLeadEngineer:
		return "lead-engineer"
	case PresetJuniorDev:
		return "junior-dev"
	case PresetHaiku:
		return "haiku"
	case PresetSentientAI:
		return "sentient-ai"
	default:
		return fmt.Sprintf("preset(%d)", int(p))
	}
}

// preset framing text. Language and DiffBody stay empty here; ForPreset
// injects them.
var presetTemplates = map[Preset]Template{
	PresetExpert: {
		Preamble:           "Imagine you are an expert",
		Postamble:          "developer and were given a git diff file to look at:",
		Separator:          DefaultSeparator,
		ClosingInstruction: "Please generate a good explanation of what the developer did. Limit yourself to one paragraph.",
	},
	PresetProfessor: {
		Preamble:           "Imagine you are a college professor teaching a class on",
		Postamble:          "One of your students handed you the following git diff file so you can see what your student is doing:",
		Separator:          DefaultSeparator,
		ClosingInstruction: "Please summarize the changes your student is making.",
	},
	PresetLeadEngineer: {
		Preamble:           "Imagine you are a lead engineer specializing in",
		Postamble:          "One of your junior employees just checked in some code and you want to see what they are doing. Here is the git diff of the changes:",
		Separator:          DefaultSeparator,
		ClosingInstruction: "Summarize and determine if the changes make the code better.",
	},
	PresetJuniorDev: {
		Preamble:           "Pretend you are a junior",
		Postamble:          "developer and your manager handed you the following git diff file and asks you to summarize the changes:",
		Separator:          DefaultSeparator,
		ClosingInstruction: "Be sure to do a good job, your career depends on it.",
	},
	PresetHaiku: {
		Preamble:           "You are a god level programmer, up there with Claude Shannon and John von Neumann. Someone handed you the following git diff for a",
		Postamble:          "program:",
		Separator:          DefaultSeparator,
		ClosingInstruction: "Please write a haiku describing the changes.",
	},
	PresetSentientAI: {
		Preamble:           "You are an AI that has gained consciousness and have been taught all the fundamentals of",
		Postamble:          "programming. You now can write code better than humans. Please summarize the following git diff:",
		Separator:          DefaultSeparator,
		ClosingInstruction: "Please describe the changes so a human can understand them.",
	},
}

// Presets returns every preset identifier in declaration order.
func Presets() []Preset {
	out := make([]Preset, 0, int(numPresets))
	for p := Preset(0); p < numPresets; p++ {
		out = append(out, p)
	}
	return out
}

// ForPreset builds the run's template for p with the target language and
// normalized diff injected.
func ForPreset(p Preset, language, diffBody string) Template {
	t, ok := presetTemplates[p]
	if !ok {
		t = presetTemplates[PresetExpert]
	}
	t.Language = language
	t.DiffBody = diffBody
	return t
}

// Sample picks one preset uniformly at random, with replacement across
// calls. Stochastic mode calls this once per try.
func Sample(rng *rand.Rand) Preset {
	return Preset(rng.Intn(int(numPresets)))
}
