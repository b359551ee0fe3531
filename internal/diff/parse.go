package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// binaryMarker is the prefix git emits for binary file changes.
const binaryMarker = "Binary files "

// hunkHeaderRegex matches "@@ -oldStart[,oldCount] +newStart[,newCount] @@"
// and captures the old-side start line.
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+\d+(?:,\d+)? @@`)

// Parse converts the output of "git diff --cached --no-color" into a Diff.
// Binary file sections are skipped entirely. "\ No newline at end of file"
// markers are dropped; they carry no content the model needs. An empty or
// whitespace-only input yields a nil Diff.
func Parse(unified string) (Diff, error) {
	if strings.TrimSpace(unified) == "" {
		return nil, nil
	}

	var d Diff
	for _, section := range splitFileSections(unified) {
		if strings.Contains(section, binaryMarker) {
			continue
		}
		f, err := parseFileSection(section)
		if err != nil {
			return nil, err
		}
		d = append(d, f)
	}
	return d, nil
}

// splitFileSections splits the diff on "diff --git " boundaries so each
// piece covers exactly one file.
func splitFileSections(out string) []string {
	const prefix = "diff --git "
	var sections []string
	lines := strings.Split(out, "\n")
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) && len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 && strings.TrimSpace(strings.Join(current, "\n")) != "" {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}

func parseFileSection(section string) (File, error) {
	var f File
	var hunk *Hunk
	oldLine := 0

	for _, line := range strings.Split(section, "\n") {
		if m := hunkHeaderRegex.FindStringSubmatch(line); m != nil {
			if hunk != nil {
				f.Hunks = append(f.Hunks, *hunk)
			}
			start, err := strconv.Atoi(m[1])
			if err != nil {
				return File{}, fmt.Errorf("bad hunk header %q: %w", line, err)
			}
			hunk = &Hunk{Header: line}
			oldLine = start
			continue
		}
		if hunk == nil {
			// Header block: diff --git, index, mode, ---, +++ lines.
			if line != "" {
				f.Header = append(f.Header, line)
			}
			continue
		}
		if strings.HasPrefix(line, `\`) {
			continue
		}
		if line == "" {
			// Trailing blank from the final newline split.
			continue
		}
		origin := line[0]
		content := line[1:]
		switch origin {
		case OriginAdded:
			hunk.Lines = append(hunk.Lines, Line{Origin: OriginAdded, OldLine: 0, Content: content})
		case OriginRemoved:
			hunk.Lines = append(hunk.Lines, Line{Origin: OriginRemoved, OldLine: oldLine, Content: content})
			oldLine++
		case OriginContext:
			hunk.Lines = append(hunk.Lines, Line{Origin: OriginContext, OldLine: oldLine, Content: content})
			oldLine++
		default:
			return File{}, fmt.Errorf("unexpected diff line %q", line)
		}
	}
	if hunk != nil {
		f.Hunks = append(f.Hunks, *hunk)
	}
	return f, nil
}
