// Package sanitize strips markdown code-fence lines from generated source
// artifacts so that HTML, CSS and JavaScript can be embedded directly.
package sanitize

import (
	"regexp"
	"strings"
)

// fence matches a trimmed line holding a code fence, optionally tagged with
// one of the recognized languages. Lines are trimmed with strings.TrimSpace,
// the same whitespace set Clean trims from its result, so trimming the
// output can never expose a new fence line.
var fence = regexp.MustCompile("^```(?:html|css|javascript|js)?$")

// Clean removes every fence line from text and trims surrounding whitespace.
// Clean is idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if IsFence(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// IsFence reports whether line would be removed by Clean.
func IsFence(line string) bool {
	return fence.MatchString(strings.TrimSpace(line))
}
