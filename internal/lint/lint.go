// Package lint runs cheap syntax checks over generated artifacts. Findings are
// advisory: callers log them and never fail a run on them.
package lint

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Artifact names match the keys of a generation result.
const (
	ArtifactHTML = "html"
	ArtifactCSS  = "css"
	ArtifactJS   = "js"
)

// Diagnostic is one finding. Line and Column are 1-based; zero means the
// position is unknown.
type Diagnostic struct {
	Artifact string   `json:"artifact"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", d.Artifact, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Artifact, d.Line, d.Column, d.Severity, d.Message)
}

// All checks the three artifacts and returns findings in artifact order.
func All(html, css, js string) []Diagnostic {
	var out []Diagnostic
	out = append(out, HTML(html)...)
	out = append(out, CSS(css)...)
	out = append(out, JS(js)...)
	return out
}

// The body fragment is embedded into a preview document that already has
// these elements.
var documentTag = regexp.MustCompile(`(?i)<\s*(html|head|body|script|style)\b`)

// HTML warns about tags that do not belong in a body fragment.
func HTML(src string) []Diagnostic {
	var out []Diagnostic
	seen := map[string]bool{}
	for i, line := range strings.Split(src, "\n") {
		for _, loc := range documentTag.FindAllStringSubmatchIndex(line, -1) {
			tag := strings.ToLower(line[loc[2]:loc[3]])
			if seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, Diagnostic{
				Artifact: ArtifactHTML,
				Line:     i + 1,
				Column:   loc[0] + 1,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("unexpected <%s> in body fragment", tag),
			})
		}
	}
	return out
}

// CSS reports unbalanced braces, ignoring comments and quoted strings.
func CSS(src string) []Diagnostic {
	type pos struct{ line, col int }
	var (
		open    []pos
		out     []Diagnostic
		line    = 1
		col     = 0
		quote   rune
		comment bool
		prev    rune
	)
	for _, r := range src {
		col++
		switch {
		case comment:
			if prev == '*' && r == '/' {
				comment = false
				r = 0
			}
		case quote != 0:
			if r == quote && prev != '\\' {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case prev == '/' && r == '*':
			comment = true
			r = 0
		case r == '{':
			open = append(open, pos{line, col})
		case r == '}':
			if len(open) == 0 {
				out = append(out, Diagnostic{
					Artifact: ArtifactCSS, Line: line, Column: col,
					Severity: SeverityError, Message: "unexpected '}'",
				})
				break
			}
			open = open[:len(open)-1]
		}
		if r == '\n' {
			line++
			col = 0
		}
		prev = r
	}
	if comment {
		out = append(out, Diagnostic{Artifact: ArtifactCSS, Line: line, Column: col, Severity: SeverityError, Message: "unterminated comment"})
	}
	for _, p := range open {
		out = append(out, Diagnostic{
			Artifact: ArtifactCSS, Line: p.line, Column: p.col,
			Severity: SeverityError, Message: "unclosed '{'",
		})
	}
	return out
}
