//go:build cgo

package lint

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// maxJSDiagnostics caps the report for badly broken input.
const maxJSDiagnostics = 20

// JS parses src with the TypeScript grammar, a superset of plain JavaScript,
// and reports syntax errors.
func JS(src string) []Diagnostic {
	if src == "" {
		return nil
	}
	lang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return []Diagnostic{{Artifact: ArtifactJS, Severity: SeverityWarning, Message: fmt.Sprintf("parser unavailable: %v", err)}}
	}

	source := []byte(src)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return []Diagnostic{{Artifact: ArtifactJS, Severity: SeverityWarning, Message: "parse produced no tree"}}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	var out []Diagnostic
	cursor := root.Walk()
	defer cursor.Close()
	collectErrors(cursor, source, &out)
	return out
}

func collectErrors(cursor *tree_sitter.TreeCursor, source []byte, out *[]Diagnostic) {
	if len(*out) >= maxJSDiagnostics {
		return
	}
	node := cursor.Node()
	pt := node.StartPosition()
	switch {
	case node.IsMissing():
		*out = append(*out, Diagnostic{
			Artifact: ArtifactJS,
			Line:     int(pt.Row) + 1,
			Column:   int(pt.Column) + 1,
			Severity: SeverityError,
			Message:  fmt.Sprintf("missing %s", node.Kind()),
		})
		return
	case node.IsError():
		text := node.Utf8Text(source)
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		*out = append(*out, Diagnostic{
			Artifact: ArtifactJS,
			Line:     int(pt.Row) + 1,
			Column:   int(pt.Column) + 1,
			Severity: SeverityError,
			Message:  fmt.Sprintf("syntax error near %q", text),
		})
		return
	case !node.HasError():
		return
	}

	if cursor.GotoFirstChild() {
		collectErrors(cursor, source, out)
		for cursor.GotoNextSibling() {
			collectErrors(cursor, source, out)
		}
		cursor.GotoParent()
	}
}
