package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Output file names written by WriteFiles.
const (
	FileHTML    = "index.html"
	FileCSS     = "styles.css"
	FileJS      = "script.js"
	FilePreview = "preview.html"
)

// A closing tag inside inline CSS or JS would end the element early. HTML
// matches tag names case-insensitively.
var (
	closeStyle  = regexp.MustCompile(`(?i)</(style)`)
	closeScript = regexp.MustCompile(`(?i)</(script)`)
)

// Document composes the three artifacts into one standalone page with the
// stylesheet and script inlined.
func (a Artifacts) Document() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<style>\n")
	b.WriteString(closeStyle.ReplaceAllString(a.CSS, `<\/$1`))
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(a.HTML)
	b.WriteString("\n<script>\n")
	b.WriteString(closeScript.ReplaceAllString(a.JS, `<\/$1`))
	b.WriteString("\n</script>\n</body>\n</html>\n")
	return b.String()
}

// WriteFiles writes the artifacts and the preview document into dir,
// creating it if needed, and returns the written paths.
func (a Artifacts) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	files := []struct {
		name    string
		content string
	}{
		{FileHTML, a.HTML},
		{FileCSS, a.CSS},
		{FileJS, a.JS},
		{FilePreview, a.Document()},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
