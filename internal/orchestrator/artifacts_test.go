package orchestrator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifacts_Document(t *testing.T) {
	a := Artifacts{
		HTML: `<form id="contact-form"></form>`,
		CSS:  "form { display: grid; }",
		JS:   `console.log("</script>")`,
	}
	doc := a.Document()

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<meta name="viewport"`)
	assert.Contains(t, doc, "<style>\nform { display: grid; }\n</style>")
	assert.Contains(t, doc, `<form id="contact-form"></form>`)
	assert.Contains(t, doc, `console.log("<\/script>")`)
	assert.Equal(t, 1, strings.Count(doc, "</script>"))
	assert.Less(t, strings.Index(doc, "<form"), strings.Index(doc, "<script>"))
}

func TestArtifacts_DocumentEscapesClosingTagsAnyCase(t *testing.T) {
	a := Artifacts{
		CSS: `.a::after { content: "</STYLE>"; }`,
		JS:  "const s = '</SCRIPT>' + '</Script >';",
	}
	doc := a.Document()

	lower := strings.ToLower(doc)
	assert.Equal(t, 1, strings.Count(lower, "</style"))
	assert.Equal(t, 1, strings.Count(lower, "</script"))
	assert.Contains(t, doc, `content: "<\/STYLE>"`)
	assert.Contains(t, doc, `'<\/SCRIPT>' + '<\/Script >'`)
}

func TestArtifacts_WriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	a := Artifacts{HTML: "<p>hi</p>", CSS: "p{}", JS: "x()"}

	paths, err := a.WriteFiles(dir)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for name, want := range map[string]string{FileHTML: a.HTML, FileCSS: a.CSS, FileJS: a.JS} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
	preview, err := os.ReadFile(filepath.Join(dir, FilePreview))
	require.NoError(t, err)
	assert.Equal(t, a.Document(), string(preview))
}
