package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoseCortezz25/craft-canvas/internal/llm"
	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

// run executes the command tree with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mockEnv points the config at the offline mock provider.
func mockEnv(t *testing.T, withKey bool) {
	t.Helper()
	t.Setenv("CRAFTCANVAS_PROVIDER", "mock")
	t.Setenv("CRAFTCANVAS_LOG_MODE", "prod")
	t.Setenv("CRAFTCANVAS_API_KEY_ENV", "")
	if withKey {
		t.Setenv("CRAFTCANVAS_MOCK_KEY", "test-key")
	} else {
		t.Setenv("CRAFTCANVAS_MOCK_KEY", "")
	}
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "craftcanvas", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config-dir"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "generate", "diagram", "mcp", "version"}, names)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"serve", []string{"addr"}},
		{"generate", []string{"server", "out", "json", "quiet"}},
		{"diagram", []string{"format"}},
		{"mcp", []string{"http"}},
	}
	root := newRootCmd()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			for _, f := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(f), "missing --%s", f)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestDiagram_Mermaid(t *testing.T) {
	out, _, err := run(t, "diagram", "--config-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `["understanding"]`)
	assert.Contains(t, out, `subgraph L2["parallel"]`)
}

func TestDiagram_JSON(t *testing.T) {
	out, _, err := run(t, "diagram", "--format", "json", "--config-dir", t.TempDir())
	require.NoError(t, err)

	var doc struct {
		Layers [][]string `json:"layers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Layers, 6)
	assert.Equal(t, []string{"understanding"}, doc.Layers[0])
	assert.ElementsMatch(t, []string{"css-developer", "js-developer"}, doc.Layers[5])
}

func TestDiagram_UnknownFormat(t *testing.T) {
	_, _, err := run(t, "diagram", "--format", "dot", "--config-dir", t.TempDir())
	assert.ErrorContains(t, err, `unknown format "dot"`)
}

func TestGenerate_WritesFiles(t *testing.T) {
	mockEnv(t, true)
	out := filepath.Join(t.TempDir(), "site")

	stdout, stderr, err := run(t, "generate", "--config-dir", t.TempDir(), "--out", out, "a", "contact", "form")
	require.NoError(t, err)

	for _, name := range []string{orchestrator.FileHTML, orchestrator.FileCSS, orchestrator.FileJS, orchestrator.FilePreview} {
		assert.FileExists(t, filepath.Join(out, name))
		assert.Contains(t, stdout, name)
	}
	html, err := os.ReadFile(filepath.Join(out, orchestrator.FileHTML))
	require.NoError(t, err)
	assert.Contains(t, string(html), `id="contact-form"`)

	assert.Contains(t, stderr, "8 steps in 6 layers")
	assert.Contains(t, stderr, "✓ js-developer complete")
}

func TestGenerate_JSONQuiet(t *testing.T) {
	mockEnv(t, true)

	stdout, stderr, err := run(t, "generate", "--config-dir", t.TempDir(), "--json", "--quiet", "contact form")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "steps in")

	var a orchestrator.Artifacts
	require.NoError(t, json.Unmarshal([]byte(stdout), &a))
	assert.NotEmpty(t, a.HTML)
	assert.NotEmpty(t, a.CSS)
	assert.NotEmpty(t, a.JS)
}

func TestGenerate_MissingCredential(t *testing.T) {
	mockEnv(t, false)

	_, _, err := run(t, "generate", "--config-dir", t.TempDir(), "--quiet", "contact form")
	var cfgErr *llm.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "apiKey", cfgErr.Field)
}

func TestGenerate_BlankPrompt(t *testing.T) {
	_, _, err := run(t, "generate", "   ")
	assert.ErrorIs(t, err, orchestrator.ErrEmptyPrompt)
}
