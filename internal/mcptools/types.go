package mcptools

import "github.com/JoseCortezz25/craft-canvas/internal/lint"

// --- MCP Tool Input Types ---
// The MCP Go SDK generates each tool's JSON schema from these struct tags.

// GenerateWebAppInput is the input for the generate_web_app MCP tool.
type GenerateWebAppInput struct {
	Prompt string `json:"prompt" jsonschema:"natural-language description of the web app to build"`
	OutDir string `json:"outDir,omitempty" jsonschema:"optional directory to write index.html, styles.css, script.js and preview.html into"`
}

// GenerateWebAppOutput is the result of the generate_web_app MCP tool.
type GenerateWebAppOutput struct {
	Status       string            `json:"status"`
	RunID        string            `json:"runId,omitempty"`
	HTML         string            `json:"html,omitempty"`
	CSS          string            `json:"css,omitempty"`
	JS           string            `json:"js,omitempty"`
	Diagnostics  []lint.Diagnostic `json:"diagnostics,omitempty"`
	FilesWritten []string          `json:"filesWritten,omitempty"`
	Message      string            `json:"message,omitempty"`
}

// DescribePipelineInput is the input for the describe_pipeline MCP tool.
type DescribePipelineInput struct{}

// DescribePipelineOutput is the result of the describe_pipeline MCP tool.
type DescribePipelineOutput struct {
	Mermaid string     `json:"mermaid"`
	Layers  [][]string `json:"layers"`
}
