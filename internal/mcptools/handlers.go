package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JoseCortezz25/craft-canvas/internal/export"
	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

// Service handles MCP tool calls. It wraps a Generator to run the pipeline
// and a Topology to describe it.
type Service struct {
	gen  orchestrator.Generator
	topo export.Topology
}

// NewService creates a Service. topo may be nil when the pipeline could not
// be built; describe_pipeline then reports an error.
func NewService(gen orchestrator.Generator, topo export.Topology) *Service {
	return &Service{gen: gen, topo: topo}
}

// GenerateWebApp runs the pipeline for one prompt. Pipeline failures are
// reported in the output with status "failed"; invalid input is a tool
// error.
func (s *Service) GenerateWebApp(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateWebAppInput,
) (*mcp.CallToolResult, GenerateWebAppOutput, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, GenerateWebAppOutput{Status: "failed", Message: "prompt is required"}, fmt.Errorf("prompt is required")
	}

	res, err := s.gen.Generate(ctx, input.Prompt)
	if err != nil {
		return nil, GenerateWebAppOutput{
			Status:  "failed",
			Message: err.Error(),
		}, nil
	}

	out := GenerateWebAppOutput{
		Status:      "completed",
		RunID:       res.RunID,
		HTML:        res.Artifacts.HTML,
		CSS:         res.Artifacts.CSS,
		JS:          res.Artifacts.JS,
		Diagnostics: res.Diagnostics,
	}
	if input.OutDir != "" {
		paths, err := res.Artifacts.WriteFiles(input.OutDir)
		if err != nil {
			out.Message = err.Error()
		}
		out.FilesWritten = paths
	}
	return nil, out, nil
}

// DescribePipeline returns the Mermaid diagram and execution layers.
func (s *Service) DescribePipeline(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ DescribePipelineInput,
) (*mcp.CallToolResult, DescribePipelineOutput, error) {
	if s.topo == nil {
		return nil, DescribePipelineOutput{}, fmt.Errorf("pipeline is not available")
	}
	return nil, DescribePipelineOutput{
		Mermaid: export.Mermaid(s.topo),
		Layers:  s.topo.Layers(),
	}, nil
}
