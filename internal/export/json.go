package export

import (
	"encoding/json"
	"time"
)

// PipelineExport is the JSON description of a compiled plan.
type PipelineExport struct {
	ExportedAt string       `json:"exportedAt,omitempty"`
	Nodes      []NodeExport `json:"nodes"`
	Layers     [][]string   `json:"layers"`
	Edges      []EdgeExport `json:"edges"`
	Mermaid    string       `json:"mermaid"`
}

// NodeExport describes one step.
type NodeExport struct {
	Name         string   `json:"name"`
	Layer        int      `json:"layer"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// EdgeExport is one dependency arrow.
type EdgeExport struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Describe builds a PipelineExport. A zero now omits the timestamp.
func Describe(t Topology, now time.Time) *PipelineExport {
	out := &PipelineExport{
		Layers:  t.Layers(),
		Mermaid: Mermaid(t),
	}
	if !now.IsZero() {
		out.ExportedAt = now.UTC().Format(time.RFC3339)
	}

	deps := map[string][]string{}
	for _, e := range t.Edges() {
		out.Edges = append(out.Edges, EdgeExport{From: e.From, To: e.To})
		deps[e.To] = append(deps[e.To], e.From)
	}
	for i, layer := range out.Layers {
		for _, name := range layer {
			out.Nodes = append(out.Nodes, NodeExport{Name: name, Layer: i, Dependencies: deps[name]})
		}
	}
	return out
}

// JSON renders Describe as indented JSON.
func JSON(t Topology, now time.Time) ([]byte, error) {
	return json.MarshalIndent(Describe(t, now), "", "  ")
}
