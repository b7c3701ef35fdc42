// Package export renders a compiled pipeline for humans and tools.
package export

import (
	"fmt"
	"strings"

	"github.com/JoseCortezz25/craft-canvas/internal/graph"
)

// Topology is the read-only view of a compiled plan. *graph.Plan satisfies
// it for any state type.
type Topology interface {
	Nodes() []string
	Layers() [][]string
	Edges() []graph.Edge
}

// Mermaid produces a Mermaid graph TD diagram. Nodes that run concurrently
// share a layer subgraph; start and end are drawn as circles.
func Mermaid(t Topology) string {
	// Mermaid IDs must be alphanumeric.
	nodeIDs := map[string]string{graph.Start: "start", graph.End: "finish"}
	for i, name := range t.Nodes() {
		nodeIDs[name] = fmt.Sprintf("N%d", i)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("  start((start))\n")
	for i, layer := range t.Layers() {
		if len(layer) > 1 {
			sb.WriteString(fmt.Sprintf("  subgraph L%d[\"parallel\"]\n", i))
			for _, name := range layer {
				sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[name], name))
			}
			sb.WriteString("  end\n")
			continue
		}
		for _, name := range layer {
			sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", nodeIDs[name], name))
		}
	}
	sb.WriteString("  finish((end))\n")

	for _, e := range t.Edges() {
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", nodeIDs[e.From], nodeIDs[e.To]))
	}
	return sb.String()
}
