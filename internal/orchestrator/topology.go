package orchestrator

import (
	"fmt"

	"github.com/JoseCortezz25/craft-canvas/internal/agent"
	"github.com/JoseCortezz25/craft-canvas/internal/graph"
)

// Topology returns the fixed dependency edges between roles, including the
// graph.Start and graph.End markers.
//
//	start -> understanding -> planning -> {ux-writer, ui-designer}
//	{ux-writer, ui-designer} -> integrator -> html-developer
//	html-developer -> {css-developer, js-developer} -> end
func Topology() []graph.Edge {
	e := func(from, to string) graph.Edge { return graph.Edge{From: from, To: to} }
	r := func(role agent.Role) string { return string(role) }
	return []graph.Edge{
		e(graph.Start, r(agent.RoleUnderstanding)),
		e(r(agent.RoleUnderstanding), r(agent.RolePlanning)),
		e(r(agent.RolePlanning), r(agent.RoleUXWriter)),
		e(r(agent.RolePlanning), r(agent.RoleUIDesigner)),
		e(r(agent.RoleUXWriter), r(agent.RoleIntegrator)),
		e(r(agent.RoleUIDesigner), r(agent.RoleIntegrator)),
		e(r(agent.RoleIntegrator), r(agent.RoleHTMLDeveloper)),
		e(r(agent.RoleHTMLDeveloper), r(agent.RoleCSSDeveloper)),
		e(r(agent.RoleHTMLDeveloper), r(agent.RoleJSDeveloper)),
		e(r(agent.RoleCSSDeveloper), graph.End),
		e(r(agent.RoleJSDeveloper), graph.End),
	}
}

// Plan is the compiled pipeline graph.
type Plan = graph.Plan[agent.State, agent.Update]

// compile builds the plan from agents and checks that every field an agent
// reads is written by one of its ancestors.
func compile(agents map[agent.Role]agent.Agent) (*Plan, error) {
	b := graph.New[agent.State, agent.Update]()
	for _, role := range agent.Roles() {
		ag, ok := agents[role]
		if !ok || ag == nil {
			return nil, fmt.Errorf("no agent for role %q", role)
		}
		b.AddNode(string(role), ag.Run)
	}
	for _, e := range Topology() {
		b.AddEdge(e.From, e.To)
	}
	plan, err := b.Compile(agent.Merge)
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}
	if err := checkDataflow(plan, agents); err != nil {
		return nil, err
	}
	return plan, nil
}

func checkDataflow(plan *Plan, agents map[agent.Role]agent.Agent) error {
	for _, name := range plan.Nodes() {
		available := map[agent.Field]bool{agent.FieldRequestUser: true}
		for _, anc := range ancestors(plan, name) {
			for _, f := range agents[agent.Role(anc)].Writes() {
				available[f] = true
			}
		}
		for _, f := range agents[agent.Role(name)].Reads() {
			if !available[f] {
				return fmt.Errorf("compile pipeline: %s reads %s, which no upstream step writes", name, f)
			}
		}
	}
	return nil
}

func ancestors(plan *Plan, name string) []string {
	seen := map[string]bool{}
	var out []string
	stack := plan.Predecessors(name)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		stack = append(stack, plan.Predecessors(n)...)
	}
	return out
}

// Blueprint compiles the topology with agents that have no model access.
// The result can be inspected and diagrammed but not run.
func Blueprint(wiring agent.Wiring) (*Plan, error) {
	agents, err := agent.NewRegistry().BuildAll(agent.Deps{Wiring: wiring})
	if err != nil {
		return nil, err
	}
	return compile(agents)
}
