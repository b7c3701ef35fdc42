// Package agent defines the pipeline state and the eight specialist steps
// that transform it. Each agent reads a declared subset of the state, calls
// the model access layer, and returns a partial update holding only the
// fields it authored.
package agent

import (
	"context"

	"github.com/JoseCortezz25/craft-canvas/internal/llm"
	"github.com/JoseCortezz25/craft-canvas/internal/prompt"
)

// Agent is the interface that all specialist agents implement.
type Agent interface {
	// Role returns the agent's pipeline role.
	Role() Role

	// Reads lists the state fields the agent consumes.
	Reads() []Field

	// Writes lists the state fields the agent may produce.
	Writes() []Field

	// Run computes the agent's update from s.
	Run(ctx context.Context, s State) (Update, error)
}

// Role identifies a specialist agent type.
type Role string

const (
	RoleUnderstanding Role = "understanding"
	RolePlanning      Role = "planning"
	RoleUIDesigner    Role = "ui-designer"
	RoleUXWriter      Role = "ux-writer"
	RoleIntegrator    Role = "integrator"
	RoleHTMLDeveloper Role = "html-developer"
	RoleCSSDeveloper  Role = "css-developer"
	RoleJSDeveloper   Role = "js-developer"
)

// Roles returns every role in pipeline order.
func Roles() []Role {
	return []Role{
		RoleUnderstanding,
		RolePlanning,
		RoleUXWriter,
		RoleUIDesigner,
		RoleIntegrator,
		RoleHTMLDeveloper,
		RoleCSSDeveloper,
		RoleJSDeveloper,
	}
}

// Wiring selects between the two readings of the design and content steps.
type Wiring struct {
	// CrossInstructions makes the UI designer consume the UX instructions
	// and the UX writer consume the UI instructions.
	CrossInstructions bool
	// UXWriterUsesUITemplate drives the UX writer with the UI designer's
	// prompt template instead of its own.
	UXWriterUsesUITemplate bool
}

// DefaultWiring keeps the established pipeline behavior: both switches on.
func DefaultWiring() Wiring {
	return Wiring{CrossInstructions: true, UXWriterUsesUITemplate: true}
}

// Deps are the shared, stateless collaborators every agent is built from.
type Deps struct {
	Prompts    *prompt.Registry
	Text       llm.TextCompleter
	Structured llm.StructuredGenerator
	Wiring     Wiring
}
