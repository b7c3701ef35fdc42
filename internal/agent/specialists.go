package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/JoseCortezz25/craft-canvas/internal/prompt"
)

// textAgent builds an agent that resolves one template from state fields and
// stores the model's free-text answer in a single output field.
func textAgent(role Role, deps Deps, template string, slots map[string]Field, out Field) *BaseAgent {
	reads := make([]Field, 0, len(slots))
	seen := make(map[Field]bool)
	for _, name := range slotOrder(slots) {
		f := slots[name]
		if !seen[f] {
			seen[f] = true
			reads = append(reads, f)
		}
	}

	return NewBaseAgent(role, reads, []Field{out}, func(ctx context.Context, s State) (Update, error) {
		values := make(map[string]string, len(slots))
		for name, f := range slots {
			values[name] = s.Value(f)
		}
		p, err := deps.Prompts.Resolve(template, values)
		if err != nil {
			return nil, err
		}
		text, err := deps.Text.CompleteText(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", role, err)
		}
		return Update{out: text}, nil
	})
}

// slotOrder returns slot names sorted by the declaration order of the fields
// they read, so Reads() is stable.
func slotOrder(slots map[string]Field) []string {
	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		fi, fj := fieldIndex[slots[names[i]]], fieldIndex[slots[names[j]]]
		if fi != fj {
			return fi < fj
		}
		return names[i] < names[j]
	})
	return names
}

// NewUnderstanding extracts classified requirements from the raw request.
func NewUnderstanding(deps Deps) Agent {
	return textAgent(RoleUnderstanding, deps, prompt.Understanding,
		map[string]Field{prompt.SlotRequestUser: FieldRequestUser},
		FieldRequirements)
}

// NewPlanning turns requirements into one instruction set per discipline
// using structured generation.
func NewPlanning(deps Deps) Agent {
	return NewBaseAgent(RolePlanning,
		[]Field{FieldRequirements},
		[]Field{FieldInstructionsHTML, FieldInstructionsCSS, FieldInstructionsJS, FieldInstructionsUI, FieldInstructionsUX},
		func(ctx context.Context, s State) (Update, error) {
			p, err := deps.Prompts.Resolve(prompt.Planning, map[string]string{
				prompt.SlotRequirements: s.Value(FieldRequirements),
			})
			if err != nil {
				return nil, err
			}
			var bundle InstructionBundle
			if err := deps.Structured.GenerateStructured(ctx, p, &bundle); err != nil {
				return nil, fmt.Errorf("%s: %w", RolePlanning, err)
			}
			return bundle.Update(), nil
		})
}

// NewUIDesigner produces the visual blueprint. With cross wiring it reads the
// UX instructions.
func NewUIDesigner(deps Deps) Agent {
	in := FieldInstructionsUI
	if deps.Wiring.CrossInstructions {
		in = FieldInstructionsUX
	}
	return textAgent(RoleUIDesigner, deps, prompt.UIDesigner,
		map[string]Field{prompt.SlotInstructions: in},
		FieldOutputUIDesigner)
}

// NewUXWriter produces interface copy. With cross wiring it reads the UI
// instructions; UXWriterUsesUITemplate swaps in the UI designer template.
func NewUXWriter(deps Deps) Agent {
	in := FieldInstructionsUX
	if deps.Wiring.CrossInstructions {
		in = FieldInstructionsUI
	}
	tmpl := prompt.UXWriter
	if deps.Wiring.UXWriterUsesUITemplate {
		tmpl = prompt.UIDesigner
	}
	return textAgent(RoleUXWriter, deps, tmpl,
		map[string]Field{prompt.SlotInstructions: in},
		FieldOutputUXWriter)
}

// NewIntegrator merges design and copy into final code instructions,
// overwriting the planning step's HTML, CSS and JS instructions.
func NewIntegrator(deps Deps) Agent {
	return NewBaseAgent(RoleIntegrator,
		[]Field{FieldRequestUser, FieldOutputUIDesigner, FieldOutputUXWriter},
		[]Field{FieldInstructionsHTML, FieldInstructionsCSS, FieldInstructionsJS},
		func(ctx context.Context, s State) (Update, error) {
			p, err := deps.Prompts.Resolve(prompt.Integrator, map[string]string{
				prompt.SlotUIDesignerInstructions: s.Value(FieldOutputUIDesigner),
				prompt.SlotUXWriterOutput:         s.Value(FieldOutputUXWriter),
				prompt.SlotRequestUser:            s.Value(FieldRequestUser),
			})
			if err != nil {
				return nil, err
			}
			var bundle IntegrationBundle
			if err := deps.Structured.GenerateStructured(ctx, p, &bundle); err != nil {
				return nil, fmt.Errorf("%s: %w", RoleIntegrator, err)
			}
			return bundle.Update(), nil
		})
}

func developerSlots(instructions Field, withHTML bool) map[string]Field {
	slots := map[string]Field{
		prompt.SlotUIDesignerInstructions: FieldOutputUIDesigner,
		prompt.SlotUXWriterOutput:         FieldOutputUXWriter,
		prompt.SlotPlanningAgentOutput:    instructions,
	}
	if withHTML {
		slots[prompt.SlotHTMLGeneratorOutput] = FieldOutputHTML
	}
	return slots
}

// NewHTMLDeveloper generates the body markup.
func NewHTMLDeveloper(deps Deps) Agent {
	return textAgent(RoleHTMLDeveloper, deps, prompt.HTMLDeveloper,
		developerSlots(FieldInstructionsHTML, false), FieldOutputHTML)
}

// NewCSSDeveloper generates the stylesheet for the generated markup.
func NewCSSDeveloper(deps Deps) Agent {
	return textAgent(RoleCSSDeveloper, deps, prompt.CSSDeveloper,
		developerSlots(FieldInstructionsCSS, true), FieldOutputCSS)
}

// NewJSDeveloper generates the script for the generated markup.
func NewJSDeveloper(deps Deps) Agent {
	return textAgent(RoleJSDeveloper, deps, prompt.JSDeveloper,
		developerSlots(FieldInstructionsJS, true), FieldOutputJS)
}
