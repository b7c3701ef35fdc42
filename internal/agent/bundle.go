package agent

import (
	"fmt"
	"strings"

	"github.com/JoseCortezz25/craft-canvas/internal/llm"
)

// InstructionBundle is the planning step's structured output: one set of
// instructions per discipline.
type InstructionBundle struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
	UI   string `json:"ui"`
	UX   string `json:"ux"`
}

var _ llm.Structured = (*InstructionBundle)(nil)

func (*InstructionBundle) Schema() llm.Schema {
	return llm.Schema{
		Name:        "agent_instructions",
		Description: "Task instructions for each specialist agent of a web app team.",
		Fields: []llm.Field{
			{Name: "html", Description: "Instructions for the HTML structure and elements."},
			{Name: "css", Description: "Instructions for the CSS styling, layout, and responsiveness."},
			{Name: "js", Description: "Instructions for the JavaScript interactivity and client-side logic."},
			{Name: "ui", Description: "Instructions for the UI agent regarding visual design and component appearance."},
			{Name: "ux", Description: "Instructions for the UX agent regarding user flow, accessibility, and interaction."},
		},
	}
}

func (b *InstructionBundle) Validate() error {
	return requireNonEmpty(map[string]string{
		"html": b.HTML, "css": b.CSS, "js": b.JS, "ui": b.UI, "ux": b.UX,
	}, "html", "css", "js", "ui", "ux")
}

// Update destructures the bundle into state fields.
func (b *InstructionBundle) Update() Update {
	return Update{
		FieldInstructionsHTML: b.HTML,
		FieldInstructionsCSS:  b.CSS,
		FieldInstructionsJS:   b.JS,
		FieldInstructionsUI:   b.UI,
		FieldInstructionsUX:   b.UX,
	}
}

// IntegrationBundle is the integrator's structured output: final
// instructions for the three code generators.
type IntegrationBundle struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

var _ llm.Structured = (*IntegrationBundle)(nil)

func (*IntegrationBundle) Schema() llm.Schema {
	return llm.Schema{
		Name:        "integrated_instructions",
		Description: "Harmonized instructions for the HTML, CSS and JavaScript generators.",
		Fields: []llm.Field{
			{Name: "html", Description: "Final HTML instructions derived from user requirements, UI design blueprint, and UX writer inputs."},
			{Name: "css", Description: "Final CSS instructions derived from user requirements, UI design blueprint, and UX writer inputs."},
			{Name: "js", Description: "Final JavaScript instructions for interactivity, derived from user requirements, UI design blueprint, and UX writer inputs."},
		},
	}
}

func (b *IntegrationBundle) Validate() error {
	return requireNonEmpty(map[string]string{"html": b.HTML, "css": b.CSS, "js": b.JS}, "html", "css", "js")
}

// Update destructures the bundle into state fields, overwriting the
// planning step's code instructions.
func (b *IntegrationBundle) Update() Update {
	return Update{
		FieldInstructionsHTML: b.HTML,
		FieldInstructionsCSS:  b.CSS,
		FieldInstructionsJS:   b.JS,
	}
}

func requireNonEmpty(values map[string]string, order ...string) error {
	var empty []string
	for _, k := range order {
		if strings.TrimSpace(values[k]) == "" {
			empty = append(empty, k)
		}
	}
	if len(empty) > 0 {
		return fmt.Errorf("empty field(s): %s", strings.Join(empty, ", "))
	}
	return nil
}
