// Package prompt holds the named prompt templates used by the pipeline agents
// and resolves them against slot values.
//
// A template is plain text with {slotName} placeholders. Templates are
// immutable once registered, so a Registry can be shared by any number of
// concurrent pipeline runs.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names.
const (
	Understanding = "understanding"
	Planning      = "planning"
	UIDesigner    = "ui-designer"
	UXWriter      = "ux-writer"
	Integrator    = "integrator"
	HTMLDeveloper = "html-developer"
	CSSDeveloper  = "css-developer"
	JSDeveloper   = "js-developer"
)

// Slot names shared between templates and agents.
const (
	SlotRequestUser            = "requestUser"
	SlotRequirements           = "requirements"
	SlotInstructions           = "instructions"
	SlotUIDesignerInstructions = "uiDesignerInstructions"
	SlotUXWriterOutput         = "uxWriterOutput"
	SlotPlanningAgentOutput    = "planningAgentOutput"
	SlotHTMLGeneratorOutput    = "htmlGeneratorOutput"
)

// ErrUnknownTemplate is returned when resolving a name that was never registered.
var ErrUnknownTemplate = errors.New("unknown prompt template")

// MissingSlotError reports required slots that had no value at resolve time.
type MissingSlotError struct {
	Template string
	Slots    []string
}

func (e *MissingSlotError) Error() string {
	return fmt.Sprintf("prompt %q: missing slot value(s): %s", e.Template, strings.Join(e.Slots, ", "))
}

var placeholder = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)

// Template is a named prompt with its declared slots.
type Template struct {
	name  string
	text  string
	slots []string
}

// NewTemplate builds a template and checks that every declared slot appears
// in the text at least once.
func NewTemplate(name, text string, slots ...string) (*Template, error) {
	present := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		present[m[1]] = true
	}
	for _, s := range slots {
		if !present[s] {
			return nil, fmt.Errorf("prompt %q: declared slot %q not found in template text", name, s)
		}
	}
	declared := append([]string(nil), slots...)
	sort.Strings(declared)
	return &Template{name: name, text: text, slots: declared}, nil
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Slots returns the declared slot names in sorted order.
func (t *Template) Slots() []string { return append([]string(nil), t.slots...) }

// Text returns the raw template text.
func (t *Template) Text() string { return t.text }

// Resolve substitutes every {slot} occurrence for which values has an entry.
// Substitution is single-pass: placeholders appearing inside a value are left
// as they are. Text that is not a provided slot is untouched.
func (t *Template) Resolve(values map[string]string) (string, error) {
	var missing []string
	for _, s := range t.slots {
		if _, ok := values[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return "", &MissingSlotError{Template: t.name, Slots: missing}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(t.text), nil
}

// Registry is a read-only set of templates keyed by name.
type Registry struct {
	templates map[string]*Template
}

var builtinSlots = map[string][]string{
	Understanding: {SlotRequestUser},
	Planning:      {SlotRequirements},
	UIDesigner:    {SlotInstructions},
	UXWriter:      {SlotInstructions},
	Integrator:    {SlotUIDesignerInstructions, SlotUXWriterOutput, SlotRequestUser},
	HTMLDeveloper: {SlotUIDesignerInstructions, SlotUXWriterOutput, SlotPlanningAgentOutput},
	CSSDeveloper:  {SlotUIDesignerInstructions, SlotUXWriterOutput, SlotPlanningAgentOutput, SlotHTMLGeneratorOutput},
	JSDeveloper:   {SlotUIDesignerInstructions, SlotUXWriterOutput, SlotPlanningAgentOutput, SlotHTMLGeneratorOutput},
}

// NewRegistry loads the embedded pipeline templates.
func NewRegistry() (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(builtinSlots))}
	for name, slots := range builtinSlots {
		data, err := templateFS.ReadFile("templates/" + name + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("load prompt %q: %w", name, err)
		}
		t, err := NewTemplate(name, string(data), slots...)
		if err != nil {
			return nil, err
		}
		r.templates[name] = t
	}
	return r, nil
}

// MustRegistry is NewRegistry for process start-up; it panics on error.
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// With returns a copy of r in which t replaces any template of the same name.
func (r *Registry) With(t *Template) *Registry {
	next := &Registry{templates: make(map[string]*Template, len(r.templates)+1)}
	for k, v := range r.templates {
		next.templates[k] = v
	}
	next.templates[t.name] = t
	return next
}

// Get returns the named template.
func (r *Registry) Get(name string) (*Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Resolve looks up name and resolves it against values.
func (r *Registry) Resolve(name string, values map[string]string) (string, error) {
	t, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return t.Resolve(values)
}

// Names lists registered template names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
