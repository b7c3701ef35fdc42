package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Field names one entry of the pipeline state.
type Field string

const (
	FieldRequestUser      Field = "requestUser"
	FieldRequirements     Field = "requirements"
	FieldInstructionsHTML Field = "instructionsHTMLAgent"
	FieldInstructionsCSS  Field = "instructionsCSSAgent"
	FieldInstructionsJS   Field = "instructionsJSAgent"
	FieldInstructionsUI   Field = "instructionsUIAgent"
	FieldInstructionsUX   Field = "instructionsUXAgent"
	FieldOutputUIDesigner Field = "outputUIDesignerAgent"
	FieldOutputUXWriter   Field = "outputUXWriterAgent"
	FieldOutputHTML       Field = "outputHTML"
	FieldOutputCSS        Field = "outputCSS"
	FieldOutputJS         Field = "outputJS"
)

var allFields = []Field{
	FieldRequestUser,
	FieldRequirements,
	FieldInstructionsHTML,
	FieldInstructionsCSS,
	FieldInstructionsJS,
	FieldInstructionsUI,
	FieldInstructionsUX,
	FieldOutputUIDesigner,
	FieldOutputUXWriter,
	FieldOutputHTML,
	FieldOutputCSS,
	FieldOutputJS,
}

var fieldIndex = func() map[Field]int {
	m := make(map[Field]int, len(allFields))
	for i, f := range allFields {
		m[f] = i
	}
	return m
}()

// AllFields returns every state field in declaration order.
func AllFields() []Field { return append([]Field(nil), allFields...) }

// Valid reports whether f is a known state field.
func (f Field) Valid() bool {
	_, ok := fieldIndex[f]
	return ok
}

// State is the pipeline record for one run. It is immutable: Merge returns a
// new State and never modifies its input, so a State can be read by any
// number of goroutines.
type State struct {
	values map[Field]string
}

// NewState seeds a run with the user request and nothing else.
func NewState(requestUser string) State {
	return State{values: map[Field]string{FieldRequestUser: requestUser}}
}

// Get returns the value of f and whether it has been written.
func (s State) Get(f Field) (string, bool) {
	v, ok := s.values[f]
	return v, ok
}

// Value returns the value of f, or "" when unwritten.
func (s State) Value(f Field) string { return s.values[f] }

// Has reports whether f has been written.
func (s State) Has(f Field) bool {
	_, ok := s.values[f]
	return ok
}

// Fields lists written fields in declaration order.
func (s State) Fields() []Field {
	out := make([]Field, 0, len(s.values))
	for f := range s.values {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return fieldIndex[out[i]] < fieldIndex[out[j]] })
	return out
}

// Project returns a State holding only the given fields.
func (s State) Project(fields ...Field) State {
	values := make(map[Field]string, len(fields))
	for _, f := range fields {
		if v, ok := s.values[f]; ok {
			values[f] = v
		}
	}
	return State{values: values}
}

// Map returns a copy of the written fields keyed by name.
func (s State) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for f, v := range s.values {
		out[string(f)] = v
	}
	return out
}

// Update is the partial state returned by an agent: only the fields it
// authored.
type Update map[Field]string

// Fields lists the update's fields in declaration order.
func (u Update) Fields() []Field {
	out := make([]Field, 0, len(u))
	for f := range u {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return fieldIndex[out[i]] < fieldIndex[out[j]] })
	return out
}

// ConflictingWriteError reports two updates in one merge batch writing the
// same field.
type ConflictingWriteError struct {
	Field Field
}

func (e *ConflictingWriteError) Error() string {
	return fmt.Sprintf("conflicting writes to state field %q", e.Field)
}

// MissingInputError reports an agent input that no earlier step produced.
type MissingInputError struct {
	Role  Role
	Field Field
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("agent %s: input %q has not been written", e.Role, e.Field)
}

// UndeclaredWriteError reports an agent returning a field outside its
// declared outputs.
type UndeclaredWriteError struct {
	Role   Role
	Fields []Field
}

func (e *UndeclaredWriteError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("agent %s: wrote undeclared field(s) %s", e.Role, strings.Join(names, ", "))
}

// Merge applies a batch of updates to s and returns the result. Updates in
// one batch come from sibling steps and must write disjoint fields; fields
// already in s may be overwritten, except requestUser which is fixed at
// NewState. Fields not mentioned by any update are carried over unchanged.
func Merge(s State, updates ...Update) (State, error) {
	values := make(map[Field]string, len(s.values)+len(allFields))
	for f, v := range s.values {
		values[f] = v
	}

	seen := make(map[Field]bool)
	for _, u := range updates {
		for _, f := range u.Fields() {
			if !f.Valid() {
				return State{}, fmt.Errorf("unknown state field %q", f)
			}
			if f == FieldRequestUser {
				return State{}, fmt.Errorf("state field %q is read-only", f)
			}
			if seen[f] {
				return State{}, &ConflictingWriteError{Field: f}
			}
			seen[f] = true
			values[f] = u[f]
		}
	}
	return State{values: values}, nil
}
