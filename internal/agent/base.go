package agent

import (
	"context"
)

// Compile-time interface check.
var _ Agent = (*BaseAgent)(nil)

// ProcessFunc is the function that specialist agents implement. It receives
// a state restricted to the agent's declared reads.
type ProcessFunc func(ctx context.Context, s State) (Update, error)

// BaseAgent provides the input and output contract shared by all
// specialists: declared inputs must be present, the process function only
// sees those inputs, and the returned update may only hold declared outputs.
type BaseAgent struct {
	role    Role
	reads   []Field
	writes  []Field
	process ProcessFunc
}

// NewBaseAgent creates a BaseAgent with the given contract and process
// function.
func NewBaseAgent(role Role, reads, writes []Field, process ProcessFunc) *BaseAgent {
	return &BaseAgent{
		role:    role,
		reads:   append([]Field(nil), reads...),
		writes:  append([]Field(nil), writes...),
		process: process,
	}
}

func (b *BaseAgent) Role() Role { return b.role }

func (b *BaseAgent) Reads() []Field { return append([]Field(nil), b.reads...) }

func (b *BaseAgent) Writes() []Field { return append([]Field(nil), b.writes...) }

// Run checks inputs, runs the process function and checks its output.
func (b *BaseAgent) Run(ctx context.Context, s State) (Update, error) {
	for _, f := range b.reads {
		if !s.Has(f) {
			return nil, &MissingInputError{Role: b.role, Field: f}
		}
	}

	update, err := b.process(ctx, s.Project(b.reads...))
	if err != nil {
		return nil, err
	}

	allowed := make(map[Field]bool, len(b.writes))
	for _, f := range b.writes {
		allowed[f] = true
	}
	var extra []Field
	for _, f := range update.Fields() {
		if !allowed[f] {
			extra = append(extra, f)
		}
	}
	if len(extra) > 0 {
		return nil, &UndeclaredWriteError{Role: b.role, Fields: extra}
	}
	return update, nil
}
