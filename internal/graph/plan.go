package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "craftcanvas/graph"

// Plan is a compiled, immutable graph. It is safe to Run concurrently.
type Plan[S, U any] struct {
	nodes  map[string]NodeFunc[S, U]
	order  []string
	layers [][]string
	edges  []Edge
	preds  map[string][]string
	merge  MergeFunc[S, U]
}

// Nodes returns node names in registration order.
func (p *Plan[S, U]) Nodes() []string { return append([]string(nil), p.order...) }

// Layers returns the execution layers; nodes within a layer are in
// registration order.
func (p *Plan[S, U]) Layers() [][]string {
	out := make([][]string, len(p.layers))
	for i, l := range p.layers {
		out[i] = append([]string(nil), l...)
	}
	return out
}

// Edges returns the deduplicated edges including Start and End markers.
func (p *Plan[S, U]) Edges() []Edge { return append([]Edge(nil), p.edges...) }

// Predecessors returns the real nodes name depends on.
func (p *Plan[S, U]) Predecessors(name string) []string {
	return append([]string(nil), p.preds[name]...)
}

// EventKind classifies a run event.
type EventKind string

const (
	NodeStarted   EventKind = "node_started"
	NodeCompleted EventKind = "node_completed"
	NodeFailed    EventKind = "node_failed"
	LayerMerged   EventKind = "layer_merged"
)

// Event is reported to observers during a run. Node is empty for
// LayerMerged.
type Event struct {
	Kind     EventKind
	Node     string
	Layer    int
	Duration time.Duration
	Err      error
}

// NodeError identifies the step that failed a run.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

type runConfig struct {
	observer func(Event)
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithObserver registers fn for run events. Calls are serialized, so fn need
// not be safe for concurrent use, but it must not block for long.
func WithObserver(fn func(Event)) RunOption {
	return func(c *runConfig) { c.observer = fn }
}

// Run executes the plan from initial. A failing node cancels its siblings
// and the run returns the zero state with a *NodeError; no partial state is
// returned.
func (p *Plan[S, U]) Run(ctx context.Context, initial S, opts ...RunOption) (S, error) {
	var zero S
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	var mu sync.Mutex
	emit := func(ev Event) {
		if cfg.observer == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		cfg.observer(ev)
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "graph.run", trace.WithAttributes(
		attribute.Int("graph.nodes", len(p.order)),
		attribute.Int("graph.layers", len(p.layers)),
	))
	defer span.End()

	state := initial
	for i, layer := range p.layers {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return zero, err
		}

		updates := make([]U, len(layer))
		g, gctx := errgroup.WithContext(ctx)
		snapshot := state
		for j, name := range layer {
			g.Go(func() error {
				u, err := p.runNode(gctx, tracer, i, name, snapshot, emit)
				if err != nil {
					return err
				}
				updates[j] = u
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return zero, err
		}

		next, err := p.merge(state, updates...)
		if err != nil {
			err = fmt.Errorf("merge layer %d %v: %w", i, layer, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return zero, err
		}
		state = next
		emit(Event{Kind: LayerMerged, Layer: i})
	}
	return state, nil
}

func (p *Plan[S, U]) runNode(ctx context.Context, tracer trace.Tracer, layer int, name string, state S, emit func(Event)) (u U, err error) {
	ctx, span := tracer.Start(ctx, "graph.node", trace.WithAttributes(
		attribute.String("graph.node", name),
		attribute.Int("graph.layer", layer),
	))
	defer span.End()

	emit(Event{Kind: NodeStarted, Node: name, Layer: layer})
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &NodeError{Node: name, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			emit(Event{Kind: NodeFailed, Node: name, Layer: layer, Duration: time.Since(start), Err: err})
			return
		}
		emit(Event{Kind: NodeCompleted, Node: name, Layer: layer, Duration: time.Since(start)})
	}()

	u, err = p.nodes[name](ctx, state)
	if err != nil {
		return u, &NodeError{Node: name, Err: err}
	}
	return u, nil
}
