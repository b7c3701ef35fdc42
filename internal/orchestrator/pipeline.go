package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JoseCortezz25/craft-canvas/internal/agent"
	"github.com/JoseCortezz25/craft-canvas/internal/graph"
	"github.com/JoseCortezz25/craft-canvas/internal/lint"
	"github.com/JoseCortezz25/craft-canvas/internal/llm"
	"github.com/JoseCortezz25/craft-canvas/internal/logger"
	"github.com/JoseCortezz25/craft-canvas/internal/prompt"
	"github.com/JoseCortezz25/craft-canvas/internal/sanitize"
)

// Compile-time interface check.
var _ Generator = (*Pipeline)(nil)

// ErrEmptyPrompt is returned for a blank prompt.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Pipeline is the compiled craft-canvas graph. It holds no per-run state and
// is safe for concurrent use.
type Pipeline struct {
	plan       *Plan
	log        *logger.Logger
	runTimeout time.Duration
	newID      func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for run and node lifecycle events.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRunTimeout bounds each run. Zero disables the deadline.
func WithRunTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.runTimeout = d }
}

// WithRunIDFunc replaces the uuid run id generator.
func WithRunIDFunc(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// NewPipeline compiles the fixed topology over agents, which must hold one
// agent per role.
func NewPipeline(agents map[agent.Role]agent.Agent, opts ...Option) (*Pipeline, error) {
	plan, err := compile(agents)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		plan:  plan,
		log:   logger.Nop(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Settings is everything needed to build a Pipeline from configuration.
type Settings struct {
	Model      llm.Config
	Wiring     agent.Wiring
	RunTimeout time.Duration
	Logger     *logger.Logger
}

// New builds the model clients, prompt registry and agents, then compiles
// the pipeline. A missing credential fails here with *llm.ConfigurationError
// before any model call.
func New(ctx context.Context, s Settings) (*Pipeline, error) {
	log := s.Logger
	if log == nil {
		log = logger.Nop()
	}
	models, err := llm.NewModels(ctx, s.Model, llm.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return FromModels(models, s.Wiring, WithLogger(log), WithRunTimeout(s.RunTimeout))
}

// FromModels builds the agents over existing model clients.
func FromModels(models *llm.Models, wiring agent.Wiring, opts ...Option) (*Pipeline, error) {
	prompts, err := prompt.NewRegistry()
	if err != nil {
		return nil, err
	}
	agents, err := agent.NewRegistry().BuildAll(agent.Deps{
		Prompts:    prompts,
		Text:       models.Text,
		Structured: models.Structured,
		Wiring:     wiring,
	})
	if err != nil {
		return nil, err
	}
	return NewPipeline(agents, opts...)
}

// Plan returns the compiled graph for inspection.
func (p *Pipeline) Plan() *Plan { return p.plan }

type runConfig struct {
	progress func(ProgressEvent)
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithProgress registers fn for node lifecycle events. Calls are
// serialized.
func WithProgress(fn func(ProgressEvent)) RunOption {
	return func(c *runConfig) { c.progress = fn }
}

// Generate runs the pipeline for prompt. The run fails atomically: on any
// error no artifacts are returned.
func (p *Pipeline) Generate(ctx context.Context, userPrompt string, opts ...RunOption) (*Result, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, ErrEmptyPrompt
	}
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if p.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.runTimeout)
		defer cancel()
	}

	runID := p.newID()
	log := p.log.With("run_id", runID)
	start := time.Now()
	log.Info("run started", "steps", len(p.plan.Nodes()), "layers", len(p.plan.Layers()))

	if cfg.progress != nil {
		for i, layer := range p.plan.Layers() {
			for _, name := range layer {
				cfg.progress(ProgressEvent{RunID: runID, Node: name, Layer: i, Status: ProgressPending})
			}
		}
	}

	final, err := p.plan.Run(ctx, agent.NewState(userPrompt), graph.WithObserver(func(ev graph.Event) {
		p.observe(log, runID, cfg.progress, ev)
	}))
	if err != nil {
		log.Error("run failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	res := &Result{
		RunID: runID,
		Artifacts: Artifacts{
			HTML: sanitize.Clean(final.Value(agent.FieldOutputHTML)),
			CSS:  sanitize.Clean(final.Value(agent.FieldOutputCSS)),
			JS:   sanitize.Clean(final.Value(agent.FieldOutputJS)),
		},
		Duration: time.Since(start),
	}
	res.Diagnostics = lint.All(res.Artifacts.HTML, res.Artifacts.CSS, res.Artifacts.JS)
	for _, d := range res.Diagnostics {
		log.Warn("artifact diagnostic", "diagnostic", d.String())
	}
	log.Info("run finished",
		"duration", res.Duration,
		"html_bytes", len(res.Artifacts.HTML),
		"css_bytes", len(res.Artifacts.CSS),
		"js_bytes", len(res.Artifacts.JS),
		"diagnostics", len(res.Diagnostics),
	)
	return res, nil
}

func (p *Pipeline) observe(log *logger.Logger, runID string, progress func(ProgressEvent), ev graph.Event) {
	var pe ProgressEvent
	switch ev.Kind {
	case graph.NodeStarted:
		log.Debug("node started", "node", ev.Node, "layer", ev.Layer)
		pe = ProgressEvent{Status: ProgressWorking}
	case graph.NodeCompleted:
		log.Info("node completed", "node", ev.Node, "layer", ev.Layer, "duration", ev.Duration)
		pe = ProgressEvent{Status: ProgressComplete}
	case graph.NodeFailed:
		msg := fmt.Sprint(ev.Err)
		var nodeErr *graph.NodeError
		if errors.As(ev.Err, &nodeErr) {
			msg = nodeErr.Err.Error()
		}
		log.Warn("node failed", "node", ev.Node, "layer", ev.Layer, "duration", ev.Duration, "error", msg)
		pe = ProgressEvent{Status: ProgressFailed, Message: msg}
	default:
		log.Debug("layer merged", "layer", ev.Layer)
		return
	}
	if progress == nil {
		return
	}
	pe.RunID = runID
	pe.Node = ev.Node
	pe.Layer = ev.Layer
	pe.Duration = ev.Duration
	progress(pe)
}
