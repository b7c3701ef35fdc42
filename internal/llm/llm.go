// Package llm is the model access layer: it hides the concrete model
// provider behind two operations, free-text completion with a bounded retry
// budget and schema-validated structured generation.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config is the process-wide model configuration. It is built once at start
// up and injected; nothing in this package reads the environment.
type Config struct {
	Provider        string
	Model           string
	StructuredModel string
	// Temperature applies to free-text completion.
	Temperature float64
	// StructuredTemperature applies to structured generation. Nil leaves the
	// provider default in place.
	StructuredTemperature *float64
	MaxRetries            int
	RetryBaseDelay        time.Duration
	MaxRepairs            int
	MaxTokens             int
	APIKey                string
	BaseURL               string
}

// DefaultConfig returns the defaults applied by the configuration layer.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderGemini,
		Model:          DefaultModel,
		Temperature:    0,
		MaxRetries:     2,
		RetryBaseDelay: 500 * time.Millisecond,
		MaxRepairs:     1,
		MaxTokens:      8192,
	}
}

// Validate checks c without touching the network.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigurationError{Field: "apiKey", Reason: "credential is empty"}
	}
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return &ConfigurationError{Field: "provider", Reason: fmt.Sprintf("unsupported provider %q", c.Provider)}
	}
	if c.Model == "" {
		return &ConfigurationError{Field: "model", Reason: "model identifier is empty"}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return &ConfigurationError{Field: "temperature", Reason: "must be between 0 and 2"}
	}
	if t := c.StructuredTemperature; t != nil && (*t < 0 || *t > 2) {
		return &ConfigurationError{Field: "structuredTemperature", Reason: "must be between 0 and 2"}
	}
	if c.MaxRetries < 0 || c.MaxRepairs < 0 {
		return &ConfigurationError{Field: "maxRetries", Reason: "retry bounds must not be negative"}
	}
	return nil
}

// Request is a single prompt sent to a provider.
type Request struct {
	Model       string
	Prompt      string
	Temperature *float64
	MaxTokens   int
}

// Provider is a concrete model backend.
type Provider interface {
	Name() string
	// Complete returns the generated text for req.
	Complete(ctx context.Context, req Request) (string, error)
	// CompleteJSON asks the model for a JSON object conforming to schema and
	// returns the raw text. Callers validate it.
	CompleteJSON(ctx context.Context, req Request, schema Schema) (string, error)
}

// Field is one string property of a structured schema. Every field is
// required.
type Field struct {
	Name        string
	Description string
}

// Schema describes a flat JSON object of required string properties.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// FieldNames returns the property names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// JSONSchema renders s as a JSON Schema document.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = map[string]any{
			"type":        "string",
			"description": f.Description,
		}
	}
	return map[string]any{
		"type":                 "object",
		"description":          s.Description,
		"properties":           props,
		"required":             s.FieldNames(),
		"additionalProperties": false,
	}
}

// Structured is implemented by the result types of structured generation.
type Structured interface {
	Schema() Schema
	Validate() error
}

// TextCompleter is the free-text half of the layer.
type TextCompleter interface {
	CompleteText(ctx context.Context, prompt string) (string, error)
}

// StructuredGenerator is the structured half of the layer.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, out Structured) error
}

// NewProvider builds the provider named by cfg.Provider. cfg must already be
// valid.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	case ProviderMock:
		return NewMock(), nil
	}
	return nil, &ConfigurationError{Field: "provider", Reason: fmt.Sprintf("unsupported provider %q", cfg.Provider)}
}

// Models is the pair of model instances used by the pipeline: a
// zero-temperature text client and a structured client.
type Models struct {
	Text       *Client
	Structured *Client
	Provider   Provider
}

// NewModels validates cfg and builds both clients over one provider. An
// empty credential fails with ConfigurationError before any provider is
// constructed.
func NewModels(ctx context.Context, cfg Config, opts ...ClientOption) (*Models, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewModelsWithProvider(cfg, p, opts...), nil
}

// NewModelsWithProvider builds both clients over an existing provider.
func NewModelsWithProvider(cfg Config, p Provider, opts ...ClientOption) *Models {
	structuredModel := cfg.StructuredModel
	if structuredModel == "" {
		structuredModel = cfg.Model
	}
	temp := cfg.Temperature
	text := NewClient(p, Settings{
		Model:          cfg.Model,
		Temperature:    &temp,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
		MaxRepairs:     cfg.MaxRepairs,
		MaxTokens:      cfg.MaxTokens,
	}, opts...)
	structured := NewClient(p, Settings{
		Model:          structuredModel,
		Temperature:    cfg.StructuredTemperature,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
		MaxRepairs:     cfg.MaxRepairs,
		MaxTokens:      cfg.MaxTokens,
	}, opts...)
	return &Models{Text: text, Structured: structured, Provider: p}
}
