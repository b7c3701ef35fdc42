// Package config loads craftcanvas.yml and overlays CRAFTCANVAS_* environment
// variables to produce the runtime settings. The model credential is never
// read from the file; it comes from the environment variable named by
// apiKeyEnv.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoseCortezz25/craft-canvas/internal/agent"
	"github.com/JoseCortezz25/craft-canvas/internal/llm"
)

// FileNames are tried in order by Load.
var FileNames = []string{"craftcanvas.yml", "craftcanvas.yaml"}

const envPrefix = "CRAFTCANVAS_"

// Tracing configures the OpenTelemetry exporter.
type Tracing struct {
	Exporter string `yaml:"exporter,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	// SampleRatio is the fraction of traces kept. Nil means 1; 0 keeps none.
	SampleRatio *float64 `yaml:"sampleRatio,omitempty"`
}

// Wiring mirrors agent.Wiring. Nil means the default (on).
type Wiring struct {
	CrossInstructions      *bool `yaml:"crossInstructions,omitempty"`
	UXWriterUsesUITemplate *bool `yaml:"uxWriterUsesUITemplate,omitempty"`
}

// Config holds project-level settings loaded from craftcanvas.yml.
type Config struct {
	Provider              string        `yaml:"provider,omitempty"`
	Model                 string        `yaml:"model,omitempty"`
	StructuredModel       string        `yaml:"structuredModel,omitempty"`
	Temperature           float64       `yaml:"temperature,omitempty"`
	StructuredTemperature *float64      `yaml:"structuredTemperature,omitempty"`
	MaxRetries            *int          `yaml:"maxRetries,omitempty"`
	RetryBaseDelay        time.Duration `yaml:"retryBaseDelay,omitempty"`
	MaxRepairs            *int          `yaml:"maxRepairs,omitempty"`
	MaxTokens             int           `yaml:"maxTokens,omitempty"`
	APIKeyEnv             string        `yaml:"apiKeyEnv,omitempty"`
	BaseURL               string        `yaml:"baseURL,omitempty"`
	ListenAddr            string        `yaml:"listenAddr,omitempty"`
	RunTimeout            time.Duration `yaml:"runTimeout,omitempty"`
	CORSOrigins           []string      `yaml:"corsOrigins,omitempty"`
	LogMode               string        `yaml:"logMode,omitempty"`
	Tracing               Tracing       `yaml:"tracing,omitempty"`
	Wiring                Wiring        `yaml:"wiring,omitempty"`

	// APIKey is resolved from the environment by ApplyEnv.
	APIKey string `yaml:"-"`
}

// Load attempts to read craftcanvas.yml or craftcanvas.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &Config{}, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays CRAFTCANVAS_* variables and resolves the credential. A
// nil lookup reads the process environment.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("PROVIDER", &c.Provider)
	str("MODEL", &c.Model)
	str("STRUCTURED_MODEL", &c.StructuredModel)
	str("API_KEY_ENV", &c.APIKeyEnv)
	str("BASE_URL", &c.BaseURL)
	str("LISTEN_ADDR", &c.ListenAddr)
	str("LOG_MODE", &c.LogMode)
	str("TRACING_EXPORTER", &c.Tracing.Exporter)
	str("TRACING_ENDPOINT", &c.Tracing.Endpoint)

	if v, ok := lookup(envPrefix + "CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
	if v, ok := lookup(envPrefix + "TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sTEMPERATURE: %w", envPrefix, err)
		}
		c.Temperature = f
	}
	if v, ok := lookup(envPrefix + "MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_RETRIES: %w", envPrefix, err)
		}
		c.MaxRetries = &n
	}
	if v, ok := lookup(envPrefix + "RUN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sRUN_TIMEOUT: %w", envPrefix, err)
		}
		c.RunTimeout = d
	}

	keyEnv := c.APIKeyEnv
	if keyEnv == "" {
		keyEnv = DefaultAPIKeyEnv(c.provider())
	}
	if v, ok := lookup(keyEnv); ok {
		c.APIKey = v
	}
	return nil
}

// DefaultAPIKeyEnv names the credential variable for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case llm.ProviderMock:
		return "CRAFTCANVAS_MOCK_KEY"
	}
	return "GOOGLE_API_KEY"
}

func (c *Config) provider() string {
	if c.Provider == "" {
		return llm.ProviderGemini
	}
	return c.Provider
}

// Defaults fills every unset field.
func (c *Config) Defaults() {
	d := llm.DefaultConfig()
	c.Provider = c.provider()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.StructuredModel == "" {
		c.StructuredModel = c.Model
	}
	if c.MaxRetries == nil {
		n := d.MaxRetries
		c.MaxRetries = &n
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = d.RetryBaseDelay
	}
	if c.MaxRepairs == nil {
		n := d.MaxRepairs
		c.MaxRepairs = &n
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = DefaultAPIKeyEnv(c.Provider)
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.RunTimeout == 0 {
		c.RunTimeout = 5 * time.Minute
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "none"
	}
	if c.Tracing.SampleRatio == nil {
		r := 1.0
		c.Tracing.SampleRatio = &r
	}
}

// Resolve loads dir, overlays the environment and applies defaults.
func Resolve(dir string, lookup LookupFunc) (*Config, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	cfg.Defaults()
	return cfg, nil
}

// Validate checks settings that are not model related. The credential is
// checked by the model layer so that a missing key always surfaces as a
// configuration error at model construction.
func (c *Config) Validate() error {
	switch c.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter: unsupported value %q", c.Tracing.Exporter)
	}
	if r := c.Tracing.SampleRatio; r != nil && (*r < 0 || *r > 1) {
		return fmt.Errorf("tracing.sampleRatio: must be between 0 and 1")
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("runTimeout: must not be negative")
	}
	switch c.LogMode {
	case "", "dev", "prod":
	default:
		return fmt.Errorf("logMode: unsupported value %q", c.LogMode)
	}
	return nil
}

// ModelConfig returns the settings injected into the model layer.
func (c *Config) ModelConfig() llm.Config {
	m := llm.DefaultConfig()
	m.Provider = c.provider()
	if c.Model != "" {
		m.Model = c.Model
	}
	m.StructuredModel = c.StructuredModel
	m.Temperature = c.Temperature
	m.StructuredTemperature = c.StructuredTemperature
	if c.MaxRetries != nil {
		m.MaxRetries = *c.MaxRetries
	}
	if c.RetryBaseDelay != 0 {
		m.RetryBaseDelay = c.RetryBaseDelay
	}
	if c.MaxRepairs != nil {
		m.MaxRepairs = *c.MaxRepairs
	}
	if c.MaxTokens != 0 {
		m.MaxTokens = c.MaxTokens
	}
	m.APIKey = c.APIKey
	m.BaseURL = c.BaseURL
	return m
}

// AgentWiring returns the wiring switches with defaults applied.
func (c *Config) AgentWiring() agent.Wiring {
	w := agent.DefaultWiring()
	if c.Wiring.CrossInstructions != nil {
		w.CrossInstructions = *c.Wiring.CrossInstructions
	}
	if c.Wiring.UXWriterUsesUITemplate != nil {
		w.UXWriterUsesUITemplate = *c.Wiring.UXWriterUsesUITemplate
	}
	return w
}
