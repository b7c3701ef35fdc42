package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoseCortezz25/craft-canvas/internal/agent"
	"github.com/JoseCortezz25/craft-canvas/internal/llm"
)

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	data := `provider: openai
model: gpt-4o-mini
structuredTemperature: 0.3
maxRetries: 0
retryBaseDelay: 250ms
runTimeout: 90s
corsOrigins: ["http://localhost:3000"]
tracing:
  exporter: stdout
wiring:
  crossInstructions: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "craftcanvas.yaml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	require.NotNil(t, cfg.StructuredTemperature)
	assert.InDelta(t, 0.3, *cfg.StructuredTemperature, 1e-9)
	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, 0, *cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 90*time.Second, cfg.RunTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
	assert.Equal(t, agent.Wiring{CrossInstructions: false, UXWriterUsesUITemplate: true}, cfg.AgentWiring())
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "craftcanvas.yml"), []byte("provider: [\n"), 0o644))
	_, err := Load(dir)
	assert.ErrorContains(t, err, "parsing")
}

func TestLoad_APIKeyIgnoredInFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "craftcanvas.yml"), []byte("apiKey: leaked\n"), 0o644))
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey)
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(t.TempDir(), envMap(map[string]string{"GOOGLE_API_KEY": "g-key"}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, llm.ProviderGemini, cfg.Provider)
	assert.Equal(t, "GOOGLE_API_KEY", cfg.APIKeyEnv)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
	assert.Equal(t, agent.DefaultWiring(), cfg.AgentWiring())

	m := cfg.ModelConfig()
	assert.Equal(t, "g-key", m.APIKey)
	assert.Equal(t, llm.DefaultModel, m.Model)
	assert.Equal(t, llm.DefaultModel, m.StructuredModel)
	assert.Equal(t, 2, m.MaxRetries)
	assert.Equal(t, 1, m.MaxRepairs)
	assert.Equal(t, float64(0), m.Temperature)
	assert.Nil(t, m.StructuredTemperature)
	require.NoError(t, m.Validate())
}

func TestApplyEnv_Overlay(t *testing.T) {
	cfg := &Config{Provider: "gemini", Model: "from-file"}
	err := cfg.ApplyEnv(envMap(map[string]string{
		"CRAFTCANVAS_PROVIDER":     "anthropic",
		"CRAFTCANVAS_MAX_RETRIES":  "4",
		"CRAFTCANVAS_CORS_ORIGINS": "https://a.example, https://b.example,",
		"CRAFTCANVAS_RUN_TIMEOUT":  "30s",
		"ANTHROPIC_API_KEY":        "a-key",
		"GOOGLE_API_KEY":           "wrong",
	}))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "from-file", cfg.Model)
	assert.Equal(t, 4, *cfg.MaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.RunTimeout)
	assert.Equal(t, "a-key", cfg.APIKey)
}

func TestApplyEnv_CustomKeyVariable(t *testing.T) {
	cfg := &Config{APIKeyEnv: "MY_KEY"}
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{"MY_KEY": "k", "GOOGLE_API_KEY": "g"})))
	assert.Equal(t, "k", cfg.APIKey)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	cfg := &Config{}
	err := cfg.ApplyEnv(envMap(map[string]string{"CRAFTCANVAS_TEMPERATURE": "hot"}))
	assert.ErrorContains(t, err, "CRAFTCANVAS_TEMPERATURE")
}

func TestModelConfig_MissingKeyIsConfigurationError(t *testing.T) {
	cfg, err := Resolve(t.TempDir(), envMap(nil))
	require.NoError(t, err)

	var cfgErr *llm.ConfigurationError
	assert.ErrorAs(t, cfg.ModelConfig().Validate(), &cfgErr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "zero", cfg: Config{}, ok: true},
		{name: "otlp", cfg: Config{Tracing: Tracing{Exporter: "otlp", SampleRatio: ratio(0.5)}}, ok: true},
		{name: "never sample", cfg: Config{Tracing: Tracing{SampleRatio: ratio(0)}}, ok: true},
		{name: "bad exporter", cfg: Config{Tracing: Tracing{Exporter: "jaeger"}}},
		{name: "bad ratio", cfg: Config{Tracing: Tracing{SampleRatio: ratio(2)}}},
		{name: "bad log mode", cfg: Config{LogMode: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func ratio(f float64) *float64 { return &f }

func TestDefaults_SampleRatio(t *testing.T) {
	var unset Config
	unset.Defaults()
	require.NotNil(t, unset.Tracing.SampleRatio)
	assert.Equal(t, 1.0, *unset.Tracing.SampleRatio)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "craftcanvas.yml"), []byte("tracing:\n  sampleRatio: 0\n"), 0o644))
	cfg, err := Resolve(dir, func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	require.NotNil(t, cfg.Tracing.SampleRatio)
	assert.Equal(t, 0.0, *cfg.Tracing.SampleRatio)
}
