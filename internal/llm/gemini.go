package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini is the Google Gemini provider.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini API client. No request is made.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &ConfigurationError{Field: "provider", Reason: fmt.Sprintf("gemini client: %v", err)}
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	return g.generate(ctx, req, g.baseConfig(req))
}

func (g *Gemini) CompleteJSON(ctx context.Context, req Request, schema Schema) (string, error) {
	cfg := g.baseConfig(req)
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = geminiSchema(schema)
	return g.generate(ctx, req, cfg)
}

func (g *Gemini) baseConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	return cfg
}

func (g *Gemini) generate(ctx context.Context, req Request, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", g.wrap(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ProviderError{Provider: ProviderGemini, StatusCode: 502, Err: errors.New("empty completion")}
	}
	return text, nil
}

func (g *Gemini) wrap(err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Code
	}
	return &ProviderError{Provider: ProviderGemini, StatusCode: status, Err: err}
}

func geminiSchema(s Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: f.Description,
		}
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Description:      s.Description,
		Properties:       props,
		Required:         s.FieldNames(),
		PropertyOrdering: s.FieldNames(),
	}
}
