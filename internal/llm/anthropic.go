package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 8192

// Anthropic is the Claude messages provider. Structured output is obtained by
// forcing a single tool whose input schema is the requested schema.
type Anthropic struct {
	client anthropic.Client
}

func NewAnthropic(cfg Config) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{client: anthropic.NewClient(opts...)}
}

func (p *Anthropic) Name() string { return ProviderAnthropic }

func (p *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	msg, err := p.client.Messages.New(ctx, p.params(req))
	if err != nil {
		return "", p.wrap(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &ProviderError{Provider: ProviderAnthropic, StatusCode: 502, Err: errors.New("empty completion")}
	}
	return sb.String(), nil
}

func (p *Anthropic) CompleteJSON(ctx context.Context, req Request, schema Schema) (string, error) {
	params := p.params(req)
	params.Tools = []anthropic.ToolUnionParam{{
		OfTool: &anthropic.ToolParam{
			Name:        schema.Name,
			Description: anthropic.String(schema.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: schema.JSONSchema()["properties"],
				Required:   schema.FieldNames(),
			},
		},
	}}
	params.ToolChoice = anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: schema.Name},
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", p.wrap(err)
	}
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.ToolUseBlock); ok && b.Name == schema.Name {
			args, err := b.Input.MarshalJSON()
			if err != nil {
				return "", err
			}
			return string(args), nil
		}
	}
	return "", &ProviderError{Provider: ProviderAnthropic, StatusCode: 502, Err: errors.New("no tool_use block in response")}
}

func (p *Anthropic) params(req Request) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	return params
}

func (p *Anthropic) wrap(err error) error {
	status := 0
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	return &ProviderError{Provider: ProviderAnthropic, StatusCode: status, Err: err}
}
