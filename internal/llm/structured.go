package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// GenerateStructured asks the model for an object matching out.Schema(),
// decodes it into out and validates it. Output that fails decoding or
// validation triggers up to MaxRepairs correction prompts quoting the
// failure; after that the result is a SchemaValidationError. out holds a
// valid value only when the returned error is nil.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, out Structured) error {
	schema := out.Schema()
	current := prompt
	attempts := c.settings.MaxRepairs + 1

	var (
		lastErr error
		lastRaw string
	)
	for attempt := 0; attempt < attempts; attempt++ {
		req := c.request(current)
		raw, err := c.withRetry(ctx, func() (string, error) {
			return c.provider.CompleteJSON(ctx, req, schema)
		})
		if err != nil {
			return err
		}

		if err := decodeStructured(raw, schema, out); err != nil {
			lastErr, lastRaw = err, raw
			c.log.Warn("structured output rejected",
				"provider", c.provider.Name(),
				"schema", schema.Name,
				"attempt", attempt+1,
				"error", err,
			)
			current = repairPrompt(prompt, raw, schema, err)
			continue
		}
		return nil
	}
	return &SchemaValidationError{Schema: schema.Name, Attempts: attempts, Output: lastRaw, Err: lastErr}
}

// decodeStructured checks raw against schema before touching out: it must be
// a single JSON object whose keys are exactly the schema fields and whose
// values are all strings.
func decodeStructured(raw string, schema Schema, out Structured) error {
	text := trimJSONFence(raw)
	if text == "" {
		return errors.New("empty output")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("invalid json object: %w", err)
	}
	if dec.More() {
		return errors.New("unexpected data after json object")
	}
	if fields == nil {
		return errors.New("output is null")
	}

	want := make(map[string]bool, len(schema.Fields))
	for _, f := range schema.Fields {
		want[f.Name] = true
	}
	var unknown, missing, notString []string
	for k, v := range fields {
		if !want[k] {
			unknown = append(unknown, k)
			continue
		}
		if trimmed := bytes.TrimSpace(v); len(trimmed) == 0 || trimmed[0] != '"' {
			notString = append(notString, k)
		}
	}
	for _, f := range schema.Fields {
		if _, ok := fields[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(unknown)+len(missing)+len(notString) > 0 {
		sort.Strings(unknown)
		sort.Strings(notString)
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "missing field(s): "+strings.Join(missing, ", "))
		}
		if len(unknown) > 0 {
			parts = append(parts, "unknown field(s): "+strings.Join(unknown, ", "))
		}
		if len(notString) > 0 {
			parts = append(parts, "non-string field(s): "+strings.Join(notString, ", "))
		}
		return errors.New(strings.Join(parts, "; "))
	}

	strict := json.NewDecoder(strings.NewReader(text))
	strict.DisallowUnknownFields()
	if err := strict.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", schema.Name, err)
	}
	return out.Validate()
}

// trimJSONFence strips a surrounding markdown fence such as ```json.
func trimJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[nl+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func repairPrompt(original, raw string, schema Schema, cause error) string {
	var b strings.Builder
	b.WriteString(original)
	b.WriteString("\n\nYour previous answer was rejected: ")
	b.WriteString(cause.Error())
	b.WriteString("\nPrevious answer:\n")
	b.WriteString(raw)
	b.WriteString("\n\n")
	b.WriteString(schemaInstructions(schema))
	return b.String()
}

// schemaInstructions is the plain-text form of schema used in correction
// prompts.
func schemaInstructions(schema Schema) string {
	var b strings.Builder
	b.WriteString("Return ONLY a JSON object with exactly these string fields, all non-empty. Do not include markdown or commentary.\n")
	for _, f := range schema.Fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
	}
	return strings.TrimSpace(b.String())
}
