package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Mock is an offline provider with deterministic output. Code prompts get a
// fenced HTML, CSS or JavaScript snippet, other text prompts get a short
// note, and JSON prompts get an object with every schema field filled in.
// TextFunc and JSONFunc override the defaults when set. Requests are kept
// only when Record is set.
type Mock struct {
	TextFunc func(ctx context.Context, req Request) (string, error)
	JSONFunc func(ctx context.Context, req Request, schema Schema) (string, error)
	Record   bool

	mu       sync.Mutex
	requests []Request
}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return ProviderMock }

func (m *Mock) Complete(ctx context.Context, req Request) (string, error) {
	m.record(req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.TextFunc != nil {
		return m.TextFunc(ctx, req)
	}
	return mockText(req.Prompt), nil
}

func (m *Mock) CompleteJSON(ctx context.Context, req Request, schema Schema) (string, error) {
	m.record(req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.JSONFunc != nil {
		return m.JSONFunc(ctx, req, schema)
	}
	obj := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		obj[f.Name] = fmt.Sprintf("Tasks for %s: %s", f.Name, f.Description)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(b) + "\n```", nil
}

// Requests returns a copy of every request received while Record was set.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

func (m *Mock) record(req Request) {
	if !m.Record {
		return
	}
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
}

const (
	mockHTML = `<main class="app">
  <h1 class="app__title">Contact us</h1>
  <form id="contact-form" class="form" novalidate>
    <label for="name">Name</label>
    <input id="name" name="name" type="text" required>
    <label for="email">Email</label>
    <input id="email" name="email" type="email" required>
    <label for="message">Message</label>
    <textarea id="message" name="message" rows="5" required></textarea>
    <button type="submit" class="form__submit">Send</button>
    <p id="form-status" class="form__status" role="status"></p>
  </form>
</main>`

	mockCSS = `.app { max-width: 40rem; margin: 0 auto; padding: 2rem; font-family: system-ui, sans-serif; }
.form { display: grid; gap: 0.75rem; }
.form__submit { padding: 0.75rem; background: #2563eb; color: #fff; border: 0; border-radius: 0.5rem; }
.form__submit:hover { background: #1d4ed8; }
@media (max-width: 600px) { .app { padding: 1rem; } }`

	mockJS = `document.addEventListener("DOMContentLoaded", () => {
  const form = document.getElementById("contact-form");
  const status = document.getElementById("form-status");
  form.addEventListener("submit", (event) => {
    event.preventDefault();
    status.textContent = form.checkValidity() ? "Thanks, we will reply soon." : "Please fill in every field.";
  });
});`
)

func mockText(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "return only html"):
		return "```html\n" + mockHTML + "\n```"
	case strings.Contains(lower, "return only css"):
		return "```css\n" + mockCSS + "\n```"
	case strings.Contains(lower, "return only plain javascript"):
		return "```javascript\n" + mockJS + "\n```"
	}
	first := strings.TrimSpace(prompt)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	return "Notes for: " + first
}
