package render

import (
	"fmt"
	"html/template"
	"strings"
)

// TemplateTaskReminder is the template used for deferred task notifications.
const TemplateTaskReminder = "task-reminder"

// Fields holds the substitution values for a notification template.
// Rendering goes through html/template so recipient-supplied values
// cannot inject markup into the message.
type Fields struct {
	FirstName string
	LastName  string
	TaskTitle string
	ActionURL string
}

var builtin = map[string]string{
	TemplateTaskReminder: `Hello {{.FirstName}} {{.LastName}},

This is a reminder about the task "{{.TaskTitle}}".

You can review it here: {{.ActionURL}}`,
}

// Registry holds pre-compiled named templates.
type Registry struct {
	templates map[string]*template.Template
}

// NewRegistry compiles the built-in template set. Compilation failures
// surface at startup, not at fire time.
func NewRegistry() (*Registry, error) {
	r := &Registry{templates: make(map[string]*template.Template)}
	for name, text := range builtin {
		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Has reports whether a template with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render executes the named template with the given fields.
func (r *Registry) Render(name string, fields Fields) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, fields); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return sb.String(), nil
}
