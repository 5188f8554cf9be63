package envelope

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Transform turns a canonical intermediate document into the final wire
// envelope text. It is a pure function; errors surface as a
// transformation error.
type Transform func(templateName, canonicalXML string) (string, error)

// DefaultTemplate is the template name used when an operation does not
// configure one.
const DefaultTemplate = "distribution-envelope"

// Passthrough is a Transform that returns the canonical document
// unchanged, for deployments whose wire format is the canonical form.
func Passthrough(_, canonicalXML string) (string, error) {
	return canonicalXML, nil
}

// TemplateSet is a registry of named text templates implementing
// Transform. Each template receives the canonical XML as its data.
// Registration happens at startup; lookups are safe for concurrent use.
type TemplateSet struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewTemplateSet creates an empty template set.
func NewTemplateSet() *TemplateSet {
	return &TemplateSet{templates: make(map[string]*template.Template)}
}

// Register parses and stores a template under the given name.
func (s *TemplateSet) Register(name, text string) error {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return fmt.Errorf("parsing template %s: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[name] = tmpl
	return nil
}

// Transform implements the Transform contract.
func (s *TemplateSet) Transform(templateName, canonicalXML string) (string, error) {
	s.mu.RLock()
	tmpl, ok := s.templates[templateName]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %s is not registered", templateName)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, canonicalXML); err != nil {
		return "", fmt.Errorf("executing template %s: %w", templateName, err)
	}
	return out.String(), nil
}
