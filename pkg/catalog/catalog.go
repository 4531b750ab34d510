// Package catalog is the static registry of operations the assistant can
// emit: one Spec per operation name, with a JSON-schema parameter shape and
// a required-parameter list, convertible to the OpenAI and Gemini tool-call
// wire formats.
package catalog

import (
	"fmt"
	"sync"

	"github.com/pythagonacci/trak/pkg/types"
)

// Spec describes one operation.
type Spec struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Parameters  map[string]any   `json:"parameters"` // property name -> JSON-schema fragment
	Required    []string         `json:"required_params,omitempty"`
	Atomic      bool             `json:"-"` // backend may expose a composite RPC for this op
}

// ParametersSchema assembles the full JSON-schema object for the wire
// formats.
func (s Spec) ParametersSchema() types.JSONSchema {
	schema := types.JSONSchema{
		"type":       "object",
		"properties": s.Parameters,
	}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

// Catalog holds the registered operation specs in registration order.
type Catalog struct {
	mu    sync.RWMutex
	specs map[string]Spec
	order []string
}

func New() *Catalog {
	return &Catalog{specs: make(map[string]Spec)}
}

func (c *Catalog) Register(s Spec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.specs[s.Name]; exists {
		return fmt.Errorf("operation %s already registered", s.Name)
	}
	c.specs[s.Name] = s
	c.order = append(c.order, s.Name)
	return nil
}

func (c *Catalog) Get(name string) (Spec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.specs[name]
	return s, ok
}

func (c *Catalog) List() []Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Spec, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.specs[name])
	}
	return out
}

func (c *Catalog) ByCategory(category string) []Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Spec
	for _, name := range c.order {
		if s := c.specs[name]; s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the process-wide catalog of built-in operations.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat = New()
		for _, s := range builtinSpecs() {
			if err := defaultCat.Register(s); err != nil {
				panic(err)
			}
		}
	})
	return defaultCat
}
