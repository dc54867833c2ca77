// Package passes holds IR rewrites that run between loading a design and
// serializing it.
package passes

import (
	"fmt"

	"rtlgen/internal/ir"
)

// Pass transforms a design in place.
type Pass interface {
	Name() string
	Run(design *ir.Design) error
}

// Manager runs passes in the order they were added.
type Manager struct {
	passes []Pass
}

// NewManager returns an empty pipeline.
func NewManager() *Manager {
	return &Manager{}
}

// Add appends p to the pipeline.
func (m *Manager) Add(p Pass) {
	m.passes = append(m.passes, p)
}

// Names lists the configured passes.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.passes))
	for _, p := range m.passes {
		names = append(names, p.Name())
	}
	return names
}

// Run executes every pass, stopping at the first failure.
func (m *Manager) Run(design *ir.Design) error {
	if design == nil {
		return fmt.Errorf("passes: nil design")
	}
	for _, p := range m.passes {
		if err := p.Run(design); err != nil {
			return fmt.Errorf("pass %s: %w", p.Name(), err)
		}
	}
	return nil
}

func forEachProcess(design *ir.Design, fn func(*ir.Process) error) error {
	for _, u := range design.Units {
		if u == nil || u.Architecture == nil {
			continue
		}
		for _, p := range u.Architecture.Processes {
			if err := fn(p); err != nil {
				return fmt.Errorf("%s.%s: %w", u.Entity.Name, p.Name, err)
			}
		}
	}
	return nil
}
