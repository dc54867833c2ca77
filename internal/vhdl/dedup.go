package vhdl

import (
	"sort"
	"strings"

	"rtlgen/internal/ir"
)

// Decision tells the assembler what to do with one unit.
type Decision struct {
	// Emit is false when the unit must not produce a definition.
	Emit bool
	// Name is the entity name candidate, or the final name of the unit
	// already emitted when Prior is set.
	Name string
	// Prior is the unit whose definition is reused.
	Prior *ir.Unit
}

// Dedup tracks which unit classes have been emitted during one generation
// run. Decide is read-only; Commit records a unit once its text is complete,
// so a failed unit never becomes the reference for later ones.
type Dedup struct {
	classes    map[string]*ir.Unit
	configured map[string]*ir.Unit
	names      map[*ir.Entity]string
}

// NewDedup returns empty dedup state.
func NewDedup() *Dedup {
	return &Dedup{
		classes:    make(map[string]*ir.Unit),
		configured: make(map[string]*ir.Unit),
		names:      make(map[*ir.Entity]string),
	}
}

func className(u *ir.Unit) string {
	if u.Class != "" {
		return u.Class
	}
	return u.Entity.Name
}

// ParamsKey is the canonical text of the unit's evaluated generics.
func ParamsKey(u *ir.Unit) string {
	parts := make([]string, 0, len(u.Entity.Generics))
	for _, g := range u.Entity.Generics {
		parts = append(parts, g.Name+"="+g.Effective().Key())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func configKey(u *ir.Unit) string {
	return className(u) + "(" + ParamsKey(u) + ")"
}

// Decide applies the unit's serializer mode.
func (d *Dedup) Decide(u *ir.Unit) Decision {
	class := className(u)
	switch u.Mode {
	case ir.Once:
		if prior, ok := d.classes[class]; ok {
			return Decision{Name: d.names[prior.Entity], Prior: prior}
		}
		return Decision{Emit: true, Name: class}
	case ir.ParamsUniq:
		if prior, ok := d.configured[configKey(u)]; ok {
			return Decision{Name: d.names[prior.Entity], Prior: prior}
		}
		return Decision{Emit: true, Name: u.Entity.Name}
	case ir.Exclude:
		if prior, ok := d.classes[class]; ok {
			return Decision{Name: d.names[prior.Entity], Prior: prior}
		}
		return Decision{Name: class}
	}
	return Decision{Emit: true, Name: u.Entity.Name}
}

// Commit records u as emitted (or, for excluded units, named) under name.
func (d *Dedup) Commit(u *ir.Unit, name string) {
	d.names[u.Entity] = name
	switch u.Mode {
	case ir.Once, ir.Exclude:
		if _, ok := d.classes[className(u)]; !ok {
			d.classes[className(u)] = u
		}
	case ir.ParamsUniq:
		if _, ok := d.configured[configKey(u)]; !ok {
			d.configured[configKey(u)] = u
		}
	}
}

// Bind names a suppressed entity after the definition it reuses.
func (d *Dedup) Bind(ent *ir.Entity, name string) {
	d.names[ent] = name
}

// EntityName returns the final name of an entity seen during this run.
func (d *Dedup) EntityName(ent *ir.Entity) (string, bool) {
	n, ok := d.names[ent]
	return n, ok
}
