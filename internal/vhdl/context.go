package vhdl

import (
	"fmt"

	"rtlgen/internal/ir"
)

// Version selects the language profile.
type Version int

const (
	VHDL2002 Version = iota
	VHDL2008
)

// ParseVersion accepts "2002", "02", "2008" and "08".
func ParseVersion(s string) (Version, error) {
	switch s {
	case "2002", "02", "":
		return VHDL2002, nil
	case "2008", "08":
		return VHDL2008, nil
	}
	return 0, fmt.Errorf("vhdl: unknown standard %q (want 2002 or 2008)", s)
}

func (v Version) String() string {
	if v == VHDL2008 {
		return "2008"
	}
	return "2002"
}

// Short returns the two digit form used by analysis tools.
func (v Version) Short() string {
	if v == VHDL2008 {
		return "08"
	}
	return "02"
}

// Renderer turns a named shape and its parameters into text.
type Renderer interface {
	Render(shape string, params map[string]any) (string, error)
}

// TmpVarFn creates a process-local variable initialised with init and
// returns a signal that can be referenced like any other.
type TmpVarFn func(suggested string, t ir.HdlType, init ir.Expr) (*ir.Signal, error)

// Context carries what the low level serializers need while rendering one
// unit: the active profile, the name scope and the shape renderer.
type Context struct {
	Version  Version
	Scope    *NameScope
	Renderer Renderer

	unit   *ir.Entity
	tmpVar TmpVarFn
}

// NewContext returns a context rendering into scope.
func NewContext(version Version, scope *NameScope, r Renderer) *Context {
	if scope == nil {
		scope = BaseScope()
	}
	return &Context{Version: version, Scope: scope, Renderer: r}
}

// WithTmpVars returns a copy of c whose expressions may allocate temporaries
// through fn.
func (c *Context) WithTmpVars(fn TmpVarFn) *Context {
	cp := *c
	cp.tmpVar = fn
	return &cp
}

func (c *Context) forUnit(ent *ir.Entity) *Context {
	cp := *c
	cp.unit = ent
	return &cp
}

// Name returns the identifier of s, allocating one in the current level on
// first use.
func (c *Context) Name(s *ir.Signal) string {
	return c.Scope.CheckedName(s.Name, s, false)
}

func portOwner(p *ir.Port) any {
	if p.Signal != nil {
		return p.Signal
	}
	return p
}

func genericOwner(g *ir.Generic) any {
	if g.Signal != nil {
		return g.Signal
	}
	return g
}
