package vhdl

import (
	"fmt"
	"sort"
	"strings"

	"rtlgen/internal/ir"
)

// State is everything shared between the units of one generation run.
type State struct {
	Scope *NameScope
	Dedup *Dedup
}

// NewState returns fresh per-run state.
func NewState() *State {
	return &State{Scope: BaseScope(), Dedup: NewDedup()}
}

// Serializer assembles entity and architecture text for design units.
type Serializer struct {
	Version  Version
	Renderer Renderer
	// Format post-processes each unit's text; nil leaves it untouched.
	Format func(string) string
	// ArchName is used for architectures without a name; defaults to "rtl".
	ArchName string
}

// UnitText is the result of serializing one unit.
type UnitText struct {
	// Name is the final entity name of the unit.
	Name string
	Unit *ir.Unit
	// Text is empty when Emitted is false.
	Text    string
	Emitted bool
}

// Unit serializes u. Units must be passed in dependency order, children
// first. On error no text is returned, the dedup state is unchanged and the
// entity name is released.
func (s *Serializer) Unit(st *State, u *ir.Unit) (UnitText, error) {
	if u == nil || u.Entity == nil {
		return UnitText{}, fmt.Errorf("vhdl: unit without entity")
	}
	if s.Renderer == nil {
		return UnitText{}, fmt.Errorf("vhdl: no renderer configured")
	}
	dec := st.Dedup.Decide(u)
	if !dec.Emit {
		return s.suppressed(st, u, dec), nil
	}

	ctx := NewContext(s.Version, st.Scope, s.Renderer).forUnit(u.Entity)
	_, named := st.Scope.NameOf(u.Entity)
	name := st.Scope.CheckedName(dec.Name, u.Entity, true)
	fail := func(err error) (UnitText, error) {
		if !named {
			st.Scope.Release(u.Entity)
		}
		return UnitText{}, err
	}

	st.Scope.Push()
	defer st.Scope.Pop()

	ent, err := s.entity(ctx, u.Entity, name)
	if err != nil {
		return fail(fmt.Errorf("entity %s: %w", name, err))
	}
	text := ent
	if u.Architecture != nil {
		arch, err := s.architecture(ctx, st, u.Architecture, name)
		if err != nil {
			return fail(fmt.Errorf("architecture of %s: %w", name, err))
		}
		text += "\n\n" + arch
	}
	if s.Format != nil {
		text = s.Format(text)
	}
	st.Dedup.Commit(u, name)
	return UnitText{Name: name, Unit: u, Text: text, Emitted: true}, nil
}

// suppressed names a unit that produces no definition, along with its
// ports and generics so that instantiating units can refer to them.
func (s *Serializer) suppressed(st *State, u *ir.Unit, dec Decision) UnitText {
	name := dec.Name
	if dec.Prior == nil {
		name = st.Scope.CheckedName(dec.Name, u.Entity, true)
		for _, p := range u.Entity.Ports {
			st.Scope.Bind(portOwner(p), Sanitize(p.Name))
		}
		for _, g := range u.Entity.Generics {
			st.Scope.Bind(genericOwner(g), Sanitize(g.Name))
		}
		st.Dedup.Commit(u, name)
		return UnitText{Name: name, Unit: u}
	}
	st.Scope.Bind(u.Entity, name)
	for _, p := range u.Entity.Ports {
		st.Scope.Bind(portOwner(p), priorName(st.Scope, dec.Prior.Entity, p.Name, true))
	}
	for _, g := range u.Entity.Generics {
		st.Scope.Bind(genericOwner(g), priorName(st.Scope, dec.Prior.Entity, g.Name, false))
	}
	st.Dedup.Bind(u.Entity, name)
	return UnitText{Name: name, Unit: u}
}

func priorName(scope *NameScope, prior *ir.Entity, name string, port bool) string {
	if port {
		for _, p := range prior.Ports {
			if p.Name == name {
				if n, ok := scope.NameOf(portOwner(p)); ok {
					return n
				}
			}
		}
	} else {
		for _, g := range prior.Generics {
			if g.Name == name {
				if n, ok := scope.NameOf(genericOwner(g)); ok {
					return n
				}
			}
		}
	}
	return Sanitize(name)
}

func sortedPorts(ports []*ir.Port) []*ir.Port {
	out := append([]*ir.Port(nil), ports...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedGenerics(gens []*ir.Generic) []*ir.Generic {
	out := append([]*ir.Generic(nil), gens...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func direction(d ir.PortDirection) string {
	switch d {
	case ir.Output:
		return "OUT"
	case ir.InOut:
		return "INOUT"
	}
	return "IN"
}

func (s *Serializer) entity(ctx *Context, ent *ir.Entity, name string) (string, error) {
	generics := make([]string, 0, len(ent.Generics))
	for _, g := range sortedGenerics(ent.Generics) {
		ctx.Scope.CheckedName(g.Name, genericOwner(g), false)
		text, err := ctx.generic(g, g.Default)
		if err != nil {
			return "", err
		}
		generics = append(generics, text)
	}
	ports := make([]string, 0, len(ent.Ports))
	for _, p := range sortedPorts(ent.Ports) {
		ctx.Scope.CheckedName(p.Name, portOwner(p), false)
		text, err := ctx.port(p)
		if err != nil {
			return "", err
		}
		ports = append(ports, text)
	}
	var doc []string
	if ent.Doc != "" {
		for _, line := range strings.Split(strings.TrimRight(ent.Doc, "\n"), "\n") {
			doc = append(doc, strings.TrimRight("-- "+line, " "))
		}
	}
	return s.Renderer.Render("entity", map[string]any{
		"Name":     name,
		"Doc":      doc,
		"Generics": generics,
		"Ports":    ports,
	})
}

// interfaceName returns the name of a port or generic, which may belong to an
// entity rendered earlier in the run.
func (c *Context) interfaceName(owner any, fallback string) string {
	if n, ok := c.Scope.NameOf(owner); ok {
		return n
	}
	return Sanitize(fallback)
}

func (c *Context) port(p *ir.Port) (string, error) {
	t, err := c.Type(p.Type, false)
	if err != nil {
		return "", fmt.Errorf("port %s: %w", p.Name, err)
	}
	return fmt.Sprintf("%s : %s %s", c.interfaceName(portOwner(p), p.Name), direction(p.Direction), t), nil
}

func (c *Context) generic(g *ir.Generic, def *ir.Value) (string, error) {
	t, err := c.Type(g.Type, false)
	if err != nil {
		return "", fmt.Errorf("generic %s: %w", g.Name, err)
	}
	text := fmt.Sprintf("%s : %s", c.interfaceName(genericOwner(g), g.Name), t)
	if def == nil {
		return text, nil
	}
	suffix, err := c.defaultValue(g.Name, g.Type, def)
	if err != nil {
		return "", err
	}
	return text + suffix, nil
}

func (s *Serializer) architecture(ctx *Context, st *State, arch *ir.Architecture, entityName string) (string, error) {
	bound := make(map[*ir.Signal]bool)
	if ent := arch.Entity; ent != nil {
		for _, p := range ent.Ports {
			if p.Signal != nil {
				bound[p.Signal] = true
			}
		}
		for _, g := range ent.Generics {
			if g.Signal != nil {
				bound[g.Signal] = true
			}
		}
	}

	signals := append([]*ir.Signal(nil), arch.Signals...)
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Name != signals[j].Name {
			return signals[i].Name < signals[j].Name
		}
		return signals[i].ID < signals[j].ID
	})

	declaredTypes := make(map[string]bool)
	var extraTypes, variables []string
	for _, sig := range signals {
		if sig.Hidden || bound[sig] {
			continue
		}
		for _, t := range typeDeps(sig.Type) {
			if declaredTypes[t.Key()] {
				continue
			}
			declaredTypes[t.Key()] = true
			decl, err := ctx.Type(t, true)
			if err != nil {
				return "", fmt.Errorf("signal %s: %w", sig.Name, err)
			}
			extraTypes = append(extraTypes, decl)
		}
		ctx.Name(sig)
		decl, err := ctx.Declaration(sig)
		if err != nil {
			return "", err
		}
		variables = append(variables, decl)
	}

	procs := append([]*ir.Process(nil), arch.Processes...)
	sort.SliceStable(procs, func(i, j int) bool {
		if procs[i].Name != procs[j].Name {
			return procs[i].Name < procs[j].Name
		}
		return ir.MaxStatementID(procs[i].Statements) < ir.MaxStatementID(procs[j].Statements)
	})
	processes := make([]string, 0, len(procs))
	for _, p := range procs {
		text, err := ctx.Process(p)
		if err != nil {
			return "", fmt.Errorf("process %s: %w", p.Name, err)
		}
		processes = append(processes, text)
	}

	components, err := s.components(ctx, st, arch.Components)
	if err != nil {
		return "", err
	}

	insts := append([]*ir.ComponentInstance(nil), arch.Instances...)
	sort.SliceStable(insts, func(i, j int) bool { return insts[i].Name < insts[j].Name })
	instances := make([]string, 0, len(insts))
	for _, inst := range insts {
		text, err := s.instance(ctx, st, inst)
		if err != nil {
			return "", err
		}
		instances = append(instances, text)
	}

	name := arch.Name
	if name == "" {
		name = s.ArchName
	}
	if name == "" {
		name = "rtl"
	}
	return s.Renderer.Render("architecture", map[string]any{
		"Name":               Sanitize(name),
		"EntityName":         entityName,
		"ExtraTypes":         extraTypes,
		"Variables":          variables,
		"Processes":          processes,
		"Components":         components,
		"ComponentInstances": instances,
	})
}

func (s *Serializer) componentName(st *State, ent *ir.Entity) string {
	if n, ok := st.Dedup.EntityName(ent); ok {
		return n
	}
	if n, ok := st.Scope.NameOf(ent); ok {
		return n
	}
	return Sanitize(ent.Name)
}

func (s *Serializer) components(ctx *Context, st *State, ents []*ir.Entity) ([]string, error) {
	sorted := append([]*ir.Entity(nil), ents...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	seen := make(map[string]bool)
	var out []string
	for _, ent := range sorted {
		name := s.componentName(st, ent)
		if seen[name] {
			continue
		}
		seen[name] = true
		var generics, ports []string
		for _, g := range sortedGenerics(ent.Generics) {
			text, err := ctx.generic(g, g.Default)
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", name, err)
			}
			generics = append(generics, text)
		}
		for _, p := range sortedPorts(ent.Ports) {
			text, err := ctx.port(p)
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", name, err)
			}
			ports = append(ports, text)
		}
		text, err := s.Renderer.Render("component", map[string]any{
			"Name":     name,
			"Generics": generics,
			"Ports":    ports,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

func (s *Serializer) instance(ctx *Context, st *State, inst *ir.ComponentInstance) (string, error) {
	if inst.Entity == nil || len(inst.PortMaps) == 0 {
		return "", errorf(IncompleteComponentInstance, inst.Name, "instance has no port connections")
	}
	name := ctx.Scope.CheckedName(inst.Name, inst, false)

	pms := append([]ir.PortMap(nil), inst.PortMaps...)
	sort.SliceStable(pms, func(i, j int) bool { return pms[i].Port.Name < pms[j].Port.Name })
	portMaps := make([]string, 0, len(pms))
	for _, pm := range pms {
		if pm.Signal == nil || !ir.TypesEqual(pm.Port.Type, pm.Signal.Type) {
			got := "<unconnected>"
			if pm.Signal != nil {
				got = ir.Describe(pm.Signal.Type)
			}
			return "", errorf(TypeMismatch, name+"."+pm.Port.Name, "port of %s mapped to %s",
				ir.Describe(pm.Port.Type), got)
		}
		sig, err := ctx.Expr(pm.Signal)
		if err != nil {
			return "", err
		}
		portMaps = append(portMaps, ctx.interfaceName(portOwner(pm.Port), pm.Port.Name)+" => "+sig)
	}

	gms := append([]ir.GenericMap(nil), inst.GenericMaps...)
	sort.SliceStable(gms, func(i, j int) bool { return gms[i].Generic.Name < gms[j].Generic.Name })
	genericMaps := make([]string, 0, len(gms))
	for _, gm := range gms {
		if gm.Value == nil {
			continue
		}
		if !ir.TypesEqual(gm.Generic.Type, gm.Value.ExprType()) {
			return "", errorf(TypeMismatch, name+"."+gm.Generic.Name, "generic of %s mapped to %s",
				ir.Describe(gm.Generic.Type), ir.Describe(gm.Value.ExprType()))
		}
		val, err := ctx.Expr(gm.Value)
		if err != nil {
			return "", err
		}
		genericMaps = append(genericMaps, ctx.interfaceName(genericOwner(gm.Generic), gm.Generic.Name)+" => "+val)
	}

	return s.Renderer.Render("component_instance", map[string]any{
		"InstanceName": name,
		"EntityName":   s.componentName(st, inst.Entity),
		"PortMaps":     portMaps,
		"GenericMaps":  genericMaps,
	})
}
