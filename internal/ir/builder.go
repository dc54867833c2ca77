package ir

// Builder hands out IR nodes with stable creation IDs and keeps driver and
// endpoint lists consistent. It is the minimal construction surface used by
// the design loader, the passes and tests.
type Builder struct {
	nextID int
}

// NewBuilder returns a builder whose IDs start at zero.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) id() int {
	id := b.nextID
	b.nextID++
	return id
}

// Signal creates a named wire.
func (b *Builder) Signal(name string, t HdlType) *Signal {
	return &Signal{ID: b.id(), Name: name, Type: t}
}

// Param creates a signal standing for a generic.
func (b *Builder) Param(name string, t HdlType) *Signal {
	s := b.Signal(name, t)
	s.Kind = Param
	return s
}

// Op applies kind to operands and returns its hidden result signal.
func (b *Builder) Op(kind OpKind, result HdlType, operands ...Expr) *Signal {
	res := b.Signal(kind.String(), result)
	res.Hidden = true
	Connect(&Operator{Kind: kind, Operands: operands, Result: res})
	return res
}

// Call applies the named function to args.
func (b *Builder) Call(fn string, result HdlType, args ...Expr) *Signal {
	res := b.Signal(fn, result)
	res.Hidden = true
	Connect(&Operator{Kind: Call, Func: fn, Operands: args, Result: res})
	return res
}

// Not negates c, keeping its type.
func (b *Builder) Not(c *Signal) *Signal {
	return b.Op(Not, c.Type, c)
}

// Rising detects a rising edge of clk.
func (b *Builder) Rising(clk *Signal) *Signal {
	return b.Op(RisingEdge, Bool, clk)
}

// Eq compares two operands for equality.
func (b *Builder) Eq(l, r Expr) *Signal {
	return b.Op(Eq, Bool, l, r)
}

// Assign creates an assignment of src to dst under the guards cond.
func (b *Builder) Assign(dst *Signal, src Expr, cond ...*Signal) *Assignment {
	a := &Assignment{ID: b.id(), Dst: dst, Src: src, Cond: cond}
	ConnectAssignment(a)
	return a
}

// Reads records n as an endpoint of every signal in sigs.
func Reads(n Node, sigs ...*Signal) {
	for _, s := range sigs {
		if s != nil {
			s.Endpoints = append(s.Endpoints, n)
		}
	}
}

// Connect records op as the driver of its result and as an endpoint of
// every signal operand.
func Connect(op *Operator) {
	if op.Result != nil {
		op.Result.Drivers = append(op.Result.Drivers, op)
	}
	for _, operand := range op.Operands {
		if s, ok := operand.(*Signal); ok {
			s.Endpoints = append(s.Endpoints, op)
		}
	}
}

// ConnectAssignment records a as a driver of its target and as an endpoint of
// its source and guards.
func ConnectAssignment(a *Assignment) {
	if a.Dst != nil {
		a.Dst.Drivers = append(a.Dst.Drivers, a)
	}
	if s, ok := a.Src.(*Signal); ok {
		s.Endpoints = append(s.Endpoints, a)
	}
	for _, c := range a.Cond {
		c.Endpoints = append(c.Endpoints, a)
	}
}

// ConnectInstance records inst as a driver of the signals bound to its
// output ports and as an endpoint of those bound to its inputs.
func ConnectInstance(inst *ComponentInstance) {
	for _, pm := range inst.PortMaps {
		if pm.Signal == nil || pm.Port == nil {
			continue
		}
		if pm.Port.Direction != Input {
			pm.Signal.Drivers = append(pm.Signal.Drivers, inst)
		}
		if pm.Port.Direction != Output {
			pm.Signal.Endpoints = append(pm.Signal.Endpoints, inst)
		}
	}
	for _, gm := range inst.GenericMaps {
		if s, ok := gm.Value.(*Signal); ok {
			s.Endpoints = append(s.Endpoints, inst)
		}
	}
}
