package ir

// Design is the top-level hardware description consisting of one or more
// units. Units are ordered so that every unit appears after the units it
// instantiates.
type Design struct {
	Units []*Unit
	Top   *Unit
}

// SerializerMode selects how repeated instances of one unit class are emitted.
type SerializerMode int

const (
	// Always emits a fresh definition for every instance.
	Always SerializerMode = iota
	// Once emits the first instance of a class and reuses its name afterwards.
	Once
	// ParamsUniq emits one definition per distinct tuple of generic values.
	ParamsUniq
	// Exclude never emits a definition; the entity is supplied externally.
	Exclude
)

// Unit is one instantiated design unit: an entity plus its architecture.
type Unit struct {
	// Class identifies the unit's kind for deduplication purposes.
	Class        string
	Mode         SerializerMode
	Entity       *Entity
	Architecture *Architecture
}

// Entity models the interface of a hardware unit.
type Entity struct {
	Name     string
	Doc      string
	Ports    []*Port
	Generics []*Generic
}

// Port represents an entity IO port.
type Port struct {
	Name      string
	Direction PortDirection
	Type      HdlType
	// Signal is the architecture-side view of the port, if any.
	Signal *Signal
}

// PortDirection enumerates supported port directions.
type PortDirection int

const (
	Input PortDirection = iota
	Output
	InOut
)

// Generic is a compile-time parameter of an entity.
type Generic struct {
	Name    string
	Type    HdlType
	Default *Value
	// Value is the evaluated value of this particular instance.
	Value *Value
	// Signal lets expressions refer to the generic.
	Signal *Signal
}

// Effective returns the instance value, falling back to the default.
func (g *Generic) Effective() *Value {
	if g.Value != nil {
		return g.Value
	}
	return g.Default
}

// Architecture is the body implementing an entity.
type Architecture struct {
	Name       string
	Entity     *Entity
	Signals    []*Signal
	Processes  []*Process
	Components []*Entity
	Instances  []*ComponentInstance
}

// Process groups statements re-evaluated whenever a sensitivity signal changes.
type Process struct {
	Name        string
	Sensitivity []*Signal
	Statements  []Statement
}

func (*Process) isNode() {}

// ComponentInstance places another entity inside an architecture.
type ComponentInstance struct {
	Name        string
	Entity      *Entity
	PortMaps    []PortMap
	GenericMaps []GenericMap
}

func (*ComponentInstance) isNode()   {}
func (*ComponentInstance) isDriver() {}

// PortMap connects a port of the instantiated entity to a local signal.
type PortMap struct {
	Port   *Port
	Signal *Signal
}

// GenericMap binds a generic of the instantiated entity.
type GenericMap struct {
	Generic *Generic
	Value   Expr
}

// Signal captures a hardware wire, register, variable or parameter.
type Signal struct {
	ID   int
	Name string
	Type HdlType
	Kind SignalKind
	// Default is the initial value, either a *Value or another *Signal.
	Default Expr
	// Hidden signals are pure rewrites of another value; they inline their
	// origin expression instead of being referenced by name.
	Hidden    bool
	Drivers   []Driver
	Endpoints []Node
}

// SignalKind classifies how a signal is declared.
type SignalKind int

const (
	Wire SignalKind = iota
	Variable
	Param
)

func (*Signal) isExpr() {}

// ExprType implements Expr.
func (s *Signal) ExprType() HdlType { return s.Type }

// Origin returns the operator driving s when it is the only driver.
func (s *Signal) Origin() *Operator {
	if s == nil || len(s.Drivers) != 1 {
		return nil
	}
	op, _ := s.Drivers[0].(*Operator)
	return op
}

// Expr is implemented by everything that can appear as an operand: signals
// and literal values.
type Expr interface {
	ExprType() HdlType
	isExpr()
}

// Driver is implemented by nodes that can drive a signal.
type Driver interface {
	isDriver()
}

// Node is implemented by everything that can read a signal.
type Node interface {
	isNode()
}

// Operator is one application of an operator kind to its operands.
type Operator struct {
	Kind     OpKind
	Operands []Expr
	Result   *Signal
	// Func names the called function for Call operators.
	Func string
}

func (*Operator) isDriver() {}
func (*Operator) isNode()   {}
