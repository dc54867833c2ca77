// Package netlist reads design documents, the serialized form of an RTL
// design handed to the VHDL backend, and builds the IR from them.
package netlist

// Document is the root of a design file. Units are listed children first.
type Document struct {
	// Top names the top-level unit; empty selects the last unit.
	Top   string    `json:"top,omitempty"`
	Units []UnitDoc `json:"units"`
}

// UnitDoc describes one entity together with its architecture.
type UnitDoc struct {
	Name string `json:"name"`
	// Class groups units for deduplication; empty uses Name.
	Class string `json:"class,omitempty"`
	// Mode is one of always, once, params_uniq, exclude.
	Mode      string        `json:"mode,omitempty"`
	Doc       string        `json:"doc,omitempty"`
	Arch      string        `json:"arch,omitempty"`
	Generics  []GenericDoc  `json:"generics,omitempty"`
	Ports     []PortDoc     `json:"ports,omitempty"`
	Signals   []SignalDoc   `json:"signals,omitempty"`
	Ops       []OpDoc       `json:"ops,omitempty"`
	Processes []ProcessDoc  `json:"processes,omitempty"`
	Instances []InstanceDoc `json:"instances,omitempty"`
}

// TypeDoc is a tagged type descriptor; Kind selects which fields apply.
type TypeDoc struct {
	// Kind is one of bits, enum, array, bool, int.
	Kind          string   `json:"kind"`
	Width         uint     `json:"width,omitempty"`
	Sign          string   `json:"sign,omitempty"`
	Vector        bool     `json:"vector,omitempty"`
	Unconstrained bool     `json:"unconstrained,omitempty"`
	Name          string   `json:"name,omitempty"`
	Values        []string `json:"values,omitempty"`
	Elem          *TypeDoc `json:"elem,omitempty"`
	Size          int64    `json:"size,omitempty"`
}

// ValueDoc is a typed literal. Val and Vld are integers in Go literal
// syntax ("42", "0x2a", "0b101"); a missing Vld means fully valid.
type ValueDoc struct {
	Type    TypeDoc `json:"type"`
	Val     string  `json:"val,omitempty"`
	Vld     string  `json:"vld,omitempty"`
	Literal string  `json:"literal,omitempty"`
}

// OperandDoc is either a reference to a named signal or a literal.
type OperandDoc struct {
	Ref   string    `json:"ref,omitempty"`
	Value *ValueDoc `json:"value,omitempty"`
}

// GenericDoc is an entity generic with its default and instance value.
type GenericDoc struct {
	Name    string    `json:"name"`
	Type    TypeDoc   `json:"type"`
	Default *ValueDoc `json:"default,omitempty"`
	Value   *ValueDoc `json:"value,omitempty"`
}

// PortDoc is an entity port. Each port also declares an architecture
// signal of the same name.
type PortDoc struct {
	Name string `json:"name"`
	// Dir is one of in, out, inout.
	Dir  string  `json:"dir"`
	Type TypeDoc `json:"type"`
}

// SignalDoc declares an architecture signal.
type SignalDoc struct {
	Name string  `json:"name"`
	Type TypeDoc `json:"type"`
	// Kind is wire (default) or variable.
	Kind    string      `json:"kind,omitempty"`
	Default *OperandDoc `json:"default,omitempty"`
}

// OpDoc applies an operator. Its result is a hidden signal named Result
// that later operators and statements may reference.
type OpDoc struct {
	Result   string       `json:"result"`
	Kind     string       `json:"kind"`
	Func     string       `json:"func,omitempty"`
	Type     TypeDoc      `json:"type"`
	Operands []OperandDoc `json:"operands,omitempty"`
}

// ProcessDoc is a process with an optional explicit sensitivity list.
type ProcessDoc struct {
	Name        string         `json:"name"`
	Sensitivity []string       `json:"sensitivity,omitempty"`
	Statements  []StatementDoc `json:"statements,omitempty"`
}

// StatementDoc holds exactly one statement variant.
type StatementDoc struct {
	Assign *AssignDoc `json:"assign,omitempty"`
	If     *IfDoc     `json:"if,omitempty"`
	Switch *SwitchDoc `json:"switch,omitempty"`
	While  *WhileDoc  `json:"while,omitempty"`
	Wait   *WaitDoc   `json:"wait,omitempty"`
}

// AssignDoc drives Dst with Src under the conjunction of Cond.
type AssignDoc struct {
	Dst  string     `json:"dst"`
	Src  OperandDoc `json:"src"`
	Cond []string   `json:"cond,omitempty"`
}

// IfDoc is an if/elsif/else statement.
type IfDoc struct {
	Cond  []string       `json:"cond"`
	Then  []StatementDoc `json:"then,omitempty"`
	Elifs []ElifDoc      `json:"elifs,omitempty"`
	Else  []StatementDoc `json:"else,omitempty"`
}

// ElifDoc is one elsif branch.
type ElifDoc struct {
	Cond []string       `json:"cond"`
	Body []StatementDoc `json:"body,omitempty"`
}

// SwitchDoc is a case statement; a case without Key is the default.
type SwitchDoc struct {
	On    string    `json:"on"`
	Cases []CaseDoc `json:"cases,omitempty"`
}

// CaseDoc is one case branch.
type CaseDoc struct {
	Key  *ValueDoc      `json:"key,omitempty"`
	Body []StatementDoc `json:"body,omitempty"`
}

// WhileDoc loops while Cond holds.
type WhileDoc struct {
	Cond string         `json:"cond"`
	Body []StatementDoc `json:"body,omitempty"`
}

// WaitDoc suspends the process, forever when Ns is absent.
type WaitDoc struct {
	Ns *uint64 `json:"ns,omitempty"`
}

// InstanceDoc places a previously listed unit inside this one.
type InstanceDoc struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Ports    []PortMapDoc    `json:"ports,omitempty"`
	Generics []GenericMapDoc `json:"generics,omitempty"`
}

// PortMapDoc connects a port of the instantiated unit to a local signal.
type PortMapDoc struct {
	Port   string `json:"port"`
	Signal string `json:"signal"`
}

// GenericMapDoc binds a generic of the instantiated unit.
type GenericMapDoc struct {
	Generic string     `json:"generic"`
	Value   OperandDoc `json:"value"`
}
