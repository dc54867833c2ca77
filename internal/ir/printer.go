package ir

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Dump writes a simple human-readable representation of the design.
func Dump(design *Design, w io.Writer) {
	if design == nil {
		fmt.Fprintln(w, "<nil design>")
		return
	}
	for _, unit := range design.Units {
		if unit == nil || unit.Entity == nil {
			continue
		}
		fmt.Fprintf(w, "unit %s class=%s mode=%s\n", unit.Entity.Name, unit.Class, modeName(unit.Mode))
		dumpGenerics(unit.Entity, w)
		dumpPorts(unit.Entity, w)
		if arch := unit.Architecture; arch != nil {
			dumpSignals(arch, w)
			dumpProcesses(arch, w)
			dumpInstances(arch, w)
		}
		fmt.Fprintln(w)
	}
}

func dumpGenerics(ent *Entity, w io.Writer) {
	if len(ent.Generics) == 0 {
		return
	}
	fmt.Fprintln(w, "  generics:")
	for _, g := range ent.Generics {
		fmt.Fprintf(w, "    %-8s %s = %s\n", g.Name, Describe(g.Type), g.Effective())
	}
}

func dumpPorts(ent *Entity, w io.Writer) {
	if len(ent.Ports) == 0 {
		return
	}
	fmt.Fprintln(w, "  ports:")
	for _, port := range ent.Ports {
		fmt.Fprintf(w, "    %s %s %s\n",
			portDirection(port.Direction),
			port.Name,
			Describe(port.Type),
		)
	}
}

func dumpSignals(arch *Architecture, w io.Writer) {
	if len(arch.Signals) == 0 {
		return
	}
	fmt.Fprintln(w, "  signals:")
	sigs := append([]*Signal(nil), arch.Signals...)
	sort.SliceStable(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	for _, sig := range sigs {
		value := ""
		if sig.Default != nil {
			value = " = " + exprLabel(sig.Default)
		}
		fmt.Fprintf(w, "    %-8s %-5s %s%s\n",
			sig.Name,
			signalKind(sig.Kind),
			Describe(sig.Type),
			value,
		)
	}
}

func dumpProcesses(arch *Architecture, w io.Writer) {
	for idx, proc := range arch.Processes {
		sens := make([]string, 0, len(proc.Sensitivity))
		for _, s := range proc.Sensitivity {
			sens = append(sens, s.Name)
		}
		fmt.Fprintf(w, "  process %d %s (%s)\n", idx, proc.Name, strings.Join(sens, ", "))
		dumpStatements(proc.Statements, w, 2)
	}
}

func dumpInstances(arch *Architecture, w io.Writer) {
	for _, inst := range arch.Instances {
		conns := make([]string, 0, len(inst.PortMaps))
		for _, pm := range inst.PortMaps {
			conns = append(conns, pm.Port.Name+"=>"+pm.Signal.Name)
		}
		fmt.Fprintf(w, "  instance %s of %s (%s)\n", inst.Name, inst.Entity.Name, strings.Join(conns, ", "))
	}
}

func dumpStatements(stmts []Statement, w io.Writer, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, st := range stmts {
		switch s := st.(type) {
		case *Assignment:
			guard := ""
			if len(s.Cond) > 0 {
				guard = " if " + condLabel(s.Cond)
			}
			fmt.Fprintf(w, "%s%s := %s%s\n", pad, s.Dst.Name, exprLabel(s.Src), guard)
		case *IfContainer:
			fmt.Fprintf(w, "%sif %s\n", pad, condLabel(s.Cond))
			dumpStatements(s.IfTrue, w, depth+1)
			for _, elif := range s.ElIfs {
				fmt.Fprintf(w, "%selif %s\n", pad, condLabel(elif.Cond))
				dumpStatements(elif.Statements, w, depth+1)
			}
			if len(s.IfFalse) > 0 {
				fmt.Fprintf(w, "%selse\n", pad)
				dumpStatements(s.IfFalse, w, depth+1)
			}
		case *SwitchContainer:
			fmt.Fprintf(w, "%sswitch %s\n", pad, exprLabel(s.SwitchOn))
			for _, c := range s.Cases {
				if c.Key == nil {
					fmt.Fprintf(w, "%s  default\n", pad)
				} else {
					fmt.Fprintf(w, "%s  case %s\n", pad, c.Key)
				}
				dumpStatements(c.Statements, w, depth+2)
			}
		case *WhileContainer:
			fmt.Fprintf(w, "%swhile %s\n", pad, exprLabel(s.Cond))
			dumpStatements(s.Body, w, depth+1)
		case *WaitStm:
			if s.Timed {
				fmt.Fprintf(w, "%swait %dns\n", pad, s.Ns)
			} else {
				fmt.Fprintf(w, "%swait\n", pad)
			}
		default:
			fmt.Fprintf(w, "%s<unknown statement %T>\n", pad, st)
		}
	}
}

func condLabel(conds []*Signal) string {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, exprLabel(c))
	}
	return strings.Join(parts, " && ")
}

func exprLabel(e Expr) string {
	switch e := e.(type) {
	case *Value:
		return e.String()
	case *Signal:
		if op := e.Origin(); op != nil && e.Hidden {
			args := make([]string, 0, len(op.Operands))
			for _, o := range op.Operands {
				args = append(args, exprLabel(o))
			}
			name := op.Kind.String()
			if op.Kind == Call {
				name = op.Func
			}
			return name + "(" + strings.Join(args, ", ") + ")"
		}
		return e.Name
	default:
		return "?"
	}
}

func portDirection(dir PortDirection) string {
	switch dir {
	case Input:
		return "in "
	case Output:
		return "out"
	case InOut:
		return "io "
	default:
		return "?"
	}
}

func signalKind(k SignalKind) string {
	switch k {
	case Wire:
		return "wire"
	case Variable:
		return "var"
	case Param:
		return "param"
	default:
		return "?"
	}
}

func modeName(m SerializerMode) string {
	switch m {
	case Always:
		return "always"
	case Once:
		return "once"
	case ParamsUniq:
		return "params_uniq"
	case Exclude:
		return "exclude"
	default:
		return "?"
	}
}
