package vhdl

import (
	"fmt"
	"strconv"
	"strings"

	"rtlgen/internal/ir"
)

// typeOwner keys a declared type per unit so that every architecture
// allocates its own type names.
type typeOwner struct {
	unit *ir.Entity
	key  string
}

type enumLiteral struct {
	unit *ir.Entity
	key  string
	idx  int
}

// Type renders t. With declaration set it returns the full type declaration,
// which only exists for enums and arrays.
func (c *Context) Type(t ir.HdlType, declaration bool) (string, error) {
	switch t := t.(type) {
	case *ir.Bits:
		if declaration {
			break
		}
		return bitsType(t), nil
	case *ir.Enum:
		return c.enumType(t, declaration)
	case *ir.Array:
		return c.arrayType(t, declaration)
	case *ir.Boolean:
		if !declaration {
			return "BOOLEAN", nil
		}
	case *ir.Integer:
		if !declaration {
			return "INTEGER", nil
		}
	case nil:
		return "", errorf(UnsupportedConstruct, "<untyped>", "missing type")
	default:
		return "", errorf(UnsupportedConstruct, t.Key(), "unknown type kind %T", t)
	}
	return "", errorf(UnsupportedConstruct, ir.Describe(t), "type has no declaration syntax")
}

func bitsType(t *ir.Bits) string {
	var name string
	switch t.Sign {
	case ir.Signed:
		name = "SIGNED"
	case ir.Unsigned:
		name = "UNSIGNED"
	default:
		if t.IsScalar() {
			return "STD_LOGIC"
		}
		name = "STD_LOGIC_VECTOR"
	}
	if t.Unconstrained {
		return name
	}
	return fmt.Sprintf("%s(%d DOWNTO 0)", name, t.Width-1)
}

func (c *Context) enumName(t *ir.Enum) string {
	return c.Scope.CheckedName(t.Name, typeOwner{c.unit, t.Key()}, false)
}

func (c *Context) enumLiteral(t *ir.Enum, idx int) string {
	return c.Scope.CheckedName(t.Values[idx], enumLiteral{c.unit, t.Key(), idx}, false)
}

func (c *Context) enumType(t *ir.Enum, declaration bool) (string, error) {
	name := c.enumName(t)
	if !declaration {
		return name, nil
	}
	if len(t.Values) == 0 {
		return "", errorf(UnsupportedConstruct, t.Name, "enum without literals")
	}
	lits := make([]string, len(t.Values))
	for i := range t.Values {
		lits[i] = c.enumLiteral(t, i)
	}
	return fmt.Sprintf("TYPE %s IS (%s)", name, strings.Join(lits, ", ")), nil
}

func (c *Context) arrayType(t *ir.Array, declaration bool) (string, error) {
	if t.Elem == nil {
		return "", errorf(UnsupportedConstruct, t.Key(), "array without element type")
	}
	name, err := c.arrayName(t)
	if err != nil {
		return "", err
	}
	if !declaration {
		return name, nil
	}
	if t.Size <= 0 {
		return "", errorf(UnsupportedConstruct, name, "array size is not statically known")
	}
	elem, err := c.Type(t.Elem, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TYPE %s IS ARRAY (%d DOWNTO 0) OF %s", name, t.Size-1, elem), nil
}

func (c *Context) arrayName(t *ir.Array) (string, error) {
	owner := typeOwner{c.unit, t.Key()}
	if n, ok := c.Scope.NameOf(owner); ok {
		return n, nil
	}
	elem, err := c.shortTypeName(t.Elem)
	if err != nil {
		return "", err
	}
	size := "x"
	if t.Size > 0 {
		size = strconv.Itoa(t.Size)
	}
	return c.Scope.CheckedName("arrT_"+elem+"_"+size, owner, false), nil
}

// shortTypeName is the element fragment of a synthetic array type name.
func (c *Context) shortTypeName(t ir.HdlType) (string, error) {
	switch t := t.(type) {
	case *ir.Bits:
		if t.IsScalar() {
			return "sl", nil
		}
		prefix := "slv"
		switch t.Sign {
		case ir.Signed:
			prefix = "s"
		case ir.Unsigned:
			prefix = "u"
		}
		if t.Unconstrained {
			return prefix, nil
		}
		return prefix + strconv.Itoa(t.Width), nil
	case *ir.Enum:
		return c.enumName(t), nil
	case *ir.Array:
		return c.arrayName(t)
	case *ir.Boolean:
		return "bool", nil
	case *ir.Integer:
		return "int", nil
	}
	return "", errorf(UnsupportedConstruct, ir.Describe(t), "type cannot be an array element")
}

// typeDeps returns the enum and array types t depends on, dependencies first,
// t itself included when it needs a declaration.
func typeDeps(t ir.HdlType) []ir.HdlType {
	switch t := t.(type) {
	case *ir.Enum:
		return []ir.HdlType{t}
	case *ir.Array:
		return append(typeDeps(t.Elem), t)
	}
	return nil
}
