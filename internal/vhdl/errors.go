package vhdl

import "fmt"

// ErrorKind classifies why a unit could not be serialized.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota + 1
	UnsupportedConstruct
	InvalidLiteral
	UnusedSignalDeclared
	IncompleteComponentInstance
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case UnsupportedConstruct:
		return "unsupported construct"
	case InvalidLiteral:
		return "invalid literal"
	case UnusedSignalDeclared:
		return "unused signal declared"
	case IncompleteComponentInstance:
		return "incomplete component instance"
	default:
		return "unknown error"
	}
}

// Error is returned by every serializer in this package. Object names the
// offending signal, operator, type or unit.
type Error struct {
	Kind   ErrorKind
	Object string
	Msg    string
}

func (e *Error) Error() string {
	switch {
	case e.Object == "" && e.Msg == "":
		return "vhdl: " + e.Kind.String()
	case e.Object == "":
		return fmt.Sprintf("vhdl: %s: %s", e.Kind, e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("vhdl: %s: %s", e.Kind, e.Object)
	}
	return fmt.Sprintf("vhdl: %s: %s: %s", e.Kind, e.Object, e.Msg)
}

// Is makes every error of a kind match that kind's sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Object == "" && t.Msg == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrTypeMismatch                = &Error{Kind: TypeMismatch}
	ErrUnsupportedConstruct        = &Error{Kind: UnsupportedConstruct}
	ErrInvalidLiteral              = &Error{Kind: InvalidLiteral}
	ErrUnusedSignalDeclared        = &Error{Kind: UnusedSignalDeclared}
	ErrIncompleteComponentInstance = &Error{Kind: IncompleteComponentInstance}
)

func errorf(kind ErrorKind, object, format string, args ...any) *Error {
	return &Error{Kind: kind, Object: object, Msg: fmt.Sprintf(format, args...)}
}
