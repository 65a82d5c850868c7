package compiler

import "fmt"

// SyntaxError reports a malformed statement, block, or literal.
// Line is the 1-based source line the statement started on.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error on line %d: %s", e.Line, e.Msg)
}

func syntaxErrorf(line int, format string, args ...any) error {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// LiteralOutOfRange reports a numeric literal that does not fit in a byte.
type LiteralOutOfRange struct {
	Line  int
	Value int
}

func (e *LiteralOutOfRange) Error() string {
	return fmt.Sprintf("literal out of range 0-255 on line %d: %d", e.Line, e.Value)
}

// UndefinedVariable reports a reference to a name with no prior declaration.
type UndefinedVariable struct {
	Line int
	Name string
}

func (e *UndefinedVariable) Error() string {
	return fmt.Sprintf("undefined variable %q on line %d", e.Name, e.Line)
}
