package compiler

import "fmt"

//  Expression nodes

// Expr is implemented by every node that produces a value. The grammar
// restricts expressions to single terms (no operator expressions), which
// keeps generation deterministic and auditable.
type Expr interface {
	exprNode()
	String() string
}

// Literal is a compile-time byte constant.
//
//	let num x = 10
//	            ^^  Literal{Value: 10}
type Literal struct {
	Value byte
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return fmt.Sprintf("%d", l.Value) }

// CharLiteral is a quoted character constant, already resolved to its
// byte value by the lexer.
type CharLiteral struct {
	Value byte
}

func (*CharLiteral) exprNode()        {}
func (c *CharLiteral) String() string { return fmt.Sprintf("%q", rune(c.Value)) }

// VarRef is a read of a named variable.
type VarRef struct {
	Name string
	Line int
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

//  Statement nodes

// Stmt is implemented by every statement variant. Line is always the
// 1-based source line the statement started on.
type Stmt interface {
	stmtNode()
	String() string
}

// Kind is the declared label of a variable. Both kinds denote one byte
// on the tape; the label has no effect on generated code.
type Kind int

const (
	KindNum Kind = iota
	KindChar
)

func (k Kind) String() string {
	if k == KindChar {
		return "char"
	}
	return "num"
}

// DeclareStmt represents  let num|char name = expr
type DeclareStmt struct {
	Name string
	Kind Kind
	Init Expr
	Line int
}

func (*DeclareStmt) stmtNode() {}
func (d *DeclareStmt) String() string {
	return fmt.Sprintf("Declare(let %s %s = %s)", d.Kind, d.Name, d.Init)
}

// AssignStmt represents  set name = expr
type AssignStmt struct {
	Name string
	Expr Expr
	Line int
}

func (*AssignStmt) stmtNode() {}
func (a *AssignStmt) String() string {
	return fmt.Sprintf("Assign(set %s = %s)", a.Name, a.Expr)
}

// AddStmt represents  add name expr
type AddStmt struct {
	Name string
	Expr Expr
	Line int
}

func (*AddStmt) stmtNode()        {}
func (s *AddStmt) String() string { return fmt.Sprintf("Add(%s += %s)", s.Name, s.Expr) }

// SubStmt represents  sub name expr
type SubStmt struct {
	Name string
	Expr Expr
	Line int
}

func (*SubStmt) stmtNode()        {}
func (s *SubStmt) String() string { return fmt.Sprintf("Sub(%s -= %s)", s.Name, s.Expr) }

// MulStmt represents  mul name expr
type MulStmt struct {
	Name string
	Expr Expr
	Line int
}

func (*MulStmt) stmtNode()        {}
func (s *MulStmt) String() string { return fmt.Sprintf("Mul(%s *= %s)", s.Name, s.Expr) }

// DivStmt represents  div name expr
type DivStmt struct {
	Name string
	Expr Expr
	Line int
}

func (*DivStmt) stmtNode()        {}
func (s *DivStmt) String() string { return fmt.Sprintf("Div(%s /= %s)", s.Name, s.Expr) }

// PrintCharStmt represents  print_char name
type PrintCharStmt struct {
	Name string
	Line int
}

func (*PrintCharStmt) stmtNode()        {}
func (s *PrintCharStmt) String() string { return fmt.Sprintf("PrintChar(%s)", s.Name) }

// PrintNumStmt represents  print_num name  (emits the raw byte)
type PrintNumStmt struct {
	Name string
	Line int
}

func (*PrintNumStmt) stmtNode()        {}
func (s *PrintNumStmt) String() string { return fmt.Sprintf("PrintNum(%s)", s.Name) }

// PrintDecStmt represents  print_dec name  (emits decimal digits)
type PrintDecStmt struct {
	Name string
	Line int
}

func (*PrintDecStmt) stmtNode()        {}
func (s *PrintDecStmt) String() string { return fmt.Sprintf("PrintDec(%s)", s.Name) }

// InputCharStmt represents  input_char name
type InputCharStmt struct {
	Name string
	Line int
}

func (*InputCharStmt) stmtNode()        {}
func (s *InputCharStmt) String() string { return fmt.Sprintf("InputChar(%s)", s.Name) }

// InputNumStmt represents  input_num name
type InputNumStmt struct {
	Name string
	Line int
}

func (*InputNumStmt) stmtNode()        {}
func (s *InputNumStmt) String() string { return fmt.Sprintf("InputNum(%s)", s.Name) }

// IfStmt represents  if cond { then } [else { else }]
// The condition is a bare variable name tested for non-zero.
type IfStmt struct {
	Cond string
	Then []Stmt
	Else []Stmt // nil when no else block
	Line int
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.Else != nil {
		return fmt.Sprintf("If(%s, then=%d, else=%d)", i.Cond, len(i.Then), len(i.Else))
	}
	return fmt.Sprintf("If(%s, then=%d)", i.Cond, len(i.Then))
}

// ForStmt represents  for name from start to end { body }
type ForStmt struct {
	Name  string
	Start Expr
	End   Expr
	Body  []Stmt
	Line  int
}

func (*ForStmt) stmtNode() {}
func (f *ForStmt) String() string {
	return fmt.Sprintf("For(%s from %s to %s, body=%d)", f.Name, f.Start, f.End, len(f.Body))
}
