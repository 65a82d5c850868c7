package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved tape layout. Cell 0 is the home position every generated
// fragment parks the pointer on; cells 1 and 2 are scratch for
// arithmetic and branch lowering. User variables start at cell 3.
const (
	CellHome     = 0
	CellScratchA = 1
	CellScratchB = 2
	CellFirstVar = 3
)

// Symbol is one declared variable bound to a fixed tape cell.
type Symbol struct {
	Name string
	Kind Kind
	Cell int
}

// SymbolTable maps variable names to tape cells. Scope is global for
// the whole program; a name is bound once and never relocated.
type SymbolTable struct {
	vars     map[string]Symbol
	order    []string // declaration order, for deterministic dumps
	nextCell int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		vars:     make(map[string]Symbol),
		nextCell: CellFirstVar,
	}
}

// Allocate binds name to the next free cell, or returns the existing
// binding when name was already declared. Redeclaring with the other
// kind is not an error: num and char both denote one byte, so the kind
// label is simply updated in place.
func (s *SymbolTable) Allocate(name string, kind Kind) Symbol {
	if sym, ok := s.vars[name]; ok {
		sym.Kind = kind
		s.vars[name] = sym
		return sym
	}
	sym := Symbol{Name: name, Kind: kind, Cell: s.nextCell}
	s.nextCell++
	s.vars[name] = sym
	s.order = append(s.order, name)
	return sym
}

// Lookup returns the symbol and whether it was found.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := s.vars[name]
	return sym, ok
}

// NextFree returns the first cell past all bound variables. The code
// generator places its temporaries from here.
func (s *SymbolTable) NextFree() int {
	return s.nextCell
}

// Symbols returns all bindings in declaration order.
func (s *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.vars[name])
	}
	return out
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := s.vars[name]
		fmt.Fprintf(&sb, "%-20s  cell %d (%s)\n", name, sym.Cell, sym.Kind)
	}
	return sb.String()
}

// Bind walks the statement sequence in source order, allocating a cell
// for every declaration and checking every reference against the table.
// It fails fast with UndefinedVariable on the first unresolved name.
func Bind(stmts []Stmt, syms *SymbolTable) error {
	for _, stmt := range stmts {
		if err := bindStmt(stmt, syms); err != nil {
			return err
		}
	}
	return nil
}

func bindStmt(stmt Stmt, syms *SymbolTable) error {
	switch n := stmt.(type) {
	case *DeclareStmt:
		// The name is bound before the initializer is resolved, so
		// "let num a = a" is legal and reads the fresh zero cell.
		syms.Allocate(n.Name, n.Kind)
		return bindExpr(n.Init, syms)
	case *AssignStmt:
		if err := bindExpr(n.Expr, syms); err != nil {
			return err
		}
		return requireVar(n.Name, n.Line, syms)
	case *AddStmt:
		if err := bindExpr(n.Expr, syms); err != nil {
			return err
		}
		return requireVar(n.Name, n.Line, syms)
	case *SubStmt:
		if err := bindExpr(n.Expr, syms); err != nil {
			return err
		}
		return requireVar(n.Name, n.Line, syms)
	case *MulStmt:
		if err := bindExpr(n.Expr, syms); err != nil {
			return err
		}
		return requireVar(n.Name, n.Line, syms)
	case *DivStmt:
		if err := bindExpr(n.Expr, syms); err != nil {
			return err
		}
		return requireVar(n.Name, n.Line, syms)
	case *PrintCharStmt:
		return requireVar(n.Name, n.Line, syms)
	case *PrintNumStmt:
		return requireVar(n.Name, n.Line, syms)
	case *PrintDecStmt:
		return requireVar(n.Name, n.Line, syms)
	case *InputCharStmt:
		return requireVar(n.Name, n.Line, syms)
	case *InputNumStmt:
		return requireVar(n.Name, n.Line, syms)
	case *IfStmt:
		if err := requireVar(n.Cond, n.Line, syms); err != nil {
			return err
		}
		if err := Bind(n.Then, syms); err != nil {
			return err
		}
		return Bind(n.Else, syms)
	case *ForStmt:
		if err := requireVar(n.Name, n.Line, syms); err != nil {
			return err
		}
		if err := bindExpr(n.Start, syms); err != nil {
			return err
		}
		if err := bindExpr(n.End, syms); err != nil {
			return err
		}
		return Bind(n.Body, syms)
	default:
		return fmt.Errorf("unhandled statement type %T", stmt)
	}
}

func bindExpr(e Expr, syms *SymbolTable) error {
	if ref, ok := e.(*VarRef); ok {
		return requireVar(ref.Name, ref.Line, syms)
	}
	return nil
}

func requireVar(name string, line int, syms *SymbolTable) error {
	if _, ok := syms.Lookup(name); !ok {
		return &UndefinedVariable{Line: line, Name: name}
	}
	return nil
}
