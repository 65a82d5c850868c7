package compiler

import (
	"errors"
	"testing"
)

func parseSource(t *testing.T, src string) []Stmt {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	stmts, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return stmts
}

func TestParseDeclarations(t *testing.T) {
	stmts := parseSource(t, "let num x = 5\nlet char c = 'A'")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}

	d0, ok := stmts[0].(*DeclareStmt)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *DeclareStmt", stmts[0])
	}
	if d0.Name != "x" || d0.Kind != KindNum {
		t.Fatalf("got %v, want let num x", d0)
	}
	if lit, ok := d0.Init.(*Literal); !ok || lit.Value != 5 {
		t.Fatalf("init = %v, want literal 5", d0.Init)
	}

	d1 := stmts[1].(*DeclareStmt)
	if d1.Kind != KindChar {
		t.Fatalf("got kind %v, want char", d1.Kind)
	}
	if lit, ok := d1.Init.(*CharLiteral); !ok || lit.Value != 'A' {
		t.Fatalf("init = %v, want char literal 'A'", d1.Init)
	}
}

func TestParseArithmeticAndIO(t *testing.T) {
	src := "add x 3\nsub x y\nmul x 2\ndiv x 10\nprint_char x\nprint_dec x\ninput_num x"
	stmts := parseSource(t, src)
	wantTypes := []Stmt{
		&AddStmt{}, &SubStmt{}, &MulStmt{}, &DivStmt{},
		&PrintCharStmt{}, &PrintDecStmt{}, &InputNumStmt{},
	}
	if len(stmts) != len(wantTypes) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(wantTypes))
	}
	for i := range stmts {
		if got, want := typeName(stmts[i]), typeName(wantTypes[i]); got != want {
			t.Errorf("stmts[%d] is %s, want %s", i, got, want)
		}
	}

	sub := stmts[1].(*SubStmt)
	if ref, ok := sub.Expr.(*VarRef); !ok || ref.Name != "y" {
		t.Fatalf("sub operand = %v, want variable y", sub.Expr)
	}
}

func typeName(s Stmt) string {
	switch s.(type) {
	case *AddStmt:
		return "add"
	case *SubStmt:
		return "sub"
	case *MulStmt:
		return "mul"
	case *DivStmt:
		return "div"
	case *PrintCharStmt:
		return "print_char"
	case *PrintDecStmt:
		return "print_dec"
	case *InputNumStmt:
		return "input_num"
	default:
		return "other"
	}
}

func TestParseIfElse(t *testing.T) {
	src := `if flag {
set x = 1
} else {
set x = 2
}`
	stmts := parseSource(t, src)
	ifStmt, ok := stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("got %T, want *IfStmt", stmts[0])
	}
	if ifStmt.Cond != "flag" {
		t.Fatalf("cond = %q, want flag", ifStmt.Cond)
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Fatalf("then=%d else=%d, want 1 and 1", len(ifStmt.Then), len(ifStmt.Else))
	}
}

func TestParseIfWithoutElse(t *testing.T) {
	stmts := parseSource(t, "if flag {\nset x = 1\n}")
	ifStmt := stmts[0].(*IfStmt)
	if ifStmt.Else != nil {
		t.Fatalf("else = %v, want nil", ifStmt.Else)
	}
}

func TestParseFor(t *testing.T) {
	stmts := parseSource(t, "for i from 0 to 9 {\nadd total i\n}")
	forStmt, ok := stmts[0].(*ForStmt)
	if !ok {
		t.Fatalf("got %T, want *ForStmt", stmts[0])
	}
	if forStmt.Name != "i" {
		t.Fatalf("loop variable = %q, want i", forStmt.Name)
	}
	if len(forStmt.Body) != 1 {
		t.Fatalf("body has %d statements, want 1", len(forStmt.Body))
	}
}

func TestParseNestedBlocks(t *testing.T) {
	src := `for i from 0 to 3 {
if i {
add x 1
}
}`
	stmts := parseSource(t, src)
	forStmt := stmts[0].(*ForStmt)
	if _, ok := forStmt.Body[0].(*IfStmt); !ok {
		t.Fatalf("nested statement is %T, want *IfStmt", forStmt.Body[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown statement", "frob x 1"},
		{"let without kind", "let x = 1"},
		{"missing assign", "set x 1"},
		{"missing closing brace", "if x {\nset x = 1"},
		{"stray closing brace", "}"},
		{"block not on new line", "if x { set y = 1 }"},
		{"for missing from", "for i to 9 {\n}"},
		{"trailing tokens", "set x = 1 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := Lex(tc.src)
			if err != nil {
				return // lex error is an acceptable rejection too
			}
			_, err = Parse(tokens)
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("Parse(%q) = %v, want SyntaxError", tc.src, err)
			}
		})
	}
}

func TestParseErrorCarriesLine(t *testing.T) {
	tokens, err := Lex("set x = 1\nset = 2")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	_, err = Parse(tokens)
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("got %v, want SyntaxError", err)
	}
	if syn.Line != 2 {
		t.Fatalf("error line = %d, want 2", syn.Line)
	}
}
