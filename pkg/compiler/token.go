package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input
	NEWLINE                  // statement separator

	// Literals
	IDENTIFIER // variable name
	NUMBER     // decimal integer literal
	CHARLIT    // character literal 'c' (Lexeme holds the decimal byte value)

	// Keywords
	LET        // "let"
	NUM        // "num"
	CHAR       // "char"
	SET        // "set"
	ADD        // "add"
	SUB        // "sub"
	MUL        // "mul"
	DIV        // "div"
	PRINT_CHAR // "print_char"
	PRINT_NUM  // "print_num"
	PRINT_DEC  // "print_dec"
	INPUT_CHAR // "input_char"
	INPUT_NUM  // "input_num"
	IF         // "if"
	ELSE       // "else"
	FOR        // "for"
	FROM       // "from"
	TO         // "to"

	// Punctuation
	ASSIGN // =
	LBRACE // {
	RBRACE // }
)

var tokenNames = [...]string{
	EOF:        "EOF",
	NEWLINE:    "NEWLINE",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	CHARLIT:    "CHARLIT",
	LET:        "LET",
	NUM:        "NUM",
	CHAR:       "CHAR",
	SET:        "SET",
	ADD:        "ADD",
	SUB:        "SUB",
	MUL:        "MUL",
	DIV:        "DIV",
	PRINT_CHAR: "PRINT_CHAR",
	PRINT_NUM:  "PRINT_NUM",
	PRINT_DEC:  "PRINT_DEC",
	INPUT_CHAR: "INPUT_CHAR",
	INPUT_NUM:  "INPUT_NUM",
	IF:         "IF",
	ELSE:       "ELSE",
	FOR:        "FOR",
	FROM:       "FROM",
	TO:         "TO",
	ASSIGN:     "ASSIGN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
