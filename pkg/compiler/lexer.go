package compiler

import (
	"strconv"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"let":        LET,
	"num":        NUM,
	"char":       CHAR,
	"set":        SET,
	"add":        ADD,
	"sub":        SUB,
	"mul":        MUL,
	"div":        DIV,
	"print_char": PRINT_CHAR,
	"print_num":  PRINT_NUM,
	"print_dec":  PRINT_DEC,
	"input_char": INPUT_CHAR,
	"input_num":  INPUT_NUM,
	"if":         IF,
	"else":       ELSE,
	"for":        FOR,
	"from":       FROM,
	"to":         TO,
}

// Lexer holds all mutable state for a single scanning pass over src.
// The language is line-oriented, so line breaks are significant and are
// emitted as NEWLINE tokens; runs of blank or comment-only lines collapse
// into a single NEWLINE.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

// skipSpace discards spaces and tabs but never newlines.
func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r != ' ' && r != '\t' && r != '\r' {
			break
		}
		l.advance()
	}
}

// skipLineComment discards everything from the '#' to end-of-line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanNumber collects a decimal integer literal and range-checks it.
// Values outside [0,255] are a compile-time error, never a runtime clamp.
func (l *Lexer) scanNumber() (Token, error) {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	value, err := strconv.Atoi(lexeme)
	if err != nil || value < 0 || value > 255 {
		if err != nil {
			return Token{}, syntaxErrorf(line, "invalid number %q", lexeme)
		}
		return Token{}, &LiteralOutOfRange{Line: line, Value: value}
	}
	return Token{Type: NUMBER, Lexeme: lexeme, Line: line}, nil
}

// scanChar collects a character literal 'c'. Escapes follow the usual
// set: \0 \n \r \t \\ \' \". The token Lexeme carries the decimal byte
// value so the parser never re-interprets escapes.
func (l *Lexer) scanChar() (Token, error) {
	line := l.line
	l.advance() // consume opening '

	r := l.peek()
	var val rune

	if r == '\'' {
		return Token{}, syntaxErrorf(line, "empty character literal")
	}
	if r == '\n' || r == 0 {
		return Token{}, syntaxErrorf(line, "unterminated character literal")
	}

	if r == '\\' {
		l.advance() // consume backslash
		switch next := l.peek(); next {
		case 'n':
			val = '\n'
		case 'r':
			val = '\r'
		case 't':
			val = '\t'
		case '0':
			val = 0
		case '\\':
			val = '\\'
		case '\'':
			val = '\''
		case '"':
			val = '"'
		default:
			return Token{}, syntaxErrorf(line, "unknown escape sequence \\%c", next)
		}
		l.advance()
	} else {
		val = r
		l.advance()
	}

	if l.peek() != '\'' {
		return Token{}, syntaxErrorf(line, "unterminated character literal")
	}
	l.advance() // consume closing '

	return Token{Type: CHARLIT, Lexeme: strconv.Itoa(int(val)), Line: line}, nil
}

// nextToken skips insignificant whitespace/comments and returns the next
// Token. Newlines are significant and returned as NEWLINE tokens.
func (l *Lexer) nextToken() (Token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Lexeme: "", Line: l.line}, nil
	}

	ch := l.peek()
	line := l.line

	if ch == '#' {
		l.skipLineComment()
		return l.nextToken()
	}
	if ch == '\n' {
		l.advance()
		return Token{Type: NEWLINE, Lexeme: "\\n", Line: line}, nil
	}

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent(), nil
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}
	if ch == '\'' {
		return l.scanChar()
	}

	l.advance()
	switch ch {
	case '=':
		return Token{ASSIGN, "=", line}, nil
	case '{':
		return Token{LBRACE, "{", line}, nil
	case '}':
		return Token{RBRACE, "}", line}, nil
	default:
		return Token{}, syntaxErrorf(line, "unexpected character %q", ch)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Consecutive NEWLINE tokens are collapsed so blank and comment-only
// lines never reach the parser.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		if tok.Type == NEWLINE {
			if len(tokens) == 0 || tokens[len(tokens)-1].Type == NEWLINE {
				continue
			}
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
