package compiler

import "strconv"

// Parser consumes the token stream produced by Lex. One statement per
// line; blocks are delimited by '{' at the end of the opening line and
// '}' alone on its own line.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse turns tokens into the ordered statement sequence of the program.
func Parse(tokens []Token) ([]Stmt, error) {
	p := &Parser{tokens: tokens}
	stmts, err := p.parseStatements(false)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != EOF {
		return nil, syntaxErrorf(p.peek().Line, "unexpected %q after program end", p.peek().Lexeme)
	}
	return stmts, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the next token and fails unless it has type tt.
func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return Token{}, syntaxErrorf(tok.Line, "expected %s, got %q", what, tok.Lexeme)
	}
	return tok, nil
}

// endOfStatement consumes the statement terminator. EOF is accepted so
// the final line needs no trailing newline.
func (p *Parser) endOfStatement() error {
	tok := p.peek()
	switch tok.Type {
	case NEWLINE:
		p.advance()
		return nil
	case EOF:
		return nil
	default:
		return syntaxErrorf(tok.Line, "unexpected %q at end of statement", tok.Lexeme)
	}
}

// parseStatements collects statements until EOF, or until the closing
// '}' when inBlock is set.
func (p *Parser) parseStatements(inBlock bool) ([]Stmt, error) {
	stmts := []Stmt{}
	for {
		tok := p.peek()
		switch tok.Type {
		case EOF:
			if inBlock {
				return nil, syntaxErrorf(tok.Line, "missing closing '}'")
			}
			return stmts, nil
		case RBRACE:
			if !inBlock {
				return nil, syntaxErrorf(tok.Line, "unexpected '}'")
			}
			p.advance()
			if err := p.endOfStatement(); err != nil {
				return nil, err
			}
			return stmts, nil
		case NEWLINE:
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.advance()
	switch tok.Type {
	case LET:
		return p.parseLet(tok)
	case SET:
		return p.parseSet(tok)
	case ADD, SUB, MUL, DIV:
		return p.parseArith(tok)
	case PRINT_CHAR, PRINT_NUM, PRINT_DEC, INPUT_CHAR, INPUT_NUM:
		return p.parseIO(tok)
	case IF:
		return p.parseIf(tok)
	case FOR:
		return p.parseFor(tok)
	default:
		return nil, syntaxErrorf(tok.Line, "unknown statement starting with %q", tok.Lexeme)
	}
}

// parseLet handles  let num|char name = expr
func (p *Parser) parseLet(kw Token) (Stmt, error) {
	kindTok := p.advance()
	var kind Kind
	switch kindTok.Type {
	case NUM:
		kind = KindNum
	case CHAR:
		kind = KindChar
	default:
		return nil, syntaxErrorf(kindTok.Line, "expected 'num' or 'char' in let statement, got %q", kindTok.Lexeme)
	}
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfStatement(); err != nil {
		return nil, err
	}
	return &DeclareStmt{Name: name.Lexeme, Kind: kind, Init: init, Line: kw.Line}, nil
}

// parseSet handles  set name = expr
func (p *Parser) parseSet(kw Token) (Stmt, error) {
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfStatement(); err != nil {
		return nil, err
	}
	return &AssignStmt{Name: name.Lexeme, Expr: expr, Line: kw.Line}, nil
}

// parseArith handles  add|sub|mul|div name expr
func (p *Parser) parseArith(kw Token) (Stmt, error) {
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfStatement(); err != nil {
		return nil, err
	}
	switch kw.Type {
	case ADD:
		return &AddStmt{Name: name.Lexeme, Expr: expr, Line: kw.Line}, nil
	case SUB:
		return &SubStmt{Name: name.Lexeme, Expr: expr, Line: kw.Line}, nil
	case MUL:
		return &MulStmt{Name: name.Lexeme, Expr: expr, Line: kw.Line}, nil
	default:
		return &DivStmt{Name: name.Lexeme, Expr: expr, Line: kw.Line}, nil
	}
}

// parseIO handles the single-operand I/O statements.
func (p *Parser) parseIO(kw Token) (Stmt, error) {
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	if err := p.endOfStatement(); err != nil {
		return nil, err
	}
	switch kw.Type {
	case PRINT_CHAR:
		return &PrintCharStmt{Name: name.Lexeme, Line: kw.Line}, nil
	case PRINT_NUM:
		return &PrintNumStmt{Name: name.Lexeme, Line: kw.Line}, nil
	case PRINT_DEC:
		return &PrintDecStmt{Name: name.Lexeme, Line: kw.Line}, nil
	case INPUT_CHAR:
		return &InputCharStmt{Name: name.Lexeme, Line: kw.Line}, nil
	default:
		return &InputNumStmt{Name: name.Lexeme, Line: kw.Line}, nil
	}
}

// parseBlockOpen consumes the '{' NEWLINE pair that opens a block.
func (p *Parser) parseBlockOpen() error {
	if _, err := p.expect(LBRACE, "'{'"); err != nil {
		return err
	}
	tok := p.peek()
	if tok.Type != NEWLINE {
		return syntaxErrorf(tok.Line, "block must start on a new line after '{'")
	}
	p.advance()
	return nil
}

// parseIf handles  if cond { ... } [else { ... }]
func (p *Parser) parseIf(kw Token) (Stmt, error) {
	cond, err := p.expect(IDENTIFIER, "condition variable")
	if err != nil {
		return nil, err
	}
	if err := p.parseBlockOpen(); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseStatements(true)
	if err != nil {
		return nil, err
	}
	var elseBlock []Stmt
	if p.peek().Type == ELSE {
		p.advance()
		if err := p.parseBlockOpen(); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseStatements(true)
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{Cond: cond.Lexeme, Then: thenBlock, Else: elseBlock, Line: kw.Line}, nil
}

// parseFor handles  for name from expr to expr { ... }
func (p *Parser) parseFor(kw Token) (Stmt, error) {
	name, err := p.expect(IDENTIFIER, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(FROM, "'from'"); err != nil {
		return nil, err
	}
	start, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TO, "'to'"); err != nil {
		return nil, err
	}
	end, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.parseBlockOpen(); err != nil {
		return nil, err
	}
	body, err := p.parseStatements(true)
	if err != nil {
		return nil, err
	}
	return &ForStmt{Name: name.Lexeme, Start: start, End: end, Body: body, Line: kw.Line}, nil
}

// parseExpr handles the single-term expression grammar.
func (p *Parser) parseExpr() (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case NUMBER:
		v, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, syntaxErrorf(tok.Line, "invalid number %q", tok.Lexeme)
		}
		return &Literal{Value: byte(v)}, nil
	case CHARLIT:
		v, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, syntaxErrorf(tok.Line, "invalid character literal %q", tok.Lexeme)
		}
		return &CharLiteral{Value: byte(v)}, nil
	case IDENTIFIER:
		return &VarRef{Name: tok.Lexeme, Line: tok.Line}, nil
	default:
		return nil, syntaxErrorf(tok.Line, "invalid expression token %q", tok.Lexeme)
	}
}
