package compiler

// Compile runs the full pipeline over tinybf source text: lex, parse,
// bind variables to tape cells, generate instruction text. The returned
// symbol table reports where each variable lives on the tape.
//
// Errors are fail-fast: the first *SyntaxError, *LiteralOutOfRange, or
// *UndefinedVariable encountered aborts the pipeline.
func Compile(src string) (string, *SymbolTable, error) {
	tokens, err := Lex(src)
	if err != nil {
		return "", nil, err
	}

	stmts, err := Parse(tokens)
	if err != nil {
		return "", nil, err
	}

	syms := NewSymbolTable()
	if err := Bind(stmts, syms); err != nil {
		return "", nil, err
	}

	code, err := Generate(stmts, syms)
	if err != nil {
		return "", nil, err
	}

	return code, syms, nil
}
