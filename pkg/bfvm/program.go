// Package bfvm executes byte-tape machine programs over the eight-symbol
// instruction alphabet > < + - . , [ ]. Programs are validated and given
// a precomputed jump table up front; execution is a deterministic
// one-instruction-at-a-time state machine suited to debugger stepping.
package bfvm

import "fmt"

// MalformedProgram reports an unmatched bracket found while building the
// jump table. Programs with unbalanced brackets are rejected before
// execution ever starts.
type MalformedProgram struct {
	Pos     int  // instruction index of the offending bracket
	Bracket byte // '[' or ']'
}

func (e *MalformedProgram) Error() string {
	return fmt.Sprintf("unmatched %q at instruction %d", e.Bracket, e.Pos)
}

// Program is an immutable instruction string plus the bidirectional jump
// table mapping each '[' to its matching ']' and back. The table gives
// O(1) branch resolution during execution.
type Program struct {
	Code  string
	jumps []int // index of the matching bracket; -1 for non-brackets
}

// Load validates code and builds its jump table. Characters outside the
// instruction alphabet are tolerated and execute as no-ops.
func Load(code string) (*Program, error) {
	jumps := make([]int, len(code))
	for i := range jumps {
		jumps[i] = -1
	}
	var stack []int
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				return nil, &MalformedProgram{Pos: i, Bracket: ']'}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open] = i
			jumps[i] = open
		}
	}
	if len(stack) > 0 {
		return nil, &MalformedProgram{Pos: stack[len(stack)-1], Bracket: '['}
	}
	return &Program{Code: code, jumps: jumps}, nil
}

// Len returns the number of instructions. pc == Len() is the terminal
// state.
func (p *Program) Len() int {
	return len(p.Code)
}

// Match returns the index of the bracket matching the one at i, or -1
// when i does not hold a bracket.
func (p *Program) Match(i int) int {
	if i < 0 || i >= len(p.jumps) {
		return -1
	}
	return p.jumps[i]
}
