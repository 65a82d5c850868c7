package bfvm

import (
	"fmt"
	"strings"
)

// DefaultTapeLength is the addressable cell range when none is
// configured. Most programs touch a handful of cells, so the tape is a
// sparse map rather than a preallocated array.
const DefaultTapeLength = 30000

// DefaultTapeWindow is how many cells either side of the pointer a
// snapshot carries.
const DefaultTapeWindow = 10

// PointerOutOfBounds is the fatal runtime error raised when the data
// pointer leaves the tape. The VM never clamps during execution; only
// display windows clamp, and those are a rendering concern.
type PointerOutOfBounds struct {
	Pointer int
}

func (e *PointerOutOfBounds) Error() string {
	return fmt.Sprintf("data pointer moved out of bounds (cell %d)", e.Pointer)
}

// State is an immutable capture of the machine at one instant. Field
// names are a wire contract shared with front ends and must stay
// bit-exact. Tape is a window of consecutive cell values beginning at
// absolute index TapeStart.
type State struct {
	Step       int     `json:"step"`
	PC         int     `json:"pc"`
	Command    *string `json:"command"` // instruction just executed; nil at start and at termination
	Pointer    int     `json:"pointer"`
	TapeStart  int     `json:"tape_start"`
	Tape       []int   `json:"tape"`
	Output     string  `json:"output"`
	CodeLength int     `json:"code_length"`
}

// VM is a byte-tape machine mid-execution. All arithmetic wraps modulo
// 256. Zero value is not usable; construct with New.
type VM struct {
	prog       *Program
	tape       map[int]byte
	pointer    int
	pc         int
	steps      int
	input      []byte
	inPos      int
	output     strings.Builder
	tapeLength int
	tapeWindow int

	finalEmitted bool
	fatal        error // sticky; set on PointerOutOfBounds
}

// Option adjusts VM construction.
type Option func(*VM)

// WithTapeLength bounds the addressable cell range.
func WithTapeLength(n int) Option {
	return func(m *VM) { m.tapeLength = n }
}

// WithTapeWindow sets the snapshot window radius around the pointer.
func WithTapeWindow(n int) Option {
	return func(m *VM) { m.tapeWindow = n }
}

// New constructs a machine at pc=0 over prog, consuming input bytes on
// ',' instructions. The input slice is copied.
func New(prog *Program, input []byte, opts ...Option) *VM {
	m := &VM{
		prog:       prog,
		tape:       make(map[int]byte),
		input:      append([]byte(nil), input...),
		tapeLength: DefaultTapeLength,
		tapeWindow: DefaultTapeWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Finished reports whether the machine reached the terminal pc.
func (m *VM) Finished() bool {
	return m.pc >= m.prog.Len()
}

// Done reports whether stepping is exhausted: the terminal pc has been
// reached and its closing snapshot already produced.
func (m *VM) Done() bool {
	return m.Finished() && m.finalEmitted
}

// Steps returns the number of instructions executed so far.
func (m *VM) Steps() int { return m.steps }

// PC returns the current program counter.
func (m *VM) PC() int { return m.pc }

// Pointer returns the current data pointer.
func (m *VM) Pointer() int { return m.pointer }

// Output returns everything written by '.' so far.
func (m *VM) Output() string { return m.output.String() }

// Cell returns the byte at absolute tape index i (0 when never written).
func (m *VM) Cell(i int) byte { return m.tape[i] }

// Step executes exactly one instruction transition and returns the
// resulting snapshot. When the program counter is already terminal, a
// single closing snapshot with a nil Command is produced; after that,
// Step must not be called again (guard with Done).
//
// A fatal error (pointer out of bounds) leaves the machine in an error
// state: the offending transition is not recorded and every further
// Step returns the same error.
func (m *VM) Step() (State, error) {
	if m.fatal != nil {
		return State{}, m.fatal
	}
	if m.Finished() {
		m.finalEmitted = true
		return m.snapshot(nil), nil
	}

	command := m.prog.Code[m.pc]
	if err := m.execute(command); err != nil {
		m.fatal = err
		return State{}, err
	}
	m.steps++
	cmd := string(command)
	return m.snapshot(&cmd), nil
}

// execute applies one instruction. Unknown characters are no-ops so
// annotated programs still run; every executed instruction, no-ops
// included, advances pc and counts as a step.
func (m *VM) execute(command byte) error {
	newPC := m.pc + 1
	switch command {
	case '>':
		m.pointer++
		if m.pointer >= m.tapeLength {
			return &PointerOutOfBounds{Pointer: m.pointer}
		}
	case '<':
		m.pointer--
		if m.pointer < 0 {
			return &PointerOutOfBounds{Pointer: m.pointer}
		}
	case '+':
		m.tape[m.pointer]++ // byte arithmetic wraps on its own
	case '-':
		m.tape[m.pointer]--
	case '.':
		m.output.WriteByte(m.tape[m.pointer])
	case ',':
		// Input exhaustion is never an error; the cell reads 0.
		if m.inPos < len(m.input) {
			m.tape[m.pointer] = m.input[m.inPos]
			m.inPos++
		} else {
			m.tape[m.pointer] = 0
		}
	case '[':
		if m.tape[m.pointer] == 0 {
			newPC = m.prog.Match(m.pc) + 1
		}
	case ']':
		if m.tape[m.pointer] != 0 {
			newPC = m.prog.Match(m.pc) + 1
		}
	}
	m.pc = newPC
	return nil
}

// InitialState is the snapshot of a machine that has not executed
// anything, used to seed session history.
func (m *VM) InitialState() State {
	return m.snapshot(nil)
}

func (m *VM) snapshot(command *string) State {
	start := m.pointer - m.tapeWindow
	if start < 0 {
		start = 0
	}
	end := m.pointer + m.tapeWindow + 1
	if end > m.tapeLength {
		end = m.tapeLength
	}
	window := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		window = append(window, int(m.tape[i]))
	}
	return State{
		Step:       m.steps,
		PC:         m.pc,
		Command:    command,
		Pointer:    m.pointer,
		TapeStart:  start,
		Tape:       window,
		Output:     m.output.String(),
		CodeLength: m.prog.Len(),
	}
}

// Run executes the program to completion at full speed and returns the
// output. When maxSteps > 0 and the budget is exhausted first, capped is
// true and the output produced so far is returned.
func Run(prog *Program, input []byte, maxSteps int, opts ...Option) (output string, capped bool, err error) {
	m := New(prog, input, opts...)
	for !m.Finished() {
		if maxSteps > 0 && m.steps >= maxSteps {
			return m.Output(), true, nil
		}
		if _, err := m.Step(); err != nil {
			return m.Output(), false, err
		}
	}
	return m.Output(), false, nil
}
