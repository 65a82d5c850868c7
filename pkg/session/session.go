// Package session wraps one byte-machine VM in a debugger-style
// protocol: single stepping with snapshot history, breakpoints, and a
// hard ceiling on cumulative executed instructions. Sessions are
// independent; each serializes its own operations behind a mutex, so a
// hosting process may drive many sessions concurrently as long as it
// does not share one session between callers.
package session

import (
	"fmt"
	"sort"
	"sync"

	"tinybf/pkg/bfvm"
	"tinybf/pkg/compiler"
)

// Language tags accepted by New. LanguageMachine sessions take raw
// instruction text; LanguageTiny sessions compile their source first.
const (
	LanguageTiny    = "tinybf"
	LanguageMachine = "brainfuck"
)

// totalStepsProbeCap bounds the create-time probe run that measures a
// program's total step count for timeline display.
const totalStepsProbeCap = 10000

// StepLimitError is the capacity failure raised when a session exhausts
// its step ceiling. It is recoverable: Reset restores the budget.
type StepLimitError struct {
	Limit int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("program exceeded the allowed step count (%d)", e.Limit)
}

// InvalidBreakpoint reports a breakpoint index outside the program.
type InvalidBreakpoint struct {
	PC      int
	CodeLen int
}

func (e *InvalidBreakpoint) Error() string {
	return fmt.Sprintf("breakpoint %d outside program of length %d", e.PC, e.CodeLen)
}

// Config tunes a session. Zero values select the defaults.
type Config struct {
	TapeWindow   int // snapshot window radius; default bfvm.DefaultTapeWindow
	TapeLength   int // addressable cells; default bfvm.DefaultTapeLength
	MaxSteps     int // cumulative step ceiling; 0 means unbounded
	HistoryLimit int // snapshots retained; default 200
}

const defaultHistoryLimit = 200

func (c Config) withDefaults() Config {
	if c.TapeWindow <= 0 {
		c.TapeWindow = bfvm.DefaultTapeWindow
	}
	if c.TapeLength <= 0 {
		c.TapeLength = bfvm.DefaultTapeLength
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaultHistoryLimit
	}
	return c
}

// Session owns one VM plus its breakpoint set and bounded snapshot
// history. ID is assigned by the Store.
type Session struct {
	ID       string
	language string
	code     string // instruction text the VM runs
	source   string // original structured source, "" when none

	cfg   Config
	prog  *bfvm.Program
	input []byte

	mu            sync.Mutex
	vm            *bfvm.VM
	history       []bfvm.State
	breakpoints   map[int]struct{}
	hitBreakpoint *int

	totalSteps  int
	probeCapped bool // capped verdict of the create-time probe
	capped      bool // true once live execution exhausts the ceiling
}

// New compiles (for LanguageTiny) or loads (for LanguageMachine) the
// given source and returns a session parked at pc=0 with its initial
// snapshot in history. Compile-time failures abort creation; nothing is
// partially applied.
func New(code string, input []byte, language, source string, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()

	machine := code
	switch language {
	case LanguageTiny:
		compiled, _, err := compiler.Compile(code)
		if err != nil {
			return nil, err
		}
		machine = compiled
		source = code
	case LanguageMachine:
		// already instruction text
	default:
		return nil, fmt.Errorf("unknown language %q", language)
	}

	prog, err := bfvm.Load(machine)
	if err != nil {
		return nil, err
	}

	s := &Session{
		language:    language,
		code:        machine,
		source:      source,
		cfg:         cfg,
		prog:        prog,
		input:       append([]byte(nil), input...),
		breakpoints: make(map[int]struct{}),
	}
	s.totalSteps, s.probeCapped = probeTotalSteps(prog, s.input, cfg)
	s.capped = s.probeCapped
	s.rewind()
	return s, nil
}

// probeTotalSteps measures how many transitions the program takes on
// this input, capped so pathological programs cannot stall creation.
func probeTotalSteps(prog *bfvm.Program, input []byte, cfg Config) (int, bool) {
	m := bfvm.New(prog, input,
		bfvm.WithTapeLength(cfg.TapeLength),
		bfvm.WithTapeWindow(cfg.TapeWindow))
	for !m.Finished() {
		if m.Steps() >= totalStepsProbeCap {
			return totalStepsProbeCap, true
		}
		if _, err := m.Step(); err != nil {
			// Runtime-fatal programs surface their error during
			// stepping; the probe just stops counting.
			return m.Steps(), false
		}
	}
	return m.Steps(), false
}

// rewind replaces the VM with a fresh one and reseeds history with the
// initial snapshot. Callers hold the lock or own the session solely.
func (s *Session) rewind() {
	s.vm = bfvm.New(s.prog, s.input,
		bfvm.WithTapeLength(s.cfg.TapeLength),
		bfvm.WithTapeWindow(s.cfg.TapeWindow))
	s.history = nil
	s.hitBreakpoint = nil
	s.record(s.vm.InitialState())
}

// record appends st to history, evicting from the front once the
// configured capacity is exceeded. The newest snapshot is always kept.
func (s *Session) record(st bfvm.State) {
	s.history = append(s.history, st)
	if len(s.history) > s.cfg.HistoryLimit {
		s.history = append(s.history[:0:0], s.history[len(s.history)-s.cfg.HistoryLimit:]...)
	}
}

// Step executes up to count transitions, snapshotting after each, and
// returns the newly produced snapshots. It stops early on the terminal
// state or when the new pc lands on a breakpoint. Exhausting the step
// ceiling fails with *StepLimitError and permanently (until Reset) sets
// the capped flag; the last successfully executed snapshot stays the
// newest history entry.
func (s *Session) Step(count int) ([]bfvm.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step(count, false)
}

func (s *Session) step(count int, ignoreBreakpoints bool) ([]bfvm.State, error) {
	states := []bfvm.State{}
	if count <= 0 {
		return states, nil
	}
	s.hitBreakpoint = nil
	for i := 0; i < count; i++ {
		if s.vm.Done() {
			break
		}
		if s.cfg.MaxSteps > 0 && !s.vm.Finished() && s.vm.Steps() >= s.cfg.MaxSteps {
			s.capped = true
			return nil, &StepLimitError{Limit: s.cfg.MaxSteps}
		}
		st, err := s.vm.Step()
		if err != nil {
			return nil, err
		}
		s.record(st)
		states = append(states, st)
		if st.Command == nil {
			// Closing snapshot; the program is done.
			break
		}
		if _, ok := s.breakpoints[st.PC]; ok && !ignoreBreakpoints {
			pc := st.PC
			s.hitBreakpoint = &pc
			break
		}
	}
	return states, nil
}

// Run steps repeatedly until the program finishes, a breakpoint stops
// it (unless ignoreBreakpoints), limit transitions have elapsed
// (limit <= 0 means no limit), or the step ceiling is hit. Use
// HitBreakpoint to learn what stopped it.
func (s *Session) Run(limit int, ignoreBreakpoints bool) ([]bfvm.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := []bfvm.State{}
	executed := 0
	for limit <= 0 || executed < limit {
		stepStates, err := s.step(1, ignoreBreakpoints)
		if err != nil {
			return nil, err
		}
		if len(stepStates) == 0 {
			break
		}
		states = append(states, stepStates...)
		executed++
		if s.hitBreakpoint != nil {
			break
		}
	}
	return states, nil
}

// Reset discards the VM and history and rebuilds the initial snapshot
// from the compiled program. The breakpoint set is kept; the capped
// flag falls back to the create-time probe verdict.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capped = s.probeCapped
	s.rewind()
}

// AddBreakpoint registers pc; indices outside [0, len(program)) are
// rejected with *InvalidBreakpoint.
func (s *Session) AddBreakpoint(pc int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pc < 0 || pc >= s.prog.Len() {
		return &InvalidBreakpoint{PC: pc, CodeLen: s.prog.Len()}
	}
	s.breakpoints[pc] = struct{}{}
	return nil
}

// RemoveBreakpoint deletes pc from the set, reporting whether it was
// present.
func (s *Session) RemoveBreakpoint(pc int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.breakpoints[pc]; !ok {
		return false
	}
	delete(s.breakpoints, pc)
	return true
}

// ClearBreakpoints empties the breakpoint set.
func (s *Session) ClearBreakpoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakpoints = make(map[int]struct{})
}

// Breakpoints returns the set in ascending order.
func (s *Session) Breakpoints() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.breakpoints))
	for pc := range s.breakpoints {
		out = append(out, pc)
	}
	sort.Ints(out)
	return out
}

// HitBreakpoint returns the breakpoint that stopped the last Step/Run,
// or nil.
func (s *Session) HitBreakpoint() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hitBreakpoint == nil {
		return nil
	}
	pc := *s.hitBreakpoint
	return &pc
}

// ClearHitBreakpoint forgets the stop marker without stepping.
func (s *Session) ClearHitBreakpoint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hitBreakpoint = nil
}

// CurrentState returns the newest snapshot.
func (s *Session) CurrentState() bfvm.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[len(s.history)-1]
}

// History returns a copy of the retained snapshots, oldest first.
func (s *Session) History() []bfvm.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bfvm.State(nil), s.history...)
}

// Finished reports whether stepping is exhausted, including the closing
// snapshot.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Done()
}

// Language returns the session's language tag.
func (s *Session) Language() string { return s.language }

// Code returns the instruction text the VM executes.
func (s *Session) Code() string { return s.code }

// Source returns the original structured source, or "" when the session
// was created from raw instruction text without one.
func (s *Session) Source() string { return s.source }

// TotalSteps returns the probe-measured step count for the program.
func (s *Session) TotalSteps() int { return s.totalSteps }

// TotalStepsCapped reports whether the probe was cut short or live
// execution has exhausted the ceiling since the last Reset.
func (s *Session) TotalStepsCapped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capped
}
