// Command console is an interactive stepping visualizer for one
// program: a small REPL over a debugger session with a styled tape and
// code window.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tinybf/pkg/bfvm"
	"tinybf/pkg/session"
)

const codeWindow = 16

var (
	pointerStyle = lipgloss.NewStyle().Reverse(true).Bold(true)
	instrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	ruleStyle    = lipgloss.NewStyle().Faint(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func main() {
	input := flag.String("input", "", "input string supplied to the program")
	raw := flag.Bool("brainfuck", false, "treat the source as raw instruction text")
	maxSteps := flag.Int("max-steps", 5_000_000, "step ceiling (0 means unlimited)")
	tapeWindow := flag.Int("tape-window", 10, "cells shown either side of the pointer")
	historyLimit := flag.Int("history-limit", 200, "snapshots kept in history")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: console [flags] <source file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read source: %v\n", err)
		os.Exit(1)
	}

	language := session.LanguageTiny
	if *raw {
		language = session.LanguageMachine
	}
	sess, err := session.New(string(src), []byte(*input), language, "", session.Config{
		TapeWindow:   *tapeWindow,
		MaxSteps:     *maxSteps,
		HistoryLimit: *historyLimit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot start session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("tinybf visualizer (type 'help' for commands)")
	printState(sess.CurrentState(), sess.Code())
	repl(sess)
}

func repl(sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("(viz) "))
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		command, args := fields[0], fields[1:]

		switch command {
		case "next":
			count := 1
			if n, ok := intArg(args); ok {
				count = n
			}
			advance(sess, func() ([]bfvm.State, error) { return sess.Step(count) })
		case "run":
			limit := 0
			if n, ok := intArg(args); ok {
				limit = n
			}
			advance(sess, func() ([]bfvm.State, error) { return sess.Run(limit, false) })
		case "state":
			printState(sess.CurrentState(), sess.Code())
		case "history":
			count := 10
			if n, ok := intArg(args); ok {
				count = n
			}
			history := sess.History()
			if count < len(history) {
				history = history[len(history)-count:]
			}
			for _, st := range history {
				printState(st, sess.Code())
			}
		case "break":
			pc, ok := intArg(args)
			if !ok {
				fmt.Println("break needs an instruction index")
				continue
			}
			if err := sess.AddBreakpoint(pc); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("breakpoint set at %d\n", pc)
		case "breaks":
			points := sess.Breakpoints()
			if len(points) == 0 {
				fmt.Println("no breakpoints")
				continue
			}
			fmt.Print("breakpoints:")
			for _, pc := range points {
				fmt.Printf(" %d", pc)
			}
			fmt.Println()
		case "clear":
			pc, ok := intArg(args)
			if !ok {
				sess.ClearBreakpoints()
				fmt.Println("all breakpoints cleared")
				continue
			}
			if sess.RemoveBreakpoint(pc) {
				fmt.Printf("breakpoint %d removed\n", pc)
			} else {
				fmt.Printf("no breakpoint at %d\n", pc)
			}
		case "restart":
			sess.Reset()
			fmt.Println("session restarted")
			printState(sess.CurrentState(), sess.Code())
		case "quit", "exit":
			return
		case "help":
			printHelp()
		default:
			fmt.Println("unknown command; see 'help'")
		}
	}
}

// advance runs one stepping action and reports what stopped it.
func advance(sess *session.Session, step func() ([]bfvm.State, error)) {
	states, err := step()
	if err != nil {
		var limitErr *session.StepLimitError
		if errors.As(err, &limitErr) {
			fmt.Printf("%v; 'restart' resets the budget\n", err)
			return
		}
		fmt.Println(err)
		return
	}
	if len(states) == 0 {
		fmt.Println("program has finished")
		return
	}
	printState(sess.CurrentState(), sess.Code())
	if hit := sess.HitBreakpoint(); hit != nil {
		fmt.Printf("stopped at breakpoint %d\n", *hit)
	}
}

func intArg(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("argument must be a number")
		return 0, false
	}
	return n, true
}

func printState(st bfvm.State, code string) {
	fmt.Println(ruleStyle.Render(strings.Repeat("-", 40)))
	command := "(init)"
	if st.Command != nil {
		command = fmt.Sprintf("%q", *st.Command)
	}
	fmt.Printf("step=%d pc=%d/%d command=%s pointer=%d\n",
		st.Step, st.PC, st.CodeLength, command, st.Pointer)
	if st.Output != "" {
		fmt.Printf("output=%q\n", st.Output)
	}
	fmt.Println("tape=" + renderTape(st))
	fmt.Println("code=" + renderCode(code, st.PC))
}

// renderTape prints "index:value" for each cell in the snapshot window,
// highlighting the cell under the pointer.
func renderTape(st bfvm.State) string {
	parts := make([]string, 0, len(st.Tape))
	for i, value := range st.Tape {
		absolute := st.TapeStart + i
		cell := fmt.Sprintf("%d:%03d", absolute, value)
		if absolute == st.Pointer {
			cell = pointerStyle.Render(cell)
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, " ")
}

// renderCode shows the instructions around pc with the current one
// highlighted; past the end of the program it appends an END marker.
func renderCode(code string, pc int) string {
	if code == "" {
		return "(empty)"
	}
	start := pc - codeWindow
	if start < 0 {
		start = 0
	}
	end := pc + codeWindow + 1
	if end > len(code) {
		end = len(code)
	}
	var out strings.Builder
	for i := start; i < end; i++ {
		ch := string(code[i])
		if i == pc {
			ch = instrStyle.Render(ch)
		}
		out.WriteString(ch)
	}
	if pc >= len(code) {
		out.WriteString(instrStyle.Render("[END]"))
	}
	return out.String()
}

func printHelp() {
	fmt.Print(`commands:
  next [N]    advance N steps (default 1)
  run [N]     run until a breakpoint, the end, or N steps
  state       show the current state
  history [N] show the last N recorded states (default 10)
  break PC    set a breakpoint at instruction PC
  breaks      list breakpoints
  clear [PC]  remove one breakpoint, or all without PC
  restart     reset the session
  quit/exit   leave
`)
}
