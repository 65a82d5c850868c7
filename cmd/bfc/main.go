// Command bfc compiles tinybf source to byte-machine instruction text
// and can optionally execute the result in place.
package main

import (
	"flag"
	"fmt"
	"os"

	"tinybf/pkg/bfvm"
	"tinybf/pkg/compiler"
)

func main() {
	emit := flag.String("o", "", "write instruction text to this file instead of stdout")
	run := flag.Bool("run", false, "execute the program after compiling")
	input := flag.String("input", "", "input string supplied to the program when running")
	maxSteps := flag.Int("max-steps", 0, "step ceiling when running (0 means unlimited)")
	cells := flag.Bool("cells", false, "print the variable to tape cell mapping to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bfc [flags] <source file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read source: %v\n", err)
		os.Exit(1)
	}

	code, syms, err := compiler.Compile(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
		os.Exit(1)
	}

	if *cells {
		fmt.Fprint(os.Stderr, syms.String())
	}

	switch {
	case *emit != "":
		if err := os.WriteFile(*emit, []byte(code+"\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "cannot write output: %v\n", err)
			os.Exit(1)
		}
	case !*run:
		fmt.Println(code)
	}

	if *run {
		prog, err := bfvm.Load(code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid program: %v\n", err)
			os.Exit(1)
		}
		output, capped, err := bfvm.Run(prog, []byte(*input), *maxSteps)
		fmt.Print(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
			os.Exit(1)
		}
		if capped {
			fmt.Fprintln(os.Stderr, "execution stopped at the step ceiling")
			os.Exit(1)
		}
	}
}
