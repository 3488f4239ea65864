package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/lexer"
	"github.com/glintlang/glint/parser"
	"github.com/glintlang/glint/vm"

	"github.com/google/subcommands"
)

// runCmd implements the `run` subcommand: lexer -> parser -> compiler ->
// (optionally JIT-rewritten) VM, the primary entry point for executing a
// glint source file.
type runCmd struct {
	debug bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute glint code from a source file" }
func (*runCmd) Usage() string {
	return `run [--debug|-d] <file>:
  Execute glint code.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.debug, "debug", false, "report heap live-object count after the run")
	f.BoolVar(&r.debug, "d", false, "shorthand for --debug")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	lex := lexer.New(string(data))
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	p := parser.Make(tokens)
	ast, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitFailure
	}

	astCompiler := compiler.NewASTCompiler()
	bytecode, err := astCompiler.CompileAST(ast)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	machine := vm.New()
	_, err = machine.Run(bytecode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	if r.debug {
		fmt.Fprintf(os.Stderr, "debug: %d live objects on exit\n", machine.Heap().LiveObjects())
	}

	return subcommands.ExitSuccess
}
