package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/jit"
	"github.com/glintlang/glint/lexer"
	"github.com/glintlang/glint/parser"

	"github.com/google/subcommands"
)

// emitBytecodeCmd implements the `emit` subcommand: compiles a source file
// and disassembles the resulting bytecode - including, unless --no-jit is
// given, every function prototype rewritten the way OP_MAKE_FUNCTION would
// rewrite it at call time - to a human-readable listing on stdout.
type emitBytecodeCmd struct {
	dumpBytecode bool
	noJIT        bool
}

func (*emitBytecodeCmd) Name() string { return "emit" }
func (*emitBytecodeCmd) Synopsis() string {
	return "Emit the bytecode representation of a source file"
}
func (*emitBytecodeCmd) Usage() string {
	return `emit [--no-jit] <file>`
}

func (cmd *emitBytecodeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", false, "also write the encoded bytecode as hexadecimal to a .nic file")
	f.BoolVar(&cmd.noJIT, "no-jit", false, "disassemble function bodies as compiled, skipping the JIT rewrite passes")
}

func (cmd *emitBytecodeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	sourceFile := args[0]
	data, err := os.ReadFile(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file:\n\t%v\n", err.Error())
		return subcommands.ExitFailure
	}

	lex := lexer.New(string(data))
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lexing error: %v\n", err)
		return subcommands.ExitFailure
	}

	p := parser.Make(tokens)
	statements, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 Parsing error:\n")
		for _, pErr := range parseErrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", pErr)
		}
		return subcommands.ExitFailure
	}

	astCompiler := compiler.NewASTCompiler()
	bytecode, cErr := astCompiler.CompileAST(statements)
	if cErr != nil {
		fmt.Fprintf(os.Stderr, "💥 Compilation error:\n\t%v\n", cErr)
		return subcommands.ExitFailure
	}

	listing, dErr := astCompiler.DiassembleBytecode(false, "")
	if dErr != nil {
		fmt.Fprintf(os.Stderr, "💥 Bytecode diassemble error:\n\t%s\n", dErr.Error())
		return subcommands.ExitFailure
	}
	fmt.Fprintln(os.Stdout, listing)

	for i, constant := range bytecode.ConstantsPool {
		proto, ok := constant.(compiler.FunctionProto)
		if !ok {
			continue
		}
		instructions := proto.Instructions
		if !cmd.noJIT {
			if optimized, changed := jit.Optimize(instructions, bytecode.ConstantsPool); changed {
				instructions = optimized
			}
		}
		fmt.Fprintf(os.Stdout, "-- function constant %d --\n", i)
		rendered, err := compiler.Disassemble(instructions, bytecode.ConstantsPool, bytecode.NameConstants)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 Bytecode diassemble error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
		fmt.Fprintln(os.Stdout, rendered)
	}

	if cmd.dumpBytecode {
		parts := strings.Split(sourceFile, ".")
		fileName := parts[0]
		if err := astCompiler.DumpBytecode(fileName); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Dump bytecode error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
