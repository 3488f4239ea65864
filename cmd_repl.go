package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/lexer"
	"github.com/glintlang/glint/parser"
	"github.com/glintlang/glint/token"
	"github.com/glintlang/glint/vm"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd implements the `repl` subcommand: an interactive loop compiling
// and running one top-level statement/expression at a time against a
// persistent VM, using readline for line editing and history instead of
// a bare bufio.Scanner.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive glint session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive glint session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to glint!")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     "/tmp/.glint_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
		return subcommands.ExitFailure
	}
	defer rl.Close()

	astCompiler := compiler.NewASTCompiler()
	machine := vm.New()
	var buffer strings.Builder

	for {
		rl.SetPrompt(">>> ")
		if buffer.Len() > 0 {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		lex := lexer.New(source)
		tokens, err := lex.Scan()
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		p := parser.Make(tokens)
		statements, parseErrs := p.Parse()
		if len(parseErrs) > 0 {
			// If every parse error sits right at the EOF token, the user
			// hasn't finished typing - wait for another line instead of
			// reporting an error.
			if allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Fprint(os.Stdout, "Parse error: ")
			for _, pErr := range parseErrs {
				fmt.Fprintf(os.Stdout, "%v\n", pErr)
			}
			buffer.Reset()
			continue
		}

		bytecode, err := astCompiler.CompileAST(statements)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			buffer.Reset()
			continue
		}

		result, runErr := machine.Run(bytecode)
		if runErr != nil {
			fmt.Fprintln(os.Stderr, runErr.Error())
			buffer.Reset()
			continue
		}
		if result != nil {
			fmt.Fprintln(os.Stdout, result.String())
		}
		buffer.Reset()
	}
}

// isInputReady checks whether tokens form a bracket-balanced chunk: an
// open '{', '(' or '[' with no matching close means more input is still
// coming. A balanced-but-incomplete statement (e.g. a trailing operator,
// or a declaration missing its terminating ';') is instead caught by
// allParseErrorsAtEOF once parsing is attempted.
func isInputReady(tokens []token.Token) bool {
	balance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR, token.LPA, token.LBRACKET:
			balance++
		case token.RCUR, token.RPA, token.RBRACKET:
			balance--
		}
	}
	return balance <= 0
}

// allParseErrorsAtEOF reports whether every parse error is a syntax error
// located at the EOF token - a sign the user's input is just incomplete,
// not actually malformed.
func allParseErrorsAtEOF(parseErrs []error, eof token.Token) bool {
	for _, parseErr := range parseErrs {
		syntaxErr, ok := parseErr.(parser.SyntaxError)
		if !ok {
			return false
		}
		if syntaxErr.Line != eof.Line || syntaxErr.Column != eof.Column {
			return false
		}
	}
	return len(parseErrs) > 0
}
