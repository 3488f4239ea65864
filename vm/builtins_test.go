package vm

import (
	"bufio"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/glintlang/glint/object"
)

// withStdout redirects os.Stdout for the duration of fn and returns what
// was written to it, the way builtinPrint's fmt.Fprintln(os.Stdout, ...)
// would actually render it.
func withStdout(t *testing.T, fn func()) string {
	t.Helper()
	original := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = original }()

	fn()

	w.Close()
	var builder strings.Builder
	if _, err := io.Copy(&builder, r); err != nil {
		t.Fatalf("reading captured stdout failed: %v", err)
	}
	return builder.String()
}

func TestBuiltinPrint(t *testing.T) {
	bytecode := compileSource(t, `print(21 + 21);`)

	output := withStdout(t, func() {
		machine := New()
		if _, err := machine.Run(bytecode); err != nil {
			t.Fatalf("execution failed: %v", err)
		}
	})

	if strings.TrimRight(output, "\n") != "42" {
		t.Errorf("print output = %q, want %q", output, "42\n")
	}
}

func TestBuiltinSqrt(t *testing.T) {
	bytecode := compileSource(t, `sqrt(4);`)
	machine := New()
	result, err := machine.Run(bytecode)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if result.Type != object.FLOAT {
		t.Fatalf("result type = %s, want float", result.Type)
	}
	if got := result.FloatValue.String(); got != "2" {
		t.Errorf("sqrt(4) = %s, want 2", got)
	}
}

func TestBuiltinRandintSingleValueRange(t *testing.T) {
	bytecode := compileSource(t, `randint(7, 7);`)
	machine := New()
	result, err := machine.Run(bytecode)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if result.Type != object.INT || result.IntValue != 7 {
		t.Errorf("randint(7, 7) = %v, want int 7", result)
	}
}

func TestBuiltinInput(t *testing.T) {
	originalStdin := os.Stdin
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stdin = r
	defer func() { os.Stdin = originalStdin }()

	writer := bufio.NewWriter(w)
	writer.WriteString("99\n")
	writer.Flush()
	w.Close()

	bytecode := compileSource(t, `input();`)
	machine := New()
	result, err := machine.Run(bytecode)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if result.Type != object.INT || result.IntValue != 99 {
		t.Errorf("input() = %v, want int 99", result)
	}
}
