package vm

import (
	"github.com/glintlang/glint/ast"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/lexer"
	"github.com/glintlang/glint/object"
	"github.com/glintlang/glint/parser"
	"github.com/glintlang/glint/token"
	"testing"
)

func compileSource(t *testing.T, source string) compiler.Bytecode {
	t.Helper()
	lex := lexer.New(source)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	p := parser.Make(tokens)
	statements, parseErrors := p.Parse()
	if len(parseErrors) > 0 {
		t.Fatalf("parsing failed: %v", parseErrors[0])
	}
	c := compiler.NewASTCompiler()
	bytecode, err := c.CompileAST(statements)
	if err != nil {
		t.Fatalf("compilation failed: %v", err)
	}
	return bytecode
}

func TestRunArithmetic(t *testing.T) {
	tests := []struct {
		source   string
		expected int64
	}{
		{"5 + 1;", 6},
		{"5 * 3;", 15},
		{"10 - 4;", 6},
		{"10 / 2;", 5},
		{"10 % 3;", 1},
		{"-5 + 10;", 5},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			bytecode := compileSource(t, tt.source)
			machine := New()
			result, err := machine.Run(bytecode)
			if err != nil {
				t.Fatalf("execution failed: %v", err)
			}
			if result.Type != object.INT {
				t.Fatalf("result type = %s, want int", result.Type)
			}
			if result.IntValue != tt.expected {
				t.Errorf("result = %d, want %d", result.IntValue, tt.expected)
			}
		})
	}
}

func TestRunComparison(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"5 < 10;", true},
		{"5 > 10;", false},
		{"5 == 5;", true},
		{"5 != 5;", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			bytecode := compileSource(t, tt.source)
			machine := New()
			result, err := machine.Run(bytecode)
			if err != nil {
				t.Fatalf("execution failed: %v", err)
			}
			if result.Type != object.BOOL {
				t.Fatalf("result type = %s, want bool", result.Type)
			}
			if result.BoolValue != tt.expected {
				t.Errorf("result = %v, want %v", result.BoolValue, tt.expected)
			}
		})
	}
}

func TestRunGlobalVariables(t *testing.T) {
	statements := []ast.Stmt{
		ast.VarStmt{
			Name:        identToken("a"),
			Initializer: ast.Literal{Value: int64(5)},
		},
		ast.ExpressionStmt{
			Expression: ast.Assign{
				Name:  identToken("a"),
				Value: ast.Literal{Value: int64(9)},
			},
		},
	}

	c := compiler.NewASTCompiler()
	bytecode, err := c.CompileAST(statements)
	if err != nil {
		t.Fatalf("compilation failed: %v", err)
	}

	machine := New()
	result, err := machine.Run(bytecode)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if result.Type != object.INT || result.IntValue != 9 {
		t.Errorf("result = %v, want int 9", result)
	}
}

func TestRunArrayIndexing(t *testing.T) {
	statements := []ast.Stmt{
		ast.ExpressionStmt{
			Expression: ast.Index{
				Array: ast.ArrayLiteral{Elements: []ast.Expression{
					ast.Literal{Value: int64(10)},
					ast.Literal{Value: int64(20)},
					ast.Literal{Value: int64(30)},
				}},
				Bracket: token.CreateToken(token.LBRACKET, 0, 0),
				Index:   ast.Literal{Value: int64(1)},
			},
		},
	}

	c := compiler.NewASTCompiler()
	bytecode, err := c.CompileAST(statements)
	if err != nil {
		t.Fatalf("compilation failed: %v", err)
	}

	machine := New()
	result, err := machine.Run(bytecode)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if result.Type != object.INT || result.IntValue != 20 {
		t.Errorf("result = %v, want int 20", result)
	}
}

func identToken(name string) token.Token {
	return token.CreateLiteralToken(token.IDENTIFIER, nil, name, 0, 0)
}
