package lexer

import (
	"reflect"
	"testing"

	"github.com/glintlang/glint/token"
)

func scanTokenTypes(t *testing.T, src string) []token.TokenType {
	t.Helper()
	scanner := New(src)
	tokens, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.TokenType
	}
	return types
}

func TestOperatorsSuccess(t *testing.T) {
	got := scanTokenTypes(t, "==/ =*+>-<!=<=>=%+=-=*=/=%=")
	want := []token.TokenType{
		token.EQUAL_EQUAL, token.DIV, token.ASSIGN, token.MULT, token.ADD,
		token.LARGER, token.SUB, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.LARGER_EQUAL, token.MOD, token.ADD_ASSIGN, token.SUB_ASSIGN,
		token.MULT_ASSIGN, token.DIV_ASSIGN, token.MOD_ASSIGN, token.EOF,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() types = %v, want %v", got, want)
	}
}

func TestPunctuationSuccess(t *testing.T) {
	got := scanTokenTypes(t, "(){}[];,:.")
	want := []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR, token.LBRACKET,
		token.RBRACKET, token.SEMICOLON, token.COMMA, token.COLON, token.DOT,
		token.EOF,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() types = %v, want %v", got, want)
	}
}

func TestKeywordsSuccess(t *testing.T) {
	got := scanTokenTypes(t, "int long bool float array void none struct if else elif while for break continue return true false and or not")
	want := []token.TokenType{
		token.TYPE_INT, token.TYPE_LONG, token.TYPE_BOOL, token.TYPE_FLOAT,
		token.TYPE_ARRAY, token.TYPE_VOID, token.TYPE_NONE, token.TYPE_STRUCT,
		token.IF, token.ELSE, token.ELIF, token.WHILE, token.FOR, token.BREAK,
		token.CONTINUE, token.RETURN, token.TRUE, token.FALSE, token.AND,
		token.OR, token.NOT, token.EOF,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() types = %v, want %v", got, want)
	}
}

func TestNumberLiterals(t *testing.T) {
	scanner := New("42 3.14 2e10 1.5e-3 6E+2")
	tokens, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}

	wantTypes := []token.TokenType{token.INT, token.FLOAT, token.FLOAT, token.FLOAT, token.FLOAT, token.EOF}
	for i, want := range wantTypes {
		if tokens[i].TokenType != want {
			t.Errorf("token[%d].TokenType = %v, want %v", i, tokens[i].TokenType, want)
		}
	}
	if tokens[0].Literal.(int64) != 42 {
		t.Errorf("tokens[0].Literal = %v, want 42", tokens[0].Literal)
	}
	if tokens[2].Literal.(float64) != 2e10 {
		t.Errorf("tokens[2].Literal = %v, want 2e10", tokens[2].Literal)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	got := scanTokenTypes(t, "1 + 2 # this is a comment\n+ 3")
	want := []token.TokenType{token.INT, token.ADD, token.INT, token.ADD, token.INT, token.EOF}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() types = %v, want %v", got, want)
	}
}

func TestBangWithoutEqualsIsIllegal(t *testing.T) {
	scanner := New("!true")
	_, err := scanner.Scan()
	if err == nil {
		t.Fatal("expected an error for bare '!'")
	}
}
