package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		want      string
	}{
		{name: "Create ASSIGN token", tokenType: ASSIGN, want: "="},
		{name: "Create MULT token", tokenType: MULT, want: "*"},
		{name: "Create LBRACKET token", tokenType: LBRACKET, want: "["},
		{name: "Create ADD_ASSIGN token", tokenType: ADD_ASSIGN, want: "+="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, 0, 0)
			if got.Lexeme != tt.want {
				t.Errorf("CreateToken(%s).Lexeme = %q, want %q", tt.tokenType, got.Lexeme, tt.want)
			}
			if got.TokenType != tt.tokenType {
				t.Errorf("CreateToken(%s).TokenType = %v, want %v", tt.tokenType, got.TokenType, tt.tokenType)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	tok := CreateLiteralToken(INT, int64(42), "42", 3, 10)
	if tok.Literal != int64(42) {
		t.Errorf("CreateLiteralToken().Literal = %v, want 42", tok.Literal)
	}
	if tok.Lexeme != "42" {
		t.Errorf("CreateLiteralToken().Lexeme = %q, want %q", tok.Lexeme, "42")
	}
}

func TestKeyWordsResolveTypeKeywords(t *testing.T) {
	for _, kw := range []string{"int", "long", "bool", "float", "array", "void", "none", "struct"} {
		if _, ok := KeyWords[kw]; !ok {
			t.Errorf("KeyWords missing entry for %q", kw)
		}
	}
}
