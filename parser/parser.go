// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser

//	A Recursive descent parser is a top-down parser because it starts from the top
//
// grammar rule and works its way down in to the nested sub-expressions before reaching
// the leaves of the syntax tree (terminal rules)
package parser

import (
	"fmt"

	"github.com/glintlang/glint/ast"
	"github.com/glintlang/glint/token"
)

var typeKeywordTokenTypes = []token.TokenType{
	token.TYPE_INT,
	token.TYPE_LONG,
	token.TYPE_BOOL,
	token.TYPE_FLOAT,
	token.TYPE_ARRAY,
	token.TYPE_VOID,
	token.TYPE_STRUCT,
}

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorExpressionTypes = []token.TokenType{
	token.MULT,
	token.DIV,
	token.MOD,
}

var compoundAssignTokenTypes = []token.TokenType{
	token.ADD_ASSIGN,
	token.SUB_ASSIGN,
	token.MULT_ASSIGN,
	token.DIV_ASSIGN,
	token.MOD_ASSIGN,
}

// compoundAssignOperator maps a compound-assignment token type to the
// plain binary operator it desugars to, e.g. ADD_ASSIGN -> ADD so that
// "x += 1" parses as "x = x + 1".
var compoundAssignOperator = map[token.TokenType]token.TokenType{
	token.ADD_ASSIGN:  token.ADD,
	token.SUB_ASSIGN:  token.SUB,
	token.MULT_ASSIGN: token.MULT,
	token.DIV_ASSIGN:  token.DIV,
	token.MOD_ASSIGN:  token.MOD,
}

type Parser struct {
	tokens   []token.Token
	position int
}

// NOTE: The parsers position is always one unit ahead of the
// current token

// Make initializes and returns a new Parser instance over the given tokens.
func Make(tokens []token.Token) *Parser {
	return &Parser{
		tokens:   tokens,
		position: 0,
	}
}

// Print prints the AST as prettified JSON to standard output.
func (parser *Parser) Print(statements []ast.Stmt) {
	_, err := PrintASTJSON(statements)
	if err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided statements to a .json file at the given path.
func (parser *Parser) PrintToFile(statements []ast.Stmt, path string) error {
	return WriteASTJSONToFile(statements, path)
}

// peek returns the token at the parser's current position, without
// advancing the parser's position.
func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

// peekAt returns the token `offset` positions ahead of the current one,
// clamped to the last token (EOF) if it would run past the end.
func (parser *Parser) peekAt(offset int) token.Token {
	idx := parser.position + offset
	if idx >= len(parser.tokens) {
		return parser.tokens[len(parser.tokens)-1]
	}
	return parser.tokens[idx]
}

// previous retrieves the token at the parser's previous position.
func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

// advance increments the parser's position by one unit and
// consumes the current token.
func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

// isFinished determines if the parser has finished scanning all the tokens.
func (parser *Parser) isFinished() bool {
	tok := parser.peek()
	return tok.TokenType == token.EOF
}

// checkType determines if the provided tokenType matches the TokenType
// at the parser's current position.
func (parser *Parser) checkType(tokeType token.TokenType) bool {
	if parser.isFinished() {
		return false
	}
	tok := parser.peek()
	return tok.TokenType == tokeType
}

// isMatch determines if the TokenType at the current position matches any
// of the provided tokenTypes. If a match is found the parser increments
// its position and consumes the current token.
func (parser *Parser) isMatch(tokenTypes []token.TokenType) bool {
	for i := range tokenTypes {
		tokenType := tokenTypes[i]

		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// isTypeKeyword reports whether tokenType names a type (int, long, bool,
// float, array, void, struct).
func isTypeKeyword(tokenType token.TokenType) bool {
	for _, tt := range typeKeywordTokenTypes {
		if tt == tokenType {
			return true
		}
	}
	return false
}

// Parse parses the entire token stream into a slice of Stmt (statement) nodes,
// continuing until the end of input. Errors during parsing are collected
// but parsing continues to find additional errors where possible.
func (parser *Parser) Parse() ([]ast.Stmt, []error) {
	statements := []ast.Stmt{}
	errors := []error{}

	for {
		if parser.isFinished() {
			break
		}
		statement, err := parser.declaration()
		if err != nil {
			errors = append(errors, err)
			parser.synchronize()
			continue
		}
		statements = append(statements, statement)
	}

	return statements, errors
}

// synchronize discards tokens after a parse error until it reaches a
// plausible statement boundary, so the parser can keep looking for
// further errors instead of stopping at the first one.
func (parser *Parser) synchronize() {
	if !parser.isFinished() {
		parser.advance()
	}
	for !parser.isFinished() {
		if parser.previous().TokenType == token.SEMICOLON {
			return
		}
		switch parser.peek().TokenType {
		case token.IF, token.WHILE, token.FOR, token.RETURN, token.BREAK, token.CONTINUE:
			return
		}
		if isTypeKeyword(parser.peek().TokenType) {
			return
		}
		parser.advance()
	}
}

// declaration parses a top-level or block-scoped declaration: a function
// declaration, a variable declaration, an array declaration, or falls
// through to a plain statement.
func (parser *Parser) declaration() (ast.Stmt, error) {
	if isTypeKeyword(parser.peek().TokenType) {
		// Disambiguate `type name(...)` (function) from `type name = ...`
		// or `type[size] name = ...` (variable/array) by looking ahead.
		if parser.peekAt(1).TokenType == token.IDENTIFIER && parser.peekAt(2).TokenType == token.LPA {
			return parser.functionDeclaration()
		}
		return parser.typedDeclaration()
	}
	return parser.statement()
}

// parseType parses a type annotation: a bare type keyword (e.g. "int"),
// or an array type with an optional bracketed size (e.g. "int[5]" or
// "int[]").
func (parser *Parser) parseType() (ast.Type, error) {
	if !isTypeKeyword(parser.peek().TokenType) {
		tok := parser.peek()
		return ast.Type{}, CreateSyntaxError(tok.Line, tok.Column, "Expected a type name.")
	}
	typeTok := parser.advance()
	baseName := typeName(typeTok.TokenType)

	if !parser.isMatch([]token.TokenType{token.LBRACKET}) {
		return ast.Type{Name: baseName}, nil
	}

	elem := ast.Type{Name: baseName}
	var size ast.Expression
	if !parser.checkType(token.RBRACKET) {
		var err error
		size, err = parser.expression()
		if err != nil {
			return ast.Type{}, err
		}
	}
	if _, err := parser.consume(token.RBRACKET, "Expected ']' after array size."); err != nil {
		return ast.Type{}, err
	}
	return ast.Type{Name: "array", Elem: &elem, Size: size}, nil
}

// typeName maps a type-keyword TokenType to its canonical type name.
func typeName(tokenType token.TokenType) string {
	switch tokenType {
	case token.TYPE_INT:
		return "int"
	case token.TYPE_LONG:
		return "long"
	case token.TYPE_BOOL:
		return "bool"
	case token.TYPE_FLOAT:
		return "float"
	case token.TYPE_ARRAY:
		return "array"
	case token.TYPE_VOID:
		return "none"
	case token.TYPE_STRUCT:
		return "struct"
	default:
		return "none"
	}
}

// typedDeclaration parses a variable or array declaration that starts with
// a type annotation, e.g. "int x = 1;" or "int[5] a = [1,2,3,4,5];".
func (parser *Parser) typedDeclaration() (ast.Stmt, error) {
	declType, err := parser.parseType()
	if err != nil {
		return nil, err
	}

	name, err := parser.consume(token.IDENTIFIER, "Expected a variable name.")
	if err != nil {
		return nil, err
	}

	if declType.IsArray() {
		var initializer ast.Expression
		if parser.isMatch([]token.TokenType{token.ASSIGN}) {
			initializer, err = parser.expression()
			if err != nil {
				return nil, err
			}
		}
		if _, err := parser.consume(token.SEMICOLON, "Expected ';' after array declaration."); err != nil {
			return nil, err
		}
		return ast.ArrayDeclStmt{
			Name:        name,
			ElemType:    *declType.Elem,
			Size:        declType.Size,
			Initializer: initializer,
		}, nil
	}

	var initializer ast.Expression
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		initializer, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after variable declaration."); err != nil {
		return nil, err
	}
	return ast.VarStmt{
		Name:        name,
		Type:        declType,
		Initializer: initializer,
	}, nil
}

// functionDeclaration parses a function declaration: a return type, a
// name, a parenthesized, comma-separated parameter list of "type name"
// pairs, and a block body. Example: "int fib(int n) { ... }".
func (parser *Parser) functionDeclaration() (ast.Stmt, error) {
	returnType, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	name, err := parser.consume(token.IDENTIFIER, "Expected a function name.")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LPA, "Expected '(' after function name."); err != nil {
		return nil, err
	}

	params := []ast.Param{}
	if !parser.checkType(token.RPA) {
		for {
			paramType, err := parser.parseType()
			if err != nil {
				return nil, err
			}
			paramName, err := parser.consume(token.IDENTIFIER, "Expected a parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: paramName, Type: paramType})
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' before function body."); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}

	return ast.FuncDeclStmt{
		Name:       name,
		ReturnType: returnType,
		Params:     params,
		Body:       body,
	}, nil
}

// statement parses a single statement: a block, an if/elif/else chain, a
// while loop, a C-style for loop, break, continue, return, or an
// expression statement.
func (parser *Parser) statement() (ast.Stmt, error) {
	if parser.isMatch([]token.TokenType{token.LCUR}) {
		statements, err := parser.block()
		if err != nil {
			return nil, err
		}
		return ast.BlockStmt{Statements: statements}, nil
	}

	if parser.isMatch([]token.TokenType{token.IF}) {
		return parser.ifStatement()
	}

	if parser.isMatch([]token.TokenType{token.WHILE}) {
		return parser.whileStatement()
	}

	if parser.isMatch([]token.TokenType{token.FOR}) {
		return parser.forStatement()
	}

	if parser.isMatch([]token.TokenType{token.BREAK}) {
		keyword := parser.previous()
		if _, err := parser.consume(token.SEMICOLON, "Expected ';' after 'break'."); err != nil {
			return nil, err
		}
		return ast.BreakStmt{Keyword: keyword}, nil
	}

	if parser.isMatch([]token.TokenType{token.CONTINUE}) {
		keyword := parser.previous()
		if _, err := parser.consume(token.SEMICOLON, "Expected ';' after 'continue'."); err != nil {
			return nil, err
		}
		return ast.ContinueStmt{Keyword: keyword}, nil
	}

	if parser.isMatch([]token.TokenType{token.RETURN}) {
		return parser.returnStatement()
	}

	return parser.expressionStatement()
}

// returnStatement parses "return;" or "return <expr>;".
func (parser *Parser) returnStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	var value ast.Expression
	if !parser.checkType(token.SEMICOLON) {
		var err error
		value, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after return value."); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Keyword: keyword, Value: value}, nil
}

// whileStatement parses a while loop statement from the token stream.
func (parser *Parser) whileStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'while'."); err != nil {
		return nil, err
	}
	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after while condition."); err != nil {
		return nil, err
	}

	body, err := parser.statement()
	if err != nil {
		return nil, err
	}

	return ast.WhileStmt{
		Condition: condition,
		Body:      body,
	}, nil
}

// forStatement parses a C-style for loop: "for (init; cond; incr) { ... }".
// Each clause may be omitted; an omitted condition means an unconditional loop.
func (parser *Parser) forStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'for'."); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err error
	if parser.isMatch([]token.TokenType{token.SEMICOLON}) {
		init = nil
	} else if isTypeKeyword(parser.peek().TokenType) {
		init, err = parser.typedDeclaration()
		if err != nil {
			return nil, err
		}
	} else {
		init, err = parser.expressionStatement()
		if err != nil {
			return nil, err
		}
	}

	var condition ast.Expression
	if !parser.checkType(token.SEMICOLON) {
		condition, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after for-loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expression
	if !parser.checkType(token.RPA) {
		increment, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := parser.statement()
	if err != nil {
		return nil, err
	}

	return ast.ForStmt{
		Init:      init,
		Condition: condition,
		Increment: increment,
		Body:      body,
	}, nil
}

// ifStatement parses an if/elif/else chain from the token stream.
func (parser *Parser) ifStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'if'."); err != nil {
		return nil, err
	}
	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after if condition."); err != nil {
		return nil, err
	}

	then, err := parser.statement()
	if err != nil {
		return nil, err
	}

	elifs := []ast.ElifClause{}
	for parser.isMatch([]token.TokenType{token.ELIF}) {
		if _, err := parser.consume(token.LPA, "Expected '(' after 'elif'."); err != nil {
			return nil, err
		}
		elifCond, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "Expected ')' after elif condition."); err != nil {
			return nil, err
		}
		elifThen, err := parser.statement()
		if err != nil {
			return nil, err
		}
		elifs = append(elifs, ast.ElifClause{Condition: elifCond, Then: elifThen})
	}

	var elseStmt ast.Stmt
	if parser.isMatch([]token.TokenType{token.ELSE}) {
		elseStmt, err = parser.statement()
		if err != nil {
			return nil, err
		}
	}

	return ast.IfStmt{
		Condition: condition,
		Then:      then,
		Elifs:     elifs,
		Else:      elseStmt,
	}, nil
}

// expressionStatement parses a statement consisting of a single expression
// followed by a semicolon.
func (parser *Parser) expressionStatement() (ast.Stmt, error) {
	expression, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after expression."); err != nil {
		return nil, err
	}
	return ast.ExpressionStmt{Expression: expression}, nil
}

// block parses a block statement consisting of a list of declarations,
// up to and including the closing '}'.
func (parser *Parser) block() ([]ast.Stmt, error) {
	statements := []ast.Stmt{}

	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	if _, err := parser.consume(token.RCUR, "Expected '}' after block."); err != nil {
		return nil, err
	}
	return statements, nil
}

// expression is the entry point for parsing expressions. It begins at
// the assignment rule, which encompasses all lower-precedence rules.
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.assignment()
}

// assignment parses an assignment expression, including compound
// assignment operators ("+=", "-=", "*=", "/=", "%=") which desugar to a
// plain assignment of a binary expression, and assignment to array
// elements ("a[i] = v").
//
// Example:
// Input:  x = 10
// AST:    Assign{Name: x, Value: Literal(10)}
func (parser *Parser) assignment() (ast.Expression, error) {
	expression, err := parser.or()
	if err != nil {
		return nil, err
	}

	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		equalsToken := parser.previous()
		value, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		return makeAssignment(expression, equalsToken, value)
	}

	if parser.isMatch(compoundAssignTokenTypes) {
		opToken := parser.previous()
		rhs, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		binaryOp := token.CreateToken(compoundAssignOperator[opToken.TokenType], opToken.Line, opToken.Column)
		value := ast.Binary{Left: expression, Operator: binaryOp, Right: rhs}
		return makeAssignment(expression, opToken, value)
	}

	return expression, nil
}

// makeAssignment builds the correct assignment AST node for `target`,
// which must be either a Variable or an Index expression.
func makeAssignment(target ast.Expression, opToken token.Token, value ast.Expression) (ast.Expression, error) {
	switch t := target.(type) {
	case ast.Variable:
		return ast.Assign{Name: t.Name, Value: value}, nil
	case ast.Index:
		return ast.IndexAssign{Array: t.Array, Bracket: t.Bracket, Index: t.Index, Value: value}, nil
	default:
		msg := "Invalid assignment target"
		return nil, CreateSyntaxError(opToken.Line, opToken.Column, msg)
	}
}

// or parses a logical OR expression, building a left-associative AST.
func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.OR}) {
		op := parser.previous()
		rightExpr, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{
			Left:     expr,
			Operator: op,
			Right:    rightExpr,
		}
	}

	return expr, nil
}

// and parses a logical AND expression, building a left-associative AST.
func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.equality()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.AND}) {
		op := parser.previous()
		rightExpr, err := parser.equality()
		if err != nil {
			return nil, err
		}

		expr = ast.Logical{
			Left:     expr,
			Operator: op,
			Right:    rightExpr,
		}
	}
	return expr, nil
}

// equality parses equality expressions using operators "==" and "!=".
func (parser *Parser) equality() (ast.Expression, error) {
	exp, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes) {
		operator := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// comparison parses comparison expressions using operators "<", "<=", ">", ">=".
func (parser *Parser) comparison() (ast.Expression, error) {
	exp, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes) {
		operator := parser.previous()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// term parses addition and subtraction expressions using operators "+" and "-".
func (parser *Parser) term() (ast.Expression, error) {
	exp, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes) {
		operator := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// factor parses multiplication, division and modulo expressions using
// operators "*", "/" and "%".
func (parser *Parser) factor() (ast.Expression, error) {
	exp, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// unary parses unary prefix expressions using the operators "-" and "not".
// Examples: "not true", "-x".
func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch([]token.TokenType{token.NOT, token.SUB}) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{
			Operator: operator,
			Right:    right,
		}, nil
	}
	return parser.call()
}

// call parses a primary expression followed by zero or more call or
// index "postfix" operators, e.g. "fib(n - 1)" or "a[i]".
func (parser *Parser) call() (ast.Expression, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}

	for {
		if parser.isMatch([]token.TokenType{token.LPA}) {
			expr, err = parser.finishCall(expr)
			if err != nil {
				return nil, err
			}
			continue
		}
		if parser.isMatch([]token.TokenType{token.LBRACKET}) {
			bracket := parser.previous()
			index, err := parser.expression()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.RBRACKET, "Expected ']' after index expression."); err != nil {
				return nil, err
			}
			expr = ast.Index{Array: expr, Bracket: bracket, Index: index}
			continue
		}
		break
	}

	return expr, nil
}

// finishCall parses the comma-separated argument list of a call
// expression, given the already-parsed callee and having just consumed
// the opening '('.
func (parser *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	arguments := []ast.Expression{}
	if !parser.checkType(token.RPA) {
		for {
			arg, err := parser.expression()
			if err != nil {
				return nil, err
			}
			arguments = append(arguments, arg)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	paren, err := parser.consume(token.RPA, "Expected ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return ast.Call{Callee: callee, Paren: paren, Arguments: arguments}, nil
}

// primary parses the most basic forms of expressions:
//   - Literals: true, false, none, numbers
//   - Array literals: "[1, 2, 3]"
//   - Variables
//   - Grouping: "(expression)"
func (parser *Parser) primary() (ast.Expression, error) {
	if parser.isMatch([]token.TokenType{token.FALSE}) {
		return ast.Literal{Value: false}, nil
	}
	if parser.isMatch([]token.TokenType{token.TYPE_NONE}) {
		return ast.Literal{Value: nil}, nil
	}
	if parser.isMatch([]token.TokenType{token.TRUE}) {
		return ast.Literal{Value: true}, nil
	}

	if parser.isMatch([]token.TokenType{token.FLOAT, token.INT}) {
		return ast.Literal{Value: parser.previous().Literal}, nil
	}

	if parser.isMatch([]token.TokenType{token.IDENTIFIER}) {
		return ast.Variable{Name: parser.previous()}, nil
	}

	if parser.isMatch([]token.TokenType{token.LBRACKET}) {
		bracket := parser.previous()
		elements := []ast.Expression{}
		if !parser.checkType(token.RBRACKET) {
			for {
				elem, err := parser.expression()
				if err != nil {
					return nil, err
				}
				elements = append(elements, elem)
				if !parser.isMatch([]token.TokenType{token.COMMA}) {
					break
				}
			}
		}
		if _, err := parser.consume(token.RBRACKET, "Expected ']' after array literal."); err != nil {
			return nil, err
		}
		return ast.ArrayLiteral{Bracket: bracket, Elements: elements}, nil
	}

	if parser.isMatch([]token.TokenType{token.LPA}) {
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		_, consumeErr := parser.consume(token.RPA, fmt.Sprintf("expression is missing '%s'", token.RPA))
		if consumeErr != nil {
			return nil, consumeErr
		}
		return ast.Grouping{Expression: expr}, nil
	}

	currentToken := parser.peek()
	return nil, CreateSyntaxError(currentToken.Line, currentToken.Column, "Unrecognised expression.")
}

// consume advances the parser's position by one unit if the provided
// `tokenType` matches the token type at the parser's current position,
// otherwise it produces a SyntaxError.
func (parser *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	currentToken := parser.peek()
	return token.CreateToken(token.EOF, 0, 0), CreateSyntaxError(currentToken.Line, currentToken.Column, errorMessage)
}
