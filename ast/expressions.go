// expressions.go contains all the expression AST nodes. An expression node always evaluates to a value.

package ast

import (
	"github.com/glintlang/glint/token"
)

// Binary represents a binary operation expression (e.g., "a + b").
// It consists of a left-hand side expression, an operator token (e.g., +, -, *, /),
// and a right-hand side expression.
type Binary struct {
	Left     Expression  // The left-hand expression (e.g., "a" in "a + b")
	Operator token.Token // The operator (e.g., "+")
	Right    Expression  // The right-hand expression (e.g., "b" in "a + b")
}

func (binary Binary) Accept(v ExpressionVisitor) any {
	return v.VisitBinary(binary)
}

// Unary represents a unary operation expression (e.g., "-b" or "not b").
// It consists of an operator token and a single right-hand expression.
type Unary struct {
	Operator token.Token // The operator (e.g., "-" or "not")
	Right    Expression  // The expression the operator is applied to
}

func (unary Unary) Accept(v ExpressionVisitor) any {
	return v.VisitUnary(unary)
}

// Literal represents a literal value in the source code: an integer, a
// float, a bool, or none. Go's `any` carries whichever concrete type the
// parser produced (int64, float64, bool, or nil for none).
type Literal struct {
	Value any
}

func (literal Literal) Accept(v ExpressionVisitor) any {
	return v.VisitLiteral(literal)
}

// Grouping represents a parenthesized expression (e.g., "(a + b)").
// Useful for controlling evaluation precedence.
type Grouping struct {
	Expression Expression // The inner expression inside the parentheses
}

func (grouping Grouping) Accept(v ExpressionVisitor) any {
	return v.VisitGrouping(grouping)
}

// Variable represents a variable expression in the abstract syntax tree (AST).
// It models the retrieval of a value previously bound to a variable name.
type Variable struct {
	Name token.Token // An IDENTIFIER token
}

func (variable Variable) Accept(v ExpressionVisitor) any {
	return v.VisitVariableExpression(variable)
}

// Assign represents an assignment to a plain variable, e.g. "x = 10".
type Assign struct {
	Name  token.Token
	Value Expression
}

func (assign Assign) Accept(v ExpressionVisitor) any {
	return v.VisitAssignExpression(assign)
}

// IndexAssign represents an assignment to an array element, e.g. "a[i] = v".
type IndexAssign struct {
	Array   Expression
	Bracket token.Token // the '[' token, for error reporting
	Index   Expression
	Value   Expression
}

func (assign IndexAssign) Accept(v ExpressionVisitor) any {
	return v.VisitIndexAssignExpression(assign)
}

// Logical represents a short-circuit-free logical expression ("and"/"or").
// Unlike most tree-walk interpreters, glint's `and`/`or` operate strictly on
// bool operands and always evaluate both sides (see spec §4.4: boolean-only
// ops require bool operands, dispatched like any other BINARY_OP).
type Logical struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (logical Logical) Accept(v ExpressionVisitor) any {
	return v.VisitLogicalExpression(logical)
}

// Call represents a function call expression, e.g. "fib(n - 1)".
type Call struct {
	Callee    Expression
	Paren     token.Token // the ')' token closing the argument list, for error reporting
	Arguments []Expression
}

func (call Call) Accept(v ExpressionVisitor) any {
	return v.VisitCallExpression(call)
}

// Index represents an array subscript expression, e.g. "a[i]".
type Index struct {
	Array   Expression
	Bracket token.Token
	Index   Expression
}

func (index Index) Accept(v ExpressionVisitor) any {
	return v.VisitIndexExpression(index)
}

// ArrayLiteral represents an array literal, e.g. "[1, 2, 3]".
type ArrayLiteral struct {
	Bracket  token.Token
	Elements []Expression
}

func (array ArrayLiteral) Accept(v ExpressionVisitor) any {
	return v.VisitArrayLiteral(array)
}
