// statements.go contains all the statement AST nodes. A statement node does not produce a value.

package ast

import "github.com/glintlang/glint/token"

// ExpressionStmt represents a statement that consists of a single expression.
// Example: `foo + bar;`. This evaluates the expression and discards the result.
type ExpressionStmt struct {
	Expression Expression // The expression used as a statement
}

func (e ExpressionStmt) Accept(v StmtVisitor) any {
	return v.VisitExpressionStmt(e)
}

// VarStmt represents a scalar variable declaration statement, composed of
// the variable's declared type, its name, and an optional initializer.
// Example: `int x = 1;` or `bool done;` (initializer defaults to none).
type VarStmt struct {
	Name        token.Token
	Type        Type
	Initializer Expression
}

func (varStmt VarStmt) Accept(v StmtVisitor) any {
	return v.VisitVarStmt(varStmt)
}

// ArrayDeclStmt represents a fixed-size array declaration statement.
// Example: `int[5] a = [3,1,4,1,5];` or `int[10] a;` (elements are zero-filled).
type ArrayDeclStmt struct {
	Name        token.Token
	ElemType    Type
	Size        Expression // the declared length expression, may be nil
	Initializer Expression // an ArrayLiteral, or nil
}

func (arrayDecl ArrayDeclStmt) Accept(v StmtVisitor) any {
	return v.VisitArrayDeclStmt(arrayDecl)
}

// BlockStmt represents a block statement containing a list
// of statement AST nodes.
type BlockStmt struct {
	Statements []Stmt
}

func (blockStmt BlockStmt) Accept(v StmtVisitor) any {
	return v.VisitBlockStmt(blockStmt)
}

// ElifClause is a single `elif (cond) { ... }` link in an if/elif chain.
type ElifClause struct {
	Condition Expression
	Then      Stmt
}

// IfStmt represents an if/elif/else chain.
type IfStmt struct {
	Condition Expression
	Then      Stmt
	Elifs     []ElifClause
	Else      Stmt // nil when no else branch is present
}

func (stmt IfStmt) Accept(v StmtVisitor) any {
	return v.VisitIfStmt(stmt)
}

// WhileStmt represents a `while (cond) { ... }` loop.
type WhileStmt struct {
	Condition Expression
	Body      Stmt
}

func (stmt WhileStmt) Accept(v StmtVisitor) any {
	return v.VisitWhileStmt(stmt)
}

// ForStmt represents a C-style `for (init; cond; incr) { ... }` loop.
// Init may be a VarStmt or an ExpressionStmt; Condition and Increment may
// both be nil, in which case the loop is unconditional.
type ForStmt struct {
	Init      Stmt
	Condition Expression
	Increment Expression
	Body      Stmt
}

func (stmt ForStmt) Accept(v StmtVisitor) any {
	return v.VisitForStmt(stmt)
}

// BreakStmt represents a `break;` statement.
type BreakStmt struct {
	Keyword token.Token
}

func (stmt BreakStmt) Accept(v StmtVisitor) any {
	return v.VisitBreakStmt(stmt)
}

// ContinueStmt represents a `continue;` statement.
type ContinueStmt struct {
	Keyword token.Token
}

func (stmt ContinueStmt) Accept(v StmtVisitor) any {
	return v.VisitContinueStmt(stmt)
}

// ReturnStmt represents a `return expr;` statement. Value is nil for a bare
// `return;`, in which case none is returned.
type ReturnStmt struct {
	Keyword token.Token
	Value   Expression
}

func (stmt ReturnStmt) Accept(v StmtVisitor) any {
	return v.VisitReturnStmt(stmt)
}

// FuncDeclStmt represents a top-level function declaration.
// Example: `int fib(int n) { ... }`.
type FuncDeclStmt struct {
	Name       token.Token
	ReturnType Type
	Params     []Param
	Body       []Stmt
}

func (stmt FuncDeclStmt) Accept(v StmtVisitor) any {
	return v.VisitFuncDeclStmt(stmt)
}
