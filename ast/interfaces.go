// interfaces.go contains all visitor interfaces that any code traversing expression and statement AST nodes must implement.
// It also contains the interfaces that all statement and expression AST nodes must implement which also follows the
// visitor design pattern

package ast

// ExpressionVisitor is the interface for operating on all Expression AST nodes.
// Any type that wants to perform an operation on expressions (e.g., the
// compiler or an ast-printer) must implement this interface.
//
// Each Visit method corresponds to a distinct Expression type.
type ExpressionVisitor interface {
	// VisitBinary is called when visiting a Binary expression (e.g., "a + b").
	VisitBinary(binary Binary) any

	// VisitUnary is called when visiting a Unary expression (e.g., "-b" or "not b").
	VisitUnary(unary Unary) any

	// VisitLiteral is called when visiting a Literal expression (a number, bool, or none).
	VisitLiteral(literal Literal) any

	// VisitGrouping is called when visiting a Grouping expression (expressions wrapped in parentheses).
	VisitGrouping(grouping Grouping) any

	VisitVariableExpression(variable Variable) any

	VisitAssignExpression(assign Assign) any

	// VisitIndexAssignExpression is called when visiting an assignment to an
	// array element, e.g. "a[i] = v".
	VisitIndexAssignExpression(assign IndexAssign) any

	VisitLogicalExpression(logical Logical) any

	// VisitCallExpression is called when visiting a function call, e.g. "fib(n-1)".
	VisitCallExpression(call Call) any

	// VisitIndexExpression is called when visiting an array subscript, e.g. "a[i]".
	VisitIndexExpression(index Index) any

	// VisitArrayLiteral is called when visiting an array literal, e.g. "[1, 2, 3]".
	VisitArrayLiteral(array ArrayLiteral) any
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
// Like ExpressionVisitor, it defines one Visit method per statement type.
// This separation between expressions and statements mirrors the grammar structure.
type StmtVisitor interface {
	// VisitExpressionStmt is called when visiting an Expression statement.
	// Example: "foo + bar;"
	VisitExpressionStmt(exprStmt ExpressionStmt) any

	// VisitVarStmt is called when visiting a scalar variable declaration.
	// Example: "int x = 1;"
	VisitVarStmt(varStmt VarStmt) any

	// VisitArrayDeclStmt is called when visiting an array declaration.
	// Example: "int[5] a = [3,1,4,1,5];"
	VisitArrayDeclStmt(arrayDecl ArrayDeclStmt) any

	// VisitBlockStmt is called when visiting a block statement.
	VisitBlockStmt(blockStmt BlockStmt) any

	VisitIfStmt(stmt IfStmt) any

	VisitWhileStmt(stmt WhileStmt) any

	// VisitForStmt is called when visiting a C-style for loop.
	VisitForStmt(stmt ForStmt) any

	// VisitBreakStmt is called when visiting a break statement.
	VisitBreakStmt(stmt BreakStmt) any

	// VisitContinueStmt is called when visiting a continue statement.
	VisitContinueStmt(stmt ContinueStmt) any

	// VisitReturnStmt is called when visiting a return statement.
	VisitReturnStmt(stmt ReturnStmt) any

	// VisitFuncDeclStmt is called when visiting a function declaration.
	VisitFuncDeclStmt(stmt FuncDeclStmt) any
}

// Stmt is the base interface for all statement nodes in the AST.
// Like Expression, it follows the Visitor design pattern where each
// statement type implements Accept, calling back into the correct
// Visit method on a StmtVisitor.
type Stmt interface {
	// Accept dispatches this statement to the appropriate Visit method
	// of the provided StmtVisitor implementation.
	Accept(v StmtVisitor) any
}

// Expression is the core interface for all expression nodes in the Abstract Syntax Tree (AST).
// Any expression type (e.g., binary operation, literal, grouping, etc.) must implement this interface.
// The Accept method enables the Visitor design pattern so that operations can be performed on
// expressions without the expression types needing to know the details of those operations.
type Expression interface {
	// Accept dispatches the current expression node to the appropriate method on a Visitor.
	Accept(v ExpressionVisitor) any
}
