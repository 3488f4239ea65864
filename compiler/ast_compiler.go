package compiler

// This file implements the ASTCompiler, which compiles the abstract syntax tree (AST) directly to bytecode.

import (
	"encoding/binary"
	"fmt"
	"github.com/glintlang/glint/ast"
	"github.com/glintlang/glint/token"
	"os"
	"strings"
)

// builtinNames are language-level functions bound directly to dedicated
// opcodes rather than to callable objects in the global slots. Call sites
// resolve them before falling back to global/local lookup, so a function
// a program declares under one of these names is silently shadowed by the
// built-in and never reached through a call.
var builtinNames = map[string]bool{
	"print":   true,
	"input":   true,
	"randint": true,
	"sqrt":    true,
}

// Local represents a local variable in the compiler.
// NOTE/TODO: The struct layout can probably be optimised by packing the fields differently.
// So the struct has better cache locality and takes up less memory.
type Local struct {

	// The variable's name
	name string
	// The variable's depth in the scope stack. Used to determine when variables go out of scope.
	depth uint16
	// Whether the variable has been initialized. Used to prevent accessing uninitialized variables.
	initialized bool
	// The slot index where the variable is stored. Used for local variable access in the VM.
	slot uint16
}

// loopContext tracks how many locals existed when the loop's body scope
// began - break/continue must discard any locals declared since then
// before jumping, or the VM's stack depth would drift out from under
// later OP_SCOPE_EXIT instructions. OP_BREAK_LOOP/OP_CONTINUE_LOOP carry
// no operand and find their own target at runtime by scanning for the
// nearest enclosing OP_LOOP_START/OP_LOOP_END, so unlike the jumps this
// compiler backpatches, there's no pending-jump list to keep here.
type loopContext struct {
	localBaseline int
}

// FunctionProto is the compiled form of a function declaration: its own
// instruction stream, compiled independently of the enclosing code so it
// can be invoked from any call site via OP_MAKE_FUNCTION/OP_CALL. Function
// bodies share the enclosing unit's ConstantsPool and NameConstants so
// that a recursive call can resolve its own name as a global before the
// function's own compilation finishes.
type FunctionProto struct {
	Name         string
	Arity        int
	Instructions Instructions
}

// ASTCompiler is a visitor that compiles AST nodes directly to bytecode.
// It implements both ast.ExpressionVisitor and ast.StmtVisitor interfaces
// to traverse and compile the abstract syntax tree to bytecode.
type ASTCompiler struct {

	// The resulting compiled bytecode.
	bytecode Bytecode
	// Tracks initialized global variables
	initialized map[string]bool
	// A stack of local variables in the current scope. Used for local variable management and access.
	// Locals are orderd by by their declaration order that appears in the code. The most recently declared variable
	// will always be at the top of the stack.
	// TODO: We can re-factor the `Stack` implementation in the VM package so it can be used here. We should move that implementation
	// to a new package.
	locals []Local
	// The current depth of nested scopes. Used to determine when local variables go out of scope.
	scopeDepth uint16
	// The stack of loops currently being compiled, innermost last. Used to
	// resolve break/continue statements to the loop they belong to.
	loopContexts []loopContext
}

// NewASTCompiler creates a new AST-to-bytecode compiler.
func NewASTCompiler() *ASTCompiler {
	return &ASTCompiler{
		bytecode: Bytecode{
			Instructions:  Instructions{},
			ConstantsPool: []any{},
			NameConstants: []string{},
		},
		initialized: make(map[string]bool),
		locals:      []Local{},
		scopeDepth:  0,
	}
}

// DumpBytecode writes the compiled bytecode to a file with a `.nic` extension.
// The bytecode is encoded as hexadecimal so it can be viewed in a text editor.
func (ac *ASTCompiler) DumpBytecode(filePath string) error {
	if filePath == "" {
		filePath = "bytecode.nic"
	} else {
		filePath = filePath + ".nic"
	}
	fDescriptor, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating glint bytecode file: %s", err.Error())
	}

	encoded := fmt.Sprintf("%x", ac.bytecode.Instructions)
	fDescriptor.Write([]byte(encoded))
	defer fDescriptor.Close()
	return nil
}

// DiassembleBytecode disassembles the compiled bytecode to a human readable format
// and optionally saves it to disk.
// It returns the disassembled bytecode as a string or an error if the file could not be created.
func (ac *ASTCompiler) DiassembleBytecode(saveToDisk bool, filePath string) (string, error) {
	diassembledBytecode, err := Disassemble(ac.bytecode.Instructions, ac.bytecode.ConstantsPool, ac.bytecode.NameConstants)
	if err != nil {
		return "", err
	}

	if saveToDisk {
		if filePath == "" {
			filePath = "bytecode.dnic"
		} else {
			filePath = filePath + ".dnic"
		}
		fDescriptor, err := os.Create(filePath)
		if err != nil {
			return "", fmt.Errorf("error creating diassembled bytecode file: %s", err.Error())
		}
		fDescriptor.WriteString(diassembledBytecode)
		defer fDescriptor.Close()
	}
	return diassembledBytecode, nil
}

// Disassemble renders instructions to the same human-readable listing
// DiassembleBytecode produces for a whole compiled unit, generalized to
// work on any instruction stream - a top-level program or a single
// function prototype's body - given the constant pool and name table it
// indexes into. Used directly by the `emit` CLI command to show a
// function body as the JIT rewrote it, which never goes through an
// ASTCompiler at all.
func Disassemble(instructions Instructions, constants []any, names []string) (string, error) {
	var builder strings.Builder
	totalInstructions := len(instructions) - 1
	ip := 0

	// NOTE: Slicing in go includes the first element, but excludes the last one.
	// for example, [0:4] will include index 0 to index 3 of the array.

	for ip <= totalInstructions {
		opCode := Opcode(instructions[ip])
		def, err := Get(opCode)
		if err != nil {
			return "", err
		}

		if len(def.OperandWidths) == 0 {
			result, err := DiassembleInstruction([]byte{byte(opCode)})
			if err != nil {
				return "", err
			}
			builder.WriteString(result)
			if opCode != OP_END {
				builder.WriteString("\n")
			}
			ip += OPCODE_TOTAL_BYTES
			continue
		}

		offset := ip + THREE_BYTE_INSTRUCTION_LENGTH
		operand := binary.BigEndian.Uint16(instructions[ip+OPCODE_TOTAL_BYTES : offset])
		dia, err := DiassembleInstruction(instructions[ip:offset])
		if err != nil {
			return "", err
		}

		var suffix string
		switch opCode {
		case OP_CONSTANT:
			if int(operand) < len(constants) {
				suffix = fmt.Sprintf(", value: %v", constants[operand])
			}
		case OP_DEFINE_GLOBAL, OP_SET_GLOBAL, OP_GET_GLOBAL:
			if int(operand) < len(names) {
				suffix = fmt.Sprintf(", name: %s", names[operand])
			}
		case OP_DEFINE_LOCAL, OP_GET_LOCAL, OP_SET_LOCAL:
			suffix = fmt.Sprintf(", vm stack index: %d", operand)
		case OP_SCOPE_EXIT:
			suffix = fmt.Sprintf(", total local variables to pop from the VM's stack: %d", operand)
		case OP_JUMP_FORWARD, OP_JUMP_BACKWARD, OP_JUMP_IF_FALSE, OP_POP_JUMP_IF_TRUE:
			suffix = fmt.Sprintf(", byte index in instruction array: %d", operand)
		default:
			suffix = fmt.Sprintf(", operand: %d", operand)
		}
		builder.WriteString(dia + suffix)
		builder.WriteString("\n")
		ip += THREE_BYTE_INSTRUCTION_LENGTH
	}

	return builder.String(), nil
}

func (ac *ASTCompiler) CompileAST(statements []ast.Stmt) (b Bytecode, err error) {
	// Recover from any panic that may occur during compilation
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SemanticError:
				err = v
			case DeveloperError:
				err = v
			default:
				panic(r)
			}
		}
	}()

	// If previous compilation left an OP_END at the end, drop it
	if len(ac.bytecode.Instructions) > 0 {
		if ac.bytecode.Instructions[len(ac.bytecode.Instructions)-1] == byte(OP_END) {
			ac.bytecode.Instructions = ac.bytecode.Instructions[:len(ac.bytecode.Instructions)-1]
		}
	}

	for _, stmt := range statements {
		stmt.Accept(ac)
	}

	ac.emit(OP_END)
	return ac.bytecode, nil
}

// VisitBinary handles binary expressions (arithmetic and comparison operators)
func (ac *ASTCompiler) VisitBinary(binary ast.Binary) any {

	// NOTE: Left expression is compiled first to ensure correct evaluation order
	binary.Left.Accept(ac)
	binary.Right.Accept(ac)

	switch binary.Operator.TokenType {
	case token.ADD:
		ac.emit(OP_ADD)
	case token.SUB:
		ac.emit(OP_SUBTRACT)
	case token.MULT:
		ac.emit(OP_MULTIPLY)
	case token.DIV:
		ac.emit(OP_DIVIDE)
	case token.MOD:
		ac.emit(OP_MOD)

	case token.EQUAL_EQUAL:
		ac.emit(OP_EQUALITY)
	case token.LARGER:
		ac.emit(OP_LARGER)
	case token.LESS:
		ac.emit(OP_LESS)
	case token.LESS_EQUAL:
		ac.emit(OP_LESS_EQUAL)
	case token.LARGER_EQUAL:
		ac.emit(OP_LARGER_EQUAL)
	case token.NOT_EQUAL:
		ac.emit(OP_NOT_EQUAL)
	}

	return nil
}

// VisitUnary handles unary expressions (operators: -, !)
func (ac *ASTCompiler) VisitUnary(unary ast.Unary) any {

	unary.Right.Accept(ac)

	switch unary.Operator.TokenType {
	case token.SUB:
		ac.emit(OP_NEGATE)
	case token.NOT:
		ac.emit(OP_NOT)
	}
	return nil
}

// VisitLiteral handles literal values (numbers, booleans, none)
// Adds the literal value to the constants pool.
func (ac *ASTCompiler) VisitLiteral(literal ast.Literal) any {
	ac.addConstant(literal.Value)
	return nil
}

// VisitGrouping handles parenthesized expressions
func (ac *ASTCompiler) VisitGrouping(grouping ast.Grouping) any {
	// Recursively compile the inner expression
	grouping.Expression.Accept(ac)
	return nil
}

// VisitVariableExpression compiles variable access by emitting bytecode to load the variable's
// value onto the VM's stack.
//
// For local variabables, it emites an OP_GET_LOCAL instruction with the variable's slot index as the operand.
//
// For global variables, it emits an OP_GET_GLOBAL instruction with the variable's index in the NameConstants pool as the operand.
//
// For example, this compiles code such as `x` or `y` by emitting the appropriate instruction to get
// the variable's value from the VM's stack.
func (ac *ASTCompiler) VisitVariableExpression(variable ast.Variable) any {

	identifier := variable.Name.Lexeme

	slotIndex := ac.resolveLocal(identifier)
	if slotIndex != -1 {
		if !ac.locals[slotIndex].initialized {
			panic(SemanticError{
				Message: fmt.Sprintf("Cant access uninitialised variable '%s'", identifier),
			})
		}
		ac.emit(OP_GET_LOCAL, slotIndex)
		return nil
	}

	globalIndex := ac.resolveGlobal(identifier)
	if globalIndex == -1 {
		panic(SemanticError{
			Message: fmt.Sprintf("name '%s' is not defined", identifier),
		})
	}
	if !ac.initialized[identifier] {
		panic(SemanticError{
			Message: fmt.Sprintf("Cant access uninitialised variable '%s'", identifier),
		})
	}

	ac.emit(OP_GET_GLOBAL, globalIndex)
	return nil
}

// VisitAssignExpression compiles an assignment expression. It always nets
// exactly one pushed value (the assigned value), matching every other
// expression form, by re-reading the variable right after storing it.
func (ac *ASTCompiler) VisitAssignExpression(assign ast.Assign) any {

	name := assign.Name.Lexeme

	// compile the right hand side expression first.
	assign.Value.Accept(ac)

	slotIndex := ac.resolveLocal(name)
	if slotIndex != -1 {
		ac.locals[slotIndex].initialized = true
		ac.emit(OP_SET_LOCAL, slotIndex)
		ac.emit(OP_GET_LOCAL, slotIndex)
		return nil
	}

	globalIndex := ac.resolveGlobal(name)
	if globalIndex == -1 {
		panic(SemanticError{
			Message: fmt.Sprintf("name '%s' is not defined", name),
		})
	}

	ac.initialized[name] = true
	ac.emit(OP_SET_GLOBAL, globalIndex)
	ac.emit(OP_GET_GLOBAL, globalIndex)
	return nil
}

// VisitIndexAssignExpression compiles `array[index] = value`. Unlike plain
// assignment, the result is not re-read afterward: index targets only ever
// appear as statements in this grammar, so the store is left stack-neutral
// (see isStackNeutralExpression).
func (ac *ASTCompiler) VisitIndexAssignExpression(assign ast.IndexAssign) any {
	assign.Array.Accept(ac)
	assign.Index.Accept(ac)
	assign.Value.Accept(ac)
	ac.emit(OP_SET_INDEX)
	return nil
}

// VisitIndexExpression compiles `array[index]` access.
func (ac *ASTCompiler) VisitIndexExpression(index ast.Index) any {
	index.Array.Accept(ac)
	index.Index.Accept(ac)
	ac.emit(OP_GET_INDEX)
	return nil
}

// VisitArrayLiteral compiles an array literal by compiling each element in
// source order and collecting them with OP_BUILD_ARRAY.
func (ac *ASTCompiler) VisitArrayLiteral(array ast.ArrayLiteral) any {
	for _, elem := range array.Elements {
		elem.Accept(ac)
	}
	ac.emit(OP_BUILD_ARRAY, len(array.Elements))
	return nil
}

// VisitCallExpression compiles a function call. Calls to the reserved
// built-in names (print/input/randint/sqrt) lower directly to dedicated
// opcodes instead of going through OP_CALL, since built-ins aren't values
// that live in a global slot.
func (ac *ASTCompiler) VisitCallExpression(call ast.Call) any {
	if callee, ok := call.Callee.(ast.Variable); ok && builtinNames[callee.Name.Lexeme] {
		return ac.compileBuiltinCall(callee.Name.Lexeme, call.Arguments)
	}

	call.Callee.Accept(ac)
	for _, arg := range call.Arguments {
		arg.Accept(ac)
	}
	ac.emit(OP_CALL, len(call.Arguments))
	return nil
}

func (ac *ASTCompiler) compileBuiltinCall(name string, arguments []ast.Expression) any {
	switch name {
	case "print":
		if len(arguments) != 1 {
			panic(SemanticError{Message: "'print' expects exactly 1 argument"})
		}
		arguments[0].Accept(ac)
		ac.emit(OP_PRINT)
		ac.addConstant(nil)
	case "input":
		if len(arguments) != 0 {
			panic(SemanticError{Message: "'input' expects no arguments"})
		}
		ac.emit(OP_INPUT)
	case "randint":
		if len(arguments) != 2 {
			panic(SemanticError{Message: "'randint' expects exactly 2 arguments"})
		}
		arguments[0].Accept(ac)
		arguments[1].Accept(ac)
		ac.emit(OP_RANDINT)
	case "sqrt":
		if len(arguments) != 1 {
			panic(SemanticError{Message: "'sqrt' expects exactly 1 argument"})
		}
		arguments[0].Accept(ac)
		ac.emit(OP_SQRT)
	}
	return nil
}

// VisitVarStmt handles variable declaration statements.
//
// For global variables, it adds the variable name to the NameConstants pool and,
// when there is an initializer, emits it followed by an OP_DEFINE_GLOBAL
// instruction (a global without an initializer emits nothing).
//
// For local variables it declares the variable in the current scope, pushes the
// initializer (or none) and emits an OP_DEFINE_LOCAL instruction.
//
// For example, this compiles code such as `int x = 5;`, `int y;`, `long z = 10+2;` ... etc
func (ac *ASTCompiler) VisitVarStmt(varStmt ast.VarStmt) any {

	variableName := varStmt.Name.Lexeme
	if ac.scopeDepth == 0 {
		// Handles global variable declaration.
		index := ac.addNameConstant(variableName)
		if varStmt.Initializer != nil {
			varStmt.Initializer.Accept(ac)
			ac.emit(OP_DEFINE_GLOBAL, index)
		}
		ac.initialized[variableName] = varStmt.Initializer != nil
	} else {
		// Handles local variable declaration.
		ac.declareLocal(variableName)
		if varStmt.Initializer != nil {
			varStmt.Initializer.Accept(ac)
		} else {
			ac.addConstant(nil)
		}
		slot := ac.locals[len(ac.locals)-1].slot
		ac.emit(OP_DEFINE_LOCAL, int(slot))
		ac.locals[len(ac.locals)-1].initialized = true
	}

	return nil
}

// VisitArrayDeclStmt handles array declaration statements, either with an
// explicit literal initializer (`int[3] a = [1,2,3];`) or a constant size
// with no initializer (`int[3] a;`), which zero-fills the array.
func (ac *ASTCompiler) VisitArrayDeclStmt(decl ast.ArrayDeclStmt) any {
	compileValue := ac.arrayValueCompiler(decl)

	name := decl.Name.Lexeme
	if ac.scopeDepth == 0 {
		index := ac.addNameConstant(name)
		compileValue()
		ac.emit(OP_DEFINE_GLOBAL, index)
		ac.initialized[name] = true
	} else {
		ac.declareLocal(name)
		compileValue()
		slot := ac.locals[len(ac.locals)-1].slot
		ac.emit(OP_DEFINE_LOCAL, int(slot))
		ac.locals[len(ac.locals)-1].initialized = true
	}
	return nil
}

func (ac *ASTCompiler) arrayValueCompiler(decl ast.ArrayDeclStmt) func() {
	if decl.Initializer != nil {
		return func() { decl.Initializer.Accept(ac) }
	}

	sizeLit, ok := decl.Size.(ast.Literal)
	if !ok {
		panic(SemanticError{
			Message: fmt.Sprintf("array '%s' must have a constant size when declared without an initializer", decl.Name.Lexeme),
		})
	}
	size, ok := sizeLit.Value.(int64)
	if !ok || size < 0 {
		panic(SemanticError{Message: fmt.Sprintf("array '%s' has an invalid size", decl.Name.Lexeme)})
	}
	return func() {
		for i := int64(0); i < size; i++ {
			ac.addConstant(int64(0))
		}
		ac.emit(OP_BUILD_ARRAY, int(size))
	}
}

// VisitLogicalExpression compiles logical expressions (and, or) by emitting bytecode that implements short-circuiting behaviour.
func (ac *ASTCompiler) VisitLogicalExpression(logical ast.Logical) any {

	// left expression is compiled first to ensure correct evaluation order and short-circuiting behaviour.
	logical.Left.Accept(ac)

	switch logical.Operator.TokenType {
	case token.OR:
		// For an "or" expression, if the left operand is truthy, we want to short-circuit and skip
		// evaluating the right operand.

		jumpIfFalsePos := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)
		jumpEndPos := ac.emitPlaceholderJump(OP_JUMP_FORWARD)

		rightStart := len(ac.bytecode.Instructions)
		ac.patchJump(jumpIfFalsePos, rightStart)

		ac.emit(OP_POP)

		// The right expression is compiled after emitting the jump instruction. If the left operand is truthy,
		// the VM will jump over the right expression. This is achieved by the below patchJump call.
		logical.Right.Accept(ac)

		ac.patchJump(jumpEndPos, len(ac.bytecode.Instructions))
	case token.AND:
		// For an "and" expression, if the left operand is falsy, we want to short-circuit and skip evaluating the right operand.
		jumpIfFalsePos := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)

		ac.emit(OP_POP)
		logical.Right.Accept(ac)

		ac.patchJump(jumpIfFalsePos, len(ac.bytecode.Instructions))
	}
	return nil
}

// isStackNeutralExpression reports whether compiling expr already leaves
// the stack balanced, so a wrapping statement shouldn't emit a trailing
// OP_POP. Assignment forms re-read (plain Assign) or never pushed back
// (IndexAssign) their result; see VisitAssignExpression/VisitIndexAssignExpression.
func isStackNeutralExpression(expr ast.Expression) bool {
	switch expr.(type) {
	case ast.IndexAssign:
		return true
	default:
		return false
	}
}

// VisitExpressionStmt compiles a bare expression used as a statement. The
// resulting value (if any) is intentionally left on the stack rather than
// popped, matching a REPL's "last expression is the result" convention -
// callers that run a full program rather than a single REPL entry are
// expected to wrap the top-level statement list so residual values don't
// accumulate across many bare expression statements in a row.
func (ac *ASTCompiler) VisitExpressionStmt(exprStmt ast.ExpressionStmt) any {
	exprStmt.Expression.Accept(ac)
	return nil
}

// VisitBlockStmt compiles a block statement by sequentially compiling each statement
// in the block.
func (ac *ASTCompiler) VisitBlockStmt(blockStmt ast.BlockStmt) any {

	ac.beginScope()
	for _, stmt := range blockStmt.Statements {
		stmt.Accept(ac)
	}

	popped := ac.endScope()
	if popped > 0 {
		ac.emit(OP_SCOPE_EXIT, popped)
	}
	return nil
}

// VisitIfStmt compiles an if/elif/else chain by emitting bytecode.
// It uses backpatching to resolve jump offsets for branching. elif clauses
// are compiled as a chain of nested if/else, matching how the parser
// already flattens them into ast.IfStmt.Elifs.
func (ac *ASTCompiler) VisitIfStmt(ifStmt ast.IfStmt) any {
	ac.compileIfChain(ifStmt.Condition, ifStmt.Then, ifStmt.Elifs, ifStmt.Else)
	return nil
}

func (ac *ASTCompiler) compileIfChain(condition ast.Expression, then ast.Stmt, elifs []ast.ElifClause, elseBranch ast.Stmt) {
	// compile the condition expression first
	condition.Accept(ac)

	jumpIfFalsePatch := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)
	// For example, the intructions would now be something like: [..., OP_JUMP_IF_FALSE,  0x00, 0x00]
	// where `0x00, 0x0` are the placeholder operand bytes.
	ac.emit(OP_POP)

	then.Accept(ac)

	hasMore := len(elifs) > 0 || elseBranch != nil
	if hasMore {
		// If there is more to evaluate, emit a jump instruction to skip over it after executing the "then" branch.
		jumpPatch := ac.emitPlaceholderJump(OP_JUMP_FORWARD)

		// Patch the operand of the OP_JUMP_IF_FALSE instruction defined at the beginning.
		elsePos := len(ac.bytecode.Instructions)
		ac.patchJump(jumpIfFalsePatch, elsePos)
		ac.emit(OP_POP)

		if len(elifs) > 0 {
			ac.compileIfChain(elifs[0].Condition, elifs[0].Then, elifs[1:], elseBranch)
		} else {
			elseBranch.Accept(ac)
		}

		endPos := len(ac.bytecode.Instructions)
		// Patch the operand of `OP_JUMP_FORWARD` so the VM can jump to the end of the chain.
		ac.patchJump(jumpPatch, endPos)
	} else {
		// If there is no "else" branch, patch the OP_JUMP_IF_FALSE so that
		// control jumps to the instruction after the "then" branch when
		// the condition is false.
		afterPos := len(ac.bytecode.Instructions)
		ac.patchJump(jumpIfFalsePatch, afterPos)
		ac.emit(OP_POP)
	}
}

// VisitWhileStmt compiles a while loop, bracketing the body with
// OP_LOOP_START/OP_LOOP_END markers so OP_BREAK_LOOP/OP_CONTINUE_LOOP
// inside it can find their target by scanning rather than by a
// compile-time-patched operand. LOOP_START sits right before the
// condition re-check, so a continue lands exactly where the normal
// per-iteration repeat jump does.
func (ac *ASTCompiler) VisitWhileStmt(whileStmt ast.WhileStmt) any {

	loopStartPos := len(ac.bytecode.Instructions)
	ac.emit(OP_LOOP_START)

	// compile the condition expression first
	whileStmt.Condition.Accept(ac)

	jumpIfFalsePatch := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)
	ac.emit(OP_POP)

	ac.pushLoop(len(ac.locals))
	// compile the loop body
	whileStmt.Body.Accept(ac)
	ac.popLoop()

	// After compiling the loop body, jump back to re-check the condition.
	ac.emit(OP_JUMP_BACKWARD, loopStartPos)

	// if the while condition is false, the VM needs to jump to the end of the loop body,
	// which is the current position in the instruction array.
	loopEndPos := len(ac.bytecode.Instructions)
	ac.patchJump(jumpIfFalsePatch, loopEndPos)
	ac.emit(OP_POP)
	ac.emit(OP_LOOP_END)

	return nil
}

// VisitForStmt compiles a C-style for loop, each of whose init/condition/
// increment clauses is optional. init runs once, then a forward jump
// skips the increment on the first pass; OP_LOOP_START sits right before
// the increment, so both the normal per-iteration repeat and a continue
// land there and run increment;condition again, matching a C for-loop's
// continue semantics.
func (ac *ASTCompiler) VisitForStmt(forStmt ast.ForStmt) any {

	ac.beginScope()
	if forStmt.Init != nil {
		forStmt.Init.Accept(ac)
	}

	overIncrPatch := ac.emitPlaceholderJump(OP_JUMP_FORWARD)

	loopStartPos := len(ac.bytecode.Instructions)
	ac.emit(OP_LOOP_START)

	if forStmt.Increment != nil {
		forStmt.Increment.Accept(ac)
		if !isStackNeutralExpression(forStmt.Increment) {
			ac.emit(OP_POP)
		}
	}

	// The first pass skips straight here, bypassing LOOP_START/increment.
	ac.patchJump(overIncrPatch, len(ac.bytecode.Instructions))

	hasCondition := forStmt.Condition != nil
	var jumpIfFalsePatch int
	if hasCondition {
		forStmt.Condition.Accept(ac)
		jumpIfFalsePatch = ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)
		ac.emit(OP_POP)
	}

	ac.pushLoop(len(ac.locals))
	forStmt.Body.Accept(ac)
	ac.popLoop()

	ac.emit(OP_JUMP_BACKWARD, loopStartPos)

	loopEndPos := len(ac.bytecode.Instructions)
	if hasCondition {
		ac.patchJump(jumpIfFalsePatch, loopEndPos)
		ac.emit(OP_POP)
	}
	ac.emit(OP_LOOP_END)

	popped := ac.endScope()
	if popped > 0 {
		ac.emit(OP_SCOPE_EXIT, popped)
	}
	return nil
}

// VisitBreakStmt compiles a `break;` by discarding any locals declared
// inside the loop body and emitting OP_BREAK_LOOP, which finds the
// enclosing loop's OP_LOOP_END on its own at runtime rather than through
// a compile-time-patched operand.
func (ac *ASTCompiler) VisitBreakStmt(stmt ast.BreakStmt) any {
	if len(ac.loopContexts) == 0 {
		panic(SemanticError{Message: "'break' used outside of a loop"})
	}
	loop := ac.loopContexts[len(ac.loopContexts)-1]
	if extra := len(ac.locals) - loop.localBaseline; extra > 0 {
		ac.emit(OP_SCOPE_EXIT, extra)
	}
	ac.emit(OP_BREAK_LOOP)
	return nil
}

// VisitContinueStmt compiles a `continue;` the same way as break, but
// emits OP_CONTINUE_LOOP, which resolves to the enclosing OP_LOOP_START.
func (ac *ASTCompiler) VisitContinueStmt(stmt ast.ContinueStmt) any {
	if len(ac.loopContexts) == 0 {
		panic(SemanticError{Message: "'continue' used outside of a loop"})
	}
	loop := ac.loopContexts[len(ac.loopContexts)-1]
	if extra := len(ac.locals) - loop.localBaseline; extra > 0 {
		ac.emit(OP_SCOPE_EXIT, extra)
	}
	ac.emit(OP_CONTINUE_LOOP)
	return nil
}

// VisitReturnStmt compiles a return statement. A bare `return;` returns none.
func (ac *ASTCompiler) VisitReturnStmt(stmt ast.ReturnStmt) any {
	if stmt.Value != nil {
		stmt.Value.Accept(ac)
	} else {
		ac.addConstant(nil)
	}
	ac.emit(OP_RETURN)
	return nil
}

// VisitFuncDeclStmt compiles a function declaration. The function's name is
// registered as a global before its body is compiled, so a recursive call
// inside the body resolves correctly. The body is compiled into its own,
// independent instruction stream (sharing the enclosing ConstantsPool and
// NameConstants) and stored as a FunctionProto in the constants pool.
func (ac *ASTCompiler) VisitFuncDeclStmt(stmt ast.FuncDeclStmt) any {
	name := stmt.Name.Lexeme
	nameIndex := ac.addNameConstant(name)
	ac.initialized[name] = true

	savedInstructions := ac.bytecode.Instructions
	savedLocals := ac.locals
	savedScopeDepth := ac.scopeDepth
	savedLoopContexts := ac.loopContexts

	ac.bytecode.Instructions = Instructions{}
	ac.locals = []Local{}
	ac.scopeDepth = 1
	ac.loopContexts = nil

	for _, param := range stmt.Params {
		ac.declareLocal(param.Name.Lexeme)
		ac.defineLocal()
	}
	for _, bodyStmt := range stmt.Body {
		bodyStmt.Accept(ac)
	}
	// Implicit `return none;` if the body falls off the end without one.
	ac.addConstant(nil)
	ac.emit(OP_RETURN)

	proto := FunctionProto{
		Name:         name,
		Arity:        len(stmt.Params),
		Instructions: ac.bytecode.Instructions,
	}

	ac.bytecode.Instructions = savedInstructions
	ac.locals = savedLocals
	ac.scopeDepth = savedScopeDepth
	ac.loopContexts = savedLoopContexts

	ac.bytecode.ConstantsPool = append(ac.bytecode.ConstantsPool, proto)
	protoIndex := len(ac.bytecode.ConstantsPool) - 1

	ac.emit(OP_MAKE_FUNCTION, protoIndex)
	ac.emit(OP_DEFINE_GLOBAL, nameIndex)
	return nil
}

// patchjump overwrites a jump instruction's operand with the actual correct byte offset.
// When compiling if statements, its not possible to know the else branch (or the statement after
// the if) will be until the then-branch is compiled. Jump instructions are emmited with placeholder operands,
// then later call patchJump to fix those operands.

// The jumpPos is the byte index where the jump instruction's OPCODE is located.
//
//	This is the position BEFORE the jump was emitted
//
// The targetPos is the byte index where the jump instruction should jump to.
// Example:
// jumpPos = 10, targetPos = 20
// Before patching: [..., OP_JUMP_IF_FALSE, 0x00, 0x00, ...] (jump instruction starts at index 10)
// After patching: [..., OP_JUMP_IF_FALSE, 0x00, 0x14, ...] (jump instruction now correctly jumps to index 20)
func (ac *ASTCompiler) patchJump(jumpPos int, targetPos int) {

	operandPos := jumpPos + OPCODE_TOTAL_BYTES

	instruction := make([]byte, 2)
	binary.BigEndian.PutUint16(instruction, uint16(targetPos))

	// override the 2-byte placeholder operand in the instruction array with
	// the correct operand bytes that will make the jump instruction jump to the target position.
	ac.bytecode.Instructions[operandPos] = instruction[0]
	ac.bytecode.Instructions[operandPos+1] = instruction[1]

}

// addConstant appends a value to the constant pool and emits an OP_CONSTANT instruction.
// The operand of the instruction will be its index in the constants pool.
func (ac *ASTCompiler) addConstant(value any) {
	ac.bytecode.ConstantsPool = append(ac.bytecode.ConstantsPool, value)
	index := len(ac.bytecode.ConstantsPool) - 1
	ac.emit(OP_CONSTANT, index)
}

// addNameConstant adds a variable name to the NameConstants pool
// and returns its index.
func (ac *ASTCompiler) addNameConstant(value string) int {

	for _, name := range ac.bytecode.NameConstants {
		if name == value {
			panic(SemanticError{
				Message: fmt.Sprintf("Redefinition of variable '%s'", value),
			})
		}
	}
	ac.bytecode.NameConstants = append(ac.bytecode.NameConstants, value)
	return len(ac.bytecode.NameConstants) - 1
}

// emit constructs a bytecode instruction and appends it to the instruction stream
func (ac *ASTCompiler) emit(opcode Opcode, operands ...int) {
	instruction, err := AssembleInstruction(opcode, operands...)
	if err != nil {
		// TODO: Improve error handling in compiler.
		// Although in this case its can be OK as the error returned is of type `DeveloperError`
		// which would only be raised during development.
		panic(err.Error())
	}
	ac.bytecode.Instructions = append(ac.bytecode.Instructions, instruction...)
}

// emitPlaceholderJump emits a jump instruction with the specified opcode and a placeholder operand (0).
// It returns the position in the bytecode where the jump instruction was emitted,
// which can later be passed to `patchJump` to update the operand with
// the correct jump target.
func (ac *ASTCompiler) emitPlaceholderJump(opcode Opcode) int {
	position := len(ac.bytecode.Instructions)
	ac.emit(opcode, 0)
	return position
}

// pushLoop opens a new loop context for break/continue resolution, baseline
// being the local-variable count at the point the loop's body begins.
func (ac *ASTCompiler) pushLoop(baseline int) {
	ac.loopContexts = append(ac.loopContexts, loopContext{localBaseline: baseline})
}

// popLoop closes the innermost loop context.
func (ac *ASTCompiler) popLoop() {
	ac.loopContexts = ac.loopContexts[:len(ac.loopContexts)-1]
}

// beginScope increments the scope depth, when compiling a block statement.
func (ac *ASTCompiler) beginScope() {
	ac.scopeDepth++
}

// endScope decrements the scope depth and removes any local variables that go out of scope.
// It returns the number of local variables that went out of scope,
// which is used by the VM to pop them from the stack.
func (ac *ASTCompiler) endScope() int {
	ac.scopeDepth--

	count := 0
	for len(ac.locals) > 0 && ac.locals[len(ac.locals)-1].depth > ac.scopeDepth {
		ac.locals = ac.locals[:len(ac.locals)-1]
		count++
	}

	return count
}

// declareLocal adds a local variable name, checking for same-scope duplicates
// and assigns it a slot index for the VM to access it.
// It panics if there is a duplicate variable declaration in the same scope.
func (ac *ASTCompiler) declareLocal(name string) {

	for i := len(ac.locals) - 1; i >= 0; i-- {

		// By virtue of iterating backwards through the local stack,
		// we can stop checking
		if ac.locals[i].depth < ac.scopeDepth {
			break
		}
		if ac.locals[i].name == name {
			panic(SemanticError{
				Message: fmt.Sprintf("Redefinition of variable '%s'", name),
			})
		}
	}

	slot := uint16(len(ac.locals))
	local := Local{
		name:        name,
		depth:       ac.scopeDepth,
		initialized: false,
		slot:        slot,
	}
	ac.locals = append(ac.locals, local)

}

// defineLocal marks the most recently declared local variable as initialized.
func (ac *ASTCompiler) defineLocal() {
	if len(ac.locals) > 0 {
		ac.locals[len(ac.locals)-1].initialized = true
	}
}

// resolveLocal checks if a variable name exists in the current local scope and returns its slot index.
// It returns -1 if the variable is not found in the local scope.
func (ac *ASTCompiler) resolveLocal(name string) int {
	for i := len(ac.locals) - 1; i >= 0; i-- {
		if ac.locals[i].name == name {
			return int(ac.locals[i].slot)
		}
	}
	return -1
}

// resolveGlobal checks if a variable name exists in the global scope and returns its index in the NameConstants pool.
// It returns -1 if the variable is not found in the global scope.
func (ac ASTCompiler) resolveGlobal(name string) int {
	for i, n := range ac.bytecode.NameConstants {
		if n == name {
			return i
		}
	}
	return -1
}
