// Package compiler implements the emitter core: the recursive walk
// that turns an ast.Program into a bytecode.Program. It owns three
// dispatch surfaces (statement emission, expression emission,
// operator-token emission), constant interning, and branch
// back-patching.
package compiler

import (
	"fmt"

	"github.com/Uzendayo/Nuua/internal/ast"
	"github.com/Uzendayo/Nuua/internal/bytecode"
	"github.com/Uzendayo/Nuua/internal/parser"
	"github.com/Uzendayo/Nuua/internal/token"
)

// StructuralError reports one of the three fatal emitter conditions:
// an unrecognized AST node kind, a placeholder rule that should never
// reach emission, or an operator token outside the recognized set.
// It is the only error type the emitter itself raises; anything else
// propagating out of Compile is an upstream parse failure.
type StructuralError struct {
	Line    int
	Message string
}

func (e *StructuralError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("compiler: line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("compiler: %s", e.Message)
}

func fail(line int, format string, args ...interface{}) {
	panic(&StructuralError{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Emitter holds the mutable state of one compilation: the program
// under construction, which region is currently receiving emitted
// code, and the source line of the node last entered.
type Emitter struct {
	program *bytecode.Program
	active  bytecode.RegionKind
	line    int
}

func newEmitter() *Emitter {
	return &Emitter{program: bytecode.NewProgram(), active: bytecode.RegionProgram}
}

func (e *Emitter) region() *bytecode.Region {
	return e.program.Region(e.active)
}

func (e *Emitter) emitOp(op bytecode.Opcode) {
	e.region().WriteOp(op, e.line)
}

func (e *Emitter) emitConstantOnly(v bytecode.Value) int {
	return e.region().EmitConstantOnly(v, e.line)
}

func (e *Emitter) patchConstant(index int, v bytecode.Value) {
	e.region().PatchConstant(index, v)
}

func (e *Emitter) currentCodeLength() int {
	return e.region().Len()
}

// Compile parses source and emits a finalized bytecode.Program for
// it. Structural errors raised during emission are recovered here and
// returned as plain errors; upstream parse failures are returned
// wrapped, unchanged in substance.
func Compile(source string) (prog *bytecode.Program, err error) {
	astProgram, parseErrors := parser.ParseProgram(source)
	if len(parseErrors) > 0 {
		return nil, fmt.Errorf("compiler: parse failed: %v", parseErrors)
	}

	e := newEmitter()
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*StructuralError); ok {
				err = se
				return
			}
			panic(r) // not ours: let it propagate
		}
	}()

	for _, stmt := range astProgram.Statements {
		e.compileStatement(stmt)
	}
	e.emitOp(bytecode.EXIT)
	return e.program, nil
}

// ---- 4.1.1 statement emission ----

func (e *Emitter) compileStatement(s ast.Statement) {
	e.line = s.Line()
	switch n := s.(type) {
	case *ast.PrintStatement:
		e.compileExpression(n.Value)
		e.emitOp(bytecode.PRINT)

	case *ast.ExpressionStatement:
		e.compileExpression(n.Expression)
		e.emitOp(bytecode.POP)

	case *ast.Declaration:
		e.compileDeclaration(n)

	case *ast.ReturnStatement:
		e.compileExpression(n.Value)
		e.emitOp(bytecode.RETURN)

	case *ast.IfStatement:
		e.compileIf(n)

	case *ast.WhileStatement:
		e.compileWhile(n)

	case *ast.BlockStatement:
		for _, inner := range n.Statements {
			e.compileStatement(inner)
		}

	default:
		fail(e.line, "unrecognized statement node %T", s)
	}
}

func (e *Emitter) compileDeclaration(n *ast.Declaration) {
	e.emitOp(bytecode.DECLARE)
	nameIndex := e.emitConstantOnly(bytecode.String(n.Name))
	e.emitConstantOnly(bytecode.Type(n.Type))

	if n.Initial != nil {
		e.compileExpression(n.Initial)
		e.emitOp(bytecode.STORE)
		// STORE reuses the name constant DECLARE already pooled.
		r := e.region()
		r.Code = append(r.Code, int64(nameIndex))
		r.Lines = append(r.Lines, e.line)
		e.emitOp(bytecode.POP)
	}
}

func (e *Emitter) compileIf(n *ast.IfStatement) {
	if n.Else != nil {
		// Open question: an else arm is parsed but the emitter has no
		// defined translation for it. Fabricating one would silently
		// invent VM-facing semantics, so this is a hard stop.
		fail(e.line, "if/else emission is not implemented")
	}

	e.compileExpression(n.Condition)
	e.emitOp(bytecode.BRANCH_FALSE)
	patchIndex := e.emitConstantOnly(bytecode.Int(0))
	recordedLength := e.currentCodeLength()

	e.compileStatement(n.Then)

	e.patchConstant(patchIndex, bytecode.Int(int64(e.currentCodeLength()-recordedLength)))
}

func (e *Emitter) compileWhile(n *ast.WhileStatement) {
	loopHead := e.currentCodeLength()

	e.compileExpression(n.Condition)
	e.emitOp(bytecode.BRANCH_FALSE)
	patchIndex := e.emitConstantOnly(bytecode.Int(0))
	bodyStart := e.currentCodeLength()

	e.compileStatement(n.Body)

	e.emitOp(bytecode.RJUMP)
	// The offset must land after its own operand slot is written, so
	// compute it against the length that slot will bring us to.
	backJump := -(e.currentCodeLength() + 1 - loopHead)
	e.emitConstantOnly(bytecode.Int(int64(backJump)))

	e.patchConstant(patchIndex, bytecode.Int(int64(e.currentCodeLength()-bodyStart+1)))
}

// ---- 4.1.2 expression emission ----

func (e *Emitter) compileExpression(x ast.Expression) {
	e.line = x.Line()
	switch n := x.(type) {
	case *ast.IntegerLiteral:
		e.emitOp(bytecode.PUSH)
		e.emitConstantOnly(bytecode.Int(n.Value))

	case *ast.FloatLiteral:
		e.emitOp(bytecode.PUSH)
		e.emitConstantOnly(bytecode.Float(n.Value))

	case *ast.StringLiteral:
		e.emitOp(bytecode.PUSH)
		e.emitConstantOnly(bytecode.String(n.Value))

	case *ast.BoolLiteral:
		e.emitOp(bytecode.PUSH)
		e.emitConstantOnly(bytecode.Bool(n.Value))

	case *ast.NoneLiteral:
		e.emitOp(bytecode.PUSH)
		e.emitConstantOnly(bytecode.Nil())

	case *ast.ListLiteral:
		for i := len(n.Elements) - 1; i >= 0; i-- {
			e.compileExpression(n.Elements[i])
		}
		e.emitOp(bytecode.LIST)
		e.emitConstantOnly(bytecode.Int(int64(len(n.Elements))))

	case *ast.DictionaryLiteral:
		for i := len(n.Keys) - 1; i >= 0; i-- {
			e.emitOp(bytecode.PUSH)
			e.emitConstantOnly(bytecode.String(n.Keys[i]))
			e.compileExpression(n.Values[i])
		}
		e.emitOp(bytecode.DICTIONARY)
		e.emitConstantOnly(bytecode.Int(int64(len(n.Keys))))

	case *ast.GroupExpression:
		e.compileExpression(n.Inner)

	case *ast.UnaryExpression:
		e.compileExpression(n.Operand)
		e.emitOp(e.operatorOpcode(n.Operator, true))

	case *ast.BinaryExpression:
		e.compileExpression(n.Left)
		e.compileExpression(n.Right)
		e.emitOp(e.operatorOpcode(n.Operator, false))

	case *ast.Variable:
		e.emitOp(bytecode.LOAD)
		e.emitConstantOnly(bytecode.String(n.Name))

	case *ast.Assignment:
		e.compileExpression(n.Value)
		e.emitOp(bytecode.STORE)
		e.emitConstantOnly(bytecode.String(n.Name))

	case *ast.IndexedAssignment:
		e.compileExpression(n.Value)
		e.compileExpression(n.Index)
		e.emitOp(bytecode.STORE_ACCESS)
		e.emitConstantOnly(bytecode.String(n.Container))

	case *ast.Access:
		e.compileExpression(n.Index)
		e.emitOp(bytecode.ACCESS)
		e.emitConstantOnly(bytecode.String(n.Container))

	case *ast.FunctionLiteral:
		e.compileFunctionLiteral(n)

	case *ast.CallExpression:
		for _, arg := range n.Args {
			e.compileExpression(arg)
		}
		e.emitOp(bytecode.CALL)
		e.emitConstantOnly(bytecode.String(n.Callee))
		e.emitConstantOnly(bytecode.Int(int64(len(n.Args))))

	default:
		fail(e.line, "unrecognized expression node %T", x)
	}
}

// compileFunctionLiteral implements 4.1.5 region switching: the
// selector is saved on entry and restored on every exit path,
// including the panic path raised by fail() further down the walk.
func (e *Emitter) compileFunctionLiteral(n *ast.FunctionLiteral) {
	callingRegion := e.active
	e.active = bytecode.RegionFunctions
	defer func() { e.active = callingRegion }()

	start := e.currentCodeLength()

	for _, param := range n.Parameters {
		e.emitOp(bytecode.DECLARE)
		e.emitConstantOnly(bytecode.String(param.Name))
		e.emitConstantOnly(bytecode.Type(param.Type))
	}
	for i := len(n.Parameters) - 1; i >= 0; i-- {
		e.emitOp(bytecode.ONLY_STORE)
		e.emitConstantOnly(bytecode.String(n.Parameters[i].Name))
	}

	if n.Body != nil {
		for _, stmt := range n.Body.Statements {
			e.compileStatement(stmt)
		}
	}

	e.emitOp(bytecode.PUSH)
	e.emitConstantOnly(bytecode.Nil())
	e.emitOp(bytecode.RETURN)

	e.active = callingRegion
	e.emitOp(bytecode.FUNCTION)
	e.emitConstantOnly(bytecode.Int(int64(start)))
	e.emitConstantOnly(bytecode.Type(n.ReturnType))
}

// ---- 4.1.3 operator-token emission ----

func (e *Emitter) operatorOpcode(op token.Kind, unary bool) bytecode.Opcode {
	switch op {
	case token.PLUS:
		return bytecode.ADD
	case token.MINUS:
		if unary {
			return bytecode.MINUS
		}
		return bytecode.SUB
	case token.STAR:
		return bytecode.MUL
	case token.SLASH:
		return bytecode.DIV
	case token.BANG:
		return bytecode.NOT
	case token.ASSIGN:
		// Dead per the operator table: assignment is handled directly
		// by Assignment/IndexedAssignment, never routed through here.
		return bytecode.STORE
	case token.EQ:
		return bytecode.EQ
	case token.NEQ:
		return bytecode.NEQ
	case token.LT:
		return bytecode.LT
	case token.LTE:
		return bytecode.LTE
	case token.GT:
		return bytecode.HT
	case token.GTE:
		return bytecode.HTE
	default:
		fail(e.line, "operator token %v has no opcode mapping", op)
		return 0 // unreachable
	}
}
