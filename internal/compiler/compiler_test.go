package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uzendayo/Nuua/internal/ast"
	"github.com/Uzendayo/Nuua/internal/bytecode"
	"github.com/Uzendayo/Nuua/internal/token"
)

func TestCompile_PrintAddition(t *testing.T) {
	prog, err := Compile("print 1 + 2")
	require.NoError(t, err)

	assert.Equal(t, []int64{
		int64(bytecode.PUSH), 0,
		int64(bytecode.PUSH), 1,
		int64(bytecode.ADD),
		int64(bytecode.PRINT),
		int64(bytecode.EXIT),
	}, prog.Program.Code)

	require.Len(t, prog.Program.Constants, 2)
	assert.Equal(t, bytecode.Int(1), prog.Program.Constants[0])
	assert.Equal(t, bytecode.Int(2), prog.Program.Constants[1])
	assert.Equal(t, len(prog.Program.Code), len(prog.Program.Lines))
}

func TestCompile_Declaration(t *testing.T) {
	prog, err := Compile("x: int = 5")
	require.NoError(t, err)

	assert.Equal(t, []int64{
		int64(bytecode.DECLARE), 0, 1,
		int64(bytecode.PUSH), 2,
		int64(bytecode.STORE), 0,
		int64(bytecode.POP),
		int64(bytecode.EXIT),
	}, prog.Program.Code)

	require.Len(t, prog.Program.Constants, 3)
	assert.Equal(t, bytecode.String("x"), prog.Program.Constants[0])
	assert.Equal(t, bytecode.Type("int"), prog.Program.Constants[1])
	assert.Equal(t, bytecode.Int(5), prog.Program.Constants[2])
}

func TestCompile_IfWithoutElse(t *testing.T) {
	prog, err := Compile("if a == 1: print a")
	require.NoError(t, err)

	code := prog.Program.Code
	require.Equal(t, int64(bytecode.LOAD), code[0])
	require.Equal(t, int64(bytecode.PUSH), code[2])
	require.Equal(t, int64(bytecode.EQ), code[4])
	require.Equal(t, int64(bytecode.BRANCH_FALSE), code[5])
	patchIdx := code[6]
	require.Equal(t, int64(bytecode.LOAD), code[7])
	require.Equal(t, int64(bytecode.PRINT), code[9])
	require.Equal(t, int64(bytecode.EXIT), code[10])

	// Patched offset is the slot distance from right after the operand
	// (index 7, the start of the then-branch) to the end of the
	// then-branch (index 10, EXIT's position) — 3 slots.
	assert.Equal(t, bytecode.Int(3), prog.Program.Constants[patchIdx])
}

func TestCompile_While(t *testing.T) {
	prog, err := Compile("while a < 10: a = a + 1")
	require.NoError(t, err)

	code := prog.Program.Code
	// loop head at slot 0: LOAD a
	require.Equal(t, int64(bytecode.LOAD), code[0])
	require.Equal(t, int64(bytecode.BRANCH_FALSE), code[5])

	// The program must end with EXIT and a preceding RJUMP back to 0.
	require.Equal(t, int64(bytecode.EXIT), code[len(code)-1])
	require.Equal(t, int64(bytecode.RJUMP), code[len(code)-3])

	rjumpPatchIdx := code[len(code)-2]
	rjumpOffset := prog.Program.Constants[rjumpPatchIdx]
	// The jump lands back exactly on slot 0 once added to the post-operand PC.
	assert.Equal(t, bytecode.KindInt, rjumpOffset.Kind)
	assert.Equal(t, int64(len(code)-1), -rjumpOffset.I)
}

func TestCompile_FunctionDeclarationAndCall(t *testing.T) {
	prog, err := Compile(`f: fn = fn(x: int) -> int { return x + 1 }
f(2)`)
	require.NoError(t, err)

	fnCode := prog.Functions.Code
	require.NotEmpty(t, fnCode)
	assert.Equal(t, int64(bytecode.DECLARE), fnCode[0])
	assert.Equal(t, int64(bytecode.ONLY_STORE), fnCode[3])

	// Trailer: every function body ends with PUSH none; RETURN.
	require.GreaterOrEqual(t, len(fnCode), 2)
	assert.Equal(t, int64(bytecode.RETURN), fnCode[len(fnCode)-1])
	assert.Equal(t, int64(bytecode.PUSH), fnCode[len(fnCode)-3])

	progCode := prog.Program.Code
	assert.Contains(t, progCode, int64(bytecode.FUNCTION))
	assert.Contains(t, progCode, int64(bytecode.CALL))
	assert.Equal(t, int64(bytecode.EXIT), progCode[len(progCode)-1])
}

func TestCompile_ListLiteralReversedEmission(t *testing.T) {
	prog, err := Compile("[1, 2, 3]")
	require.NoError(t, err)

	code := prog.Program.Code
	require.Equal(t, []int64{
		int64(bytecode.PUSH), 0, // 3
		int64(bytecode.PUSH), 1, // 2
		int64(bytecode.PUSH), 2, // 1
		int64(bytecode.LIST), 3,
		int64(bytecode.POP),
		int64(bytecode.EXIT),
	}, code)

	assert.Equal(t, bytecode.Int(3), prog.Program.Constants[0])
	assert.Equal(t, bytecode.Int(2), prog.Program.Constants[1])
	assert.Equal(t, bytecode.Int(1), prog.Program.Constants[2])
	assert.Equal(t, bytecode.Int(3), prog.Program.Constants[3])
}

func TestCompile_IfWithElseIsUnimplemented(t *testing.T) {
	// The supplemented parser never produces a populated Else branch,
	// but the emitter must refuse one outright rather than invent
	// semantics for it (spec open question on if/else emission).
	_, err := compileStatement(&ast.IfStatement{
		Tok:       token.Token{Line: 1},
		Condition: &ast.BoolLiteral{Tok: token.Token{Line: 1}, Value: true},
		Then:      &ast.PrintStatement{Tok: token.Token{Line: 1}, Value: &ast.NoneLiteral{Tok: token.Token{Line: 1}}},
		Else:      &ast.PrintStatement{Tok: token.Token{Line: 1}, Value: &ast.NoneLiteral{Tok: token.Token{Line: 1}}},
	})
	require.Error(t, err)
	_, ok := err.(*StructuralError)
	assert.True(t, ok)
}

func TestCompile_UnrecognizedNodeIsStructuralError(t *testing.T) {
	_, err := compileStatement(unknownStatement{})
	require.Error(t, err)
	_, ok := err.(*StructuralError)
	assert.True(t, ok)
}

// compileStatement runs one statement through a fresh Emitter,
// recovering the panic-based structural-error path the same way
// Compile does, for tests that want to probe it directly.
func compileStatement(s ast.Statement) (prog *bytecode.Program, err error) {
	e := newEmitter()
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*StructuralError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	e.compileStatement(s)
	return e.program, nil
}

// unknownStatement embeds ast.Statement so it satisfies that interface's
// unexported marker method, which a type outside package ast cannot
// declare itself.
type unknownStatement struct{ ast.Statement }

func (unknownStatement) Line() int { return 1 }
