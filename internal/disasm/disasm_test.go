package disasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uzendayo/Nuua/internal/compiler"
)

func TestDisassemble_PrintAddition(t *testing.T) {
	prog, err := compiler.Compile("print 1 + 2")
	require.NoError(t, err)

	out := Disassemble(prog, "test")
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "PUSH")
	assert.Contains(t, out, "'1'")
	assert.Contains(t, out, "'2'")
	assert.Contains(t, out, "ADD")
	assert.Contains(t, out, "PRINT")
	assert.Contains(t, out, "EXIT")
}

func TestDisassemble_FunctionsRegionOnlyShownWhenNonEmpty(t *testing.T) {
	prog, err := compiler.Compile("print 1")
	require.NoError(t, err)

	out := Disassemble(prog, "test")
	assert.False(t, strings.Contains(out, "-- functions --"))
}

func TestDisassemble_ShowsFunctionsRegionWhenPresent(t *testing.T) {
	prog, err := compiler.Compile(`f: fn = fn(x: int) -> int { return x + 1 }
f(2)`)
	require.NoError(t, err)

	out := Disassemble(prog, "test")
	assert.Contains(t, out, "-- functions --")
	assert.Contains(t, out, "ONLY_STORE")
}
