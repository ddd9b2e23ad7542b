// Package disasm renders a bytecode.Program as human-readable text.
// It is adapted from the teacher's internal/vm/disasm.go: a simple
// offset-walking loop over one region's code stream, printing the
// line number only when it changes from the previous instruction.
package disasm

import (
	"fmt"
	"strings"

	"github.com/Uzendayo/Nuua/internal/bytecode"
)

// Disassemble renders p under the given program name: always the
// program region, and the functions and classes regions only when
// they are non-empty.
func Disassemble(p *bytecode.Program, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	disassembleRegion(&sb, p.Program, "program")
	if p.Functions.Len() > 0 {
		disassembleRegion(&sb, p.Functions, "functions")
	}
	if p.Classes.Len() > 0 {
		disassembleRegion(&sb, p.Classes, "classes")
	}
	return sb.String()
}

// DisassembleRegion renders a single region, for callers that already
// know which one they care about (tests, mostly).
func DisassembleRegion(r *bytecode.Region, name string) string {
	var sb strings.Builder
	disassembleRegion(&sb, r, name)
	return sb.String()
}

func disassembleRegion(sb *strings.Builder, r *bytecode.Region, name string) {
	fmt.Fprintf(sb, "-- %s --\n", name)
	offset := 0
	for offset < len(r.Code) {
		offset = disassembleInstruction(sb, r, offset)
	}
}

func disassembleInstruction(sb *strings.Builder, r *bytecode.Region, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)

	if offset > 0 && r.Lines[offset] == r.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", r.Lines[offset])
	}

	op := bytecode.Opcode(r.Code[offset])
	n := op.OperandCount()

	switch n {
	case 0:
		fmt.Fprintf(sb, "%s\n", op)
		return offset + 1
	case 1:
		idx := int(r.Code[offset+1])
		fmt.Fprintf(sb, "%-14s %4d %s\n", op, idx, operandLabel(r, idx))
		return offset + 2
	case 2:
		first := int(r.Code[offset+1])
		second := int(r.Code[offset+2])
		fmt.Fprintf(sb, "%-14s %4d %s, %4d %s\n", op, first, operandLabel(r, first), second, operandLabel(r, second))
		return offset + 3
	default:
		fmt.Fprintf(sb, "%-14s (unknown operand shape)\n", op)
		return offset + 1
	}
}

func operandLabel(r *bytecode.Region, idx int) string {
	if idx < 0 || idx >= len(r.Constants) {
		return "(invalid)"
	}
	return fmt.Sprintf("'%s'", r.Constants[idx].Inspect())
}
