// Package bytecode implements the Value & Type model, the opcode
// alphabet, and the memory-region/program container that the Nuua
// emitter writes into.
package bytecode

import "fmt"

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindType
)

// Value is a tagged union over the runtime constants the emitter can
// push into a region's constants pool: integers, floats, strings,
// booleans, nil, and type descriptors. Constants are immutable once
// interned; copying a Value copies by value.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
	B    bool
	T    TypeDescriptor
}

// TypeDescriptor is a declared type carried as a first-class constant
// so the VM can allocate or typecheck variable slots at runtime. Nuua
// only names types here; it never interprets them.
type TypeDescriptor struct {
	Name string
}

func Int(v int64) Value      { return Value{Kind: KindInt, I: v} }
func Float(v float64) Value  { return Value{Kind: KindFloat, F: v} }
func String(v string) Value  { return Value{Kind: KindString, S: v} }
func Bool(v bool) Value      { return Value{Kind: KindBool, B: v} }
func Nil() Value             { return Value{Kind: KindNil} }
func Type(name string) Value { return Value{Kind: KindType, T: TypeDescriptor{Name: name}} }

// Inspect returns a printable, debugger-friendly form of the constant.
func (v Value) Inspect() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindString:
		return fmt.Sprintf("%q", v.S)
	case KindBool:
		return fmt.Sprintf("%t", v.B)
	case KindType:
		return v.T.Name
	default:
		return "nil"
	}
}
