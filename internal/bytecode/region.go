package bytecode

// Region is a contiguous segment that owns a code stream, a constants
// pool, and a parallel line-number stream. It grows monotonically
// during emission: no deletion, no backward truncation. Back-patches
// mutate existing constants-pool entries in place but never shrink
// either stream.
//
// The code stream mixes opcodes and constant-pool indices in a single
// monotonic sequence of slot-sized integers; decoding is positional,
// driven by Opcode.OperandCount.
type Region struct {
	Code      []int64
	Constants []Value
	Lines     []int
}

// NewRegion returns an empty region ready for emission.
func NewRegion() *Region {
	return &Region{
		Code:      make([]int64, 0, 64),
		Constants: make([]Value, 0, 16),
		Lines:     make([]int, 0, 64),
	}
}

// Len returns the number of slots currently in the code stream.
func (r *Region) Len() int {
	return len(r.Code)
}

// write appends one raw slot to the code stream, recording line.
func (r *Region) write(slot int64, line int) {
	r.Code = append(r.Code, slot)
	r.Lines = append(r.Lines, line)
}

// WriteOp appends an opcode slot.
func (r *Region) WriteOp(op Opcode, line int) {
	r.write(int64(op), line)
}

// AddConstant appends v to the constants pool and returns its index.
func (r *Region) AddConstant(v Value) int {
	r.Constants = append(r.Constants, v)
	return len(r.Constants) - 1
}

// EmitConstantOnly interns v into the constants pool and writes the
// resulting pool index as the next code slot. It returns the pool
// index so callers can back-patch it later via PatchConstant.
func (r *Region) EmitConstantOnly(v Value, line int) int {
	idx := r.AddConstant(v)
	r.write(int64(idx), line)
	return idx
}

// PatchConstant overwrites the pool entry at index in place. This is
// the only mutation primitive exposed on an otherwise append-only
// region; it is how forward branches and loop offsets get their real
// values once the target address is known.
func (r *Region) PatchConstant(index int, v Value) {
	if index < 0 || index >= len(r.Constants) {
		panic("bytecode: patch index out of range")
	}
	r.Constants[index] = v
}

// RegionKind selects which of a Program's three regions is currently
// receiving emitted code.
type RegionKind uint8

const (
	RegionProgram RegionKind = iota
	RegionFunctions
	RegionClasses
)

func (k RegionKind) String() string {
	switch k {
	case RegionProgram:
		return "program"
	case RegionFunctions:
		return "functions"
	case RegionClasses:
		return "classes"
	default:
		return "unknown"
	}
}

// Program aggregates the three memory regions the VM expects: the
// top-level program, all function bodies, and a reserved (currently
// unused — see DESIGN.md Open Question 2) classes region.
type Program struct {
	Program   *Region
	Functions *Region
	Classes   *Region
}

// NewProgram returns a Program with three empty regions.
func NewProgram() *Program {
	return &Program{
		Program:   NewRegion(),
		Functions: NewRegion(),
		Classes:   NewRegion(),
	}
}

// Region returns the region identified by kind.
func (p *Program) Region(kind RegionKind) *Region {
	switch kind {
	case RegionFunctions:
		return p.Functions
	case RegionClasses:
		return p.Classes
	default:
		return p.Program
	}
}
