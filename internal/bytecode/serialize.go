package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encode serializes a Program for the on-disk compiled-program cache
// (internal/diskcache). The three regions are written independently,
// each length-prefixed, matching spec.md §6's requirement that "the
// three regions must be serialized independently with their lengths."
//
// Wire format per region, little-endian throughout:
//
//	uint32 codeLen
//	codeLen * int64  code slots
//	codeLen * int64  line numbers (one per code slot, no separate length)
//	uint32 constLen
//	constLen * encoded Value
//
// Every numeric slot — code, line, and operand — is written as a
// fixed 8-byte (int64) field; this is the "slot width" spec.md §6
// asks an implementer to document.
func (p *Program) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, r := range []*Region{p.Program, p.Functions, p.Classes} {
		if err := encodeRegion(&buf, r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeRegion(buf *bytes.Buffer, r *Region) error {
	if len(r.Code) != len(r.Lines) {
		return fmt.Errorf("bytecode: region invariant violated: len(code)=%d len(lines)=%d", len(r.Code), len(r.Lines))
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(r.Code))); err != nil {
		return err
	}
	for _, slot := range r.Code {
		if err := binary.Write(buf, binary.LittleEndian, slot); err != nil {
			return err
		}
	}
	for _, line := range r.Lines {
		if err := binary.Write(buf, binary.LittleEndian, int64(line)); err != nil {
			return err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(r.Constants))); err != nil {
		return err
	}
	for _, v := range r.Constants {
		if err := encodeValue(buf, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	if err := buf.WriteByte(byte(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case KindInt:
		return binary.Write(buf, binary.LittleEndian, v.I)
	case KindFloat:
		return binary.Write(buf, binary.LittleEndian, v.F)
	case KindBool:
		b := byte(0)
		if v.B {
			b = 1
		}
		return buf.WriteByte(b)
	case KindString:
		return writeString(buf, v.S)
	case KindType:
		return writeString(buf, v.T.Name)
	default: // KindNil
		return nil
	}
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

// Decode reconstructs a Program from bytes written by Encode.
func Decode(data []byte) (*Program, error) {
	r := bytes.NewReader(data)
	p := &Program{}
	var err error
	if p.Program, err = decodeRegion(r); err != nil {
		return nil, err
	}
	if p.Functions, err = decodeRegion(r); err != nil {
		return nil, err
	}
	if p.Classes, err = decodeRegion(r); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeRegion(r *bytes.Reader) (*Region, error) {
	var codeLen uint32
	if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
		return nil, err
	}
	code := make([]int64, codeLen)
	for i := range code {
		if err := binary.Read(r, binary.LittleEndian, &code[i]); err != nil {
			return nil, err
		}
	}
	lines := make([]int, codeLen)
	for i := range lines {
		var line int64
		if err := binary.Read(r, binary.LittleEndian, &line); err != nil {
			return nil, err
		}
		lines[i] = int(line)
	}
	var constLen uint32
	if err := binary.Read(r, binary.LittleEndian, &constLen); err != nil {
		return nil, err
	}
	constants := make([]Value, constLen)
	for i := range constants {
		v, err := decodeValue(r)
		if err != nil {
			return nil, err
		}
		constants[i] = v
	}
	return &Region{Code: code, Lines: lines, Constants: constants}, nil
}

func decodeValue(r *bytes.Reader) (Value, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return Value{}, err
	}
	kind := Kind(kindByte)
	switch kind {
	case KindInt:
		var i int64
		if err := binary.Read(r, binary.LittleEndian, &i); err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case KindFloat:
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case KindBool:
		b, err := r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		return Bool(b != 0), nil
	case KindString:
		s, err := readString(r)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case KindType:
		s, err := readString(r)
		if err != nil {
			return Value{}, err
		}
		return Type(s), nil
	case KindNil:
		return Nil(), nil
	default:
		return Value{}, fmt.Errorf("bytecode: unknown value kind %d", kindByte)
	}
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}
