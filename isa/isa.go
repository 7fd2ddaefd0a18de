// Package isa is the ArkCompiler Bytecode opcode metadata table: for each
// opcode, a mnemonic, fixed encoded size, ordered operand descriptors, and
// a flag set. This mirrors the role the teacher's wasm/operators package
// plays for WebAssembly: a lookup table the decoder queries by opcode byte,
// never a source of control flow itself.
package isa

import "github.com/abcd-project/abcd/ir"

// OperandKind classifies a decoded operand before classification into an
// ir.Operand value.
type OperandKind int

const (
	KindReg OperandKind = iota
	KindImm
	KindID
)

// OperandDesc describes how to extract one operand from an instruction's
// encoded bytes: its bit position, width, and semantic kind.
type OperandDesc struct {
	Kind            OperandKind
	BitWidth        int
	ByteOffset      int
	BitOffsetInByte int
	IsJump          bool
	IsFloat         bool
}

// Op is one entry in the opcode table.
type Op struct {
	Code     uint16 // low byte is the opcode; high byte is the prefix byte, 0 if unprefixed
	Mnemonic string
	Size     uint8
	Operands []OperandDesc
	Flags    ir.Flags
}

// Prefixed reports whether op occupies two header bytes.
func (op *Op) Prefixed() bool { return op.Code > 0xFF }

func newOp(code uint16, mnemonic string, size uint8, flags ir.Flags, operands ...OperandDesc) *Op {
	return &Op{Code: code, Mnemonic: mnemonic, Size: size, Operands: operands, Flags: flags}
}

func reg(width, byteOff int) OperandDesc {
	return OperandDesc{Kind: KindReg, BitWidth: width, ByteOffset: byteOff}
}

func regNibble(byteOff int, high bool) OperandDesc {
	off := 0
	if high {
		off = 4
	}
	return OperandDesc{Kind: KindReg, BitWidth: 4, ByteOffset: byteOff, BitOffsetInByte: off}
}

func id(width, byteOff int) OperandDesc {
	return OperandDesc{Kind: KindID, BitWidth: width, ByteOffset: byteOff}
}

func imm(width, byteOff int) OperandDesc {
	return OperandDesc{Kind: KindImm, BitWidth: width, ByteOffset: byteOff}
}

func immFloat(width, byteOff int) OperandDesc {
	return OperandDesc{Kind: KindImm, BitWidth: width, ByteOffset: byteOff, IsFloat: true}
}

func jump(width, byteOff int) OperandDesc {
	return OperandDesc{Kind: KindImm, BitWidth: width, ByteOffset: byteOff, IsJump: true}
}

// Table is a queryable opcode table, indexed by first byte for unprefixed
// opcodes and by (prefix, sub) for prefixed ones.
type Table struct {
	single   [256]*Op
	prefixed map[uint16]*Op
	isPrefix [256]bool
}

func newTable() *Table {
	return &Table{prefixed: make(map[uint16]*Op)}
}

func (t *Table) add(op *Op) {
	if op.Prefixed() {
		t.prefixed[op.Code] = op
		t.isPrefix[byte(op.Code>>8)] = true
		return
	}
	t.single[byte(op.Code)] = op
}

// Lookup resolves the opcode at buf[0:], returning the matched Op and the
// number of header bytes it consumed (1 or 2). ok is false for an unknown
// opcode byte, in which case the caller must advance by one byte per the
// decoder's error policy.
func (t *Table) Lookup(buf []byte) (op *Op, headerLen int, ok bool) {
	if len(buf) == 0 {
		return nil, 0, false
	}
	first := buf[0]
	if t.isPrefix[first] {
		if len(buf) < 2 {
			return nil, 0, false
		}
		key := uint16(first)<<8 | uint16(buf[1])
		if op, found := t.prefixed[key]; found {
			return op, 2, true
		}
		return nil, 0, false
	}
	if op := t.single[first]; op != nil {
		return op, 1, true
	}
	return nil, 0, false
}

// Default is the package-level opcode table populated by init() in
// opcodes.go, analogous to the teacher's package-level operator vars.
var Default = newTable()
