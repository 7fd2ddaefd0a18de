// Package decode implements the bytecode decoder: a single forward pass
// over a method's code blob producing an ordered instruction list, mirroring
// the shape of the teacher's disasm.Disassemble (a linear byte-slice walk
// building one decoded record per opcode) but driven by the isa opcode
// table instead of a hardwired switch, since the ABC ISA has far more
// mnemonics than WebAssembly's.
package decode

import (
	"math"

	"github.com/abcd-project/abcd/ir"
	"github.com/abcd-project/abcd/isa"
)

// Warning is a structured, non-fatal decode note (the core's side channel —
// see the error handling design: log emission must not influence output).
type Warning struct {
	Offset  uint32
	Message string
}

// Result is everything the decoder produces for one method's code blob.
type Result struct {
	Instructions []ir.Instruction
	Warnings     []Warning
}

// Decode walks code linearly, producing a total instruction list. An
// unknown opcode byte is recorded as a warning and skipped by one byte;
// truncated operand reads at the end of the buffer yield zeroed bits. This
// is a best-effort decoder: it never aborts on malformed input.
func Decode(code []byte) Result {
	return DecodeWithTable(code, isa.Default)
}

// DecodeWithTable is Decode parameterised over an explicit opcode table,
// primarily for testing against a reduced table.
func DecodeWithTable(code []byte, table *isa.Table) Result {
	var res Result
	pos := 0
	for pos < len(code) {
		op, headerLen, ok := table.Lookup(code[pos:])
		if !ok {
			res.Warnings = append(res.Warnings, Warning{
				Offset:  uint32(pos),
				Message: "unknown opcode byte",
			})
			pos++
			continue
		}

		insn := ir.Instruction{
			Offset:   uint32(pos),
			Mnemonic: op.Mnemonic,
			Flags:    op.Flags,
			Size:     op.Size,
		}

		for _, desc := range op.Operands {
			operand, truncated := decodeOperand(code, pos, int(op.Size), desc)
			if truncated {
				res.Warnings = append(res.Warnings, Warning{
					Offset:  uint32(pos),
					Message: "operand read truncated at end of buffer: " + op.Mnemonic,
				})
			}
			insn.Operands = append(insn.Operands, operand)
		}

		res.Instructions = append(res.Instructions, insn)

		step := int(op.Size)
		if step <= 0 {
			step = headerLen
		}
		pos += step
	}
	return res
}

// decodeOperand extracts one operand value from the instruction starting at
// instrStart in code, per desc's (byte_offset, bit_offset_in_byte,
// bit_width) position, and classifies it into an ir.Operand.
func decodeOperand(code []byte, instrStart, instrSize int, desc isa.OperandDesc) (ir.Operand, bool) {
	raw, truncated := readBits(code, instrStart, desc)

	switch desc.Kind {
	case isa.KindReg:
		return ir.Reg{Index: uint16(raw)}, truncated
	case isa.KindID:
		return ir.EntityID{Index: uint32(raw)}, truncated
	case isa.KindImm:
		switch {
		case desc.IsJump:
			return ir.JumpOffset{Delta: int32(signExtend(raw, desc.BitWidth))}, truncated
		case desc.IsFloat:
			return ir.FloatImm{Value: math.Float64frombits(raw)}, truncated
		case desc.BitWidth >= 32:
			return ir.Imm{Value: signExtend(raw, desc.BitWidth)}, truncated
		default:
			return ir.Imm{Value: int64(raw)}, truncated
		}
	default:
		return ir.Imm{Value: int64(raw)}, truncated
	}
}

// readBits reads desc.BitWidth bits, little-endian, starting at byte
// instrStart+desc.ByteOffset and bit desc.BitOffsetInByte within that byte.
// Reads that run past the end of code return a zeroed value with
// truncated=true, per the decoder's error policy.
func readBits(code []byte, instrStart int, desc isa.OperandDesc) (uint64, bool) {
	base := instrStart + desc.ByteOffset

	if desc.BitWidth == 4 {
		if base >= len(code) {
			return 0, true
		}
		b := code[base]
		if desc.BitOffsetInByte >= 4 {
			return uint64(b>>4) & 0xF, false
		}
		return uint64(b) & 0xF, false
	}

	nbytes := desc.BitWidth / 8
	if nbytes == 0 {
		nbytes = 1
	}
	if base+nbytes > len(code) {
		return 0, true
	}

	var v uint64
	for i := 0; i < nbytes; i++ {
		v |= uint64(code[base+i]) << (8 * i)
	}
	return v, false
}

// signExtend sign-extends the low width bits of raw to a 64-bit value.
func signExtend(raw uint64, width int) int64 {
	if width <= 0 || width >= 64 {
		return int64(raw)
	}
	mask := uint64(1)<<uint(width) - 1
	v := raw & mask
	signBit := uint64(1) << uint(width-1)
	if v&signBit != 0 {
		v |= ^mask
	}
	return int64(v)
}
