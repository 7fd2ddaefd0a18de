package decode

import (
	"testing"

	"github.com/abcd-project/abcd/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConstantReturn(t *testing.T) {
	// ldai 42; return
	code := []byte{0x04, 42, 0, 0, 0, 0x90}
	res := Decode(code)
	require.Empty(t, res.Warnings)
	require.Len(t, res.Instructions, 2)

	assert.Equal(t, "ldai", res.Instructions[0].Mnemonic)
	require.Len(t, res.Instructions[0].Operands, 1)
	assert.Equal(t, ir.Imm{Value: 42}, res.Instructions[0].Operands[0])

	assert.Equal(t, "return", res.Instructions[1].Mnemonic)
	assert.True(t, res.Instructions[1].Flags.Has(ir.FlagReturn))
	assert.Equal(t, uint32(5), res.Instructions[1].Offset)
}

func TestDecodeTotality(t *testing.T) {
	// Sum of instruction sizes must equal len(code) when no unknown opcode
	// forces a byte skip (property 1).
	code := []byte{0x09, 0x90} // ldundefined; return
	res := Decode(code)
	require.Empty(t, res.Warnings)

	var total uint32
	for _, insn := range res.Instructions {
		total += uint32(insn.Size)
	}
	assert.Equal(t, uint32(len(code)), total)
}

func TestDecodeUnknownOpcodeSkipsOneByte(t *testing.T) {
	code := []byte{0xFE, 0x90} // unknown byte; return
	res := Decode(code)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, uint32(0), res.Warnings[0].Offset)
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, "return", res.Instructions[0].Mnemonic)
	assert.Equal(t, uint32(1), res.Instructions[0].Offset)
}

func TestDecodeTruncatedOperandYieldsZero(t *testing.T) {
	code := []byte{0x04, 1, 2} // ldai with a truncated 4-byte immediate
	res := Decode(code)
	require.Len(t, res.Warnings, 1)
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, ir.Imm{Value: 0}, res.Instructions[0].Operands[0])
}

func TestDecodeJumpOffsetSignExtension(t *testing.T) {
	// jeqz with a negative 16-bit offset.
	code := []byte{0xC1, 0xFE, 0xFF} // -2
	res := Decode(code)
	require.Empty(t, res.Warnings)
	require.Len(t, res.Instructions, 1)
	target, ok := res.Instructions[0].JumpTarget()
	require.True(t, ok)
	assert.Equal(t, int64(-2), int64(int32(target)))
}

func TestIsConditionalThrowExcludedFromTerminators(t *testing.T) {
	insn := ir.Instruction{Mnemonic: "throwundefinedifhole", Flags: ir.FlagThrow}
	assert.False(t, insn.IsTerminator())

	insn2 := ir.Instruction{Mnemonic: "throw", Flags: ir.FlagThrow}
	assert.True(t, insn2.IsTerminator())
}
