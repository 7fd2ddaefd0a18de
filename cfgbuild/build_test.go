package cfgbuild

import (
	"testing"

	"github.com/abcd-project/abcd/decode"
	"github.com/abcd-project/abcd/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSimpleIf(t *testing.T) {
	// jeqz -> offset 6 (conditional); fallthrough block returns; target
	// block also returns. Built directly as an instruction list since
	// hand-encoding raw bytes with correct offsets is error prone.
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "jeqz", Flags: ir.FlagJump | ir.FlagConditional, Size: 3,
			Operands: []ir.Operand{ir.JumpOffset{Delta: 6}}},
		{Offset: 3, Mnemonic: "sta", Flags: 0, Size: 2, Operands: []ir.Operand{ir.Reg{Index: 1}}},
		{Offset: 5, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
		{Offset: 6, Mnemonic: "sta", Flags: 0, Size: 2, Operands: []ir.Operand{ir.Reg{Index: 1}}},
		{Offset: 8, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	g := Build(insns, nil)

	require.Len(t, g.Blocks, 3)
	assert.Equal(t, []ir.BlockID{1, 2}, g.Blocks[0].Succs)
	assert.Empty(t, g.Blocks[1].Succs)
	assert.Empty(t, g.Blocks[2].Succs)

	// property 3: every successor id is valid and preds are consistent.
	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			require.Less(t, int(s), len(g.Blocks))
			assert.Contains(t, g.Blocks[s].Preds, b.ID)
		}
	}
}

func TestBuildCoversEveryInstructionExactlyOnce(t *testing.T) {
	res := decode.Decode([]byte{0x09, 0x04, 7, 0, 0, 0, 0x90}) // ldundefined; ldai 7; return
	g := Build(res.Instructions, nil)

	seen := make(map[int]bool)
	for _, b := range g.Blocks {
		require.Greater(t, b.Len(), 0)
		for i := b.FirstInsn; i < b.LastInsnExclusive; i++ {
			assert.False(t, seen[i], "instruction %d covered by more than one block", i)
			seen[i] = true
		}
	}
	assert.Len(t, seen, len(res.Instructions))
}

func TestConditionalThrowDoesNotTerminateBlock(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "throwundefinedifhole", Flags: ir.FlagThrow, Size: 3,
			Operands: []ir.Operand{ir.EntityID{Index: 1}}},
		{Offset: 3, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	g := Build(insns, nil)
	require.Len(t, g.Blocks, 1)
	assert.Equal(t, 2, g.Blocks[0].Len())
}

func TestCatchHandlerBlockMarked(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "ldundefined", Size: 1},
		{Offset: 1, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
		{Offset: 2, Mnemonic: "ldundefined", Size: 1}, // catch handler body
		{Offset: 3, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	tries := []ir.TryRegion{{
		StartPC: 0, Length: 2,
		Catches: []ir.CatchInfo{{TypeIdx: 0, HandlerPC: 2, CodeSize: 2}},
	}}
	g := Build(insns, tries)
	require.Len(t, g.Blocks, 2)
	assert.False(t, g.Blocks[0].IsCatchHandler)
	assert.True(t, g.Blocks[1].IsCatchHandler)
}
