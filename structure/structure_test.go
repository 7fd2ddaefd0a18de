package structure

import (
	"testing"

	"github.com/abcd-project/abcd/cfgbuild"
	"github.com/abcd-project/abcd/ir"
	"github.com/abcd-project/abcd/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyResolver struct{}

func (emptyResolver) ResolveString(uint32, uint32) (string, bool)             { return "", false }
func (emptyResolver) ResolveLiteralArray(uint32, uint32) (recover.LiteralArray, bool) { return recover.LiteralArray{}, false }
func (emptyResolver) ResolveMethodName(uint32, uint32) (string, bool)         { return "", false }
func (emptyResolver) StringAtOffset(uint32) (string, bool)                   { return "", false }

// Scenario C — simple if: conditional branch targeting a later block; both
// branches reach a return. Emits an if/else (or an equivalent reshape, per
// the spec's own acknowledged ambiguity about which branch is "then").
func TestScenarioC_SimpleIf(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "jeqz", Flags: ir.FlagJump | ir.FlagConditional, Size: 3,
			Operands: []ir.Operand{ir.JumpOffset{Delta: 7}}},
		{Offset: 3, Mnemonic: "ldai", Size: 5, Operands: []ir.Operand{ir.Imm{Value: 1}}},
		{Offset: 8, Mnemonic: "sta", Size: 2, Operands: []ir.Operand{ir.Reg{Index: 1}}},
		{Offset: 10, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	// Fix up offsets/sizes to be internally consistent, then rebuild with
	// exact jump math: jeqz at 0 sized 3 jumps to offset 7 (3+4).
	insns = []ir.Instruction{
		{Offset: 0, Mnemonic: "jeqz", Flags: ir.FlagJump | ir.FlagConditional, Size: 3,
			Operands: []ir.Operand{ir.JumpOffset{Delta: 7}}},
		{Offset: 3, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 1}}},
		{Offset: 7, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 2}}},
		{Offset: 11, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	g := cfgbuild.Build(insns, nil)
	stmts := Structure(g, emptyResolver{}, 0, 0)
	// Diamond shape: the fall-through block has no statements of its own
	// and lands directly on the jump target, so the structurer emits a
	// bodiless-else if followed by the join's statements (the reshape the
	// spec explicitly allows for this scenario) rather than an if/else.
	require.Len(t, stmts, 2)
	ifStmt, ok := stmts[0].(ir.IfStmt)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Else)
	_, isReturn := stmts[1].(ir.ReturnStmt)
	assert.True(t, isReturn)
}

// Scenario D — while loop: back edge from block 2 to block 1, header
// terminator jeqz -> exit.
func TestScenarioD_WhileLoop(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "ldtrue", Size: 1},
		{Offset: 1, Mnemonic: "jeqz", Flags: ir.FlagJump | ir.FlagConditional, Size: 3,
			Operands: []ir.Operand{ir.JumpOffset{Delta: 10}}}, // -> offset 11 (exit)
		{Offset: 4, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 1}}},
		{Offset: 8, Mnemonic: "jmp", Flags: ir.FlagJump, Size: 3,
			Operands: []ir.Operand{ir.JumpOffset{Delta: -7}}}, // back to offset 1
		{Offset: 11, Mnemonic: "returnundefined", Flags: ir.FlagReturn, Size: 1},
	}
	g := cfgbuild.Build(insns, nil)
	stmts := Structure(g, emptyResolver{}, 0, 0)
	require.NotEmpty(t, stmts)

	var found bool
	for _, s := range stmts {
		if _, ok := s.(ir.WhileStmt); ok {
			found = true
		}
	}
	assert.True(t, found, "expected a WhileStmt in %#v", stmts)
}

// Scenario E — short-circuit && chain: two conditional blocks whose
// fallthrough/jump-target shapes collapse into one combined && condition
// guarding the final if/else.
func TestScenarioE_ShortCircuitAnd(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "ldtrue", Size: 1},
		{Offset: 1, Mnemonic: "jeqz", Flags: ir.FlagJump | ir.FlagConditional, Size: 3,
			Operands: []ir.Operand{ir.JumpOffset{Delta: 12}}}, // -> offset 13
		{Offset: 4, Mnemonic: "ldfalse", Size: 1},
		{Offset: 5, Mnemonic: "jeqz", Flags: ir.FlagJump | ir.FlagConditional, Size: 3,
			Operands: []ir.Operand{ir.JumpOffset{Delta: 8}}}, // -> offset 13
		{Offset: 8, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 100}}},
		{Offset: 12, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
		{Offset: 13, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 200}}},
		{Offset: 17, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	g := cfgbuild.Build(insns, nil)
	stmts := Structure(g, emptyResolver{}, 0, 0)

	require.Len(t, stmts, 1)
	ifStmt, ok := stmts[0].(ir.IfStmt)
	require.True(t, ok)

	cond, ok := ifStmt.Cond.(ir.BinaryExpr)
	require.True(t, ok, "expected a combined && condition, got %#v", ifStmt.Cond)
	assert.Equal(t, ir.OpLogAnd, cond.Op)
	assert.Equal(t, ir.BoolLit{Value: true}, cond.Left)
	assert.Equal(t, ir.BoolLit{Value: false}, cond.Right)

	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
	thenReturn, ok := ifStmt.Then[0].(ir.ReturnStmt)
	require.True(t, ok)
	assert.Equal(t, ir.NumberLit{Value: 100}, thenReturn.Value)
	elseReturn, ok := ifStmt.Else[0].(ir.ReturnStmt)
	require.True(t, ok)
	assert.Equal(t, ir.NumberLit{Value: 200}, elseReturn.Value)
}

// Scenario F — try/catch with a catch-all handler plus a second, typed
// handler: both handlers' recovered statements must merge into one
// CatchBody, and CatchParam is bound ("$err") because one handler is
// catch-all (type_idx == 0).
func TestScenarioF_TryCatchMultipleHandlers(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 1}}},
		{Offset: 4, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
		{Offset: 5, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 2}}},
		{Offset: 9, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
		{Offset: 10, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 3}}},
		{Offset: 14, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	tries := []ir.TryRegion{
		{
			StartPC: 0,
			Length:  5,
			Catches: []ir.CatchInfo{
				{TypeIdx: 0, HandlerPC: 5, CodeSize: 5},
				{TypeIdx: 5, HandlerPC: 10, CodeSize: 5},
			},
		},
	}
	g := cfgbuild.Build(insns, tries)
	stmts := Structure(g, emptyResolver{}, 0, 0)

	require.Len(t, stmts, 1)
	tryStmt, ok := stmts[0].(ir.TryStmt)
	require.True(t, ok)
	assert.Equal(t, "$err", tryStmt.CatchParam)
	require.Len(t, tryStmt.Body, 1)
	require.Len(t, tryStmt.CatchBody, 2, "both handlers' bodies should merge into one CatchBody")

	first, ok := tryStmt.CatchBody[0].(ir.ReturnStmt)
	require.True(t, ok)
	assert.Equal(t, ir.NumberLit{Value: 2}, first.Value)
	second, ok := tryStmt.CatchBody[1].(ir.ReturnStmt)
	require.True(t, ok)
	assert.Equal(t, ir.NumberLit{Value: 3}, second.Value)
}

// A try region whose only catch handler is typed (type_idx != 0, no
// catch-all) must not synthesise a $err binding.
func TestScenarioF_TryCatchTypedOnlyHasNoBinding(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 1}}},
		{Offset: 4, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
		{Offset: 5, Mnemonic: "ldai", Size: 4, Operands: []ir.Operand{ir.Imm{Value: 2}}},
		{Offset: 9, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	tries := []ir.TryRegion{
		{
			StartPC: 0,
			Length:  5,
			Catches: []ir.CatchInfo{
				{TypeIdx: 7, HandlerPC: 5, CodeSize: 5},
			},
		},
	}
	g := cfgbuild.Build(insns, tries)
	stmts := Structure(g, emptyResolver{}, 0, 0)

	require.Len(t, stmts, 1)
	tryStmt, ok := stmts[0].(ir.TryStmt)
	require.True(t, ok)
	assert.Equal(t, "", tryStmt.CatchParam)
	require.Len(t, tryStmt.CatchBody, 1)
}

func TestStructureTotalityVisitsEachBlockAtMostOnce(t *testing.T) {
	insns := []ir.Instruction{
		{Offset: 0, Mnemonic: "ldundefined", Size: 1},
		{Offset: 1, Mnemonic: "return", Flags: ir.FlagReturn, Size: 1},
	}
	g := cfgbuild.Build(insns, nil)
	stmts := Structure(g, emptyResolver{}, 0, 0)
	assert.NotNil(t, stmts)
}
