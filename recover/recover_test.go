package recover

import (
	"testing"

	"github.com/abcd-project/abcd/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	strings map[uint32]string
}

func (s stubResolver) ResolveString(_ uint32, id uint32) (string, bool) {
	v, ok := s.strings[id]
	return v, ok
}
func (s stubResolver) ResolveLiteralArray(uint32, uint32) (LiteralArray, bool) { return LiteralArray{}, false }
func (s stubResolver) ResolveMethodName(uint32, uint32) (string, bool)         { return "", false }
func (s stubResolver) StringAtOffset(uint32) (string, bool)                   { return "", false }

// Scenario A — constant return: [ldai 42; return] -> [Return(NumberLit(42))].
func TestScenarioA_ConstantReturn(t *testing.T) {
	insns := []ir.Instruction{
		{Mnemonic: "ldai", Operands: []ir.Operand{ir.Imm{Value: 42}}},
		{Mnemonic: "return", Flags: ir.FlagReturn},
	}
	res := RecoverBlock(insns, stubResolver{}, 0, 0, ir.UndefinedLit{}, nil)
	require.Len(t, res.Stmts, 1)
	ret, ok := res.Stmts[0].(ir.ReturnStmt)
	require.True(t, ok)
	assert.Equal(t, ir.NumberLit{Value: 42}, ret.Value)
}

// Scenario B — store then return: [ldai 7; sta r0; lda r0; return] -> [Return(NumberLit(7))].
func TestScenarioB_StoreThenReturn(t *testing.T) {
	insns := []ir.Instruction{
		{Mnemonic: "ldai", Operands: []ir.Operand{ir.Imm{Value: 7}}},
		{Mnemonic: "sta", Operands: []ir.Operand{ir.Reg{Index: 0}}},
		{Mnemonic: "lda", Operands: []ir.Operand{ir.Reg{Index: 0}}},
		{Mnemonic: "return", Flags: ir.FlagReturn},
	}
	res := RecoverBlock(insns, stubResolver{}, 0, 10, ir.UndefinedLit{}, nil)
	require.Len(t, res.Stmts, 1)
	ret := res.Stmts[0].(ir.ReturnStmt)
	assert.Equal(t, ir.NumberLit{Value: 7}, ret.Value)
}

// Scenario G — call whose result is discarded: [callarg0 ic; ldundefined; return]
// -> [ExprStatement(Call(...)); Return;] (the acc-flush rule fires).
func TestScenarioG_DiscardedCallResultFlushed(t *testing.T) {
	insns := []ir.Instruction{
		{Mnemonic: "callarg0", Flags: ir.FlagCall, Operands: []ir.Operand{ir.Reg{Index: 5}}},
		{Mnemonic: "ldundefined"},
		{Mnemonic: "return", Flags: ir.FlagReturn},
	}
	res := RecoverBlock(insns, stubResolver{}, 0, 3, ir.UndefinedLit{}, nil)
	require.Len(t, res.Stmts, 2)

	exprStmt, ok := res.Stmts[0].(ir.ExprStmt)
	require.True(t, ok)
	_, isCall := exprStmt.X.(ir.CallExpr)
	assert.True(t, isCall)

	ret := res.Stmts[1].(ir.ReturnStmt)
	assert.Equal(t, ir.UndefinedLit{}, ret.Value)
}

func TestAccFlushDoesNotFireForNonSideEffectingAcc(t *testing.T) {
	insns := []ir.Instruction{
		{Mnemonic: "ldtrue"},
		{Mnemonic: "ldundefined"},
		{Mnemonic: "return", Flags: ir.FlagReturn},
	}
	res := RecoverBlock(insns, stubResolver{}, 0, 0, ir.UndefinedLit{}, nil)
	require.Len(t, res.Stmts, 1)
}

func TestArgOrVarRegisterLayout(t *testing.T) {
	const numVregs = 2
	assert.Equal(t, ir.Ident{Name: "r1"}, ArgOrVar(0, numVregs))
	assert.Equal(t, ir.Ident{Name: "__funcObj"}, ArgOrVar(2, numVregs))
	assert.Equal(t, ir.NewTargetExpr{}, ArgOrVar(3, numVregs))
	assert.Equal(t, ir.ThisExpr{}, ArgOrVar(4, numVregs))
	assert.Equal(t, ir.Ident{Name: "p1"}, ArgOrVar(5, numVregs))
}

func TestCleanABCName(t *testing.T) {
	assert.Equal(t, "anonymous", CleanABCName("#*#"))
	assert.Equal(t, "MyClass", CleanABCName("=#MyClass"))
	assert.Equal(t, "method", CleanABCName(">#method"))
	assert.Equal(t, "plain", CleanABCName("plain"))
}

func TestDecodeRegexFlags(t *testing.T) {
	assert.Equal(t, "gi", decodeRegexFlags(1|2))
	assert.Equal(t, "", decodeRegexFlags(0))
	assert.Equal(t, "gimsuyd", decodeRegexFlags(1|2|4|8|16|32|64))
}

func TestGlobalThisAndArguments(t *testing.T) {
	insns := []ir.Instruction{{Mnemonic: "ldglobal"}}
	res := RecoverBlock(insns, stubResolver{}, 0, 0, ir.UndefinedLit{}, nil)
	assert.Equal(t, ir.GlobalThisExpr{}, res.FinalAcc)

	insns2 := []ir.Instruction{{Mnemonic: "getunmappedargs"}}
	res2 := RecoverBlock(insns2, stubResolver{}, 0, 0, ir.UndefinedLit{}, nil)
	assert.Equal(t, ir.ArgumentsExpr{}, res2.FinalAcc)
}
