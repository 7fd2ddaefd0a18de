package isa

import "github.com/abcd-project/abcd/ir"

// Opcode byte assignments below are internal to this table: the upstream
// ISA's real byte layout is generated from a build script that is not part
// of this decompiler's inputs (the core only ever receives a decoded
// Instruction, never a raw byte->mnemonic mapping it has to match bit for
// bit against the real toolchain). Mnemonics, operand shapes and flags are
// what the recovery and structuring passes key off; the codes only need to
// be mutually distinct and stable within this package.

// Constant loads.
var (
	OpLdaDyn        = newOp(0x01, "lda", 2, 0, reg(8, 1))
	OpStaDyn        = newOp(0x02, "sta", 2, 0, reg(8, 1))
	OpMovDyn        = newOp(0x03, "mov", 3, 0, reg(8, 1), reg(8, 2))
	OpLdaiDyn       = newOp(0x04, "ldai", 5, 0, imm(32, 1))
	OpFldaiDyn      = newOp(0x05, "fldai", 9, 0, immFloat(64, 1))
	OpLdaStr        = newOp(0x06, "ldastr", 3, ir.FlagStringID, id(16, 1))
	OpLdNan         = newOp(0x07, "ldnan", 1, 0)
	OpLdInfinity    = newOp(0x08, "ldinfinity", 1, 0)
	OpLdUndefined   = newOp(0x09, "ldundefined", 1, 0)
	OpLdNull        = newOp(0x0A, "ldnull", 1, 0)
	OpLdTrue        = newOp(0x0B, "ldtrue", 1, 0)
	OpLdFalse       = newOp(0x0C, "ldfalse", 1, 0)
	OpLdHole        = newOp(0x0D, "ldhole", 1, 0)
	OpLdSymbol      = newOp(0x0E, "ldsymbol", 1, 0)
	OpLdFunction    = newOp(0x0F, "ldfunction", 1, 0)
	OpLdNewTarget   = newOp(0x10, "ldnewtarget", 1, 0)
	OpLdThis        = newOp(0x11, "ldthis", 1, 0)
	OpLdGlobal      = newOp(0x12, "ldglobal", 1, 0)
	OpGetUnmappedArgs = newOp(0x13, "getunmappedargs", 1, 0)
)

// Lexical environment.
var (
	OpLdLexVar  = newOp(0x14, "ldlexvar", 3, 0, imm(8, 1), imm(8, 2))
	OpStLexVar  = newOp(0x15, "stlexvar", 3, 0, imm(8, 1), imm(8, 2))
	OpNewLexEnv = newOp(0x16, "newlexenv", 2, 0, imm(8, 1))
	OpPopLexEnv = newOp(0x17, "poplexenv", 1, 0)
)

// Global / module variables.
var (
	OpTryLdGlobalByName = newOp(0x18, "tryldglobalbyname", 3, ir.FlagStringID, id(16, 1))
	OpTryStGlobalByName = newOp(0x19, "trystglobalbyname", 3, ir.FlagStringID, id(16, 1))
	OpStGlobalVar        = newOp(0x1A, "stglobalvar", 3, ir.FlagStringID, id(16, 1))
	OpLdGlobalVar        = newOp(0x1B, "ldglobalvar", 3, ir.FlagStringID, id(16, 1))
	OpLdModVarByName     = newOp(0x1C, "ldmodvarbyname", 3, ir.FlagStringID, id(16, 1))
	OpStModVar           = newOp(0x1D, "stmodulevar", 3, 0, imm(16, 1))
	OpLdLocalModVar      = newOp(0x1E, "ldlocalmodulevar", 3, 0, imm(16, 1))
	OpLdExternalModVar   = newOp(0x1F, "ldexternalmodulevar", 3, 0, imm(16, 1))
)

// Property access.
var (
	OpLdObjByName  = newOp(0x20, "ldobjbyname", 4, ir.FlagStringID, reg(8, 1), id(16, 2))
	OpStObjByName  = newOp(0x21, "stobjbyname", 5, ir.FlagStringID, id(16, 1), reg(8, 3), reg(8, 4))
	OpLdObjByValue = newOp(0x22, "ldobjbyvalue", 3, 0, reg(8, 1))
	OpStObjByValue = newOp(0x23, "stobjbyvalue", 4, 0, reg(8, 1), reg(8, 2))
	OpLdObjByIndex = newOp(0x24, "ldobjbyindex", 5, 0, reg(8, 1), imm(32, 2))
	OpStObjByIndex = newOp(0x25, "stobjbyindex", 5, 0, reg(8, 1), imm(32, 2))
	OpLdSuperByName = newOp(0x26, "ldsuperbyname", 3, ir.FlagStringID, id(16, 1))
	OpStSuperByName = newOp(0x27, "stsuperbyname", 3, ir.FlagStringID, id(16, 1))
	OpDefineGetterSetterByValue = newOp(0x28, "definegettersetterbyvalue", 5,
		0, reg(8, 1), reg(8, 2), reg(8, 3), reg(8, 4))
)

// Binary operators.
var (
	OpAdd2Dyn    = newOp(0x30, "add2", 2, 0, reg(8, 1))
	OpSub2Dyn    = newOp(0x31, "sub2", 2, 0, reg(8, 1))
	OpMul2Dyn    = newOp(0x32, "mul2", 2, 0, reg(8, 1))
	OpDiv2Dyn    = newOp(0x33, "div2", 2, 0, reg(8, 1))
	OpMod2Dyn    = newOp(0x34, "mod2", 2, 0, reg(8, 1))
	OpExpDyn     = newOp(0x35, "exp", 2, 0, reg(8, 1))
	OpShl2Dyn    = newOp(0x36, "shl2", 2, 0, reg(8, 1))
	OpShr2Dyn    = newOp(0x37, "shr2", 2, 0, reg(8, 1))
	OpAshr2Dyn   = newOp(0x38, "ashr2", 2, 0, reg(8, 1))
	OpAnd2Dyn    = newOp(0x39, "and2", 2, 0, reg(8, 1))
	OpOr2Dyn     = newOp(0x3A, "or2", 2, 0, reg(8, 1))
	OpXor2Dyn    = newOp(0x3B, "xor2", 2, 0, reg(8, 1))
	OpEqDyn      = newOp(0x3C, "eq", 2, 0, reg(8, 1))
	OpNotEqDyn   = newOp(0x3D, "noteq", 2, 0, reg(8, 1))
	OpStrictEqDyn   = newOp(0x3E, "stricteq", 2, 0, reg(8, 1))
	OpStrictNotEqDyn = newOp(0x3F, "strictnoteq", 2, 0, reg(8, 1))
	OpLessDyn    = newOp(0x40, "less", 2, 0, reg(8, 1))
	OpLessEqDyn  = newOp(0x41, "lesseq", 2, 0, reg(8, 1))
	OpGreaterDyn = newOp(0x42, "greater", 2, 0, reg(8, 1))
	OpGreaterEqDyn = newOp(0x43, "greatereq", 2, 0, reg(8, 1))
	OpIsInDyn    = newOp(0x44, "isin", 2, 0, reg(8, 1))
	OpInstanceOfDyn = newOp(0x45, "instanceof", 2, 0, reg(8, 1))
)

// Unary operators.
var (
	OpNegDyn       = newOp(0x50, "neg", 1, 0)
	OpNotDyn       = newOp(0x51, "not", 1, 0)
	OpIncDyn       = newOp(0x52, "inc", 1, 0)
	OpDecDyn       = newOp(0x53, "dec", 1, 0)
	OpToNumberDyn  = newOp(0x54, "tonumber", 1, 0)
	OpToNumericDyn = newOp(0x55, "tonumeric", 1, 0)
	OpTypeOfDyn    = newOp(0x56, "typeof", 1, 0)
)

// Calls.
var (
	OpCallArg0   = newOp(0x60, "callarg0", 2, ir.FlagCall, reg(8, 1))
	OpCallArg1   = newOp(0x61, "callarg1", 3, ir.FlagCall, reg(8, 1), reg(8, 2))
	OpCallArgs2  = newOp(0x62, "callargs2", 4, ir.FlagCall, reg(8, 1), reg(8, 2), reg(8, 3))
	OpCallArgs3  = newOp(0x63, "callargs3", 5, ir.FlagCall, reg(8, 1), reg(8, 2), reg(8, 3), reg(8, 4))
	OpCallRange  = newOp(0x64, "callrange", 3, ir.FlagCall|ir.FlagRange, imm(8, 1), reg(8, 2))
	OpCallThisRange = newOp(0x65, "callthisrange", 3, ir.FlagCall|ir.FlagRange, imm(8, 1), reg(8, 2))
	OpSuperCall  = newOp(0x66, "supercall", 3, ir.FlagCall|ir.FlagRange, imm(8, 1), reg(8, 2))
	OpApply      = newOp(0x67, "apply", 3, ir.FlagCall, reg(8, 1), reg(8, 2))
	OpNewObjRange = newOp(0x68, "newobjrange", 3, ir.FlagRange, imm(8, 1), reg(8, 2))
)

// Object / array construction.
var (
	OpCreateEmptyObject = newOp(0x70, "createemptyobject", 1, 0)
	OpCreateEmptyArray  = newOp(0x71, "createemptyarray", 1, 0)
	OpCreateObjectWithBuffer = newOp(0x72, "createobjectwithbuffer", 3, ir.FlagLiteralArrayID, id(16, 1))
	OpCreateArrayWithBuffer  = newOp(0x73, "createarraywithbuffer", 3, ir.FlagLiteralArrayID, id(16, 1))
	OpCopyDataProperties     = newOp(0x74, "copydataproperties", 2, 0, reg(8, 1))
	OpCreateObjectWithExcludedKeys = newOp(0x75, "createobjectwithexcludedkeys", 3, ir.FlagRange, imm(8, 1), reg(8, 2))
	OpCreateRegExpWithLiteral = newOp(0x76, "createregexpwithliteral", 5, ir.FlagStringID, id(16, 1), imm(8, 3))
)

// Function / class definitions.
var (
	OpDefineFunc  = newOp(0x80, "definefunc", 5, ir.FlagMethodID, id(16, 1), imm(8, 3))
	OpDefineMethod = newOp(0x81, "definemethod", 5, ir.FlagMethodID, id(16, 1), imm(8, 3))
	OpDefineClassWithBuffer = newOp(0x82, "defineclasswithbuffer", 7, ir.FlagMethodID|ir.FlagLiteralArrayID, id(16, 1), id(16, 3), reg(8, 5))
)

// Returns / throws / debugger.
var (
	OpReturnDyn       = newOp(0x90, "return", 1, ir.FlagReturn)
	OpReturnUndefined = newOp(0x91, "returnundefined", 1, ir.FlagReturn)
	OpThrowDyn        = newOp(0x92, "throw", 1, ir.FlagThrow)
	OpThrowNotExists  = newOp(0x93, "thrownotexists", 1, ir.FlagThrow)
	OpDebugger        = newOp(0x94, "debugger", 1, 0)
)

// Conditional-throw family (TDZ / guard checks) — never block terminators.
var (
	OpThrowIfNotObject      = newOp(0x9A, "throwifnotobject", 2, ir.FlagThrow, reg(8, 1))
	OpThrowUndefinedIfHole  = newOp(0x9B, "throwundefinedifhole", 3, ir.FlagThrow, id(16, 1))
	OpThrowIfSuperNotCorrectCall = newOp(0x9C, "throwifsupernotcorrectcall", 2, ir.FlagThrow, imm(8, 1))
	OpThrowUndefinedIfHoleWithName = newOp(0x9D, "throwundefinedifholewithname", 3, ir.FlagThrow, id(16, 1))
	OpThrowDeleteSuperProperty = newOp(0x9E, "throwdeletesuperproperty", 1, ir.FlagThrow)
	OpThrowConstAssignment  = newOp(0x9F, "throwconstassignment", 3, ir.FlagThrow, id(16, 1))
	OpThrowIfHoleWithName   = newOp(0xA0, "throwifholewithname", 3, ir.FlagThrow, id(16, 1))
	OpThrowPatternNonCoercible = newOp(0xA1, "throwpatternnoncoercible", 1, ir.FlagThrow)
)

// Iterators / generators / async.
var (
	OpSuspendGenerator = newOp(0xA8, "suspendgenerator", 2, 0, reg(8, 1))
	OpAsyncFunctionAwaitUncaught = newOp(0xA9, "asyncfunctionawaituncaught", 2, 0, reg(8, 1))
	OpAsyncGeneratorResolve = newOp(0xAA, "asyncgeneratorresolve", 2, 0, reg(8, 1))
	OpGetIterator      = newOp(0xAB, "getiterator", 1, 0)
	OpGetAsyncIterator = newOp(0xAC, "getasynciterator", 1, 0)
	OpIteratorNext     = newOp(0xAD, "iteratornext", 2, 0, reg(8, 1))
)

// Sendable / concurrent-module runtime calls.
var (
	OpLdSendableVar       = newOp(0xB0, "callruntime.ldsendablevar", 3, 0, imm(16, 1))
	OpStSendableVar       = newOp(0xB1, "callruntime.stsendablevar", 3, 0, imm(16, 1))
	OpDefineSendableClass = newOp(0xB2, "callruntime.definesendableclass", 5, ir.FlagMethodID|ir.FlagLiteralArrayID, id(16, 1), id(16, 3))
	OpLdSendableClass     = newOp(0xB3, "callruntime.ldsendableclass", 2, 0, imm(8, 1))
	OpDynamicImport       = newOp(0xB4, "dynamicimport", 1, 0)
)

// Conditional branches and unconditional jumps. The 2-byte jump-offset
// variants cover ordinary control flow; wide 4-byte variants exist in the
// real ISA for long-range branches but are out of scope for this table.
var (
	OpJmp   = newOp(0xC0, "jmp", 3, ir.FlagJump, jump(16, 1))
	OpJeqz  = newOp(0xC1, "jeqz", 3, ir.FlagJump|ir.FlagConditional, jump(16, 1))
	OpJnez  = newOp(0xC2, "jnez", 3, ir.FlagJump|ir.FlagConditional, jump(16, 1))
	OpJstricteqz = newOp(0xC3, "jstricteqz", 3, ir.FlagJump|ir.FlagConditional, jump(16, 1))
	OpJnstricteqz = newOp(0xC4, "jnstricteqz", 3, ir.FlagJump|ir.FlagConditional, jump(16, 1))
)

func init() {
	ops := []*Op{
		OpLdaDyn, OpStaDyn, OpMovDyn, OpLdaiDyn, OpFldaiDyn, OpLdaStr, OpLdNan,
		OpLdInfinity, OpLdUndefined, OpLdNull, OpLdTrue, OpLdFalse, OpLdHole,
		OpLdSymbol, OpLdFunction, OpLdNewTarget, OpLdThis, OpLdGlobal, OpGetUnmappedArgs,
		OpLdLexVar, OpStLexVar, OpNewLexEnv, OpPopLexEnv,
		OpTryLdGlobalByName, OpTryStGlobalByName, OpStGlobalVar, OpLdGlobalVar,
		OpLdModVarByName, OpStModVar, OpLdLocalModVar, OpLdExternalModVar,
		OpLdObjByName, OpStObjByName, OpLdObjByValue, OpStObjByValue,
		OpLdObjByIndex, OpStObjByIndex, OpLdSuperByName, OpStSuperByName,
		OpDefineGetterSetterByValue,
		OpAdd2Dyn, OpSub2Dyn, OpMul2Dyn, OpDiv2Dyn, OpMod2Dyn, OpExpDyn,
		OpShl2Dyn, OpShr2Dyn, OpAshr2Dyn, OpAnd2Dyn, OpOr2Dyn, OpXor2Dyn,
		OpEqDyn, OpNotEqDyn, OpStrictEqDyn, OpStrictNotEqDyn, OpLessDyn,
		OpLessEqDyn, OpGreaterDyn, OpGreaterEqDyn, OpIsInDyn, OpInstanceOfDyn,
		OpNegDyn, OpNotDyn, OpIncDyn, OpDecDyn, OpToNumberDyn, OpToNumericDyn, OpTypeOfDyn,
		OpCallArg0, OpCallArg1, OpCallArgs2, OpCallArgs3, OpCallRange, OpCallThisRange,
		OpSuperCall, OpApply, OpNewObjRange,
		OpCreateEmptyObject, OpCreateEmptyArray, OpCreateObjectWithBuffer,
		OpCreateArrayWithBuffer, OpCopyDataProperties, OpCreateObjectWithExcludedKeys,
		OpCreateRegExpWithLiteral,
		OpDefineFunc, OpDefineMethod, OpDefineClassWithBuffer,
		OpReturnDyn, OpReturnUndefined, OpThrowDyn, OpThrowNotExists, OpDebugger,
		OpThrowIfNotObject, OpThrowUndefinedIfHole, OpThrowIfSuperNotCorrectCall,
		OpThrowUndefinedIfHoleWithName, OpThrowDeleteSuperProperty, OpThrowConstAssignment,
		OpThrowIfHoleWithName, OpThrowPatternNonCoercible,
		OpSuspendGenerator, OpAsyncFunctionAwaitUncaught, OpAsyncGeneratorResolve,
		OpGetIterator, OpGetAsyncIterator, OpIteratorNext,
		OpLdSendableVar, OpStSendableVar, OpDefineSendableClass, OpLdSendableClass, OpDynamicImport,
		OpJmp, OpJeqz, OpJnez, OpJstricteqz, OpJnstricteqz,
	}
	for _, op := range ops {
		Default.add(op)
	}
}
