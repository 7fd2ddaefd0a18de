package recover

import (
	"fmt"
	"strings"

	"github.com/abcd-project/abcd/ir"
)

// State is the abstract (accumulator, registers) state the recovery pass
// symbolically executes instructions against. Absent register entries map
// lazily to ArgOrVar(reg, numVregs).
type State struct {
	Acc  ir.Expr
	Regs map[uint16]ir.Expr
}

// Clone deep-copies regs (acc is an immutable value, so a plain copy
// suffices for it) — values are passed by structural clone when seeding a
// successor block's recovery, per the design notes on shared expression
// state across blocks.
func (s State) Clone() State {
	regs := make(map[uint16]ir.Expr, len(s.Regs))
	for k, v := range s.Regs {
		regs[k] = v
	}
	return State{Acc: s.Acc, Regs: regs}
}

// BlockRecovery is the result of recovering one basic block.
type BlockRecovery struct {
	Stmts     []ir.Stmt
	FinalAcc  ir.Expr
	FinalRegs map[uint16]ir.Expr
}

// accReplacing is the set of mnemonics that overwrite acc outright: if the
// current acc holds an unconsumed Call/New/SuperCall when one of these is
// about to execute, it must be flushed as a statement first.
var accReplacing = map[string]bool{
	"ldundefined": true, "ldnull": true, "ldtrue": true, "ldfalse": true,
	"ldnan": true, "ldinfinity": true, "ldhole": true, "ldai": true,
	"fldai": true, "ldastr": true, "ldsymbol": true,
	"createemptyobject": true, "createemptyarray": true,
	"createobjectwithbuffer": true, "createarraywithbuffer": true,
}

// RecoverBlock symbolically executes insns (the instructions of a single
// basic block) against the given initial state, returning the recovered
// statements and the final state. It is a pure function of its inputs.
func RecoverBlock(
	insns []ir.Instruction,
	resolver Resolver,
	methodOff uint32,
	numVregs uint32,
	initialAcc ir.Expr,
	initialRegs map[uint16]ir.Expr,
) BlockRecovery {
	rc := &recoverer{resolver: resolver, methodOff: methodOff, numVregs: numVregs}
	state := State{Acc: initialAcc, Regs: initialRegs}.Clone()

	for _, insn := range insns {
		if accReplacing[insn.Mnemonic] && ir.IsSideEffecting(state.Acc) {
			rc.stmts = append(rc.stmts, ir.ExprStmt{X: state.Acc})
			state.Acc = ir.UndefinedLit{}
		}
		rc.step(&state, insn)
	}

	return BlockRecovery{Stmts: rc.stmts, FinalAcc: state.Acc, FinalRegs: state.Regs}
}

type recoverer struct {
	resolver  Resolver
	methodOff uint32
	numVregs  uint32
	stmts     []ir.Stmt
}

func (rc *recoverer) getReg(state *State, idx uint16) ir.Expr {
	if v, ok := state.Regs[idx]; ok {
		return v
	}
	return ArgOrVar(idx, rc.numVregs)
}

func (rc *recoverer) setReg(state *State, idx uint16, v ir.Expr) {
	state.Regs[idx] = v
}

func (rc *recoverer) emit(s ir.Stmt) { rc.stmts = append(rc.stmts, s) }

func (rc *recoverer) resolveName(id uint32) string {
	if name, ok := rc.resolver.ResolveString(rc.methodOff, id); ok {
		return name
	}
	return fmt.Sprintf("@0x%x", id)
}

func (rc *recoverer) resolveMethodName(id uint32) ir.Expr {
	if name, ok := rc.resolver.ResolveMethodName(rc.methodOff, id); ok {
		return ir.Ident{Name: CleanABCName(name)}
	}
	return ir.UnknownExpr{Text: fmt.Sprintf("@0x%x", id)}
}

func regOperand(op ir.Operand) uint16 {
	if r, ok := op.(ir.Reg); ok {
		return r.Index
	}
	return 0
}

func idOperand(op ir.Operand) uint32 {
	if e, ok := op.(ir.EntityID); ok {
		return e.Index
	}
	return 0
}

func immOperand(op ir.Operand) int64 {
	if i, ok := op.(ir.Imm); ok {
		return i.Value
	}
	return 0
}

var binOps = map[string]ir.BinOp{
	"add2": ir.OpAdd, "sub2": ir.OpSub, "mul2": ir.OpMul, "div2": ir.OpDiv,
	"mod2": ir.OpMod, "exp": ir.OpExp,
	"shl2": ir.OpShl, "shr2": ir.OpUShr, "ashr2": ir.OpShr,
	"and2": ir.OpAnd, "or2": ir.OpOr, "xor2": ir.OpXor,
	"eq": ir.OpEq, "noteq": ir.OpNotEq,
	"stricteq": ir.OpStrictEq, "strictnoteq": ir.OpStrictNeq,
	"less": ir.OpLess, "lesseq": ir.OpLessEq,
	"greater": ir.OpGreater, "greatereq": ir.OpGreaterEq,
	"isin": ir.OpIn,
}

func (rc *recoverer) step(state *State, insn ir.Instruction) {
	if ir.IsConditionalThrow(insn.Mnemonic) {
		return
	}
	if insn.Flags.Has(ir.FlagJump) {
		return // consumed by the structuring pass via the block terminator
	}

	switch insn.Mnemonic {
	// Constant loads.
	case "ldai":
		state.Acc = ir.NumberLit{Value: float64(immOperand(insn.Operands[0]))}
	case "fldai":
		if f, ok := insn.Operands[0].(ir.FloatImm); ok {
			state.Acc = ir.NumberLit{Value: f.Value}
		}
	case "ldastr":
		state.Acc = ir.StringLit{Value: rc.resolveName(idOperand(insn.Operands[0]))}
	case "ldnan":
		state.Acc = ir.NaNLit{}
	case "ldinfinity":
		state.Acc = ir.InfinityLit{}
	case "ldundefined":
		state.Acc = ir.UndefinedLit{}
	case "ldnull":
		state.Acc = ir.NullLit{}
	case "ldtrue":
		state.Acc = ir.BoolLit{Value: true}
	case "ldfalse":
		state.Acc = ir.BoolLit{Value: false}
	case "ldhole":
		state.Acc = ir.HoleLit{}
	case "ldsymbol":
		state.Acc = ir.SymbolLit{}
	case "ldfunction":
		state.Acc = ir.Ident{Name: "__funcObj"}
	case "ldnewtarget":
		state.Acc = ir.NewTargetExpr{}
	case "ldthis":
		state.Acc = ir.ThisExpr{}
	case "ldglobal":
		state.Acc = ir.GlobalThisExpr{}
	case "getunmappedargs":
		state.Acc = ir.ArgumentsExpr{}

	// Register move.
	case "lda":
		state.Acc = rc.getReg(state, regOperand(insn.Operands[0]))
	case "sta":
		rc.setReg(state, regOperand(insn.Operands[0]), state.Acc)
	case "mov":
		rc.setReg(state, regOperand(insn.Operands[0]), rc.getReg(state, regOperand(insn.Operands[1])))

	// Lexical environment.
	case "ldlexvar":
		level, slot := immOperand(insn.Operands[0]), immOperand(insn.Operands[1])
		state.Acc = ir.Ident{Name: fmt.Sprintf("x_%d_%d", level+1, slot+1)}
	case "stlexvar":
		level, slot := immOperand(insn.Operands[0]), immOperand(insn.Operands[1])
		rc.emit(ir.AssignStmt{Target: ir.Ident{Name: fmt.Sprintf("x_%d_%d", level+1, slot+1)}, Value: state.Acc})
	case "newlexenv", "poplexenv":
		// Environment-shape bookkeeping; no source-level rendering.

	// Global / module variables.
	case "tryldglobalbyname", "ldglobalvar":
		state.Acc = ir.Ident{Name: rc.resolveName(idOperand(insn.Operands[0]))}
	case "trystglobalbyname", "stglobalvar":
		rc.emit(ir.AssignStmt{Target: ir.Ident{Name: rc.resolveName(idOperand(insn.Operands[0]))}, Value: state.Acc})
	case "ldmodvarbyname":
		state.Acc = ir.Ident{Name: rc.resolveName(idOperand(insn.Operands[0]))}
	case "stmodulevar":
		idx := immOperand(insn.Operands[0])
		rc.emit(ir.AssignStmt{Target: ir.Ident{Name: fmt.Sprintf("__module_%d", idx)}, Value: state.Acc})
	case "ldlocalmodulevar":
		idx := immOperand(insn.Operands[0])
		state.Acc = ir.Ident{Name: fmt.Sprintf("__local_module_%d", idx)}
	case "ldexternalmodulevar":
		idx := immOperand(insn.Operands[0])
		state.Acc = ir.Ident{Name: fmt.Sprintf("__export_%d", idx)}

	// Property access.
	case "ldobjbyname":
		obj := rc.getReg(state, regOperand(insn.Operands[0]))
		name := rc.resolveName(idOperand(insn.Operands[1]))
		state.Acc = ir.MemberExpr{Object: obj, Property: ir.Ident{Name: name}}
	case "stobjbyname":
		// Operand layout: [name id, cache-slot reg, object reg]; the
		// object register is operand[2], matching the ISA's documented
		// operand shape for this opcode.
		name := rc.resolveName(idOperand(insn.Operands[0]))
		obj := rc.getReg(state, regOperand(insn.Operands[2]))
		rc.emit(ir.AssignStmt{Target: ir.MemberExpr{Object: obj, Property: ir.Ident{Name: name}}, Value: state.Acc})
	case "ldobjbyvalue":
		obj := rc.getReg(state, regOperand(insn.Operands[0]))
		key := state.Acc
		state.Acc = ir.MemberExpr{Object: obj, Property: key, Computed: true}
	case "stobjbyvalue":
		obj := rc.getReg(state, regOperand(insn.Operands[0]))
		key := rc.getReg(state, regOperand(insn.Operands[1]))
		rc.emit(ir.AssignStmt{Target: ir.MemberExpr{Object: obj, Property: key, Computed: true}, Value: state.Acc})
	case "ldobjbyindex":
		obj := rc.getReg(state, regOperand(insn.Operands[0]))
		idx := immOperand(insn.Operands[1])
		state.Acc = ir.MemberExpr{Object: obj, Property: ir.NumberLit{Value: float64(idx)}, Computed: true}
	case "stobjbyindex":
		obj := rc.getReg(state, regOperand(insn.Operands[0]))
		idx := immOperand(insn.Operands[1])
		rc.emit(ir.AssignStmt{Target: ir.MemberExpr{Object: obj, Property: ir.NumberLit{Value: float64(idx)}, Computed: true}, Value: state.Acc})
	case "ldsuperbyname":
		name := rc.resolveName(idOperand(insn.Operands[0]))
		state.Acc = ir.MemberExpr{Object: ir.Ident{Name: "super"}, Property: ir.Ident{Name: name}}
	case "stsuperbyname":
		name := rc.resolveName(idOperand(insn.Operands[0]))
		rc.emit(ir.AssignStmt{Target: ir.MemberExpr{Object: ir.Ident{Name: "super"}, Property: ir.Ident{Name: name}}, Value: state.Acc})
	case "definegettersetterbyvalue":
		obj := rc.getReg(state, regOperand(insn.Operands[0]))
		name := rc.getReg(state, regOperand(insn.Operands[1]))
		getter := rc.getReg(state, regOperand(insn.Operands[2]))
		setter := rc.getReg(state, regOperand(insn.Operands[3]))
		state.Acc = ir.CallExpr{
			Callee: ir.MemberExpr{Object: ir.Ident{Name: "Object"}, Property: ir.Ident{Name: "defineProperty"}},
			Args: []ir.Expr{obj, name, ir.ObjectLit{Props: []ir.ObjectProp{
				{Key: ir.Ident{Name: "get"}, Value: getter},
				{Key: ir.Ident{Name: "set"}, Value: setter},
			}}},
		}

	// Unary operators.
	case "neg":
		state.Acc = ir.UnaryExpr{Op: ir.OpNeg, Operand: state.Acc}
	case "not":
		state.Acc = ir.UnaryExpr{Op: ir.OpBitNot, Operand: state.Acc}
	case "inc":
		state.Acc = ir.UnaryExpr{Op: ir.OpInc, Operand: state.Acc}
	case "dec":
		state.Acc = ir.UnaryExpr{Op: ir.OpDec, Operand: state.Acc}
	case "tonumber", "tonumeric":
		// Coercion ignored: identity.
	case "typeof":
		state.Acc = ir.TypeofExpr{Operand: state.Acc}

	// Calls.
	case "callarg0":
		callee := rc.getReg(state, regOperand(insn.Operands[0]))
		state.Acc = ir.CallExpr{Callee: callee}
	case "callarg1":
		callee := rc.getReg(state, regOperand(insn.Operands[0]))
		arg := rc.getReg(state, regOperand(insn.Operands[1]))
		state.Acc = ir.CallExpr{Callee: callee, Args: []ir.Expr{arg}}
	case "callargs2":
		callee := rc.getReg(state, regOperand(insn.Operands[0]))
		a0 := rc.getReg(state, regOperand(insn.Operands[1]))
		a1 := rc.getReg(state, regOperand(insn.Operands[2]))
		state.Acc = ir.CallExpr{Callee: callee, Args: []ir.Expr{a0, a1}}
	case "callargs3":
		callee := rc.getReg(state, regOperand(insn.Operands[0]))
		a0 := rc.getReg(state, regOperand(insn.Operands[1]))
		a1 := rc.getReg(state, regOperand(insn.Operands[2]))
		a2 := rc.getReg(state, regOperand(insn.Operands[3]))
		state.Acc = ir.CallExpr{Callee: callee, Args: []ir.Expr{a0, a1, a2}}
	case "callrange":
		count := immOperand(insn.Operands[0])
		start := regOperand(insn.Operands[1])
		args := rc.regRange(state, start, int(count))
		state.Acc = ir.CallExpr{Callee: state.Acc, Args: args}
	case "callthisrange":
		count := immOperand(insn.Operands[0])
		start := regOperand(insn.Operands[1])
		all := rc.regRange(state, start, int(count))
		var thisArg ir.Expr = ir.UndefinedLit{}
		rest := all
		if len(all) > 0 {
			thisArg, rest = all[0], all[1:]
		}
		state.Acc = ir.CallExpr{
			Callee: ir.MemberExpr{Object: state.Acc, Property: ir.Ident{Name: "call"}},
			Args:   append([]ir.Expr{thisArg}, rest...),
		}
	case "supercall":
		count := immOperand(insn.Operands[0])
		start := regOperand(insn.Operands[1])
		state.Acc = ir.SuperCallExpr{Args: rc.regRange(state, start, int(count))}
	case "apply":
		thisArg := rc.getReg(state, regOperand(insn.Operands[0]))
		argsArray := rc.getReg(state, regOperand(insn.Operands[1]))
		state.Acc = ir.CallExpr{
			Callee: ir.MemberExpr{Object: state.Acc, Property: ir.Ident{Name: "apply"}},
			Args:   []ir.Expr{thisArg, argsArray},
		}
	case "newobjrange":
		count := immOperand(insn.Operands[0])
		start := regOperand(insn.Operands[1])
		all := rc.regRange(state, start, int(count))
		var callee ir.Expr = ir.UndefinedLit{}
		args := all
		if len(all) > 0 {
			callee, args = all[0], all[1:]
		}
		state.Acc = ir.NewExpr{Callee: callee, Args: args}

	// Object / array construction.
	case "createemptyobject":
		state.Acc = ir.ObjectLit{}
	case "createemptyarray":
		state.Acc = ir.ArrayLit{}
	case "createobjectwithbuffer":
		state.Acc = rc.objectFromBuffer(idOperand(insn.Operands[0]))
	case "createarraywithbuffer":
		state.Acc = rc.arrayFromBuffer(idOperand(insn.Operands[0]))
	case "copydataproperties":
		src := rc.getReg(state, regOperand(insn.Operands[0]))
		state.Acc = ir.CallExpr{
			Callee: ir.MemberExpr{Object: ir.Ident{Name: "Object"}, Property: ir.Ident{Name: "assign"}},
			Args:   []ir.Expr{state.Acc, src},
		}
	case "createobjectwithexcludedkeys":
		count := immOperand(insn.Operands[0])
		start := regOperand(insn.Operands[1])
		args := append([]ir.Expr{ir.ObjectLit{}, state.Acc}, rc.regRange(state, start, int(count))...)
		state.Acc = ir.CallExpr{
			Callee: ir.MemberExpr{Object: ir.Ident{Name: "Object"}, Property: ir.Ident{Name: "assign"}},
			Args:   args,
		}
	case "createregexpwithliteral":
		pattern := rc.resolveName(idOperand(insn.Operands[0]))
		flags := decodeRegexFlags(uint32(immOperand(insn.Operands[1])))
		state.Acc = ir.RegexLit{Pattern: pattern, Flags: flags}

	// Function / class definitions.
	case "definefunc", "definemethod":
		state.Acc = rc.resolveMethodName(idOperand(insn.Operands[0]))
	case "defineclasswithbuffer":
		state.Acc = rc.resolveMethodName(idOperand(insn.Operands[0]))

	// Returns / throws / debugger.
	case "return":
		rc.emit(ir.ReturnStmt{Value: state.Acc})
	case "returnundefined":
		rc.emit(ir.ReturnStmt{})
	case "throw":
		rc.emit(ir.ThrowStmt{Value: state.Acc})
	case "thrownotexists":
		rc.emit(ir.ThrowStmt{Value: ir.NewExpr{
			Callee: ir.Ident{Name: "ReferenceError"},
			Args:   []ir.Expr{ir.StringLit{Value: "is not defined"}},
		}})
	case "debugger":
		rc.emit(ir.DebuggerStmt{})

	// Iterators / generators / async.
	case "suspendgenerator":
		state.Acc = ir.YieldExpr{Argument: state.Acc}
	case "asyncfunctionawaituncaught":
		state.Acc = ir.AwaitExpr{Argument: state.Acc}
	case "asyncgeneratorresolve":
		state.Acc = ir.YieldExpr{Argument: state.Acc}
	case "getiterator", "getasynciterator", "iteratornext":
		// Identity.

	// Sendable / concurrent-module runtime calls.
	case "callruntime.ldsendablevar":
		slot := immOperand(insn.Operands[0])
		state.Acc = ir.Ident{Name: fmt.Sprintf("__sendable_%d", slot)}
	case "callruntime.stsendablevar":
		slot := immOperand(insn.Operands[0])
		rc.emit(ir.AssignStmt{Target: ir.Ident{Name: fmt.Sprintf("__sendable_%d", slot)}, Value: state.Acc})
	case "callruntime.definesendableclass":
		state.Acc = rc.resolveMethodName(idOperand(insn.Operands[0]))
	case "callruntime.ldsendableclass":
		slot := immOperand(insn.Operands[0])
		state.Acc = ir.Ident{Name: fmt.Sprintf("__sendableClass_%d", slot)}
	case "dynamicimport":
		state.Acc = ir.CallExpr{Callee: ir.Ident{Name: "import"}, Args: []ir.Expr{state.Acc}}

	default:
		if op, ok := binOps[insn.Mnemonic]; ok {
			rhs := rc.getReg(state, regOperand(insn.Operands[0]))
			state.Acc = ir.BinaryExpr{Op: op, Left: state.Acc, Right: rhs}
			return
		}
		if insn.Mnemonic == "instanceof" {
			lhs := rc.getReg(state, regOperand(insn.Operands[0]))
			state.Acc = ir.BinaryExpr{Op: ir.OpInstance, Left: lhs, Right: state.Acc}
			return
		}
		rc.emit(ir.CommentStmt{Text: fmt.Sprintf("%s %s", insn.Mnemonic, operandsDebugString(insn.Operands))})
	}
}

func (rc *recoverer) regRange(state *State, start uint16, count int) []ir.Expr {
	args := make([]ir.Expr, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, rc.getReg(state, start+uint16(i)))
	}
	return args
}

// objectFromBuffer decodes an object buffer: (key, value) pairs emitted
// alternately, skipping MethodAffiliate tag pairs.
func (rc *recoverer) objectFromBuffer(id uint32) ir.Expr {
	lit, ok := rc.resolver.ResolveLiteralArray(rc.methodOff, id)
	if !ok {
		return ir.UnknownExpr{Text: fmt.Sprintf("@0x%x", id)}
	}
	var props []ir.ObjectProp
	items := lit.Items
	for i := 0; i+1 < len(items); i += 2 {
		key, val := items[i], items[i+1]
		if key.Tag == LiteralTagMethodAffiliate || val.Tag == LiteralTagMethodAffiliate {
			continue
		}
		props = append(props, ir.ObjectProp{
			Key:   literalValueToExpr(key),
			Value: literalValueToExpr(val),
		})
	}
	return ir.ObjectLit{Props: props}
}

// arrayFromBuffer decodes an array buffer: the value half of each pair.
func (rc *recoverer) arrayFromBuffer(id uint32) ir.Expr {
	lit, ok := rc.resolver.ResolveLiteralArray(rc.methodOff, id)
	if !ok {
		return ir.UnknownExpr{Text: fmt.Sprintf("@0x%x", id)}
	}
	var elems []ir.Expr
	items := lit.Items
	for i := 1; i < len(items); i += 2 {
		if items[i].Tag == LiteralTagMethodAffiliate {
			continue
		}
		elems = append(elems, literalValueToExpr(items[i]))
	}
	return ir.ArrayLit{Elements: elems}
}

func literalValueToExpr(lit Literal) ir.Expr {
	switch lit.Tag {
	case LiteralTagBool:
		return ir.BoolLit{Value: lit.BoolVal}
	case LiteralTagInt:
		return ir.NumberLit{Value: float64(lit.IntVal)}
	case LiteralTagDouble:
		return ir.NumberLit{Value: lit.DoubleVal}
	case LiteralTagString:
		return ir.StringLit{Value: lit.StringVal}
	case LiteralTagMethod:
		return ir.Ident{Name: CleanABCName(lit.StringVal)}
	case LiteralTagNull:
		return ir.NullLit{}
	case LiteralTagAccessor:
		return ir.UnknownExpr{Text: "accessor"}
	default:
		return ir.UnknownExpr{Text: "?"}
	}
}

// decodeRegexFlags decodes the bitfield g=1,i=2,m=4,s=8,u=16,y=32,d=64 into
// its JS flag-string form, in a fixed canonical order.
func decodeRegexFlags(bits uint32) string {
	var b strings.Builder
	order := []struct {
		bit  uint32
		char byte
	}{
		{1, 'g'}, {2, 'i'}, {4, 'm'}, {8, 's'}, {16, 'u'}, {32, 'y'}, {64, 'd'},
	}
	for _, o := range order {
		if bits&o.bit != 0 {
			b.WriteByte(o.char)
		}
	}
	return b.String()
}

func operandsDebugString(ops []ir.Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ", ")
}
