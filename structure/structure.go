// Package structure implements the structuring pass: it traverses a CFG
// emitting structured statements (if/else, while, try/catch, short-circuit
// chains), calling the recovery pass per block on demand and gluing the
// results into a statement tree.
package structure

import (
	"github.com/abcd-project/abcd/ir"
	"github.com/abcd-project/abcd/recover"
)

const noStop ir.BlockID = -1

// UserParamCount derives the number of user-visible parameters from the
// container's raw arg-slot count, which also reserves three implicit
// leading slots (function object, new.target, this) per the register
// layout recover.ArgOrVar assumes. A method with no user parameters still
// carries those three slots, so the result is clamped at zero rather than
// going negative for malformed input.
func UserParamCount(numArgs uint32) int {
	if numArgs < 3 {
		return 0
	}
	return int(numArgs - 3)
}

// Structure traverses g in ascending block-id order starting at block 0,
// producing the method's statement list. It is a pure function of its
// inputs; resolver must be read-only and safe for concurrent use across
// methods (see the concurrency design note).
func Structure(g *ir.CFG, resolver recover.Resolver, methodOff uint32, numVregs uint32) []ir.Stmt {
	if len(g.Blocks) == 0 {
		return nil
	}
	ctx := &structCtx{
		g: g, resolver: resolver, methodOff: methodOff, numVregs: numVregs,
		visited: make(map[ir.BlockID]bool),
	}
	seed := recover.State{Acc: ir.UndefinedLit{}, Regs: map[uint16]ir.Expr{}}
	return ctx.emitBlockRange(0, seed, noStop)
}

type structCtx struct {
	g         *ir.CFG
	resolver  recover.Resolver
	methodOff uint32
	numVregs  uint32
	visited   map[ir.BlockID]bool
}

func (ctx *structCtx) valid(id ir.BlockID) bool {
	return id >= 0 && int(id) < len(ctx.g.Blocks)
}

func (ctx *structCtx) recoverBlock(id ir.BlockID, seed recover.State) recover.BlockRecovery {
	insns := ctx.g.BlockInstructions(id)
	return recover.RecoverBlock(insns, ctx.resolver, ctx.methodOff, ctx.numVregs, seed.Acc, seed.Regs)
}

func stateOf(rec recover.BlockRecovery) recover.State {
	return recover.State{Acc: rec.FinalAcc, Regs: rec.FinalRegs}
}

// emitBlockRange is the outer traversal loop: it walks forward from
// current, applying the try/loop/if/single-successor/zero-successor
// pattern at each block, until it revisits a block, reaches stopBefore, or
// falls off the CFG. Every block is visited at most once (property 4).
func (ctx *structCtx) emitBlockRange(current ir.BlockID, seed recover.State, stopBefore ir.BlockID) []ir.Stmt {
	var out []ir.Stmt
	state := seed

	for ctx.valid(current) && current != stopBefore && !ctx.visited[current] {
		ctx.visited[current] = true
		block := ctx.g.Block(current)

		if tr, ok := ctx.tryStartingAt(block.StartByte); ok {
			stmt, nextState, next := ctx.emitTry(tr, state)
			out = append(out, stmt)
			state, current = nextState, next
			continue
		}

		if ctx.isLoopHeader(current) {
			stmt, nextState, next := ctx.emitLoop(current, state)
			out = append(out, stmt)
			state, current = nextState, next
			continue
		}

		switch len(block.Succs) {
		case 2:
			stmts, nextState, next := ctx.emitIf(current, state)
			out = append(out, stmts...)
			state, current = nextState, next

		case 1:
			rec := ctx.recoverBlock(current, state)
			out = append(out, rec.Stmts...)
			state = stateOf(rec)
			succ := block.Succs[0]
			if ctx.visited[succ] {
				out = append(out, ir.ContinueStmt{})
				current = noStop
			} else {
				current = succ
			}

		default: // zero successors: block already ends in return/throw.
			rec := ctx.recoverBlock(current, state)
			out = append(out, rec.Stmts...)
			current = noStop
		}
	}
	return out
}

// isLoopHeader reports whether id is the target of a back edge (some
// predecessor has a higher id).
func (ctx *structCtx) isLoopHeader(id ir.BlockID) bool {
	for _, p := range ctx.g.Block(id).Preds {
		if p > id {
			return true
		}
	}
	return false
}

// emitLoop structures a loop header into a WhileStmt. The loop condition
// and the body/exit successor assignment follow the header's terminator
// mnemonic: jeqz tests acc directly with the jump target as exit; jnez
// negates it with the jump target as the back-edge-bearing body entry.
func (ctx *structCtx) emitLoop(header ir.BlockID, seed recover.State) (ir.Stmt, recover.State, ir.BlockID) {
	block := ctx.g.Block(header)
	rec := ctx.recoverBlock(header, seed)
	headerState := stateOf(rec)

	if len(block.Succs) != 2 {
		var bodyEntry ir.BlockID = noStop
		if len(block.Succs) == 1 {
			bodyEntry = block.Succs[0]
		}
		body := ctx.emitBlockRange(bodyEntry, headerState, header)
		stmt := ir.WhileStmt{Cond: ir.BoolLit{Value: true}, Body: append(append([]ir.Stmt{}, rec.Stmts...), body...)}
		return stmt, headerState, noStop
	}

	insns := ctx.g.BlockInstructions(header)
	last := insns[len(insns)-1]

	var cond ir.Expr
	var bodySucc, exitSucc ir.BlockID
	if last.Mnemonic == "jnez" {
		cond = ir.NegateCondition(headerState.Acc)
		bodySucc, exitSucc = block.Succs[1], block.Succs[0]
	} else {
		cond = headerState.Acc
		bodySucc, exitSucc = block.Succs[0], block.Succs[1]
	}

	body := ctx.emitBlockRange(bodySucc, headerState, header)
	stmt := ir.WhileStmt{Cond: cond, Body: append(append([]ir.Stmt{}, rec.Stmts...), body...)}
	return stmt, headerState, exitSucc
}

// emitIf structures a two-successor non-loop block: the back-jump special
// case (synthesised break), short-circuit combination of empty diamond
// blocks, and the final diamond-vs-if/else emission.
func (ctx *structCtx) emitIf(current ir.BlockID, seed recover.State) ([]ir.Stmt, recover.State, ir.BlockID) {
	block := ctx.g.Block(current)
	rec := ctx.recoverBlock(current, seed)
	prefix := append([]ir.Stmt{}, rec.Stmts...)
	state := stateOf(rec)

	insns := ctx.g.BlockInstructions(current)
	last := insns[len(insns)-1]
	cond := state.Acc
	if last.Mnemonic == "jnez" {
		cond = ir.NegateCondition(cond)
	}

	fallthroughID, jumpTargetID := block.Succs[0], block.Succs[1]

	if ctx.visited[jumpTargetID] {
		stmt := ir.IfStmt{Cond: cond, Then: []ir.Stmt{ir.BreakStmt{}}}
		return append(prefix, stmt), state, fallthroughID
	}

	combinedCond := cond
	ft := fallthroughID
	for ctx.valid(ft) && !ctx.visited[ft] {
		ftBlock := ctx.g.Block(ft)
		if len(ftBlock.Succs) != 2 {
			break
		}
		candidate := ctx.recoverBlock(ft, state)
		if len(candidate.Stmts) > 0 {
			break
		}
		ftInsns := ctx.g.BlockInstructions(ft)
		ftLast := ftInsns[len(ftInsns)-1]
		nextCond := candidate.FinalAcc
		if ftLast.Mnemonic == "jnez" {
			nextCond = ir.NegateCondition(nextCond)
		}

		switch jumpTargetID {
		case ftBlock.Succs[1]:
			combinedCond = ir.BinaryExpr{Op: ir.OpLogAnd, Left: combinedCond, Right: nextCond}
			ctx.visited[ft] = true
			state = stateOf(candidate)
			ft = ftBlock.Succs[0]
		case ftBlock.Succs[0]:
			combinedCond = ir.BinaryExpr{Op: ir.OpLogOr, Left: combinedCond, Right: nextCond}
			ctx.visited[ft] = true
			state = stateOf(candidate)
			ft = ftBlock.Succs[1]
		default:
			return finishIf(ctx, prefix, combinedCond, ft, jumpTargetID, state)
		}
	}

	return finishIf(ctx, prefix, combinedCond, ft, jumpTargetID, state)
}

func finishIf(ctx *structCtx, prefix []ir.Stmt, cond ir.Expr, fallthroughID, jumpTargetID ir.BlockID, state recover.State) ([]ir.Stmt, recover.State, ir.BlockID) {
	if ctx.valid(fallthroughID) {
		ftBlock := ctx.g.Block(fallthroughID)
		if len(ftBlock.Succs) == 1 && ftBlock.Succs[0] == jumpTargetID {
			thenStmts := ctx.emitBlockRange(fallthroughID, state, jumpTargetID)
			stmt := ir.IfStmt{Cond: cond, Then: thenStmts}
			return append(prefix, stmt), state, jumpTargetID
		}
	}

	thenStmts := ctx.emitBlockRange(fallthroughID, state, noStop)
	elseStmts := ctx.emitBlockRange(jumpTargetID, state, noStop)
	stmt := ir.IfStmt{Cond: cond, Then: thenStmts, Else: elseStmts}
	return append(prefix, stmt), state, noStop
}

func (ctx *structCtx) tryStartingAt(startByte uint32) (ir.TryRegion, bool) {
	for _, tr := range ctx.g.Tries {
		if tr.StartPC == startByte {
			return tr, true
		}
	}
	return ir.TryRegion{}, false
}

// emitTry structures a try region: the protected body up to the region's
// end, followed by each catch handler. Finally is never synthesised — see
// the design note on duplicated finally code.
func (ctx *structCtx) emitTry(tr ir.TryRegion, seed recover.State) (ir.Stmt, recover.State, ir.BlockID) {
	startBlock := ctx.g.BlockAt(tr.StartPC)
	endBlock := ctx.g.BlockAt(tr.StartPC + tr.Length)

	// The caller marked the region's first block visited before detecting
	// the try; clear that mark, and hide this region while its body is
	// walked so the first block is not taken for the try's start again.
	delete(ctx.visited, startBlock)
	saved := ctx.g.Tries
	ctx.g.Tries = make([]ir.TryRegion, 0, len(saved))
	for _, other := range saved {
		if other.StartPC != tr.StartPC || other.Length != tr.Length {
			ctx.g.Tries = append(ctx.g.Tries, other)
		}
	}
	body := ctx.emitBlockRange(startBlock, seed, endBlock)
	ctx.g.Tries = saved

	var catchParam string
	var catchBody []ir.Stmt
	for _, c := range tr.Catches {
		if c.TypeIdx == 0 {
			catchParam = "$err"
		}
		catchState := recover.State{Acc: ir.Ident{Name: "$err"}, Regs: map[uint16]ir.Expr{}}
		handlerBlock := ctx.g.BlockAt(c.HandlerPC)
		catchBody = append(catchBody, ctx.emitBlockRange(handlerBlock, catchState, noStop)...)
	}

	stmt := ir.TryStmt{Body: body, CatchParam: catchParam, CatchBody: catchBody}
	return stmt, seed, endBlock
}
