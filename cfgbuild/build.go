// Package cfgbuild partitions a decoded instruction sequence into basic
// blocks and wires successor/predecessor edges, following the leader-set
// algorithm in terms of which the structuring pass is written.
package cfgbuild

import (
	"sort"

	"github.com/abcd-project/abcd/ir"
)

// Build computes the CFG for insns given the method's try regions.
// Terminator classification (RETURN, unconditional THROW excluding the
// conditional-throw family, JUMP) follows ir.Instruction.IsTerminator.
func Build(insns []ir.Instruction, tries []ir.TryRegion) *ir.CFG {
	codeLen := uint32(0)
	if len(insns) > 0 {
		last := insns[len(insns)-1]
		codeLen = last.EndOffset()
	}

	leaders := map[uint32]bool{0: true}
	offsetIndex := make(map[uint32]int, len(insns))
	for i, insn := range insns {
		offsetIndex[insn.Offset] = i
		if insn.IsTerminator() {
			if end := insn.EndOffset(); end < codeLen {
				leaders[end] = true
			}
			if target, ok := insn.JumpTarget(); ok {
				leaders[target] = true
			}
		}
	}
	for _, tr := range tries {
		for _, c := range tr.Catches {
			leaders[c.HandlerPC] = true
		}
	}

	sorted := make([]uint32, 0, len(leaders))
	for l := range leaders {
		sorted = append(sorted, l)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	g := &ir.CFG{Instructions: insns, Tries: tries}
	for bi, start := range sorted {
		end := codeLen
		if bi+1 < len(sorted) {
			end = sorted[bi+1]
		}
		firstInsn, ok := offsetIndex[start]
		if !ok {
			// No instruction begins exactly at this leader (can happen for
			// a handler_pc with no code, or a jump into mid-buffer
			// wreckage); skip — it contributes no block.
			continue
		}
		lastInsnExclusive := len(insns)
		for idx := firstInsn; idx < len(insns); idx++ {
			if insns[idx].Offset >= end {
				lastInsnExclusive = idx
				break
			}
		}
		if lastInsnExclusive <= firstInsn {
			continue
		}
		g.Blocks = append(g.Blocks, ir.BasicBlock{
			ID:                ir.BlockID(len(g.Blocks)),
			StartByte:         start,
			EndByte:           end,
			FirstInsn:         firstInsn,
			LastInsnExclusive: lastInsnExclusive,
		})
	}

	wireSuccessors(g)
	computePredecessors(g)
	markCatchHandlers(g, tries)
	return g
}

func wireSuccessors(g *ir.CFG) {
	for i := range g.Blocks {
		b := &g.Blocks[i]
		if b.Len() == 0 {
			continue
		}
		last := g.Instructions[b.LastInsnExclusive-1]

		switch {
		case last.Flags.Has(ir.FlagReturn):
			// no successors
		case last.Flags.Has(ir.FlagThrow) && !ir.IsConditionalThrow(last.Mnemonic):
			// unconditional throw: no successors
		case last.Flags.Has(ir.FlagJump) && last.Flags.Has(ir.FlagConditional):
			fallthroughID := g.BlockAt(last.EndOffset())
			targetOffset, _ := last.JumpTarget()
			targetID := g.BlockAt(targetOffset)
			if fallthroughID >= 0 {
				b.Succs = append(b.Succs, fallthroughID)
			}
			if targetID >= 0 {
				b.Succs = append(b.Succs, targetID)
			}
		case last.Flags.Has(ir.FlagJump):
			targetOffset, _ := last.JumpTarget()
			if targetID := g.BlockAt(targetOffset); targetID >= 0 {
				b.Succs = append(b.Succs, targetID)
			}
		default:
			if nextID := g.BlockAt(b.EndByte); nextID >= 0 {
				b.Succs = append(b.Succs, nextID)
			}
		}
	}
}

func computePredecessors(g *ir.CFG) {
	for i := range g.Blocks {
		from := g.Blocks[i].ID
		for _, to := range g.Blocks[i].Succs {
			g.Blocks[to].Preds = append(g.Blocks[to].Preds, from)
		}
	}
}

func markCatchHandlers(g *ir.CFG, tries []ir.TryRegion) {
	handlerPCs := make(map[uint32]bool)
	for _, tr := range tries {
		for _, c := range tr.Catches {
			handlerPCs[c.HandlerPC] = true
		}
	}
	for i := range g.Blocks {
		if handlerPCs[g.Blocks[i].StartByte] {
			g.Blocks[i].IsCatchHandler = true
		}
	}
}
