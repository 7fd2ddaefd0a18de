// Package cfgverify checks a built CFG's well-formedness invariants
// (testable properties 2 and 3): every instruction belongs to exactly one
// block, every block's instruction range is contiguous and non-empty, every
// successor id is valid, and succs/preds agree. It plays the same role for
// the CFG builder that the teacher's validate package plays for a decoded
// WebAssembly module: an optional, separately-runnable soundness pass, not
// part of the core's contract.
package cfgverify

import (
	"errors"
	"fmt"

	"github.com/abcd-project/abcd/ir"
)

// ErrEmptyBlock is returned when a block has no instructions.
var ErrEmptyBlock = errors.New("cfgverify: block has no instructions")

// ErrOverlappingBlocks is returned when two blocks claim the same
// instruction index.
var ErrOverlappingBlocks = errors.New("cfgverify: instruction covered by more than one block")

// ErrUncoveredInstruction is returned when an instruction belongs to no
// block.
var ErrUncoveredInstruction = errors.New("cfgverify: instruction covered by no block")

// InvalidSuccessorError is returned when a block's successor list names a
// block id outside the CFG.
type InvalidSuccessorError struct {
	Block     ir.BlockID
	Successor ir.BlockID
}

func (e InvalidSuccessorError) Error() string {
	return fmt.Sprintf("block %d has invalid successor id %d", e.Block, e.Successor)
}

// InconsistentEdgeError is returned when block Succ lists Block as a
// successor but Succ's predecessor list omits Block (or vice versa).
type InconsistentEdgeError struct {
	Block ir.BlockID
	Succ  ir.BlockID
}

func (e InconsistentEdgeError) Error() string {
	return fmt.Sprintf("edge %d->%d is not mirrored in %d's predecessor list", e.Block, e.Succ, e.Succ)
}

// Error wraps a verification failure with the id of the offending block
// (-1 for an instruction no block covers), mirroring the teacher's
// positional validate.Error.
type Error struct {
	BlockID ir.BlockID
	Err     error
}

func (e Error) Error() string {
	return fmt.Sprintf("cfg invalid at block %d: %v", e.BlockID, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// Verify checks g against the CFG invariants, returning the first
// violation found, or nil if g is well-formed.
func Verify(g *ir.CFG) error {
	covered := make([]ir.BlockID, len(g.Instructions))
	for i := range covered {
		covered[i] = -1
	}

	for _, b := range g.Blocks {
		if b.Len() <= 0 {
			return Error{BlockID: b.ID, Err: ErrEmptyBlock}
		}
		for idx := b.FirstInsn; idx < b.LastInsnExclusive; idx++ {
			if covered[idx] != -1 {
				return Error{BlockID: b.ID, Err: ErrOverlappingBlocks}
			}
			covered[idx] = b.ID
		}
	}
	for idx, owner := range covered {
		if owner == -1 {
			return Error{BlockID: -1, Err: fmt.Errorf("%w: instruction index %d", ErrUncoveredInstruction, idx)}
		}
	}

	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			if int(s) < 0 || int(s) >= len(g.Blocks) {
				return Error{BlockID: b.ID, Err: InvalidSuccessorError{Block: b.ID, Successor: s}}
			}
			if !containsBlockID(g.Blocks[s].Preds, b.ID) {
				return Error{BlockID: b.ID, Err: InconsistentEdgeError{Block: b.ID, Succ: s}}
			}
		}
	}
	return nil
}

func containsBlockID(list []ir.BlockID, id ir.BlockID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
