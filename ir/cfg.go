package ir

// BlockID is a dense index into CFG.Blocks, also the block's topological
// position by ascending start offset.
type BlockID int

// BasicBlock is a maximal straight-line instruction run. Blocks never
// overlap; every reachable byte offset belongs to exactly one block.
// Succs[0] of a conditional block is the fall-through, Succs[1] the jump
// target — this ordering is load bearing for the structuring pass.
type BasicBlock struct {
	ID               BlockID
	StartByte        uint32
	EndByte          uint32
	FirstInsn        int // index into CFG.Instructions
	LastInsnExclusive int
	Succs            []BlockID
	Preds            []BlockID
	IsCatchHandler   bool
}

// Len reports the number of instructions in the block.
func (b BasicBlock) Len() int { return b.LastInsnExclusive - b.FirstInsn }

// CatchInfo describes one catch clause of a TryRegion.
type CatchInfo struct {
	TypeIdx   uint32 // 0 encodes catch-all
	HandlerPC uint32
	CodeSize  uint32
}

// TryRegion describes one try-protected instruction range.
type TryRegion struct {
	StartPC uint32
	Length  uint32
	Catches []CatchInfo
}

// CFG is the control-flow graph of a single method's instructions.
type CFG struct {
	Instructions []Instruction
	Blocks       []BasicBlock
	Tries        []TryRegion
}

// BlockAt returns the block containing the given code-blob byte offset, or
// -1 if no block contains it.
func (g *CFG) BlockAt(offset uint32) BlockID {
	for _, b := range g.Blocks {
		if offset >= b.StartByte && offset < b.EndByte {
			return b.ID
		}
	}
	return -1
}

// Block returns the block with the given id.
func (g *CFG) Block(id BlockID) *BasicBlock {
	return &g.Blocks[id]
}

// BlockInstructions returns the instruction slice belonging to block id.
func (g *CFG) BlockInstructions(id BlockID) []Instruction {
	b := g.Blocks[id]
	return g.Instructions[b.FirstInsn:b.LastInsnExclusive]
}
