package container

import "github.com/abcd-project/abcd/internal/leb128"

// CatchBlock is one catch clause of a TryBlock. TypeIdx is the caught
// exception's class index plus one; zero means catch-all.
type CatchBlock struct {
	TypeIdx   uint32
	HandlerPC uint32
	CodeSize  uint32
}

// TryBlock is one protected region of a method's code.
type TryBlock struct {
	StartPC     uint32
	Length      uint32
	CatchBlocks []CatchBlock
}

// CodeData is a parsed Code structure: the method's raw bytecode plus its
// try/catch table and register frame shape.
type CodeData struct {
	NumVregs     uint32
	NumArgs      uint32
	Instructions []byte
	TryBlocks    []TryBlock
}

func parseCode(data []byte, offset uint32) (CodeData, error) {
	pos := int(offset)

	numVregs, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return CodeData{}, err
	}
	pos += n

	numArgs, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return CodeData{}, err
	}
	pos += n

	codeSize, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return CodeData{}, err
	}
	pos += n

	triesSize, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return CodeData{}, err
	}
	pos += n

	insnEnd := pos + int(codeSize)
	if insnEnd > len(data) {
		return CodeData{}, ErrOffsetOutOfBounds{Offset: insnEnd, Size: len(data)}
	}
	instructions := make([]byte, codeSize)
	copy(instructions, data[pos:insnEnd])
	pos = insnEnd

	tries := make([]TryBlock, 0, triesSize)
	for i := uint64(0); i < triesSize; i++ {
		startPC, n, err := leb128.ReadUvarint(data, pos)
		if err != nil {
			return CodeData{}, err
		}
		pos += n
		length, n, err := leb128.ReadUvarint(data, pos)
		if err != nil {
			return CodeData{}, err
		}
		pos += n
		numCatches, n, err := leb128.ReadUvarint(data, pos)
		if err != nil {
			return CodeData{}, err
		}
		pos += n

		catches := make([]CatchBlock, 0, numCatches)
		for j := uint64(0); j < numCatches; j++ {
			typeIdx, n, err := leb128.ReadUvarint(data, pos)
			if err != nil {
				return CodeData{}, err
			}
			pos += n
			handlerPC, n, err := leb128.ReadUvarint(data, pos)
			if err != nil {
				return CodeData{}, err
			}
			pos += n
			codeSz, n, err := leb128.ReadUvarint(data, pos)
			if err != nil {
				return CodeData{}, err
			}
			pos += n

			catches = append(catches, CatchBlock{
				TypeIdx:   uint32(typeIdx),
				HandlerPC: uint32(handlerPC),
				CodeSize:  uint32(codeSz),
			})
		}

		tries = append(tries, TryBlock{
			StartPC:     uint32(startPC),
			Length:      uint32(length),
			CatchBlocks: catches,
		})
	}

	return CodeData{
		NumVregs:     uint32(numVregs),
		NumArgs:      uint32(numArgs),
		Instructions: instructions,
		TryBlocks:    tries,
	}, nil
}
