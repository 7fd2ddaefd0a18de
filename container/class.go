package container

import (
	"encoding/binary"

	"github.com/abcd-project/abcd/internal/leb128"
)

const (
	classTagNothing               = 0x00
	classTagInterfaces            = 0x01
	classTagSourceLang            = 0x02
	classTagRuntimeAnnotation     = 0x03
	classTagAnnotation            = 0x04
	classTagRuntimeTypeAnnotation = 0x05
	classTagTypeAnnotation        = 0x06
	classTagSourceFile            = 0x07
)

// ClassData is a parsed class definition. Name follows the container's
// type-descriptor convention, e.g. "L_GLOBAL;" for the synthetic module
// entry class.
type ClassData struct {
	Offset        uint32
	Name          string
	SuperClassOff uint32
	AccessFlags   uint32
	NumFields     uint32
	NumMethods    uint32
	SourceFile    string
	HasSourceFile bool
	MethodOffsets []uint32
	FieldOffsets  []uint32
}

func parseClass(data []byte, offset uint32) (ClassData, error) {
	pos := int(offset)

	name, ok := readString(data, offset)
	if !ok {
		return ClassData{}, ErrOffsetOutOfBounds{Offset: pos, Size: len(data)}
	}
	_, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return ClassData{}, err
	}
	pos += n
	for pos < len(data) && data[pos] != 0 {
		pos++
	}
	pos++ // NUL terminator

	if pos+4 > len(data) {
		return ClassData{}, ErrOffsetOutOfBounds{Offset: pos, Size: len(data)}
	}
	superClassOff := binary.LittleEndian.Uint32(data[pos:])
	pos += 4

	accessFlags, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return ClassData{}, err
	}
	pos += n

	numFields, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return ClassData{}, err
	}
	pos += n

	numMethods, n, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return ClassData{}, err
	}
	pos += n

	c := ClassData{
		Offset:        offset,
		Name:          name,
		SuperClassOff: superClassOff,
		AccessFlags:   uint32(accessFlags),
		NumFields:     uint32(numFields),
		NumMethods:    uint32(numMethods),
	}

	for pos < len(data) {
		tag := data[pos]
		pos++
		if tag == classTagNothing {
			break
		}
		switch tag {
		case classTagInterfaces:
			count, n, err := leb128.ReadUvarint(data, pos)
			if err != nil {
				return ClassData{}, err
			}
			pos += n + int(count)*2
		case classTagSourceLang:
			pos++
		case classTagRuntimeAnnotation, classTagAnnotation, classTagRuntimeTypeAnnotation, classTagTypeAnnotation:
			pos += 4
		case classTagSourceFile:
			if pos+4 <= len(data) {
				sfOff := binary.LittleEndian.Uint32(data[pos:])
				if sf, ok := readString(data, sfOff); ok {
					c.SourceFile, c.HasSourceFile = sf, true
				}
			}
			pos += 4
		default:
			pos += 4
		}
	}

	for i := uint32(0); i < c.NumFields; i++ {
		c.FieldOffsets = append(c.FieldOffsets, uint32(pos))
		pos += 2 + 2 // class_idx + type_idx
		if pos+4 > len(data) {
			break
		}
		pos += 4 // name_off
		_, n, err := leb128.ReadUvarint(data, pos) // access_flags
		if err != nil {
			return ClassData{}, err
		}
		pos += n
		for pos < len(data) {
			tag := data[pos]
			pos++
			if tag == 0x00 {
				break
			}
			if tag == 0x01 {
				_, n, err := leb128.ReadUvarint(data, pos)
				if err != nil {
					return ClassData{}, err
				}
				pos += n
			} else {
				pos += 4
			}
		}
	}

	for i := uint32(0); i < c.NumMethods; i++ {
		c.MethodOffsets = append(c.MethodOffsets, uint32(pos))
		pos += 2 + 2 + 4
		_, n, err := leb128.ReadUvarint(data, pos)
		if err != nil {
			return ClassData{}, err
		}
		pos += n
		for pos < len(data) {
			tag := data[pos]
			pos++
			if tag == 0x00 {
				break
			}
			switch tag {
			case 0x01:
				pos += 4
			case 0x02:
				pos++
			default:
				pos += 4
			}
		}
	}

	return c, nil
}
