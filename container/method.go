package container

import (
	"encoding/binary"

	"github.com/abcd-project/abcd/internal/leb128"
)

const (
	methodTagNothing                 = 0x00
	methodTagCode                    = 0x01
	methodTagSourceLang              = 0x02
	methodTagRuntimeAnnotation       = 0x03
	methodTagRuntimeParamAnnotation  = 0x04
	methodTagDebugInfo               = 0x05
	methodTagAnnotation              = 0x06
	methodTagParamAnnotation         = 0x07
	methodTagTypeAnnotation          = 0x08
	methodTagRuntimeTypeAnnotation   = 0x09
)

// MethodData is a parsed method definition.
type MethodData struct {
	Offset       uint32
	ClassIdx     uint16
	ProtoIdx     uint16
	NameOff      uint32
	Name         string
	AccessFlags  uint32
	CodeOff      uint32
	HasCode      bool
	DebugInfoOff uint32
	HasDebugInfo bool
}

func parseMethod(data []byte, offset uint32) (MethodData, error) {
	pos := int(offset)
	if pos+8 > len(data) {
		return MethodData{}, ErrOffsetOutOfBounds{Offset: pos, Size: len(data)}
	}

	m := MethodData{Offset: offset}
	m.ClassIdx = binary.LittleEndian.Uint16(data[pos:])
	pos += 2
	m.ProtoIdx = binary.LittleEndian.Uint16(data[pos:])
	pos += 2
	m.NameOff = binary.LittleEndian.Uint32(data[pos:])
	pos += 4
	m.Name, _ = readString(data, m.NameOff)

	accessFlags, consumed, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return MethodData{}, err
	}
	m.AccessFlags = uint32(accessFlags)
	pos += consumed

	for pos < len(data) {
		tag := data[pos]
		pos++
		if tag == methodTagNothing {
			break
		}

		switch tag {
		case methodTagCode:
			if pos+4 <= len(data) {
				m.CodeOff = binary.LittleEndian.Uint32(data[pos:])
				m.HasCode = true
			}
			pos += 4
		case methodTagSourceLang:
			pos++
		case methodTagDebugInfo:
			if pos+4 <= len(data) {
				m.DebugInfoOff = binary.LittleEndian.Uint32(data[pos:])
				m.HasDebugInfo = true
			}
			pos += 4
		case methodTagRuntimeAnnotation, methodTagRuntimeParamAnnotation, methodTagAnnotation,
			methodTagParamAnnotation, methodTagTypeAnnotation, methodTagRuntimeTypeAnnotation:
			pos += 4
		default:
			pos += 4
		}
	}

	return m, nil
}
