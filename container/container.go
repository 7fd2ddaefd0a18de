// Package container parses the on-disk ABC container format: fixed header,
// region-scoped 16-bit index tables, MUTF-8 string table, and the
// class/method/code/literal-array records those tables point into. It knows
// nothing about bytecode semantics — that is the isa/decode/recover layer's
// job — and exposes a recover.Resolver so the expression-recovery pass can
// turn an instruction's entity-id operands into names and literal data
// without linking against the decompiler core.
package container

import (
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/abcd-project/abcd/recover"
)

// File is a parsed, memory-mapped ABC container. Open returns one mapped
// read-only over the file's lifetime; call Close to release the mapping.
type File struct {
	data  mmap.MMap
	f     *os.File
	owned bool

	Header Header
	Index  IndexSection
}

// Open memory-maps path and parses its header and index section.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	cf, err := newFile(m, f)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}
	cf.owned = true
	return cf, nil
}

// OpenBytes parses an already-loaded in-memory container, useful for tests
// and for callers that already hold the bytes some other way. Close is a
// no-op for a File opened this way.
func OpenBytes(data []byte) (*File, error) {
	return newFile(mmap.MMap(data), nil)
}

func newFile(data mmap.MMap, f *os.File) (*File, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	idx, err := parseIndexSection(data, h)
	if err != nil {
		return nil, err
	}
	return &File{data: data, f: f, Header: h, Index: idx}, nil
}

// Close releases the backing mapping and file descriptor, if this File owns
// one.
func (cf *File) Close() error {
	if !cf.owned {
		return nil
	}
	if err := cf.data.Unmap(); err != nil {
		return err
	}
	return cf.f.Close()
}

// Bytes exposes the raw mapped file, for callers that need to slice out
// raw bytes directly rather than through the record parsers.
func (cf *File) Bytes() []byte { return cf.data }

// Class parses the class definition at offset.
func (cf *File) Class(offset uint32) (ClassData, error) {
	return parseClass(cf.data, offset)
}

// Method parses the method definition at offset.
func (cf *File) Method(offset uint32) (MethodData, error) {
	m, err := parseMethod(cf.data, offset)
	if err != nil {
		return MethodData{}, MethodError{Offset: offset, Err: err}
	}
	return m, nil
}

// Code parses the Code structure at offset.
func (cf *File) Code(offset uint32) (CodeData, error) {
	return parseCode(cf.data, offset)
}

// LiteralArray parses the literal array at offset.
func (cf *File) LiteralArray(offset uint32) (LiteralArray, error) {
	return parseLiteralArray(cf.data, offset)
}

// Classes walks the class index table off the header, returning every
// top-level class definition in the file.
func (cf *File) Classes() ([]ClassData, error) {
	classes := make([]ClassData, 0, cf.Header.NumClasses)
	base := int(cf.Header.ClassIdxOff)
	for i := 0; i < int(cf.Header.NumClasses); i++ {
		entryOff := base + i*4
		if entryOff+4 > len(cf.data) {
			return nil, ErrOffsetOutOfBounds{Offset: entryOff, Size: len(cf.data)}
		}
		off := leUint32(cf.data[entryOff:])
		c, err := cf.Class(off)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// resolver adapts a File into a recover.Resolver, translating 16-bit
// region-scoped entity ids to absolute offsets before dereferencing them.
type resolver struct{ cf *File }

// Resolver returns a recover.Resolver backed by cf.
func (cf *File) Resolver() recover.Resolver { return resolver{cf: cf} }

func (r resolver) ResolveString(methodOff uint32, id uint32) (string, bool) {
	off, ok := r.cf.Index.ResolveMethodIndex(r.cf.data, methodOff, uint16(id))
	if !ok {
		return "", false
	}
	return readString(r.cf.data, off)
}

func (r resolver) ResolveLiteralArray(methodOff uint32, id uint32) (recover.LiteralArray, bool) {
	off, ok := r.cf.Index.ResolveMethodIndex(r.cf.data, methodOff, uint16(id))
	if !ok {
		return recover.LiteralArray{}, false
	}
	arr, err := parseLiteralArray(r.cf.data, off)
	if err != nil {
		return recover.LiteralArray{}, false
	}
	return convertLiteralArray(r.cf, arr), true
}

func (r resolver) ResolveMethodName(methodOff uint32, id uint32) (string, bool) {
	off, ok := r.cf.Index.ResolveMethodIndex(r.cf.data, methodOff, uint16(id))
	if !ok {
		return "", false
	}
	m, err := r.cf.Method(off)
	if err != nil {
		return "", false
	}
	return m.Name, true
}

func (r resolver) StringAtOffset(rawOffset uint32) (string, bool) {
	return readString(r.cf.data, rawOffset)
}

// convertLiteralArray maps a container.LiteralArray (the on-disk tagged
// encoding) to a recover.LiteralArray (the decompiler's abstract literal
// shape), resolving nested string ids eagerly since the recovery pass has
// no other way to reach the container from inside a literal entry.
func convertLiteralArray(cf *File, arr LiteralArray) recover.LiteralArray {
	out := recover.LiteralArray{Items: make([]recover.Literal, 0, len(arr.Entries))}
	for _, e := range arr.Entries {
		switch e.Tag {
		case LiteralTagBool:
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagBool, BoolVal: e.Bool})
		case LiteralTagInteger, LiteralTagValue, LiteralTagBufferIndex:
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagInt, IntVal: int64(e.Int)})
		case LiteralTagFloat:
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagDouble, DoubleVal: float64(e.Float)})
		case LiteralTagDouble:
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagDouble, DoubleVal: e.Double})
		case LiteralTagString, LiteralTagArrayString:
			s, _ := readString(cf.data, e.StringID)
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagString, StringVal: s})
		case LiteralTagLiteralArray:
			// e.StringID holds the nested array's offset, not a string id.
			// recover.Literal has no nested-array representation, so a
			// reference to one surfaces as null rather than a bogus string.
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagNull})
		case LiteralTagMethod, LiteralTagGeneratorMethod, LiteralTagAsyncGenMethod:
			name := ""
			if m, err := cf.Method(e.MethodID); err == nil {
				name = m.Name
			}
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagMethod, StringVal: name})
		case LiteralTagGetter, LiteralTagSetter:
			name := ""
			if m, err := cf.Method(e.MethodID); err == nil {
				name = m.Name
			}
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagAccessor, StringVal: name})
		case LiteralTagMethodAffiliate:
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagMethodAffiliate, IntVal: int64(e.Affiliate)})
		case LiteralTagNull:
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagNull})
		default:
			out.Items = append(out.Items, recover.Literal{Tag: recover.LiteralTagNull})
		}
	}
	return out
}
