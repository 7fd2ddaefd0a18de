package container

import "encoding/binary"

// regionHeaderSize is the fixed on-disk size of a RegionHeader: 10 * 4 bytes.
const regionHeaderSize = 40

// RegionHeader describes one region's four 16-bit index tables (class,
// method, field, proto), each mapping a bytecode-local index to a 32-bit
// absolute file offset. A file is split into regions so that sibling
// classes compiled together can share a compact index.
type RegionHeader struct {
	StartOff      uint32
	EndOff        uint32
	ClassIdxSize  uint32
	ClassIdxOff   uint32
	MethodIdxSize uint32
	MethodIdxOff  uint32
	FieldIdxSize  uint32
	FieldIdxOff   uint32
	ProtoIdxSize  uint32
	ProtoIdxOff   uint32
}

func parseRegionHeader(data []byte, offset int) (RegionHeader, error) {
	if offset+regionHeaderSize > len(data) {
		return RegionHeader{}, ErrOffsetOutOfBounds{Offset: offset, Size: len(data)}
	}
	r := func(off int) uint32 { return binary.LittleEndian.Uint32(data[offset+off:]) }
	return RegionHeader{
		StartOff:      r(0),
		EndOff:        r(4),
		ClassIdxSize:  r(8),
		ClassIdxOff:   r(12),
		MethodIdxSize: r(16),
		MethodIdxOff:  r(20),
		FieldIdxSize:  r(24),
		FieldIdxOff:   r(28),
		ProtoIdxSize:  r(32),
		ProtoIdxOff:   r(36),
	}, nil
}

// IndexSection holds every region header in the file.
type IndexSection struct {
	Regions []RegionHeader
}

func parseIndexSection(data []byte, h Header) (IndexSection, error) {
	regions := make([]RegionHeader, 0, h.NumIndexes)
	base := int(h.IndexSectionOff)
	for i := 0; i < int(h.NumIndexes); i++ {
		rh, err := parseRegionHeader(data, base+i*regionHeaderSize)
		if err != nil {
			return IndexSection{}, err
		}
		regions = append(regions, rh)
	}
	return IndexSection{Regions: regions}, nil
}

// FindRegion returns the region covering the given absolute file offset.
func (s IndexSection) FindRegion(offset uint32) (RegionHeader, bool) {
	for _, r := range s.Regions {
		if offset >= r.StartOff && offset < r.EndOff {
			return r, true
		}
	}
	return RegionHeader{}, false
}

// ResolveMethodIndex resolves a 16-bit method-table index, scoped to the
// region containing contextOffset, to an absolute file offset. The same
// table also backs string, literal-array, and other entity ids: the
// container format has a single 16-bit id space per region, regardless of
// what kind of entity the id names (mirrors the upstream reader's
// ResolveOffsetByIndex, which always consults the method index table).
func (s IndexSection) ResolveMethodIndex(data []byte, contextOffset uint32, idx uint16) (uint32, bool) {
	region, ok := s.FindRegion(contextOffset)
	if !ok || uint32(idx) >= region.MethodIdxSize {
		return 0, false
	}
	entryOff := int(region.MethodIdxOff) + int(idx)*4
	if entryOff+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[entryOff:]), true
}

// ResolveClassIndex resolves a 16-bit class-table index, scoped to the
// region containing contextOffset, to an absolute file offset.
func (s IndexSection) ResolveClassIndex(data []byte, contextOffset uint32, idx uint16) (uint32, bool) {
	region, ok := s.FindRegion(contextOffset)
	if !ok || uint32(idx) >= region.ClassIdxSize {
		return 0, false
	}
	entryOff := int(region.ClassIdxOff) + int(idx)*4
	if entryOff+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[entryOff:]), true
}
