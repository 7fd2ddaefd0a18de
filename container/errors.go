package container

import "fmt"

// ErrBadMagic is returned when a file's leading bytes don't match the
// expected container magic.
var ErrBadMagic = fmt.Errorf("container: bad magic, expected %q", string(magic[:]))

// ErrShortRead is returned when the file is smaller than the fixed header.
type ErrShortRead struct {
	Have, Want int
}

func (e ErrShortRead) Error() string {
	return fmt.Sprintf("container: file too small: have %d bytes, need at least %d", e.Have, e.Want)
}

// ErrUnsupportedVersion is returned when the file's version predecessors
// minVersion.
type ErrUnsupportedVersion struct{ Version [4]byte }

func (e ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("container: unsupported version %d.%d.%d.%d",
		e.Version[0], e.Version[1], e.Version[2], e.Version[3])
}

// ErrOffsetOutOfBounds is returned when a parse reaches past the end of the
// mapped file.
type ErrOffsetOutOfBounds struct{ Offset, Size int }

func (e ErrOffsetOutOfBounds) Error() string {
	return fmt.Sprintf("container: offset %#x out of bounds (file size %#x)", e.Offset, e.Size)
}

// MethodError wraps a parse failure with the offset of the method that
// triggered it, so a caller decompiling many methods can isolate one bad
// method from the rest of the file rather than aborting the whole run.
type MethodError struct {
	Offset uint32
	Err    error
}

func (e MethodError) Error() string {
	return fmt.Sprintf("container: method at %#x: %v", e.Offset, e.Err)
}

func (e MethodError) Unwrap() error { return e.Err }
