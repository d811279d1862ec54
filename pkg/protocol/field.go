// Package protocol implements the Minecraft wire types and the packet framing
// that generated packet structs are decoded and encoded with.
//
// Every wire type implements Field; pointers to them implement FieldReader.
// For any value v, writing v and reading it back yields v and consumes exactly
// v.Size() bytes. RestOfBuffer and Unparsed are the exception: they consume
// whatever is left of the packet body.
package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Field is a value with a fixed wire encoding.
type Field interface {
	fmt.Stringer
	// Size is the number of bytes WriteField would produce.
	Size() int
	WriteField(w io.Writer) error
}

// FieldReader decodes a Field in place.
type FieldReader interface {
	ReadField(r io.Reader) error
}

// VersionedField is implemented by fields whose layout depends on the
// protocol version. Codec calls SetProtocolVersion before reading or writing.
type VersionedField interface {
	SetProtocolVersion(version int)
}

// readFull is io.ReadFull that never reports a clean io.EOF: a field that
// cannot be read in full is always a short read.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}
