package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrBadString          = errors.New("protocol: invalid string")
	ErrEmptyRest          = errors.New("protocol: no bytes left for rest of buffer")
	ErrNBTRead            = errors.New("protocol: reading NBT is not supported")
	ErrPositionOutOfRange = errors.New("protocol: position out of range")
	ErrLengthMismatch     = errors.New("protocol: written length differs from declared length")
	ErrPacketTooLarge     = errors.New("protocol: packet too large")
	ErrBadSharedSecret    = errors.New("protocol: shared secret must be 16 bytes")
	ErrByteArrayTooLong   = errors.New("protocol: byte array longer than a packet")
)

// BadVarIntError reports a variable length integer that did not terminate
// within its maximum width. Count is the number of bytes read.
type BadVarIntError struct {
	Count int
}

func (e *BadVarIntError) Error() string {
	return fmt.Sprintf("protocol: variable length integer too long (%d bytes)", e.Count)
}

// BadBoolError reports a boolean byte other than 0x00 or 0x01.
type BadBoolError struct {
	Value byte
}

func (e *BadBoolError) Error() string {
	return fmt.Sprintf("protocol: invalid boolean byte %#02x", e.Value)
}

// UnexpectedPacketError reports a frame whose id does not match the packet
// type it was decoded into.
type UnexpectedPacketError struct {
	Expected int32
	Actual   int32
}

func (e *UnexpectedPacketError) Error() string {
	return fmt.Sprintf("protocol: expected packet 0x%02X, got 0x%02X", e.Expected, e.Actual)
}

// FullPacketNotReadError reports a body with bytes left over after all fields
// were read.
type FullPacketNotReadError struct {
	Length int
	Read   int
}

func (e *FullPacketNotReadError) Error() string {
	return fmt.Sprintf("protocol: packet not fully read: %d of %d bytes consumed", e.Read, e.Length)
}

// FieldError attaches the struct field name to a codec failure.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
