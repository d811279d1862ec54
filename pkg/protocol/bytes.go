package protocol

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

func ReadByteArray(r io.Reader) ([]byte, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read byte array length: %w", err)
	}
	if length < 0 {
		return nil, fmt.Errorf("negative byte array length: %d", length)
	}
	if length > MaxPacketSize {
		return nil, fmt.Errorf("%w: length %d", ErrByteArrayTooLong, length)
	}
	if l, ok := r.(interface{ Len() int }); ok && int(length) > l.Len() {
		return nil, fmt.Errorf("read byte array data: length %d with %d bytes left: %w", length, l.Len(), io.ErrUnexpectedEOF)
	}
	buf := make([]byte, length)
	if err := readFull(r, buf); err != nil {
		return nil, fmt.Errorf("read byte array data: %w", err)
	}
	return buf, nil
}

func WriteByteArray(w io.Writer, data []byte) (int, error) {
	n1, err := WriteVarInt(w, int32(len(data)))
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(data)
	return n1 + n2, err
}

func hexString(b []byte) string {
	const limit = 32
	if len(b) > limit {
		return fmt.Sprintf("[%d bytes] %s...", len(b), hex.EncodeToString(b[:limit]))
	}
	return fmt.Sprintf("[%d bytes] %s", len(b), hex.EncodeToString(b))
}

// ByteArray is a VarInt length followed by that many raw bytes.
type ByteArray []byte

func (b ByteArray) Value() []byte  { return b }
func (b ByteArray) String() string { return hexString(b) }
func (b ByteArray) Size() int      { return VarIntSize(int32(len(b))) + len(b) }

func (b ByteArray) WriteField(w io.Writer) error {
	_, err := WriteByteArray(w, b)
	return err
}

func (b *ByteArray) ReadField(r io.Reader) error {
	v, err := ReadByteArray(r)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// RestOfBuffer takes every byte left in the packet body. It may only be the
// last field of a packet and must not be empty. Its bytes are written
// verbatim, without a length.
type RestOfBuffer []byte

func (b RestOfBuffer) Value() []byte  { return b }
func (b RestOfBuffer) String() string { return hexString(b) }
func (b RestOfBuffer) Size() int      { return len(b) }

func (b RestOfBuffer) WriteField(w io.Writer) error {
	_, err := w.Write(b)
	return err
}

func (b *RestOfBuffer) ReadField(r io.Reader) error {
	v, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(v) == 0 {
		return ErrEmptyRest
	}
	*b = v
	return nil
}

// Unparsed holds the remainder of a packet body whose layout is not decoded
// field by field. Unlike RestOfBuffer it may be empty.
type Unparsed []byte

func (b Unparsed) Value() []byte  { return b }
func (b Unparsed) String() string { return hexString(b) }
func (b Unparsed) Size() int      { return len(b) }

func (b Unparsed) WriteField(w io.Writer) error {
	_, err := w.Write(b)
	return err
}

func (b *Unparsed) ReadField(r io.Reader) error {
	v, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// UUID is sent as 16 raw bytes, most significant first.
type UUID uuid.UUID

func (u UUID) Value() uuid.UUID { return uuid.UUID(u) }
func (u UUID) String() string   { return uuid.UUID(u).String() }
func (UUID) Size() int          { return 16 }

func (u UUID) WriteField(w io.Writer) error {
	_, err := w.Write(u[:])
	return err
}

func (u *UUID) ReadField(r io.Reader) error {
	return readFull(r, u[:])
}
