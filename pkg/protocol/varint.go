package protocol

import (
	"io"
	"strconv"
)

const (
	maxVarIntLen  = 5
	maxVarLongLen = 10
)

// ReadVarInt reads a VarInt and reports how many bytes it occupied.
func ReadVarInt(r io.Reader) (int32, int, error) {
	var result uint32
	var numRead int
	var buf [1]byte

	for {
		if err := readFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		numRead++
		if numRead > maxVarIntLen {
			return 0, numRead, &BadVarIntError{Count: numRead}
		}

		result |= uint32(buf[0]&0x7F) << (7 * (numRead - 1))

		if buf[0]&0x80 == 0 {
			break
		}
	}

	return int32(result), numRead, nil
}

func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [maxVarIntLen]byte
	n := PutVarInt(buf[:], value)
	return w.Write(buf[:n])
}

// PutVarInt encodes value into buf, which must hold at least VarIntSize(value)
// bytes, and returns the number of bytes written.
func PutVarInt(buf []byte, value int32) int {
	return putUvarint(buf, uint64(uint32(value)))
}

func VarIntSize(value int32) int {
	return uvarintSize(uint64(uint32(value)))
}

func ReadVarLong(r io.Reader) (int64, int, error) {
	var result uint64
	var numRead int
	var buf [1]byte

	for {
		if err := readFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		numRead++
		if numRead > maxVarLongLen {
			return 0, numRead, &BadVarIntError{Count: numRead}
		}

		result |= uint64(buf[0]&0x7F) << (7 * (numRead - 1))

		if buf[0]&0x80 == 0 {
			break
		}
	}

	return int64(result), numRead, nil
}

func WriteVarLong(w io.Writer, value int64) (int, error) {
	var buf [maxVarLongLen]byte
	n := putUvarint(buf[:], uint64(value))
	return w.Write(buf[:n])
}

func VarLongSize(value int64) int {
	return uvarintSize(uint64(value))
}

func putUvarint(buf []byte, val uint64) int {
	n := 0
	for {
		b := byte(val & 0x7F)
		val >>= 7
		if val != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if val == 0 {
			return n
		}
	}
}

func uvarintSize(val uint64) int {
	size := 0
	for {
		size++
		val >>= 7
		if val == 0 {
			return size
		}
	}
}

// VarInt is a 32-bit integer in 7-bit groups, least significant group first.
type VarInt int32

func (v VarInt) Value() int32   { return int32(v) }
func (v VarInt) String() string { return strconv.FormatInt(int64(v), 10) }
func (v VarInt) Size() int      { return VarIntSize(int32(v)) }

func (v VarInt) WriteField(w io.Writer) error {
	_, err := WriteVarInt(w, int32(v))
	return err
}

func (v *VarInt) ReadField(r io.Reader) error {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	*v = VarInt(n)
	return nil
}

// VarLong is the 64-bit counterpart of VarInt, at most 10 bytes long.
type VarLong int64

func (v VarLong) Value() int64   { return int64(v) }
func (v VarLong) String() string { return strconv.FormatInt(int64(v), 10) }
func (v VarLong) Size() int      { return VarLongSize(int64(v)) }

func (v VarLong) WriteField(w io.Writer) error {
	_, err := WriteVarLong(w, int64(v))
	return err
}

func (v *VarLong) ReadField(r io.Reader) error {
	n, _, err := ReadVarLong(r)
	if err != nil {
		return err
	}
	*v = VarLong(n)
	return nil
}
