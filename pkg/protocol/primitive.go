package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"strconv"
)

// Fixed width integers and floats, big endian.
type (
	Byte   int8
	UByte  uint8
	Short  int16
	UShort uint16
	Int    int32
	Long   int64
	Float  float32
	Double float64
)

func readBig(r io.Reader, v any) error {
	if err := binary.Read(r, binary.BigEndian, v); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

func (v Byte) Value() int8                  { return int8(v) }
func (v Byte) String() string               { return strconv.FormatInt(int64(v), 10) }
func (Byte) Size() int                      { return 1 }
func (v Byte) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, int8(v)) }

func (v *Byte) ReadField(r io.Reader) error {
	var n int8
	if err := readBig(r, &n); err != nil {
		return err
	}
	*v = Byte(n)
	return nil
}

func (v UByte) Value() uint8                 { return uint8(v) }
func (v UByte) String() string               { return strconv.FormatUint(uint64(v), 10) }
func (UByte) Size() int                      { return 1 }
func (v UByte) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, uint8(v)) }

func (v *UByte) ReadField(r io.Reader) error {
	var n uint8
	if err := readBig(r, &n); err != nil {
		return err
	}
	*v = UByte(n)
	return nil
}

func (v Short) Value() int16                 { return int16(v) }
func (v Short) String() string               { return strconv.FormatInt(int64(v), 10) }
func (Short) Size() int                      { return 2 }
func (v Short) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, int16(v)) }

func (v *Short) ReadField(r io.Reader) error {
	var n int16
	if err := readBig(r, &n); err != nil {
		return err
	}
	*v = Short(n)
	return nil
}

func (v UShort) Value() uint16                { return uint16(v) }
func (v UShort) String() string               { return strconv.FormatUint(uint64(v), 10) }
func (UShort) Size() int                      { return 2 }
func (v UShort) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, uint16(v)) }

func (v *UShort) ReadField(r io.Reader) error {
	var n uint16
	if err := readBig(r, &n); err != nil {
		return err
	}
	*v = UShort(n)
	return nil
}

func (v Int) Value() int32                 { return int32(v) }
func (v Int) String() string               { return strconv.FormatInt(int64(v), 10) }
func (Int) Size() int                      { return 4 }
func (v Int) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, int32(v)) }

func (v *Int) ReadField(r io.Reader) error {
	var n int32
	if err := readBig(r, &n); err != nil {
		return err
	}
	*v = Int(n)
	return nil
}

func (v Long) Value() int64                 { return int64(v) }
func (v Long) String() string               { return strconv.FormatInt(int64(v), 10) }
func (Long) Size() int                      { return 8 }
func (v Long) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, int64(v)) }

func (v *Long) ReadField(r io.Reader) error {
	var n int64
	if err := readBig(r, &n); err != nil {
		return err
	}
	*v = Long(n)
	return nil
}

func (v Float) Value() float32               { return float32(v) }
func (v Float) String() string               { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (Float) Size() int                      { return 4 }
func (v Float) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, float32(v)) }

func (v *Float) ReadField(r io.Reader) error {
	var f float32
	if err := readBig(r, &f); err != nil {
		return err
	}
	*v = Float(f)
	return nil
}

func (v Double) Value() float64               { return float64(v) }
func (v Double) String() string               { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (Double) Size() int                      { return 8 }
func (v Double) WriteField(w io.Writer) error { return binary.Write(w, binary.BigEndian, float64(v)) }

func (v *Double) ReadField(r io.Reader) error {
	var f float64
	if err := readBig(r, &f); err != nil {
		return err
	}
	*v = Double(f)
	return nil
}

// Bool is a single byte, 0x00 or 0x01. Any other byte is rejected.
type Bool bool

func (v Bool) Value() bool    { return bool(v) }
func (v Bool) String() string { return strconv.FormatBool(bool(v)) }
func (Bool) Size() int        { return 1 }

func (v Bool) WriteField(w io.Writer) error {
	b := [1]byte{0x00}
	if v {
		b[0] = 0x01
	}
	_, err := w.Write(b[:])
	return err
}

func (v *Bool) ReadField(r io.Reader) error {
	var b [1]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}
	switch b[0] {
	case 0x00:
		*v = false
	case 0x01:
		*v = true
	default:
		return &BadBoolError{Value: b[0]}
	}
	return nil
}
