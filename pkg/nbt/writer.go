// Package nbt writes the Named Binary Tag format used by Minecraft packets.
// Only encoding is supported.
package nbt

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// NBT tag type IDs.
const (
	TagEnd       byte = 0
	TagByte      byte = 1
	TagShort     byte = 2
	TagInt       byte = 3
	TagLong      byte = 4
	TagFloat     byte = 5
	TagDouble    byte = 6
	TagByteArray byte = 7
	TagString    byte = 8
	TagList      byte = 9
	TagCompound  byte = 10
	TagIntArray  byte = 11
	TagLongArray byte = 12
)

var (
	ErrStringTooLong = errors.New("nbt: string longer than 65535 encoded bytes")
	ErrUnbalanced    = errors.New("nbt: EndCompound without open compound")
)

// Writer writes NBT binary data to an io.Writer in big-endian format.
// All write methods accumulate errors internally; call Err() after writing
// to check for failures.
type Writer struct {
	w     io.Writer
	err   error
	depth int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered during writing.
func (w *Writer) Err() error {
	return w.err
}

// Depth is the number of compounds begun and not yet ended.
func (w *Writer) Depth() int {
	return w.depth
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

func (w *Writer) putByte(v byte) {
	w.write([]byte{v})
}

func (w *Writer) putUint16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.write(buf[:])
}

func (w *Writer) putInt32(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	w.write(buf[:])
}

func (w *Writer) putInt64(v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	w.write(buf[:])
}

// putString writes a u16 length and the modified UTF-8 form of s.
func (w *Writer) putString(s string) {
	enc := encodeMUTF8(s)
	if len(enc) > math.MaxUint16 {
		if w.err == nil {
			w.err = ErrStringTooLong
		}
		return
	}
	w.putUint16(uint16(len(enc)))
	w.write(enc)
}

// BeginCompound opens a named compound. Every compound must be closed with
// EndCompound.
func (w *Writer) BeginCompound(name string) {
	w.Named(name).Compound()
}

// BeginUnnamedCompound opens a compound written without a name, as the root
// of network NBT is since 1.20.2.
func (w *Writer) BeginUnnamedCompound() {
	w.Unnamed().Compound()
}

// BeginListCompound opens a compound list element, which has neither type id
// nor name.
func (w *Writer) BeginListCompound() {
	w.depth++
}

// EndCompound writes an End tag to close the innermost compound.
func (w *Writer) EndCompound() {
	if w.depth == 0 {
		if w.err == nil {
			w.err = ErrUnbalanced
		}
		return
	}
	w.depth--
	w.putByte(TagEnd)
}

// Named starts a tag with a name, as compound members are written.
func (w *Writer) Named(name string) Tag {
	return Tag{w: w, name: name, named: true}
}

// Unnamed starts a tag that has a type id but no name.
func (w *Writer) Unnamed() Tag {
	return Tag{w: w}
}

// Tag writes exactly one tag header and payload.
type Tag struct {
	w     *Writer
	name  string
	named bool
}

func (t Tag) header(tagType byte) {
	t.w.putByte(tagType)
	if t.named {
		t.w.putString(t.name)
	}
}

func (t Tag) Byte(v int8) {
	t.header(TagByte)
	t.w.putByte(byte(v))
}

func (t Tag) Short(v int16) {
	t.header(TagShort)
	t.w.putUint16(uint16(v))
}

func (t Tag) Int(v int32) {
	t.header(TagInt)
	t.w.putInt32(v)
}

func (t Tag) Long(v int64) {
	t.header(TagLong)
	t.w.putInt64(v)
}

func (t Tag) Float(v float32) {
	t.header(TagFloat)
	t.w.putInt32(int32(math.Float32bits(v)))
}

func (t Tag) Double(v float64) {
	t.header(TagDouble)
	t.w.putInt64(int64(math.Float64bits(v)))
}

func (t Tag) String(v string) {
	t.header(TagString)
	t.w.putString(v)
}

func (t Tag) ByteArray(v []byte) {
	t.header(TagByteArray)
	t.w.putInt32(int32(len(v)))
	t.w.write(v)
}

func (t Tag) IntArray(v []int32) {
	t.header(TagIntArray)
	t.w.putInt32(int32(len(v)))
	for _, val := range v {
		t.w.putInt32(val)
	}
}

func (t Tag) LongArray(v []int64) {
	t.header(TagLongArray)
	t.w.putInt32(int32(len(v)))
	for _, val := range v {
		t.w.putInt64(val)
	}
}

// List writes a list header. The caller then writes count payloads of
// elemType; compound elements are opened with BeginListCompound.
func (t Tag) List(elemType byte, count int32) {
	t.header(TagList)
	t.w.putByte(elemType)
	t.w.putInt32(count)
}

// Compound opens a compound; close it with Writer.EndCompound.
func (t Tag) Compound() {
	t.header(TagCompound)
	t.w.depth++
}
