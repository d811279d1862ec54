package protocol

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-craft/protocol/pkg/nbt"
)

// roundTrip writes in, reads it back into out and checks that exactly
// in.Size() bytes were produced and consumed.
func roundTrip(t *testing.T, in Field, out FieldReader) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, in.WriteField(&buf))
	require.Equal(t, in.Size(), buf.Len(), "Size() of %v", in)
	require.NoError(t, out.ReadField(&buf))
	require.Zero(t, buf.Len(), "bytes left after reading %v", in)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	for _, v := range []Byte{math.MinInt8, -1, 0, 1, math.MaxInt8} {
		var got Byte
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
	for _, v := range []UByte{0, 1, math.MaxUint8} {
		var got UByte
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
	for _, v := range []Short{math.MinInt16, -1, 0, math.MaxInt16} {
		var got Short
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
	for _, v := range []UShort{0, 25565, math.MaxUint16} {
		var got UShort
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
	for _, v := range []Int{math.MinInt32, -1, 0, math.MaxInt32} {
		var got Int
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
	for _, v := range []Long{math.MinInt64, -1, 0, math.MaxInt64} {
		var got Long
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
	for _, v := range []Float{-1.5, 0, math.MaxFloat32, Float(math.Inf(1))} {
		var got Float
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
	for _, v := range []Double{-1.5, 0, math.SmallestNonzeroFloat64, math.MaxFloat64} {
		var got Double
		roundTrip(t, v, &got)
		assert.Equal(t, v, got)
	}
}

func TestFixedWidthBigEndian(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Int(0x01020304).WriteField(&buf))
	require.NoError(t, UShort(0xABCD).WriteField(&buf))
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0xAB, 0xCD}, buf.Bytes())
}

func TestFixedWidthShortRead(t *testing.T) {
	var l Long
	err := l.ReadField(bytes.NewReader([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var s Short
	err = s.ReadField(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBool(t *testing.T) {
	tests := []struct {
		in   byte
		want Bool
	}{
		{0x00, false},
		{0x01, true},
	}
	for _, tt := range tests {
		var b Bool
		require.NoError(t, b.ReadField(bytes.NewReader([]byte{tt.in})))
		assert.Equal(t, tt.want, b)
		roundTrip(t, tt.want, &b)
	}

	var b Bool
	err := b.ReadField(bytes.NewReader([]byte{0x05}))
	var bad *BadBoolError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, byte(5), bad.Value)
}

func TestString(t *testing.T) {
	for _, s := range []String{"", "hello", "héllo wörld", String(strings.Repeat("x", 300))} {
		var got String
		roundTrip(t, s, &got)
		assert.Equal(t, s, got)
	}

	var buf bytes.Buffer
	require.NoError(t, String("abc").WriteField(&buf))
	assert.Equal(t, []byte{0x03, 'a', 'b', 'c'}, buf.Bytes())
}

func TestStringErrors(t *testing.T) {
	var s String
	err := s.ReadField(bytes.NewReader([]byte{0x02, 0xC3, 0x28}))
	assert.ErrorIs(t, err, ErrBadString)

	err = s.ReadField(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}))
	assert.ErrorIs(t, err, ErrBadString)

	err = s.ReadField(bytes.NewReader([]byte{0x05, 'a'}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStringWriteRejectsUnreadable(t *testing.T) {
	longest := String(strings.Repeat("x", maxStringLen))
	var got String
	roundTrip(t, longest, &got)
	assert.Equal(t, longest, got)

	var buf bytes.Buffer
	err := String(strings.Repeat("x", maxStringLen+1)).WriteField(&buf)
	assert.ErrorIs(t, err, ErrBadString)
	assert.Zero(t, buf.Len())

	err = String([]byte{0xC3, 0x28}).WriteField(&buf)
	assert.ErrorIs(t, err, ErrBadString)

	err = Identifier(strings.Repeat("a", maxStringLen+1)).WriteField(&buf)
	assert.ErrorIs(t, err, ErrBadString)
	assert.Zero(t, buf.Len())
}

func TestNewChat(t *testing.T) {
	assert.Equal(t, String(`{"text":"Hello \"world\""}`), NewChat(`Hello "world"`))
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		in        Identifier
		namespace string
		location  string
	}{
		{"bonbon", "minecraft", "bonbon"},
		{"colon:sunglass", "colon", "sunglass"},
		{"ohno:", "ohno", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.namespace, tt.in.Namespace(), tt.in)
		assert.Equal(t, tt.location, tt.in.Location(), tt.in)

		var got Identifier
		roundTrip(t, tt.in, &got)
		assert.Equal(t, tt.in, got)
	}
	assert.Equal(t, "minecraft:bonbon", Identifier("bonbon").String())
}

func TestByteArray(t *testing.T) {
	for _, b := range []ByteArray{{}, {1, 2, 3}, bytes.Repeat([]byte{0xAA}, 200)} {
		var got ByteArray
		roundTrip(t, b, &got)
		assert.Equal(t, []byte(b), []byte(got))
	}
}

func TestByteArrayLengthBounded(t *testing.T) {
	frame := func(length int32, data ...byte) []byte {
		var buf bytes.Buffer
		_, err := WriteVarInt(&buf, length)
		require.NoError(t, err)
		buf.Write(data)
		return buf.Bytes()
	}

	_, err := ReadByteArray(bytes.NewReader(frame(math.MaxInt32, 1, 2, 3)))
	assert.ErrorIs(t, err, ErrByteArrayTooLong)

	// Rejected before the buffer is made.
	_, err = ReadByteArray(bytes.NewReader(frame(MaxPacketSize, 1, 2, 3)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorContains(t, err, "with 3 bytes left")

	// No Len method: the short read is still reported.
	_, err = ReadByteArray(io.MultiReader(bytes.NewReader(frame(1000, 1, 2, 3))))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRestOfBuffer(t *testing.T) {
	var rest RestOfBuffer
	roundTrip(t, RestOfBuffer{1, 2, 3}, &rest)
	assert.Equal(t, RestOfBuffer{1, 2, 3}, rest)

	assert.ErrorIs(t, rest.ReadField(bytes.NewReader(nil)), ErrEmptyRest)

	var tail Unparsed
	require.NoError(t, tail.ReadField(bytes.NewReader(nil)))
	assert.Empty(t, tail)
}

func TestUUID(t *testing.T) {
	id := UUID(uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"))
	var got UUID
	roundTrip(t, id, &got)
	assert.Equal(t, id, got)
	assert.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", got.String())
}

func TestPositionLayouts(t *testing.T) {
	coords := [][3]int{
		{1, 2, 3},
		{-10, 150, 40000},
		{-20000, -2000, 200000},
		{-1 << 25, -1 << 11, 1<<25 - 1},
	}
	for _, version := range []int{340, 480} {
		for _, c := range coords {
			p, err := NewPosition(version, c[0], c[1], c[2])
			require.NoError(t, err)

			var got Position
			got.SetProtocolVersion(version)
			roundTrip(t, p, &got)
			assert.Equal(t, p, got, "version %d", version)
		}
	}
}

func TestPositionBitLayout(t *testing.T) {
	modern, err := NewPosition(480, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<38|3<<12|2), modern.Pack())

	legacy, err := NewPosition(340, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<38|2<<26|3), legacy.Pack())

	assert.Equal(t, PositionLayoutCutoff, 477)
	atCutoff, err := NewPosition(PositionLayoutCutoff, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, modern.Pack(), atCutoff.Pack())
}

func TestPositionOutOfRange(t *testing.T) {
	for _, c := range [][3]int{
		{1 << 25, 0, 0},
		{0, 0, -1<<25 - 1},
		{0, 1 << 11, 0},
		{0, -1<<11 - 1, 0},
	} {
		_, err := NewPosition(480, c[0], c[1], c[2])
		assert.ErrorIs(t, err, ErrPositionOutOfRange, c)
	}
}

func TestPositionLiteralOutOfRange(t *testing.T) {
	for _, p := range []Position{
		{X: 1 << 25, Y: 5000, Z: 3},
		{X: 0, Y: 1 << 11, Z: 0},
		{X: 0, Y: 0, Z: -1<<25 - 1},
	} {
		var buf bytes.Buffer
		assert.ErrorIs(t, p.WriteField(&buf), ErrPositionOutOfRange, p)
		assert.Zero(t, buf.Len())
	}

	edge := Position{X: 1<<25 - 1, Y: -1 << 11, Z: -1 << 25}
	edge.SetProtocolVersion(480)
	var got Position
	got.SetProtocolVersion(480)
	roundTrip(t, edge, &got)
	assert.Equal(t, edge, got)
}

func TestNBTField(t *testing.T) {
	field, err := BuildNBT(func(w *nbt.Writer) {
		w.BeginCompound("hello world")
		w.Named("name").String("Bananrama")
		w.EndCompound()
	})
	require.NoError(t, err)
	assert.Equal(t, 33, field.Size())

	var buf bytes.Buffer
	require.NoError(t, field.WriteField(&buf))
	assert.Equal(t, []byte(field), buf.Bytes())

	var got NBT
	assert.ErrorIs(t, got.ReadField(&buf), ErrNBTRead)

	_, err = BuildNBT(func(w *nbt.Writer) { w.BeginCompound("open") })
	assert.Error(t, err)
}
