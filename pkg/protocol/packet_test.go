package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handshake is the serverbound 0x00 packet of the handshaking state.
type handshake struct {
	ProtocolVersion VarInt
	ServerAddress   String
	ServerPort      UShort
	NextState       VarInt
}

func (handshake) PacketID() int32 { return 0x00 }

type blockChange struct {
	Location Position
	BlockID  VarInt
	note     string
	Debug    string `mc:"-"`
}

func (blockChange) PacketID() int32 { return 0x0B }

type chunkData struct {
	X, Z Int
	Data RestOfBuffer
}

func (chunkData) PacketID() int32 { return 0x20 }

func TestHandshakeRoundTrip(t *testing.T) {
	original := &handshake{
		ProtocolVersion: 47,
		ServerAddress:   "localhost",
		ServerPort:      25565,
		NextState:       2,
	}

	var c Codec
	length, err := c.Length(original)
	require.NoError(t, err)
	// id(1) + varint(1) + string(1+9) + u16(2) + varint(1)
	assert.Equal(t, 15, length)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, original))
	assert.Equal(t, []byte{
		0x0F, 0x00,
		0x2F,
		0x09, 'l', 'o', 'c', 'a', 'l', 'h', 'o', 's', 't',
		0x63, 0xDD,
		0x02,
	}, buf.Bytes())

	decoded := &handshake{}
	require.NoError(t, c.ReadPacket(&buf, decoded))
	assert.Equal(t, original, decoded)
	assert.Zero(t, buf.Len())
}

func TestEncodeRejectsOutOfRangePosition(t *testing.T) {
	c := Codec{ProtocolVersion: 480}
	var buf bytes.Buffer
	err := c.Encode(&buf, &blockChange{Location: Position{X: 1 << 25, Y: 5000, Z: 3}, BlockID: 1})

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Location", fe.Field)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)
	assert.Zero(t, buf.Len())
}

func TestEncodeDoesNotModifyPacket(t *testing.T) {
	p := blockChange{Location: Position{X: 1, Y: 2, Z: 3}, BlockID: 1, note: "kept"}
	var buf bytes.Buffer
	require.NoError(t, Codec{ProtocolVersion: 480}.Encode(&buf, p))
	assert.Zero(t, p.Location.ProtocolVersion())

	body, err := ReadPacketBody(&buf)
	require.NoError(t, err)
	assert.Equal(t, int32(0x0B), body.ID)
	assert.Len(t, body.Body, 9)

	var decoded blockChange
	require.NoError(t, Codec{ProtocolVersion: 480}.Decode(body, &decoded))
	assert.Equal(t, Position{X: 1, Y: 2, Z: 3, version: 480}, decoded.Location)
	assert.Equal(t, VarInt(1), decoded.BlockID)

	var legacy blockChange
	require.NoError(t, Codec{ProtocolVersion: 340}.Decode(body, &legacy))
	assert.Equal(t, int32(0), legacy.Location.Y)
	assert.Equal(t, int32(3<<12|2), legacy.Location.Z)
}

func TestDecodeErrors(t *testing.T) {
	var c Codec
	var full bytes.Buffer
	require.NoError(t, c.Encode(&full, &handshake{ProtocolVersion: 340, ServerAddress: "a", ServerPort: 1, NextState: 1}))
	body, err := ReadPacketBody(&full)
	require.NoError(t, err)

	t.Run("short body", func(t *testing.T) {
		short := PacketBody{ID: body.ID, Body: body.Body[:len(body.Body)-2]}
		err := c.Decode(short, &handshake{})
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "ServerPort", fe.Field)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		long := PacketBody{ID: body.ID, Body: append(append([]byte{}, body.Body...), 0xFF, 0xFF)}
		err := c.Decode(long, &handshake{})
		var notRead *FullPacketNotReadError
		require.ErrorAs(t, err, &notRead)
		assert.Equal(t, len(body.Body)+2, notRead.Length)
		assert.Equal(t, len(body.Body), notRead.Read)
	})

	t.Run("mismatched id", func(t *testing.T) {
		err := c.Decode(PacketBody{ID: 0x01, Body: body.Body}, &handshake{})
		var unexpected *UnexpectedPacketError
		require.ErrorAs(t, err, &unexpected)
		assert.Equal(t, int32(0x00), unexpected.Expected)
		assert.Equal(t, int32(0x01), unexpected.Actual)
	})

	t.Run("not a pointer", func(t *testing.T) {
		assert.Error(t, c.Decode(body, handshake{}))
	})
}

func TestRestOfBufferIsLastField(t *testing.T) {
	p := &chunkData{X: 1, Z: -1, Data: RestOfBuffer{9, 8, 7}}
	var c Codec
	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, p))

	got := &chunkData{}
	require.NoError(t, c.ReadPacket(&buf, got))
	assert.Equal(t, p, got)
}

type lyingField struct{}

func (lyingField) String() string { return "liar" }
func (lyingField) Size() int      { return 1 }

func (lyingField) WriteField(w io.Writer) error {
	_, err := w.Write([]byte{1, 2})
	return err
}

type lyingPacket struct {
	F lyingField
}

func (lyingPacket) PacketID() int32 { return 0x01 }

func TestEncodeLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Codec{}.Encode(&buf, lyingPacket{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Zero(t, buf.Len())
}

type notAField struct {
	Name string
}

func (notAField) PacketID() int32 { return 0x02 }

func TestNonFieldMember(t *testing.T) {
	var buf bytes.Buffer
	err := Codec{}.Encode(&buf, notAField{})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Name", fe.Field)
}

func TestPacketBodyLimits(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteVarInt(&buf, MaxPacketSize+1)
	require.NoError(t, err)
	_, err = ReadPacketBody(&buf)
	assert.ErrorIs(t, err, ErrPacketTooLarge)

	buf.Reset()
	_, err = WriteVarInt(&buf, 0)
	require.NoError(t, err)
	_, err = ReadPacketBody(&buf)
	assert.Error(t, err)

	err = WritePacketBody(io.Discard, PacketBody{ID: 1, Body: make([]byte, MaxPacketSize)})
	assert.True(t, errors.Is(err, ErrPacketTooLarge))
}

func TestWritePacketBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePacketBody(&buf, PacketBody{ID: 0x26, Body: []byte{1, 2, 3}}))
	assert.Equal(t, []byte{0x04, 0x26, 1, 2, 3}, buf.Bytes())

	body, err := ReadPacketBody(&buf)
	require.NoError(t, err)
	assert.Equal(t, PacketBody{ID: 0x26, Body: []byte{1, 2, 3}}, body)
}
