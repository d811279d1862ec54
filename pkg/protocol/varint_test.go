package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value int32
		size  int
	}{
		{"zero", 0, 1},
		{"one", 1, 1},
		{"127", 127, 1},
		{"128", 128, 2},
		{"255", 255, 2},
		{"25565", 25565, 3},
		{"max_varint", 2147483647, 5},
		{"negative_one", -1, 5},
		{"min_varint", -2147483648, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			v := VarInt(tt.value)
			if err := v.WriteField(&buf); err != nil {
				t.Fatalf("WriteField(%d): %v", tt.value, err)
			}
			if buf.Len() != tt.size {
				t.Errorf("WriteField(%d) wrote %d bytes, want %d", tt.value, buf.Len(), tt.size)
			}
			if v.Size() != tt.size {
				t.Errorf("Size() = %d, want %d", v.Size(), tt.size)
			}

			var got VarInt
			if err := got.ReadField(&buf); err != nil {
				t.Fatalf("ReadField: %v", err)
			}
			if got != v {
				t.Errorf("ReadField = %d, want %d", got, v)
			}
			if buf.Len() != 0 {
				t.Errorf("%d bytes left unread", buf.Len())
			}
		})
	}
}

func TestPutVarInt(t *testing.T) {
	var buf [5]byte
	n := PutVarInt(buf[:], 300)
	if n != 2 {
		t.Errorf("PutVarInt(300) = %d bytes, want 2", n)
	}
	// 300 = 0x12C → 0xAC 0x02
	if buf[0] != 0xAC || buf[1] != 0x02 {
		t.Errorf("PutVarInt(300) = %x %x, want AC 02", buf[0], buf[1])
	}
}

func TestVarIntMaxUint32(t *testing.T) {
	maxU32 := ^uint32(0)
	v := VarInt(int32(maxU32))
	var buf bytes.Buffer
	if err := v.WriteField(&buf); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestVarIntTooLong(t *testing.T) {
	r := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
	var v VarInt
	err := v.ReadField(r)

	var bad *BadVarIntError
	if !errors.As(err, &bad) {
		t.Fatalf("ReadField() = %v, want BadVarIntError", err)
	}
	if bad.Count != 6 {
		t.Errorf("Count = %d, want 6", bad.Count)
	}
}

func TestVarIntShortRead(t *testing.T) {
	var v VarInt
	if err := v.ReadField(bytes.NewReader([]byte{0x80})); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadField() = %v, want io.ErrUnexpectedEOF", err)
	}
	if err := v.ReadField(bytes.NewReader(nil)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadField(empty) = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestVarLongRoundTrip(t *testing.T) {
	tests := []struct {
		value int64
		size  int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{2147483647, 5},
		{9223372036854775807, 9},
		{-1, 10},
		{-9223372036854775808, 10},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		v := VarLong(tt.value)
		if err := v.WriteField(&buf); err != nil {
			t.Fatalf("WriteField(%d): %v", tt.value, err)
		}
		if buf.Len() != tt.size || v.Size() != tt.size {
			t.Errorf("VarLong(%d): wrote %d bytes, Size() = %d, want %d", tt.value, buf.Len(), v.Size(), tt.size)
		}
		var got VarLong
		if err := got.ReadField(&buf); err != nil {
			t.Fatalf("ReadField: %v", err)
		}
		if got != v {
			t.Errorf("ReadField = %d, want %d", got, v)
		}
	}
}

func TestVarLongTooLong(t *testing.T) {
	in := bytes.Repeat([]byte{0x80}, 11)
	var v VarLong
	var bad *BadVarIntError
	if err := v.ReadField(bytes.NewReader(in)); !errors.As(err, &bad) || bad.Count != 11 {
		t.Fatalf("ReadField() = %v, want BadVarIntError{11}", err)
	}
}
