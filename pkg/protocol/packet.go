package protocol

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// MaxPacketSize bounds the declared length of a frame.
const MaxPacketSize = 1 << 21

const tagName = "mc"

// Packet is a struct whose exported fields are protocol Fields, in wire order.
// Fields tagged `mc:"-"` are skipped.
type Packet interface {
	PacketID() int32
}

// PacketBody is one frame as received: the packet id and the undecoded body.
type PacketBody struct {
	ID   int32
	Body []byte
}

func ReadPacketBody(r io.Reader) (PacketBody, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return PacketBody{}, fmt.Errorf("read packet length: %w", err)
	}
	if length < 1 {
		return PacketBody{}, fmt.Errorf("packet length too small: %d", length)
	}
	if length > MaxPacketSize {
		return PacketBody{}, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, length)
	}

	payload := make([]byte, length)
	if err := readFull(r, payload); err != nil {
		return PacketBody{}, fmt.Errorf("read packet payload: %w", err)
	}

	buf := bytes.NewReader(payload)
	id, n, err := ReadVarInt(buf)
	if err != nil {
		return PacketBody{}, fmt.Errorf("read packet ID: %w", err)
	}
	return PacketBody{ID: id, Body: payload[n:]}, nil
}

func WritePacketBody(w io.Writer, p PacketBody) error {
	totalLen := VarIntSize(p.ID) + len(p.Body)
	if totalLen > MaxPacketSize {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, totalLen)
	}

	var buf bytes.Buffer
	buf.Grow(VarIntSize(int32(totalLen)) + totalLen)

	if _, err := WriteVarInt(&buf, int32(totalLen)); err != nil {
		return fmt.Errorf("write packet length: %w", err)
	}
	if _, err := WriteVarInt(&buf, p.ID); err != nil {
		return fmt.Errorf("write packet ID: %w", err)
	}
	buf.Write(p.Body)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("flush packet: %w", err)
	}
	return nil
}

// Codec decodes and encodes packet structs for one protocol version. The
// version only matters to fields implementing VersionedField.
type Codec struct {
	ProtocolVersion int
}

// Decode reads the fields of p, which must be a pointer to a struct, from
// body. The whole body must be consumed.
func (c Codec) Decode(body PacketBody, p Packet) error {
	if body.ID != p.PacketID() {
		return &UnexpectedPacketError{Expected: p.PacketID(), Actual: body.ID}
	}

	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("decode: expected non-nil pointer, got %T", p)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("decode: expected pointer to struct, got pointer to %s", v.Kind())
	}

	r := bytes.NewReader(body.Body)
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if skipField(sf) {
			continue
		}
		fr, ok := v.Field(i).Addr().Interface().(FieldReader)
		if !ok {
			return &FieldError{Field: sf.Name, Err: fmt.Errorf("%s cannot be read", sf.Type)}
		}
		if vf, ok := fr.(VersionedField); ok {
			vf.SetProtocolVersion(c.ProtocolVersion)
		}
		if err := fr.ReadField(r); err != nil {
			return &FieldError{Field: sf.Name, Err: err}
		}
	}

	if r.Len() > 0 {
		return &FullPacketNotReadError{Length: len(body.Body), Read: len(body.Body) - r.Len()}
	}
	return nil
}

// ReadPacket reads one frame from r and decodes it into p.
func (c Codec) ReadPacket(r io.Reader, p Packet) error {
	body, err := ReadPacketBody(r)
	if err != nil {
		return err
	}
	return c.Decode(body, p)
}

// Length is the frame length Encode declares for p: the size of the id plus
// the size of every field.
func (c Codec) Length(p Packet) (int, error) {
	fields, err := c.fields(p)
	if err != nil {
		return 0, err
	}
	n := VarIntSize(p.PacketID())
	for _, f := range fields {
		n += f.field.Size()
	}
	return n, nil
}

// Encode writes p as VarInt(length), VarInt(id) and its fields in order.
func (c Codec) Encode(w io.Writer, p Packet) error {
	fields, err := c.fields(p)
	if err != nil {
		return err
	}

	id := p.PacketID()
	length := VarIntSize(id)
	for _, f := range fields {
		length += f.field.Size()
	}
	if length > MaxPacketSize {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, length)
	}

	var buf bytes.Buffer
	buf.Grow(VarIntSize(int32(length)) + length)
	if _, err := WriteVarInt(&buf, int32(length)); err != nil {
		return fmt.Errorf("write packet length: %w", err)
	}
	start := buf.Len()
	if _, err := WriteVarInt(&buf, id); err != nil {
		return fmt.Errorf("write packet ID: %w", err)
	}
	for _, f := range fields {
		if err := f.field.WriteField(&buf); err != nil {
			return &FieldError{Field: f.name, Err: err}
		}
	}
	if written := buf.Len() - start; written != length {
		return fmt.Errorf("encode packet 0x%02X: %w: declared %d, wrote %d", id, ErrLengthMismatch, length, written)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("flush packet: %w", err)
	}
	return nil
}

type namedField struct {
	name  string
	field Field
}

// fields lists the wire fields of p in declaration order. Versioned fields
// are copied before the protocol version is applied so p is not modified.
func (c Codec) fields(p Packet) ([]namedField, error) {
	v := reflect.ValueOf(p)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("encode: nil %T", p)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("encode: expected struct, got %s", v.Kind())
	}

	t := v.Type()
	fields := make([]namedField, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if skipField(sf) {
			continue
		}
		cp := reflect.New(sf.Type)
		cp.Elem().Set(v.Field(i))
		if vf, ok := cp.Interface().(VersionedField); ok {
			vf.SetProtocolVersion(c.ProtocolVersion)
		}
		f, ok := cp.Elem().Interface().(Field)
		if !ok {
			return nil, &FieldError{Field: sf.Name, Err: fmt.Errorf("%s cannot be written", sf.Type)}
		}
		fields = append(fields, namedField{name: sf.Name, field: f})
	}
	return fields, nil
}

func skipField(sf reflect.StructField) bool {
	return !sf.IsExported() || sf.Tag.Get(tagName) == "-"
}

// Direction says which side sends a packet.
type Direction uint8

const (
	Clientbound Direction = iota
	Serverbound
)

func (d Direction) String() string {
	if d == Serverbound {
		return "serverbound"
	}
	return "clientbound"
}
