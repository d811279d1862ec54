package protocol

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

const (
	maxStringLen     = 32767 * 4
	defaultNamespace = "minecraft"
)

func ReadString(r io.Reader) (string, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if length < 0 || length > maxStringLen {
		return "", fmt.Errorf("%w: length %d out of range", ErrBadString, length)
	}
	buf := make([]byte, length)
	if err := readFull(r, buf); err != nil {
		return "", fmt.Errorf("read string data: %w", err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: not UTF-8", ErrBadString)
	}
	return string(buf), nil
}

// WriteString rejects what ReadString would reject: text longer than the
// protocol limit or not valid UTF-8.
func WriteString(w io.Writer, s string) (int, error) {
	if len(s) > maxStringLen {
		return 0, fmt.Errorf("%w: length %d out of range", ErrBadString, len(s))
	}
	if !utf8.ValidString(s) {
		return 0, fmt.Errorf("%w: not UTF-8", ErrBadString)
	}
	n1, err := WriteVarInt(w, int32(len(s)))
	if err != nil {
		return n1, err
	}
	n2, err := io.WriteString(w, s)
	return n1 + n2, err
}

// String is a VarInt byte length followed by UTF-8 text.
type String string

// NewChat wraps text in a plain JSON chat component.
func NewChat(text string) String {
	b, err := json.Marshal(struct {
		Text string `json:"text"`
	}{text})
	if err != nil {
		// marshalling a single string field cannot fail
		panic(err)
	}
	return String(b)
}

func (s String) Value() string  { return string(s) }
func (s String) String() string { return string(s) }
func (s String) Size() int      { return VarIntSize(int32(len(s))) + len(s) }

func (s String) WriteField(w io.Writer) error {
	_, err := WriteString(w, string(s))
	return err
}

func (s *String) ReadField(r io.Reader) error {
	v, err := ReadString(r)
	if err != nil {
		return err
	}
	*s = String(v)
	return nil
}

// Identifier is a namespaced location such as "minecraft:stone". It is sent
// as a String and keeps the exact text it was built from.
type Identifier string

func (id Identifier) Namespace() string {
	if i := strings.IndexByte(string(id), ':'); i >= 0 {
		return string(id[:i])
	}
	return defaultNamespace
}

func (id Identifier) Location() string {
	if i := strings.IndexByte(string(id), ':'); i >= 0 {
		return string(id[i+1:])
	}
	return string(id)
}

func (id Identifier) Value() string  { return string(id) }
func (id Identifier) String() string { return id.Namespace() + ":" + id.Location() }
func (id Identifier) Size() int      { return String(id).Size() }

func (id Identifier) WriteField(w io.Writer) error {
	return String(id).WriteField(w)
}

func (id *Identifier) ReadField(r io.Reader) error {
	v, err := ReadString(r)
	if err != nil {
		return err
	}
	*id = Identifier(v)
	return nil
}
