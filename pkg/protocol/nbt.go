package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-theft-craft/protocol/pkg/nbt"
)

// NBT carries an already encoded tag stream. It can be written but not read.
type NBT []byte

// BuildNBT runs build against a fresh nbt.Writer and returns the result as a
// field. Compounds left open are an error.
func BuildNBT(build func(w *nbt.Writer)) (NBT, error) {
	var buf bytes.Buffer
	w := nbt.NewWriter(&buf)
	build(w)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("build nbt: %w", err)
	}
	if d := w.Depth(); d != 0 {
		return nil, fmt.Errorf("build nbt: %d compounds left open", d)
	}
	return NBT(buf.Bytes()), nil
}

func (b NBT) Value() []byte  { return b }
func (b NBT) String() string { return hexString(b) }
func (b NBT) Size() int      { return len(b) }

func (b NBT) WriteField(w io.Writer) error {
	_, err := w.Write(b)
	return err
}

func (b *NBT) ReadField(io.Reader) error {
	return ErrNBTRead
}
