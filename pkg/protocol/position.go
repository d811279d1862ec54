package protocol

import (
	"fmt"
	"io"
)

// PositionLayoutCutoff is the first protocol version (1.14) that packs
// positions as x|z|y instead of x|y|z.
const PositionLayoutCutoff = 477

const (
	minHorizontal = -1 << 25
	maxHorizontal = 1<<25 - 1
	minVertical   = -1 << 11
	maxVertical   = 1<<11 - 1
)

// Position is a block position packed into one big endian int64. x and z
// take 26 bits each and y takes 12. The order of y and z depends on the
// protocol version.
type Position struct {
	X, Y, Z int32

	version int
}

// NewPosition validates the coordinates for use with the given protocol
// version.
func NewPosition(version int, x, y, z int) (Position, error) {
	if err := checkPosition(x, y, z); err != nil {
		return Position{}, err
	}
	return Position{X: int32(x), Y: int32(y), Z: int32(z), version: version}, nil
}

func checkPosition(x, y, z int) error {
	if x < minHorizontal || x > maxHorizontal ||
		z < minHorizontal || z > maxHorizontal ||
		y < minVertical || y > maxVertical {
		return fmt.Errorf("%w: (%d, %d, %d)", ErrPositionOutOfRange, x, y, z)
	}
	return nil
}

func (p *Position) SetProtocolVersion(version int) { p.version = version }

func (p Position) ProtocolVersion() int { return p.version }

// Pack returns the wire representation of p. Coordinates are truncated to
// their bit widths; WriteField rejects positions that do not fit.
func (p Position) Pack() int64 {
	x := uint64(p.X) & 0x3FFFFFF
	y := uint64(p.Y) & 0xFFF
	z := uint64(p.Z) & 0x3FFFFFF
	if p.version >= PositionLayoutCutoff {
		return int64(x<<38 | z<<12 | y)
	}
	return int64(x<<38 | y<<26 | z)
}

// UnpackPosition decodes val using the layout of the given protocol version.
func UnpackPosition(version int, val int64) Position {
	u := uint64(val)
	x := signExtend(u>>38, 26)
	var y, z int32
	if version >= PositionLayoutCutoff {
		z = signExtend((u>>12)&0x3FFFFFF, 26)
		y = signExtend(u&0xFFF, 12)
	} else {
		y = signExtend((u>>26)&0xFFF, 12)
		z = signExtend(u&0x3FFFFFF, 26)
	}
	return Position{X: x, Y: y, Z: z, version: version}
}

func signExtend(v uint64, bits uint) int32 {
	if v >= 1<<(bits-1) {
		return int32(int64(v) - 1<<bits)
	}
	return int32(v)
}

func (p Position) Value() Position { return p }
func (p Position) String() string  { return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z) }
func (Position) Size() int         { return 8 }

// WriteField fails with ErrPositionOutOfRange for literals built without
// NewPosition whose coordinates do not fit.
func (p Position) WriteField(w io.Writer) error {
	if err := checkPosition(int(p.X), int(p.Y), int(p.Z)); err != nil {
		return err
	}
	return Long(p.Pack()).WriteField(w)
}

func (p *Position) ReadField(r io.Reader) error {
	var v Long
	if err := v.ReadField(r); err != nil {
		return err
	}
	*p = UnpackPosition(p.version, int64(v))
	return nil
}
