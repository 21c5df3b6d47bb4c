package layout

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxDecodeVertices bounds a single polygon so a corrupt count cannot force a huge
// allocation.
const maxDecodeVertices = 1 << 24

// Decode parses a native layout stream written by Encode.
func Decode(r io.Reader) (*Library, error) {
	d := &decoder{r: bufio.NewReader(r)}

	magic := make([]byte, len(Magic))
	if err := d.read(magic); err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, magic)
	}

	mark, err := d.r.ReadByte()
	if err != nil {
		return nil, d.fail(err)
	}
	switch mark {
	case orderBig:
		d.order = binary.BigEndian
	case orderLittle:
		d.order = binary.LittleEndian
	default:
		return nil, fmt.Errorf("%w: unknown byte-order mark %q", ErrFormat, mark)
	}

	version, err := d.u16()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, version)
	}

	unit, err := d.f64()
	if err != nil {
		return nil, err
	}
	precision, err := d.f64()
	if err != nil {
		return nil, err
	}
	name, err := d.name()
	if err != nil {
		return nil, err
	}

	lib := NewLibrary(name, unit, precision)
	var cell *Cell
	for {
		tag, err := d.r.ReadByte()
		if err != nil {
			return nil, d.fail(err)
		}

		switch tag {
		case tagEnd:
			return lib, nil
		case tagCell:
			cellName, err := d.name()
			if err != nil {
				return nil, err
			}
			cell = lib.AddCell(cellName)
		case tagPolygon:
			if cell == nil {
				return nil, fmt.Errorf("%w: polygon outside a cell", ErrFormat)
			}
			p, err := d.polygon()
			if err != nil {
				return nil, err
			}
			cell.Add(p)
		default:
			return nil, fmt.Errorf("%w: unknown record tag 0x%02x", ErrFormat, tag)
		}
	}
}

type decoder struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (d *decoder) fail(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: truncated stream", ErrFormat)
	}
	return fmt.Errorf("failed to read layout stream: %w", err)
}

func (d *decoder) read(b []byte) error {
	if _, err := io.ReadFull(d.r, b); err != nil {
		return d.fail(err)
	}
	return nil
}

func (d *decoder) u16() (uint16, error) {
	if err := d.read(d.buf[:2]); err != nil {
		return 0, err
	}
	return d.order.Uint16(d.buf[:2]), nil
}

func (d *decoder) u32() (uint32, error) {
	if err := d.read(d.buf[:4]); err != nil {
		return 0, err
	}
	return d.order.Uint32(d.buf[:4]), nil
}

func (d *decoder) f64() (float64, error) {
	if err := d.read(d.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(d.order.Uint64(d.buf[:8])), nil
}

func (d *decoder) name() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if err := d.read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) polygon() (Polygon, error) {
	var p Polygon
	var err error
	if p.Layer, err = d.u16(); err != nil {
		return p, err
	}
	if p.Datatype, err = d.u16(); err != nil {
		return p, err
	}
	count, err := d.u32()
	if err != nil {
		return p, err
	}
	if count > maxDecodeVertices {
		return p, fmt.Errorf("%w: polygon vertex count %d", ErrFormat, count)
	}

	p.Points = make([]XY, count)
	for i := range p.Points {
		x, err := d.u32()
		if err != nil {
			return p, err
		}
		y, err := d.u32()
		if err != nil {
			return p, err
		}
		p.Points[i] = XY{X: int32(x), Y: int32(y)}
	}
	return p, nil
}
