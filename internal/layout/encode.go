package layout

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Native container constants.
const (
	Magic   = "ILYT"
	Version = 1

	tagCell    byte = 0x01
	tagPolygon byte = 0x02
	tagEnd     byte = 0xFF

	orderBig    byte = 'B'
	orderLittle byte = 'L'
)

// ErrFormat is returned when a stream does not follow the native grammar.
var ErrFormat = errors.New("invalid layout stream")

// Encode writes lib in the native format with big-endian integers.
func Encode(w io.Writer, lib *Library) error {
	return EncodeWithOrder(w, lib, binary.BigEndian)
}

// EncodeWithOrder writes lib in the native format using the given byte order, which
// must be binary.BigEndian or binary.LittleEndian.
//
// Layout:
//
//	header  := "ILYT" | order 'B'|'L' | version u16 | unit f64 | precision f64 | name
//	cell    := 0x01 | name | polygon*
//	polygon := 0x02 | layer u16 | datatype u16 | count u32 | (x i32, y i32){count}
//	end     := 0xFF
//
// where name is a u16 length followed by the bytes. Cells are sorted by name.
func EncodeWithOrder(w io.Writer, lib *Library, order binary.ByteOrder) error {
	var mark byte
	switch order {
	case binary.BigEndian:
		mark = orderBig
	case binary.LittleEndian:
		mark = orderLittle
	default:
		return fmt.Errorf("unsupported byte order %v", order)
	}

	e := &encoder{w: bufio.NewWriter(w), order: order}
	e.bytes([]byte(Magic))
	e.byte(mark)
	e.u16(Version)
	e.f64(lib.Unit)
	e.f64(lib.Precision)
	e.name(lib.Name)

	for _, c := range lib.Cells() {
		e.byte(tagCell)
		e.name(c.Name)
		for _, p := range c.Polygons() {
			e.polygon(p)
		}
	}
	e.byte(tagEnd)

	if e.err != nil {
		return e.err
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush layout stream: %w", err)
	}
	return nil
}

// encoder keeps the first write error so the grammar can be emitted without checking
// every call.
type encoder struct {
	w     *bufio.Writer
	order binary.ByteOrder
	buf   [8]byte
	err   error
}

func (e *encoder) bytes(b []byte) {
	if e.err != nil {
		return
	}
	if _, err := e.w.Write(b); err != nil {
		e.err = fmt.Errorf("failed to write layout stream: %w", err)
	}
}

func (e *encoder) byte(b byte) {
	e.buf[0] = b
	e.bytes(e.buf[:1])
}

func (e *encoder) u16(v uint16) {
	e.order.PutUint16(e.buf[:2], v)
	e.bytes(e.buf[:2])
}

func (e *encoder) u32(v uint32) {
	e.order.PutUint32(e.buf[:4], v)
	e.bytes(e.buf[:4])
}

func (e *encoder) f64(v float64) {
	e.order.PutUint64(e.buf[:8], math.Float64bits(v))
	e.bytes(e.buf[:8])
}

func (e *encoder) name(s string) {
	if len(s) > math.MaxUint16 {
		if e.err == nil {
			e.err = fmt.Errorf("name too long (%d bytes)", len(s))
		}
		return
	}
	e.u16(uint16(len(s)))
	e.bytes([]byte(s))
}

func (e *encoder) polygon(p Polygon) {
	if uint64(len(p.Points)) > math.MaxUint32 {
		if e.err == nil {
			e.err = fmt.Errorf("polygon has too many vertices (%d)", len(p.Points))
		}
		return
	}
	e.byte(tagPolygon)
	e.u16(p.Layer)
	e.u16(p.Datatype)
	e.u32(uint32(len(p.Points)))
	for _, pt := range p.Points {
		e.u32(uint32(pt.X))
		e.u32(uint32(pt.Y))
	}
}
