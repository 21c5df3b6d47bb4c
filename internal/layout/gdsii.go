package layout

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MaxGDSIIVertices is the largest polygon a GDSII XY record can carry once the closing
// point is added.
const MaxGDSIIVertices = 8190

// GDSII record types.
const (
	gdsHeader   = 0x00
	gdsBgnLib   = 0x01
	gdsLibName  = 0x02
	gdsUnits    = 0x03
	gdsEndLib   = 0x04
	gdsBgnStr   = 0x05
	gdsStrName  = 0x06
	gdsEndStr   = 0x07
	gdsBoundary = 0x08
	gdsLayer    = 0x0D
	gdsDatatype = 0x0E
	gdsXY       = 0x10
	gdsEndEl    = 0x11
)

// GDSII data types.
const (
	gdsNoData = 0x00
	gdsInt16  = 0x02
	gdsInt32  = 0x03
	gdsReal8  = 0x05
	gdsASCII  = 0x06
)

const gdsVersion = 600

// EncodeGDSII writes lib as a GDSII stream.
//
// Every cell becomes a structure and every polygon a BOUNDARY element. Timestamps
// are zero so identical libraries encode to identical bytes. A polygon with more
// than MaxGDSIIVertices vertices fails with ErrDegenerate.
func EncodeGDSII(w io.Writer, lib *Library) error {
	if lib.Unit <= 0 || lib.Precision <= 0 {
		return fmt.Errorf("invalid library units: unit=%v precision=%v", lib.Unit, lib.Precision)
	}

	g := &gdsWriter{w: bufio.NewWriter(w)}
	var stamp [12]int16

	g.int16s(gdsHeader, gdsVersion)
	g.int16s(gdsBgnLib, stamp[:]...)
	g.ascii(gdsLibName, lib.Name)
	g.reals(gdsUnits, lib.Precision/lib.Unit, lib.Precision)

	for _, c := range lib.Cells() {
		g.int16s(gdsBgnStr, stamp[:]...)
		g.ascii(gdsStrName, c.Name)
		for _, p := range c.Polygons() {
			if len(p.Points) > MaxGDSIIVertices {
				return fmt.Errorf("%w: %d vertices exceed the GDSII limit of %d in cell %s",
					ErrDegenerate, len(p.Points), MaxGDSIIVertices, c.Name)
			}
			g.boundary(p)
		}
		g.record(gdsEndStr, gdsNoData, nil)
	}
	g.record(gdsEndLib, gdsNoData, nil)

	if g.err != nil {
		return g.err
	}
	if err := g.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush GDSII stream: %w", err)
	}
	return nil
}

type gdsWriter struct {
	w   *bufio.Writer
	err error
}

// record writes one record: total length u16, record type, data type, payload.
func (g *gdsWriter) record(rtype, dtype byte, data []byte) {
	if g.err != nil {
		return
	}
	if len(data)+4 > math.MaxUint16 {
		g.err = fmt.Errorf("GDSII record 0x%02x too long (%d bytes)", rtype, len(data))
		return
	}
	var head [4]byte
	binary.BigEndian.PutUint16(head[:2], uint16(len(data)+4))
	head[2], head[3] = rtype, dtype
	if _, err := g.w.Write(head[:]); err != nil {
		g.err = fmt.Errorf("failed to write GDSII stream: %w", err)
		return
	}
	if _, err := g.w.Write(data); err != nil {
		g.err = fmt.Errorf("failed to write GDSII stream: %w", err)
	}
}

func (g *gdsWriter) int16s(rtype byte, values ...int16) {
	data := make([]byte, 0, 2*len(values))
	for _, v := range values {
		data = binary.BigEndian.AppendUint16(data, uint16(v))
	}
	g.record(rtype, gdsInt16, data)
}

// ascii writes a string padded with a NUL to an even length.
func (g *gdsWriter) ascii(rtype byte, s string) {
	data := []byte(s)
	if len(data)%2 == 1 {
		data = append(data, 0)
	}
	g.record(rtype, gdsASCII, data)
}

func (g *gdsWriter) reals(rtype byte, values ...float64) {
	data := make([]byte, 0, 8*len(values))
	for _, v := range values {
		data = binary.BigEndian.AppendUint64(data, real8(v))
	}
	g.record(rtype, gdsReal8, data)
}

func (g *gdsWriter) boundary(p Polygon) {
	g.record(gdsBoundary, gdsNoData, nil)
	g.int16s(gdsLayer, int16(p.Layer))
	g.int16s(gdsDatatype, int16(p.Datatype))

	data := make([]byte, 0, 8*(len(p.Points)+1))
	for _, pt := range p.Points {
		data = binary.BigEndian.AppendUint32(data, uint32(pt.X))
		data = binary.BigEndian.AppendUint32(data, uint32(pt.Y))
	}
	if len(p.Points) > 0 {
		data = binary.BigEndian.AppendUint32(data, uint32(p.Points[0].X))
		data = binary.BigEndian.AppendUint32(data, uint32(p.Points[0].Y))
	}
	g.record(gdsXY, gdsInt32, data)
	g.record(gdsEndEl, gdsNoData, nil)
}

// real8 encodes v as a GDSII excess-64 base-16 floating point number: sign bit,
// 7-bit exponent, 56-bit mantissa in [1/16, 1).
func real8(v float64) uint64 {
	if v == 0 {
		return 0
	}
	var sign uint64
	if v < 0 {
		sign = 1 << 63
		v = -v
	}

	exp := 0
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}

	mantissa := uint64(math.Round(v * (1 << 56)))
	if mantissa >= 1<<56 {
		mantissa >>= 4
		exp++
	}
	return sign | uint64(exp+64)<<56 | mantissa
}
