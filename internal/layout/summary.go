package layout

import "fmt"

// Summary describes a library without its geometry.
type Summary struct {
	Name      string        `json:"name"`
	Unit      float64       `json:"unit"`
	Precision float64       `json:"precision"`
	Polygons  int           `json:"polygons"`
	Vertices  int           `json:"vertices"`
	Cells     []CellSummary `json:"cells"`
}

// CellSummary counts the contents of one cell. Layers maps "layer/datatype" to the
// number of polygons on that pair.
type CellSummary struct {
	Name     string         `json:"name"`
	Polygons int            `json:"polygons"`
	Vertices int            `json:"vertices"`
	Layers   map[string]int `json:"layers"`
	Bounds   *Box           `json:"bounds,omitempty"`
}

// Box is an axis-aligned bounding box in database units.
type Box struct {
	Min XY `json:"min"`
	Max XY `json:"max"`
}

// Summarize counts the cells, polygons and vertices of l.
func (l *Library) Summarize() Summary {
	s := Summary{Name: l.Name, Unit: l.Unit, Precision: l.Precision, Cells: make([]CellSummary, 0)}
	for _, c := range l.Cells() {
		s.add(summarizeCell(c))
	}
	return s
}

// SummarizeCell is Summarize restricted to the named cell. It reports false when l
// has no such cell.
func (l *Library) SummarizeCell(name string) (Summary, bool) {
	c, ok := l.Cell(name)
	if !ok {
		return Summary{}, false
	}
	s := Summary{Name: l.Name, Unit: l.Unit, Precision: l.Precision}
	s.add(summarizeCell(c))
	return s, true
}

func (s *Summary) add(cs CellSummary) {
	s.Polygons += cs.Polygons
	s.Vertices += cs.Vertices
	s.Cells = append(s.Cells, cs)
}

func summarizeCell(c *Cell) CellSummary {
	cs := CellSummary{Name: c.Name, Layers: make(map[string]int)}
	for _, p := range c.Polygons() {
		cs.Polygons++
		cs.Vertices += len(p.Points)
		cs.Layers[fmt.Sprintf("%d/%d", p.Layer, p.Datatype)]++
		cs.Bounds = extend(cs.Bounds, p.Points)
	}
	return cs
}

func extend(b *Box, points []XY) *Box {
	for _, pt := range points {
		if b == nil {
			b = &Box{Min: pt, Max: pt}
			continue
		}
		b.Min.X = min(b.Min.X, pt.X)
		b.Min.Y = min(b.Min.Y, pt.Y)
		b.Max.X = max(b.Max.X, pt.X)
		b.Max.Y = max(b.Max.Y, pt.Y)
	}
	return b
}
