package layout

import (
	"slices"
	"strings"
	"sync"
)

// XY is a vertex in database units.
type XY struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Polygon is a closed outline in database units. The closing edge from the last vertex
// back to the first is implicit.
type Polygon struct {
	Layer    uint16 `json:"layer"`
	Datatype uint16 `json:"datatype"`
	Points   []XY   `json:"points"`
}

// Library is the top-level layout container.
type Library struct {
	Name      string  // Library name written to the header
	Unit      float64 // Metres per user unit
	Precision float64 // Metres per database unit

	mu    sync.Mutex
	cells map[string]*Cell
}

// Cell is a named group of polygons inside a Library.
type Cell struct {
	Name string

	lib      *Library
	polygons []Polygon
}

// NewLibrary creates an empty library.
func NewLibrary(name string, unit, precision float64) *Library {
	return &Library{
		Name:      name,
		Unit:      unit,
		Precision: precision,
		cells:     make(map[string]*Cell),
	}
}

// AddCell returns the cell with the given name, creating it if needed.
func (l *Library) AddCell(name string) *Cell {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cells == nil {
		l.cells = make(map[string]*Cell)
	}
	if c, ok := l.cells[name]; ok {
		return c
	}
	c := &Cell{Name: name, lib: l}
	l.cells[name] = c
	return c
}

// Cell looks up a cell by name.
func (l *Library) Cell(name string) (*Cell, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.cells[name]
	return c, ok
}

// Cells returns all cells sorted by name.
func (l *Library) Cells() []*Cell {
	l.mu.Lock()
	defer l.mu.Unlock()

	cells := make([]*Cell, 0, len(l.cells))
	for _, c := range l.cells {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, b *Cell) int {
		return strings.Compare(a.Name, b.Name)
	})
	return cells
}

// PolygonCount returns the number of polygons across all cells.
func (l *Library) PolygonCount() int {
	total := 0
	for _, c := range l.Cells() {
		total += c.Len()
	}
	return total
}

// Add appends a polygon to the cell. The points slice is copied.
func (c *Cell) Add(p Polygon) {
	p.Points = slices.Clone(p.Points)

	c.lib.mu.Lock()
	defer c.lib.mu.Unlock()
	c.polygons = append(c.polygons, p)
}

// Polygons returns a copy of the cell's polygons in insertion order.
func (c *Cell) Polygons() []Polygon {
	c.lib.mu.Lock()
	defer c.lib.mu.Unlock()
	return slices.Clone(c.polygons)
}

// Len returns the number of polygons in the cell.
func (c *Cell) Len() int {
	c.lib.mu.Lock()
	defer c.lib.mu.Unlock()
	return len(c.polygons)
}
