// Package layout holds the vector layout model and its binary encodings.
//
// A Library contains named cells, and each Cell holds polygons tagged with a layer and
// a datatype. Coordinates are integer database units. A Quantizer converts
// pixel-space vertices into database units, and an encoder serializes the library.
//
// # Units
//
// Three scales are involved:
//   - Scale: user units per pixel (the physical size of one image pixel)
//   - Grid: user units per database unit (the manufacturing grid)
//   - Unit: metres per user unit, recorded in the file header
//
// A pixel coordinate px becomes round(px × Scale / Grid) database units, rounding
// halves away from zero. Library.Precision (metres per database unit) is Unit × Grid.
//
// # Formats
//
// Two encodings are provided:
//   - lyt: a compact native container (Encode / Decode), byte order declared in the header
//   - gds: a GDSII stream (EncodeGDSII) for exchange with layout editors
//
// Both write cells sorted by name and polygons in insertion order, so encoding the same
// library twice yields identical bytes.
//
// # Thread Safety
//
// Library.AddCell and Cell.Add may be called from several goroutines. Encoding must not
// overlap with concurrent additions.
package layout
