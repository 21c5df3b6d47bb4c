// Package imaging loads source drawings and prepares them for thresholding.
//
// The conversion pipeline never works on the decoded image directly. It goes
// through three preparation steps, each backed by an image library:
//
//  1. Load: decode PNG, JPEG, GIF, BMP, TIFF or WebP through ImageCache, applying
//     the EXIF orientation tag (disintegration/imaging).
//  2. Flatten: composite onto opaque white so transparent areas count as background.
//  3. Grayscale: BT.601 luminance (bild/effect), optionally after a Gaussian blur
//     that removes scanner noise (bild/blur).
//
// ColorKey is an alternative to step 3 for colour-keyed layers: it marks pixels near
// a target colour in CIE Lab space (go-colorful) as black, so a coloured feature can
// be traced on its own layer with the ordinary threshold.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner, X
// increasing rightward and Y increasing downward. Flatten, ToGray and ColorKey return
// images whose bounds start at (0, 0) regardless of the source bounds.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The conversion functions are stateless and
// can be called concurrently on different images.
package imaging
