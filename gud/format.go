// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

// Pixel format codes (GUD_PIXEL_FORMAT_*).
const (
	// FormatR1 is a 1-bit monochrome transfer format, presented to
	// userspace as XRGB8888.
	FormatR1 uint8 = 0x01
	FormatRGB111 uint8 = 0x20
	FormatRGB565 uint8 = 0x40
	FormatXRGB8888 uint8 = 0x80
	FormatARGB8888 uint8 = 0x81
)

// BufferLength returns the number of bytes a width x height rectangle
// occupies on the wire in the given pixel format, or 0 for an unknown
// format or a zero-sized rectangle.
//
// This centralizes the bytes-per-pixel computation that the reference C
// implementation duplicates (and disagrees with itself on for the R1
// format: width*height/8 in one place, ceil(width/8)*height in another).
// Per the row-alignment the protocol otherwise assumes, this uses the
// row-aligned form for R1 and RGB111.
func BufferLength(format uint8, width, height uint32) uint32 {
	if width == 0 || height == 0 {
		return 0
	}

	switch format {
	case FormatR1:
		return divRoundUp(width, 8) * height
	case FormatRGB111:
		return divRoundUp(width, 2) * height
	case FormatRGB565:
		return width * height * 2
	case FormatXRGB8888, FormatARGB8888:
		return width * height * 4
	default:
		return 0
	}
}

func divRoundUp(n, d uint32) uint32 {
	return (n + d - 1) / d
}

// BytesPerPixel returns the whole-byte pixel stride of format, or 0 for a
// sub-byte format (R1, RGB111) that has no single-pixel byte alignment.
// Used by commitState to recompute the committed mode's scanline pitch
// (§4.5's "recompute derived geometry"); BufferLength remains the
// authoritative per-rectangle length check, since it alone handles the
// sub-byte formats correctly.
func BytesPerPixel(format uint8) uint32 {
	switch format {
	case FormatRGB565:
		return 2
	case FormatXRGB8888, FormatARGB8888:
		return 4
	default:
		return 0
	}
}
