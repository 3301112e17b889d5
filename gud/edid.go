// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import "encoding/binary"

// EDIDSize is the fixed size of a base EDID block (no extensions).
const EDIDSize = 128

// edidHeader is the fixed 8-byte EDID magic pattern.
var edidHeader = [8]byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// synthesizeEDID builds a 128-byte base EDID block from seed, following
// the byte-for-byte layout gud_req_get_connector_edid constructs (§4.1/C2,
// grounded on original_source/gud-pico/gud.c). Unset fields (mode-derived
// DTD timings, unused descriptor slots) are zero, matching the original's
// behavior of leaving most of the block blank.
func synthesizeEDID(seed *EDIDSeed, mode *Mode) []byte {
	b := make([]byte, EDIDSize)

	copy(b[0:8], edidHeader[:])

	pnp := seed.PNP
	for len(pnp) < 3 {
		pnp += "A"
	}
	putPNPID(b[8:10], pnp)

	binary.LittleEndian.PutUint16(b[10:12], seed.ProductCode)

	serial := uint32(0)
	if seed.SerialNumber != nil {
		serial = seed.SerialNumber()
	}
	binary.LittleEndian.PutUint32(b[12:16], serial)

	b[16] = 1 // manufacture week is unknown; fixed at 1 per §4.1
	if seed.Year > 1990 {
		b[17] = byte(seed.Year - 1990)
	}

	b[18] = 1 // EDID version
	b[19] = 3 // EDID revision

	// Basic display parameters: digital input, bit depth undefined.
	b[20] = 0x80
	b[21] = byte(divRoundUp(uint32(seed.WidthMM), 10))
	b[22] = byte(divRoundUp(uint32(seed.HeightMM), 10))
	b[23] = 0    // gamma: unspecified
	b[24] = 0x0a // feature support bits

	// Chromaticity coordinates and established timings are left zero: no
	// CRT-era timing bitmap applies to a synthetic panel.

	// 16 bytes of standard-timing fillers (38..53), each "unused" entry
	// encoded as 0x01.
	for i := 38; i < 54; i++ {
		b[i] = 0x01
	}

	if mode != nil {
		putDetailedTiming(b[54:72], mode, seed.WidthMM, seed.HeightMM)
	} else {
		putUnusedDescriptor(b[54:72])
	}

	// Descriptor 2: display product name.
	putDisplayNameDescriptor(b[72:90], seed.Name)

	// Descriptors 3 and 4: unused.
	putUnusedDescriptor(b[90:108])
	putUnusedDescriptor(b[108:126])

	b[126] = 0 // no extension blocks

	b[127] = edidChecksum(b)

	return b
}

// edidChecksum computes the 1-byte checksum so the full 128 bytes sum to
// zero mod 256 (P1's invariant).
func edidChecksum(b []byte) byte {
	var sum byte
	for _, v := range b[:127] {
		sum += v
	}
	return byte(256 - int(sum)%256)
}

// putPNPID packs a 3-letter uppercase manufacturer id into two bytes,
// 5 bits per letter (1-26, 'A' based), big-endian as EDID requires.
func putPNPID(dst []byte, pnp string) {
	var v uint16
	for i := 0; i < 3; i++ {
		c := byte('A')
		if i < len(pnp) {
			c = pnp[i]
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
		}

		letter := uint16(0)
		if c >= 'A' && c <= 'Z' {
			letter = uint16(c-'A') + 1
		}

		v = v<<5 | (letter & 0x1f)
	}

	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

// putDetailedTiming encodes mode as the first EDID Detailed Timing
// Descriptor, the 18-byte block at bytes 54..71 (§4.1). Following the
// spec's literal layout rather than a general DTD encoder: this engine
// only ever has one synthetic, blanking-free mode to describe, so the
// sync/blanking sub-fields the full EDID DTD format carries are pinned
// to the constants §4.1 specifies instead of derived from mode.
func putDetailedTiming(dst []byte, mode *Mode, widthMM, heightMM uint16) {
	w, h := uint64(mode.HDisplay), uint64(mode.VDisplay)

	// Pixel clock = ceil(W*H*60/1000/10) in 10kHz units.
	clock10k := (w*h*60 + 9999) / 10000
	binary.LittleEndian.PutUint16(dst[0:2], uint16(clock10k))

	dst[2] = byte(mode.HDisplay)       // 56: hactive LSB
	dst[3] = 0                         // 57: hblank, zero (no blanking)
	dst[4] = byte(mode.HDisplay>>8) << 4 // 58: hactive/hblank MSB nibbles

	dst[5] = byte(mode.VDisplay)       // 59: vactive LSB
	dst[6] = 0                         // 60: vblank, zero
	dst[7] = byte(mode.VDisplay>>8) << 4 // 61: vactive/vblank MSB nibbles

	dst[8] = 0 // 62: hsync offset, zero
	dst[9] = 1 // 63: hsync pulse width, fixed at 1

	dst[10] = 0x10 // 64: vfront/vpulse width nibbles = (0, 1)
	dst[11] = 0    // 65

	dst[12] = byte(widthMM)                              // 66
	dst[13] = byte(heightMM)                              // 67
	dst[14] = byte(widthMM>>8)<<4 | byte(heightMM>>8)&0x0f // 68

	dst[15] = 0 // 69: horizontal border
	dst[16] = 0 // 70: vertical border

	// 71: non-interlaced, digital separate sync, +V, +H.
	dst[17] = 0x1e
}

// putUnusedDescriptor marks an 18-byte descriptor slot as unused by
// zeroing all of it.
func putUnusedDescriptor(dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
}

// putDisplayNameDescriptor packs name into an EDID monitor descriptor with
// tag 0xfc ("display product name"). Names longer than 13 bytes are
// truncated; shorter names are terminated with 0x0a and padded with 0x20,
// matching the convention every EDID parser expects (P6).
func putDisplayNameDescriptor(dst []byte, name string) {
	dst[0], dst[1], dst[2], dst[3], dst[4] = 0, 0, 0, 0xfc, 0

	text := dst[5:18]
	n := copy(text, name)
	if n < len(text) {
		text[n] = 0x0a
		for i := n + 1; i < len(text); i++ {
			text[i] = 0x20
		}
	}
}
