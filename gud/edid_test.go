// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const edidNameAlphabet = "ABCDEFGHIJKLMNOP"

func TestEDIDChecksumsToZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, len(edidNameAlphabet)).Draw(t, "namelen")

		seed := &EDIDSeed{
			Name:        edidNameAlphabet[:n],
			PNP:         "GUD",
			ProductCode: rapid.Uint16().Draw(t, "product"),
			Year:        uint16(rapid.IntRange(1990, 2030).Draw(t, "year")),
			WidthMM:     rapid.Uint16().Draw(t, "widthmm"),
			HeightMM:    rapid.Uint16().Draw(t, "heightmm"),
		}
		mode := Mode{Clock: 25000, HDisplay: 320, HSyncStart: 330, HSyncEnd: 340, HTotal: 360,
			VDisplay: 240, VSyncStart: 244, VSyncEnd: 248, VTotal: 260}

		b := synthesizeEDID(seed, &mode)
		require.Len(t, b, EDIDSize)

		var sum byte
		for _, v := range b {
			sum += v
		}
		assert.Zero(t, sum)
	})
}

func TestEDIDHeaderMagic(t *testing.T) {
	seed := &EDIDSeed{PNP: "GUD"}
	b := synthesizeEDID(seed, nil)
	assert.Equal(t, edidHeader[:], b[0:8])
}

func TestEDIDDisplayNameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 13).Draw(t, "namelen")
		name := edidNameAlphabet[:n]

		seed := &EDIDSeed{Name: name, PNP: "GUD"}
		b := synthesizeEDID(seed, nil)

		desc := b[72:90]
		require.Equal(t, byte(0xfc), desc[3])

		text := desc[5:18]
		got := string(text)
		if idx := strings.IndexByte(got, 0x0a); idx >= 0 {
			got = got[:idx]
		}

		assert.Equal(t, name, got)
	})
}

func TestEDIDPNPIDIsPacked(t *testing.T) {
	seed := &EDIDSeed{PNP: "AAA"}
	b := synthesizeEDID(seed, nil)
	// Three 'A's (value 1 each), 5 bits apiece, packed big-endian.
	assert.Equal(t, byte(0x04), b[8])
	assert.Equal(t, byte(0x21), b[9])
}
