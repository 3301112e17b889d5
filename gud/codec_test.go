// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPropertyRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Property{
			ID:    rapid.Uint16().Draw(t, "id"),
			Value: rapid.Uint64().Draw(t, "value"),
		}

		b := p.Bytes()
		assert.Len(t, b, PropertySize)

		got, ok := DecodeProperty(b)
		require.True(t, ok)
		assert.Equal(t, p, got)
	})
}

func TestModeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := Mode{
			Clock:      rapid.Uint32().Draw(t, "clock"),
			HDisplay:   rapid.Uint16().Draw(t, "hdisplay"),
			HSyncStart: rapid.Uint16().Draw(t, "hsyncstart"),
			HSyncEnd:   rapid.Uint16().Draw(t, "hsyncend"),
			HTotal:     rapid.Uint16().Draw(t, "htotal"),
			VDisplay:   rapid.Uint16().Draw(t, "vdisplay"),
			VSyncStart: rapid.Uint16().Draw(t, "vsyncstart"),
			VSyncEnd:   rapid.Uint16().Draw(t, "vsyncend"),
			VTotal:     rapid.Uint16().Draw(t, "vtotal"),
			Flags:      rapid.Uint32().Draw(t, "flags"),
		}

		b := m.Bytes()
		assert.Len(t, b, ModeSize)

		got, ok := DecodeMode(b)
		require.True(t, ok)
		assert.Equal(t, m, got)
	})
}

func TestDisplayDescriptorSize(t *testing.T) {
	d := DisplayDescriptor{Magic: DisplayMagic, Version: DisplayProtocolVersion}
	assert.Len(t, d.Bytes(), DisplayDescriptorSize)
	assert.Equal(t, DisplayMagic, uint32FromLE(d.Bytes()[0:4]))
}

func TestSetBufferReqRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := SetBufferReq{
			X:                rapid.Uint16().Draw(t, "x"),
			Y:                rapid.Uint16().Draw(t, "y"),
			Width:            rapid.Uint16().Draw(t, "width"),
			Height:           rapid.Uint16().Draw(t, "height"),
			Length:           rapid.Uint32().Draw(t, "length"),
			Compression:      rapid.Uint8().Draw(t, "compression"),
			CompressedLength: rapid.Uint32().Draw(t, "compressedlength"),
		}

		b := r.Bytes()
		require.Len(t, b, SetBufferReqSize)

		got, err := DecodeSetBufferReq(b)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})
}

func TestDecodeSetBufferReqWrongSize(t *testing.T) {
	_, err := DecodeSetBufferReq(make([]byte, SetBufferReqSize-1))
	assert.ErrorIs(t, err, StatusProtocolError)
}

func TestDecodeStateReqRejectsMisalignedTail(t *testing.T) {
	b := make([]byte, StateReqHeaderSize+PropertySize+1)
	_, err := DecodeStateReq(b)
	assert.ErrorIs(t, err, StatusProtocolError)
}

func TestStateReqRoundTripWithProperties(t *testing.T) {
	s := StateReq{
		Mode:      Mode{HDisplay: 320, VDisplay: 240},
		Format:    FormatRGB565,
		Connector: 0,
		Properties: []Property{
			{ID: PropertyBacklightBrightness, Value: 80},
			{ID: PropertyRotation, Value: 0},
		},
	}

	b := s.Bytes()
	got, err := DecodeStateReq(b)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func uint32FromLE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
