// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notro/gud/gud"
)

func newTestEngine(t *testing.T) *gud.Engine {
	t.Helper()

	e, err := gud.New(&gud.Profile{
		Width:   4,
		Height:  2,
		Flags:   gud.FlagFullUpdate,
		Formats: []uint8{gud.FormatRGB565},
	})
	require.NoError(t, err)

	req := gud.StateReq{Mode: gud.Mode{HDisplay: 4, VDisplay: 2}, Format: gud.FormatRGB565}
	require.NoError(t, e.Set(gud.ReqSetStateCheck, 0, req.Bytes()))
	require.NoError(t, e.Set(gud.ReqSetStateCommit, 0, nil))

	return e
}

func TestHandleSetupFallsThroughNonVendor(t *testing.T) {
	d := NewDispatcher(newTestEngine(t))

	setup := &SetupData{RequestType: 0x80, Request: 0x06} // standard GET_DESCRIPTOR
	in, ack, done, err := d.HandleSetup(setup, nil)
	require.NoError(t, err)
	assert.False(t, done)
	assert.False(t, ack)
	assert.Nil(t, in)
}

func TestHandleSetupVendorGet(t *testing.T) {
	d := NewDispatcher(newTestEngine(t))

	setup := &SetupData{RequestType: 0xc0, Request: gud.ReqGetFormats, Length: 1}
	in, _, done, err := d.HandleSetup(setup, nil)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{gud.FormatRGB565}, in)
}

func TestHandleSetupVendorSetBufferArmsBulk(t *testing.T) {
	d := NewDispatcher(newTestEngine(t))

	req := gud.SetBufferReq{Width: 4, Height: 2, Length: gud.BufferLength(gud.FormatRGB565, 4, 2)}
	payload := req.Bytes()

	setup := &SetupData{RequestType: 0x40, Request: gud.ReqSetBuffer, Length: uint16(len(payload))}
	readOut := func(n int) ([]byte, error) { return payload, nil }

	_, ack, done, err := d.HandleSetup(setup, readOut)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, ack)

	assert.Equal(t, int(req.Length), d.NextChunkSize())
}

func TestHandleBulkOutAccumulatesChunks(t *testing.T) {
	d := NewDispatcher(newTestEngine(t))
	d.MaxChunk = 4

	req := gud.SetBufferReq{Width: 4, Height: 2, Length: gud.BufferLength(gud.FormatRGB565, 4, 2)}
	setupPayload := req.Bytes()
	setup := &SetupData{RequestType: 0x40, Request: gud.ReqSetBuffer, Length: uint16(len(setupPayload))}

	_, _, _, err := d.HandleSetup(setup, func(n int) ([]byte, error) { return setupPayload, nil })
	require.NoError(t, err)

	total := int(req.Length)
	sent := 0
	for sent < total {
		n := d.NextChunkSize()
		require.Greater(t, n, 0)

		chunk := make([]byte, n)
		done, err := d.HandleBulkOut(chunk)
		require.NoError(t, err)
		sent += n

		if sent < total {
			assert.False(t, done)
		} else {
			assert.True(t, done)
		}
	}

	assert.Equal(t, 0, d.NextChunkSize())
}

func TestHandleSetupRequiresReaderForOutPayload(t *testing.T) {
	d := NewDispatcher(newTestEngine(t))

	setup := &SetupData{RequestType: 0x40, Request: gud.ReqSetStateCommit, Length: 4}
	_, _, done, err := d.HandleSetup(setup, nil)
	assert.True(t, done)
	assert.Error(t, err)
}

func TestDecodeSetupData(t *testing.T) {
	raw := []byte{0xc0, gud.ReqGetStatus, 0x34, 0x12, 0x00, 0x00, 0x02, 0x00}
	s, ok := DecodeSetupData(raw)
	require.True(t, ok)
	assert.Equal(t, uint8(0xc0), s.RequestType)
	assert.Equal(t, gud.ReqGetStatus, s.Request)
	assert.Equal(t, uint16(0x1234), s.Value)
	assert.Equal(t, uint16(2), s.Length)
	assert.True(t, s.IsDeviceToHost())
	assert.True(t, s.IsVendor())
}
