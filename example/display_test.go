// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package example

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notro/gud/gud"
)

func TestPanelEndToEnd(t *testing.T) {
	panel := NewPanel(4, 2)
	profile := NewProfile(panel)

	e, err := gud.New(profile)
	require.NoError(t, err)

	req := gud.StateReq{Mode: gud.Mode{HDisplay: 4, VDisplay: 2}, Format: gud.FormatRGB565}
	require.NoError(t, e.Set(gud.ReqSetStateCheck, 0, req.Bytes()))
	require.NoError(t, e.Set(gud.ReqSetStateCommit, 0, nil))

	rect := gud.SetBufferReq{Width: 4, Height: 2, Length: gud.BufferLength(gud.FormatRGB565, 4, 2)}
	require.NoError(t, e.Set(gud.ReqSetBuffer, 0, rect.Bytes()))
	require.NoError(t, e.BeginBulkTransfer())

	payload := make([]byte, rect.Length)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	require.NoError(t, e.EndBulkTransfer(payload))

	assert.Equal(t, payload, panel.Snapshot())
}

func TestPanelControllerEnable(t *testing.T) {
	panel := NewPanel(4, 2)
	require.NoError(t, panel.ControllerEnable(true))
	assert.True(t, panel.enabled)
	require.NoError(t, panel.DisplayEnable(true))
	assert.True(t, panel.displayOn)
}
