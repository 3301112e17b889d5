// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package example

import (
	"fmt"

	"github.com/notro/gud/gud"
	"github.com/notro/gud/transport"
)

// RunDemo drives panel's Profile through one complete CHECK/COMMIT/SET_BUFFER
// lifecycle using nothing but synthetic control and bulk OUT packets, the
// same shape hwusb.Attach would hand a Dispatcher from a real device
// controller (§4.8/C9). It exists so the engine and transport packages can
// be exercised end to end without any USB hardware attached, the
// host-independent counterpart to the build-tagged `cmd/gud-panel` binary.
func RunDemo(panel *Panel) error {
	e, err := gud.New(NewProfile(panel))
	if err != nil {
		return fmt.Errorf("example: %w", err)
	}

	d := transport.NewDispatcher(e)

	checkReq := gud.StateReq{
		Mode:   gud.Mode{HDisplay: uint16(panel.width), VDisplay: uint16(panel.height)},
		Format: gud.FormatRGB565,
	}
	if err := vendorSet(d, gud.ReqSetStateCheck, 0, checkReq.Bytes()); err != nil {
		return fmt.Errorf("example: check: %w", err)
	}

	if err := vendorSet(d, gud.ReqSetStateCommit, 0, nil); err != nil {
		return fmt.Errorf("example: commit: %w", err)
	}

	if err := vendorSet(d, gud.ReqSetControllerEnable, 1, nil); err != nil {
		return fmt.Errorf("example: controller enable: %w", err)
	}

	if err := vendorSet(d, gud.ReqSetDisplayEnable, 1, nil); err != nil {
		return fmt.Errorf("example: display enable: %w", err)
	}

	frame := make([]byte, gud.BufferLength(gud.FormatRGB565, panel.width, panel.height))
	for i := range frame {
		frame[i] = byte(i)
	}

	bufReq := gud.SetBufferReq{Width: uint16(panel.width), Height: uint16(panel.height), Length: uint32(len(frame))}
	setupPayload := bufReq.Bytes()
	setup := &transport.SetupData{RequestType: 0x40, Request: gud.ReqSetBuffer, Length: uint16(len(setupPayload))}

	if _, _, _, err := d.HandleSetup(setup, func(n int) ([]byte, error) { return setupPayload, nil }); err != nil {
		return fmt.Errorf("example: set_buffer: %w", err)
	}

	sent := 0
	for sent < len(frame) {
		n := d.NextChunkSize()
		if n == 0 {
			break
		}
		if sent+n > len(frame) {
			n = len(frame) - sent
		}
		if _, err := d.HandleBulkOut(frame[sent : sent+n]); err != nil {
			return fmt.Errorf("example: bulk out: %w", err)
		}
		sent += n
	}

	return nil
}

// vendorSet issues a single control OUT vendor request through d, the way a
// real bus's setup-stage handler would after decoding a SETUP packet. index
// carries wValue, the slot the engine uses for the enable requests' boolean.
func vendorSet(d *transport.Dispatcher, request uint8, index uint16, payload []byte) error {
	setup := &transport.SetupData{RequestType: 0x40, Request: request, Value: index, Length: uint16(len(payload))}
	_, _, _, err := d.HandleSetup(setup, func(n int) ([]byte, error) { return payload, nil })
	return err
}
