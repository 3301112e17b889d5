// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package example wires a minimal display profile into a gud.Engine, the
// way the teacher's example package wires a USB gadget zero device onto
// tamago's usb.Device (example/usb_zero.go): a concrete Profile plus a
// Hooks implementation a caller can point at a real panel.
package example

import (
	"sync"

	"github.com/notro/gud/gud"
)

// Panel is an RGB565 panel Hooks implementation backed by an in-memory
// framebuffer of the size given to NewPanel, useful both as a worked example and as the
// target of this module's end-to-end tests.
type Panel struct {
	gud.NopHooks

	mu          sync.Mutex
	enabled     bool
	displayOn   bool
	framebuffer []byte // width*height*2 bytes, RGB565
	width, height uint32
}

// NewPanel returns a Panel sized for width x height RGB565 pixels.
func NewPanel(width, height uint32) *Panel {
	return &Panel{
		framebuffer: make([]byte, gud.BufferLength(gud.FormatRGB565, width, height)),
		width:       width,
		height:      height,
	}
}

func (p *Panel) ControllerEnable(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = on
	return nil
}

func (p *Panel) DisplayEnable(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.displayOn = on
	return nil
}

func (p *Panel) WriteBuffer(rect gud.Rect, buf []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stride := p.width * 2
	rowBytes := rect.Width * 2

	for row := uint32(0); row < rect.Height; row++ {
		srcOff := row * rowBytes
		dstOff := (rect.Y+row)*stride + rect.X*2
		copy(p.framebuffer[dstOff:dstOff+rowBytes], buf[srcOff:srcOff+rowBytes])
	}
}

// Snapshot returns a copy of the current framebuffer contents.
func (p *Panel) Snapshot() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]byte, len(p.framebuffer))
	copy(out, p.framebuffer)
	return out
}

// NewProfile returns the gud.Profile for an RGB565 panel of panel's size,
// backed by panel, with whole-frame redraws advertised the way the reference
// gud-pico firmware does for its ST7789 panel. FlagFullUpdate is
// mutually exclusive with compression (§3/§4.4), so this profile leaves
// Compression unset.
func NewProfile(panel *Panel) *gud.Profile {
	return &gud.Profile{
		Width:       panel.width,
		Height:      panel.height,
		Flags:       gud.FlagFullUpdate,
		Formats:     []uint8{gud.FormatRGB565},
		ConnectorProperties: []gud.Property{
			{ID: gud.PropertyBacklightBrightness, Value: 100},
		},
		EDID: &gud.EDIDSeed{
			Name:        "gud-panel",
			PNP:         "GUD",
			ProductCode: 1,
			Year:        2024,
			WidthMM:     58,
			HeightMM:    43,
		},
		Hooks: panel,
	}
}
