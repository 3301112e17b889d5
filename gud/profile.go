// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import (
	"fmt"

	"github.com/notro/gud/gud/internal/bits"
)

// Display flags (gud_display_descriptor_req.flags).
const (
	// FlagStatusOnSet asks the host to issue GET_STATUS after every SET
	// request, since some gadget drivers have no other way to observe
	// the status stage of a control OUT request carrying a payload.
	FlagStatusOnSet uint32 = 1 << 0
	// FlagFullUpdate asks the host to always send the entire
	// framebuffer: SET_BUFFER is only required again after a failed
	// bulk transfer. Mutually exclusive with compression (§3/§4.4).
	FlagFullUpdate uint32 = 1 << 1
)

// Compression bits (gud_display_descriptor_req.compression).
const (
	CompressionLZ4 uint8 = 1 << 0
)

// Non-connector property (GUD_PROPERTY_ROTATION and friends).
const (
	PropertyRotation uint16 = 50
)

// Connector properties (GUD_PROPERTY_TV_* and GUD_PROPERTY_BACKLIGHT_BRIGHTNESS).
const (
	PropertyTVLeftMargin        uint16 = 1
	PropertyTVRightMargin       uint16 = 2
	PropertyTVTopMargin         uint16 = 3
	PropertyTVBottomMargin      uint16 = 4
	PropertyTVMode              uint16 = 5
	PropertyTVBrightness        uint16 = 6
	PropertyTVContrast          uint16 = 7
	PropertyTVFlickerReduction  uint16 = 8
	PropertyTVOverscan          uint16 = 9
	PropertyTVSaturation        uint16 = 10
	PropertyTVHue               uint16 = 11
	PropertyBacklightBrightness uint16 = 12
)

// MaxProperties is the fixed capacity of the single pending-state
// properties slot (§3 "Pending state"). The reference C implementation
// statically allocates 8 slots; this engine keeps the same ceiling so
// GET_DESCRIPTOR's overflow check (§ supplemented features) remains
// meaningful.
const MaxProperties = 8

// EDIDSeed is the small, device-supplied description a 128-byte EDID
// block is synthesized from (§4.1/C2).
type EDIDSeed struct {
	// Name is the display product name, at most 13 characters.
	Name string
	// PNP is the 3-letter, uppercase Plug'n Play manufacturer id.
	PNP string
	ProductCode uint16
	Year        uint16
	WidthMM     uint16
	HeightMM    uint16
	// SerialNumber optionally supplies a device serial; if nil, 0 is used.
	SerialNumber func() uint32
}

// Hooks are the optional callbacks a concrete device implements to react
// to state changes (§6 "Interfaces consumed from external collaborators").
// All five are optional; embed NopHooks to default the ones a device
// doesn't care about, matching the teacher's own nil-checked optional
// SetupFunction hook (soc/nxp/usb/setup.go).
type Hooks interface {
	// ControllerEnable is invoked on SET_CONTROLLER_ENABLE.
	ControllerEnable(on bool) error
	// DisplayEnable is invoked on SET_DISPLAY_ENABLE.
	DisplayEnable(on bool) error
	// StateCommit is invoked on SET_STATE_COMMIT with the last checked
	// state and its property count.
	StateCommit(state StateReq, numProperties int) error
	// SetBuffer is invoked when SET_BUFFER is accepted, before the bulk
	// transfer begins; it gives the device a chance to wait out any DMA
	// still in flight from a previous frame.
	SetBuffer(rect Rect) error
	// WriteBuffer blits a fully received (and, if needed, decompressed)
	// rectangle from buf into the device's framebuffer/display.
	WriteBuffer(rect Rect, buf []byte)
}

// NopHooks is a Hooks implementation where every method is a no-op
// success. Embed it in a concrete profile's hook type to implement only
// the callbacks that matter.
type NopHooks struct{}

func (NopHooks) ControllerEnable(bool) error                  { return nil }
func (NopHooks) DisplayEnable(bool) error                     { return nil }
func (NopHooks) StateCommit(StateReq, int) error               { return nil }
func (NopHooks) SetBuffer(Rect) error                          { return nil }
func (NopHooks) WriteBuffer(Rect, []byte)                      {}

// Profile is the immutable, device-supplied description of a display
// (§3 "Display profile"). It never changes after Engine construction.
type Profile struct {
	Width, Height uint32

	Flags       uint32
	Compression uint8
	// MaxBufferSize is an optional hint for devices that can't
	// decompress an entire framebuffer in one go. Zero means no hint.
	MaxBufferSize uint32

	// Formats lists the pixel format codes this device accepts, in the
	// order GET_FORMATS reports them.
	Formats []uint8

	// Properties and ConnectorProperties list the non-connector and
	// connector properties this device supports, each with its initial
	// value.
	Properties           []Property
	ConnectorProperties  []Property

	EDID *EDIDSeed

	Hooks Hooks
}

// HasFlag reports whether the given display flag is set.
func (p *Profile) HasFlag(flag uint32) bool {
	return bits.Has(uint32(p.Flags), bitPos(flag))
}

// bitPos returns the bit index of a single-bit mask, or -1 if flag isn't
// a power of two (a programmer error in a constant, not a runtime input).
func bitPos(flag uint32) int {
	for i := 0; i < 32; i++ {
		if uint32(1)<<uint(i) == flag {
			return i
		}
	}
	return -1
}

// Validate checks the profile against the engine's fixed capacities. It
// is called once by New, but the same check is also re-surfaced by
// GET_DESCRIPTOR (see SPEC_FULL.md "supplemented features") so that a
// profile built without going through New still fails the way the
// reference implementation does, from the first request.
func (p *Profile) Validate() error {
	if len(p.Properties)+len(p.ConnectorProperties) > MaxProperties {
		return fmt.Errorf("gud: profile declares %d properties, exceeds the %d slot capacity: %w",
			len(p.Properties)+len(p.ConnectorProperties), MaxProperties, StatusError)
	}

	if p.Width == 0 || p.Height == 0 {
		return fmt.Errorf("gud: profile has zero geometry: %w", StatusError)
	}

	if len(p.Formats) == 0 {
		return fmt.Errorf("gud: profile declares no pixel formats: %w", StatusError)
	}

	if p.HasFlag(FlagFullUpdate) && p.Compression != 0 {
		return fmt.Errorf("gud: full update and compression are mutually exclusive: %w", StatusError)
	}

	return nil
}

// SupportsFormat reports whether format is in the profile's format list.
func (p *Profile) SupportsFormat(format uint8) bool {
	for _, f := range p.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (p *Profile) hooks() Hooks {
	if p.Hooks == nil {
		return NopHooks{}
	}
	return p.Hooks
}
