// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import "fmt"

// Request codes (GUD_REQ_*), carried in the vendor control request's
// bRequest field (§4.2/§4.3/§6).
const (
	ReqGetStatus              uint8 = 0x00
	ReqGetDescriptor          uint8 = 0x01
	ReqGetFormats             uint8 = 0x40
	ReqGetProperties          uint8 = 0x41
	ReqGetConnectors          uint8 = 0x50
	ReqGetConnectorProperties uint8 = 0x51
	ReqGetConnectorTVModeValues uint8 = 0x52
	ReqGetConnectorStatus       uint8 = 0x54
	ReqGetConnectorModes        uint8 = 0x55
	ReqGetConnectorEDID         uint8 = 0x56

	ReqSetConnectorForceDetect uint8 = 0x53
	ReqSetBuffer               uint8 = 0x60
	ReqSetStateCheck           uint8 = 0x61
	ReqSetStateCommit          uint8 = 0x62
	ReqSetControllerEnable     uint8 = 0x63
	ReqSetDisplayEnable        uint8 = 0x64
)

// Engine is the GUD protocol engine for a single display (§3). It holds
// no notion of USB endpoints: a transport hands it raw control/bulk
// payloads and receives back response bytes or an error, matching the
// teacher's SetupFunction hook shape (soc/imx6/usb/descriptor.go).
type Engine struct {
	profile *Profile

	status StatusCell

	pending   pendingState
	committed bool
	format    uint8
	pitch     uint32 // width * BytesPerPixel(format), recomputed on every commit

	buffer pendingBuffer

	// Decompressor overrides the default LZ4 codec; nil uses it.
	Decompressor Decompressor
}

// New validates profile and returns a ready Engine.
func New(profile *Profile) (*Engine, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return &Engine{profile: profile}, nil
}

// Get serves a vendor GET control request, writing its response into buf
// and returning the number of bytes written (§4.2/C4). index selects a
// connector or mode where the request takes one; unsupported requests
// return StatusRequestNotSupported without touching buf.
func (e *Engine) Get(request uint8, index uint16, buf []byte) (int, error) {
	if request != ReqGetStatus {
		e.status.Clear()
	}

	n, err := e.get(request, index, buf)
	if request != ReqGetStatus {
		e.status.Latch(err)
	}

	return n, err
}

func (e *Engine) get(request uint8, index uint16, buf []byte) (int, error) {
	switch request {
	case ReqGetStatus, ReqGetDescriptor, ReqGetFormats, ReqGetProperties, ReqGetConnectors:
		// These requests take no index; only the connector-scoped
		// requests below give it a meaning.
		if index != 0 {
			return 0, fmt.Errorf("gud: unexpected index %d for request %#x: %w", index, request, StatusProtocolError)
		}
	}

	switch request {
	case ReqGetStatus:
		return copyOut(buf, e.status.Bytes())

	case ReqGetDescriptor:
		if err := e.profile.Validate(); err != nil {
			return 0, err
		}
		return copyOut(buf, e.descriptor().Bytes())

	case ReqGetFormats:
		return copyOut(buf, e.profile.Formats)

	case ReqGetProperties:
		return copyOutAligned(buf, propertiesBytes(e.profile.Properties), PropertySize)

	case ReqGetConnectors:
		// Single fixed PANEL connector, no flags (§4.2).
		conn := ConnectorDescriptor{ConnectorType: ConnectorPanel}
		return copyOut(buf, conn.Bytes())

	case ReqGetConnectorProperties:
		if index != 0 {
			return 0, fmt.Errorf("gud: connector %d out of range: %w", index, StatusInvalidParameter)
		}
		return copyOutAligned(buf, propertiesBytes(e.profile.ConnectorProperties), PropertySize)

	case ReqGetConnectorStatus:
		if index != 0 {
			return 0, fmt.Errorf("gud: connector %d out of range: %w", index, StatusInvalidParameter)
		}
		return copyOut(buf, []byte{ConnectorStatusConnected})

	case ReqGetConnectorModes:
		if index != 0 {
			return 0, fmt.Errorf("gud: connector %d out of range: %w", index, StatusInvalidParameter)
		}
		return copyOut(buf, e.preferredMode().Bytes())

	case ReqGetConnectorTVModeValues:
		if index != 0 {
			return 0, fmt.Errorf("gud: connector %d out of range: %w", index, StatusInvalidParameter)
		}
		// Present in the reference protocol for a TV_MODE property this
		// profile shape doesn't model; explicitly unsupported rather than
		// falling into the generic unknown-request branch (§ supplemented
		// features).
		return 0, fmt.Errorf("gud: tv mode values not supported: %w", StatusRequestNotSupported)

	case ReqGetConnectorEDID:
		if index != 0 {
			return 0, fmt.Errorf("gud: connector %d out of range: %w", index, StatusInvalidParameter)
		}
		if e.profile.EDID == nil {
			return 0, fmt.Errorf("gud: no edid available: %w", StatusRequestNotSupported)
		}
		// §4.1: a caller buffer smaller than one EDID block gets no data
		// at all, unlike the other GET requests' truncate-to-capacity
		// behavior.
		if len(buf) < EDIDSize {
			return 0, nil
		}
		mode := e.preferredMode()
		return copyOut(buf, synthesizeEDID(e.profile.EDID, &mode))

	default:
		return 0, fmt.Errorf("gud: unsupported get request %#x: %w", request, StatusRequestNotSupported)
	}
}

// Set serves a vendor SET control request carried in payload (§4.3/C5).
// Requests with no payload (controller/display enable) read their single
// boolean from index per the reference's convention of using wValue for
// that purpose; the transport is responsible for that mapping and simply
// passes the already-decoded boolean through index here.
func (e *Engine) Set(request uint8, index uint16, payload []byte) error {
	e.status.Clear()

	err := e.set(request, index, payload)
	e.status.Latch(err)

	return err
}

func (e *Engine) set(request uint8, index uint16, payload []byte) error {
	switch request {
	case ReqSetConnectorForceDetect:
		// No dynamic connector topology to re-probe (§4.3): always OK.
		return nil

	case ReqSetBuffer:
		req, err := DecodeSetBufferReq(payload)
		if err != nil {
			return err
		}
		return e.setBuffer(req)

	case ReqSetStateCheck:
		req, err := DecodeStateReq(payload)
		if err != nil {
			return err
		}
		return e.checkState(req)

	case ReqSetStateCommit:
		return e.commitState()

	case ReqSetControllerEnable:
		return e.profile.hooks().ControllerEnable(index != 0)

	case ReqSetDisplayEnable:
		return e.profile.hooks().DisplayEnable(index != 0)

	default:
		return fmt.Errorf("gud: unsupported set request %#x: %w", request, StatusRequestNotSupported)
	}
}

// BeginBulkTransfer and EndBulkTransfer let a transport drive the bulk OUT
// side of a SET_BUFFER transaction (C7/C9 boundary): call BeginBulkTransfer
// once the armed rectangle's byte count is known, stream the payload, then
// call EndBulkTransfer with the complete (possibly compressed) payload.
func (e *Engine) BeginBulkTransfer() error {
	return e.beginTransfer()
}

func (e *Engine) EndBulkTransfer(payload []byte) error {
	return e.endTransfer(payload)
}

// ArmedLength reports how many bytes the transport should read off the
// bulk OUT endpoint for the currently armed rectangle (the compressed
// length, when compression is in use), or 0 if nothing is armed.
func (e *Engine) ArmedLength() uint32 {
	if !e.buffer.armed {
		return 0
	}
	return e.buffer.wireLength
}

// Pitch reports the committed mode's scanline stride in bytes (width x
// bytes-per-pixel), recomputed on every SET_STATE_COMMIT per §4.5. It is
// 0 before the first commit or for a sub-byte format (R1, RGB111), which
// has no whole-byte row stride.
func (e *Engine) Pitch() uint32 {
	return e.pitch
}

func (e *Engine) descriptor() DisplayDescriptor {
	return DisplayDescriptor{
		Magic:         DisplayMagic,
		Version:       DisplayProtocolVersion,
		Flags:         e.profile.Flags,
		Compression:   e.profile.Compression,
		MaxBufferSize: e.profile.MaxBufferSize,
		MinWidth:      e.profile.Width,
		MaxWidth:      e.profile.Width,
		MinHeight:     e.profile.Height,
		MaxHeight:     e.profile.Height,
	}
}

// preferredMode synthesizes the single mode this engine reports (§4.2):
// an exact match for the profile's fixed geometry, with no blanking (a
// panel connector has no analog timing to preserve), clock fixed at 1
// and flags at 0, per §4.2's literal description of the synthetic mode.
func (e *Engine) preferredMode() Mode {
	return Mode{
		Clock:      1,
		HDisplay:   uint16(e.profile.Width),
		HSyncStart: uint16(e.profile.Width),
		HSyncEnd:   uint16(e.profile.Width),
		HTotal:     uint16(e.profile.Width),
		VDisplay:   uint16(e.profile.Height),
		VSyncStart: uint16(e.profile.Height),
		VSyncEnd:   uint16(e.profile.Height),
		VTotal:     uint16(e.profile.Height),
		Flags:      0,
	}
}

func propertiesBytes(props []Property) []byte {
	b := make([]byte, 0, len(props)*PropertySize)
	for _, p := range props {
		b = append(b, p.Bytes()...)
	}
	return b
}

// copyOut copies src into dst, truncating to dst's capacity the way a
// control IN transfer truncates to wLength rather than failing (§4.2).
// A zero-capacity dst for a request that has data to return is itself a
// protocol error (§3 invariant).
func copyOut(dst, src []byte) (int, error) {
	if len(dst) == 0 && len(src) > 0 {
		return 0, fmt.Errorf("gud: zero-capacity buffer for %d byte response: %w", len(src), StatusProtocolError)
	}
	return copy(dst, src), nil
}

// copyOutAligned behaves like copyOut but additionally requires dst's
// capacity to be a positive multiple of unit, per §4.2/§9: the source
// disagrees with itself between truncating to a whole record and
// rejecting outright, and the spec resolves this in favor of the
// stricter behavior matching the host driver's request sizing.
func copyOutAligned(dst, src []byte, unit int) (int, error) {
	if len(dst) == 0 || len(dst)%unit != 0 {
		return 0, fmt.Errorf("gud: buffer capacity %d is not a positive multiple of %d: %w", len(dst), unit, StatusProtocolError)
	}

	n := len(dst)
	if n > len(src) {
		n = len(src)
	}
	n -= n % unit

	return copy(dst, src[:n]), nil
}
