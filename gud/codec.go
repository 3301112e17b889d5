// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import "encoding/binary"

// Wire struct sizes (§4.6). Every multi-byte field is little-endian;
// structs are packed with no implicit padding. Reserved trailing bytes
// are explicit fields rather than compiler padding, decoded field-by-field
// so the layout holds regardless of the host's own endianness or
// alignment rules (§9 design note).
const (
	PropertySize        = 10
	ModeSize            = 26
	DisplayDescriptorSize = 35
	SetBufferReqSize    = 21
	StateReqHeaderSize  = ModeSize + 2 // + format + connector
	ConnectorDescriptorSize = 5
)

// Property is a {id, value} pair (gud_property_req), 10 bytes on the wire.
type Property struct {
	ID    uint16
	Value uint64
}

// Bytes encodes the property in wire format.
func (p Property) Bytes() []byte {
	b := make([]byte, PropertySize)
	binary.LittleEndian.PutUint16(b[0:2], p.ID)
	binary.LittleEndian.PutUint64(b[2:10], p.Value)
	return b
}

// DecodeProperty decodes a property from the front of b.
func DecodeProperty(b []byte) (p Property, ok bool) {
	if len(b) < PropertySize {
		return Property{}, false
	}

	p.ID = binary.LittleEndian.Uint16(b[0:2])
	p.Value = binary.LittleEndian.Uint64(b[2:10])

	return p, true
}

// Mode display mode flags (gud_display_mode_req flags), a subset mirrored
// from the RandR/DRM bit assignments per §4 "Mode".
const (
	ModeFlagPHSync    = 1 << 0
	ModeFlagNHSync    = 1 << 1
	ModeFlagPVSync    = 1 << 2
	ModeFlagNVSync    = 1 << 3
	ModeFlagInterlace = 1 << 4
	ModeFlagPreferred = 1 << 10
)

// Mode describes a single display timing (gud_display_mode_req), 26 bytes
// on the wire: the trailing two bytes are reserved for future protocol
// revisions and must round-trip as zero.
type Mode struct {
	Clock      uint32
	HDisplay   uint16
	HSyncStart uint16
	HSyncEnd   uint16
	HTotal     uint16
	VDisplay   uint16
	VSyncStart uint16
	VSyncEnd   uint16
	VTotal     uint16
	Flags      uint32
}

// Bytes encodes the mode in wire format.
func (m Mode) Bytes() []byte {
	b := make([]byte, ModeSize)
	binary.LittleEndian.PutUint32(b[0:4], m.Clock)
	binary.LittleEndian.PutUint16(b[4:6], m.HDisplay)
	binary.LittleEndian.PutUint16(b[6:8], m.HSyncStart)
	binary.LittleEndian.PutUint16(b[8:10], m.HSyncEnd)
	binary.LittleEndian.PutUint16(b[10:12], m.HTotal)
	binary.LittleEndian.PutUint16(b[12:14], m.VDisplay)
	binary.LittleEndian.PutUint16(b[14:16], m.VSyncStart)
	binary.LittleEndian.PutUint16(b[16:18], m.VSyncEnd)
	binary.LittleEndian.PutUint16(b[18:20], m.VTotal)
	binary.LittleEndian.PutUint32(b[20:24], m.Flags)
	// b[24:26] reserved, left zero
	return b
}

// DecodeMode decodes a mode from the front of b.
func DecodeMode(b []byte) (m Mode, ok bool) {
	if len(b) < ModeSize {
		return Mode{}, false
	}

	m.Clock = binary.LittleEndian.Uint32(b[0:4])
	m.HDisplay = binary.LittleEndian.Uint16(b[4:6])
	m.HSyncStart = binary.LittleEndian.Uint16(b[6:8])
	m.HSyncEnd = binary.LittleEndian.Uint16(b[8:10])
	m.HTotal = binary.LittleEndian.Uint16(b[10:12])
	m.VDisplay = binary.LittleEndian.Uint16(b[12:14])
	m.VSyncStart = binary.LittleEndian.Uint16(b[14:16])
	m.VSyncEnd = binary.LittleEndian.Uint16(b[16:18])
	m.VTotal = binary.LittleEndian.Uint16(b[18:20])
	m.Flags = binary.LittleEndian.Uint32(b[20:24])

	return m, true
}

// StateReq is the display state transaction payload of SET_STATE_CHECK
// (gud_state_req): a mode, a format, a connector index, and a variable
// tail of properties. The fixed header is StateReqHeaderSize (28) bytes.
type StateReq struct {
	Mode       Mode
	Format     uint8
	Connector  uint8
	Properties []Property
}

// Bytes encodes the state request, header followed by its property tail.
func (s StateReq) Bytes() []byte {
	b := make([]byte, 0, StateReqHeaderSize+len(s.Properties)*PropertySize)
	b = append(b, s.Mode.Bytes()...)
	b = append(b, s.Format, s.Connector)

	for _, p := range s.Properties {
		b = append(b, p.Bytes()...)
	}

	return b
}

// DecodeStateReq decodes a state request. It enforces the structural
// invariant that the payload is exactly StateReqHeaderSize plus a whole
// number of properties (§4.3); any other size is a protocol error.
func DecodeStateReq(b []byte) (s StateReq, err error) {
	if len(b) < StateReqHeaderSize {
		return StateReq{}, StatusProtocolError
	}

	tail := len(b) - StateReqHeaderSize
	if tail%PropertySize != 0 {
		return StateReq{}, StatusProtocolError
	}

	mode, ok := DecodeMode(b[0:ModeSize])
	if !ok {
		return StateReq{}, StatusProtocolError
	}

	s.Mode = mode
	s.Format = b[ModeSize]
	s.Connector = b[ModeSize+1]

	n := tail / PropertySize
	s.Properties = make([]Property, 0, n)

	for i := 0; i < n; i++ {
		off := StateReqHeaderSize + i*PropertySize
		p, ok := DecodeProperty(b[off : off+PropertySize])
		if !ok {
			return StateReq{}, StatusProtocolError
		}
		s.Properties = append(s.Properties, p)
	}

	return s, nil
}

// SetBufferReq describes the rectangle and compression parameters of an
// upcoming bulk OUT transfer (gud_set_buffer_req), 21 bytes on the wire.
// X/Y/Width/Height share Mode's uint16 width, since a rectangle can never
// exceed the display's own hdisplay/vdisplay. Four trailing bytes are
// reserved.
type SetBufferReq struct {
	X, Y          uint16
	Width, Height uint16
	Length        uint32
	Compression   uint8
	CompressedLength uint32
}

// Bytes encodes the request in wire format.
func (r SetBufferReq) Bytes() []byte {
	b := make([]byte, SetBufferReqSize)
	binary.LittleEndian.PutUint16(b[0:2], r.X)
	binary.LittleEndian.PutUint16(b[2:4], r.Y)
	binary.LittleEndian.PutUint16(b[4:6], r.Width)
	binary.LittleEndian.PutUint16(b[6:8], r.Height)
	binary.LittleEndian.PutUint32(b[8:12], r.Length)
	b[12] = r.Compression
	binary.LittleEndian.PutUint32(b[13:17], r.CompressedLength)
	// b[17:21] reserved, left zero
	return b
}

// DecodeSetBufferReq decodes a set-buffer request. The payload must be
// exactly SetBufferReqSize; any other size is a protocol error (it is a
// fixed-length request, not a variable one like StateReq).
func DecodeSetBufferReq(b []byte) (r SetBufferReq, err error) {
	if len(b) != SetBufferReqSize {
		return SetBufferReq{}, StatusProtocolError
	}

	r.X = binary.LittleEndian.Uint16(b[0:2])
	r.Y = binary.LittleEndian.Uint16(b[2:4])
	r.Width = binary.LittleEndian.Uint16(b[4:6])
	r.Height = binary.LittleEndian.Uint16(b[6:8])
	r.Length = binary.LittleEndian.Uint32(b[8:12])
	r.Compression = b[12]
	r.CompressedLength = binary.LittleEndian.Uint32(b[13:17])

	return r, nil
}

// DisplayDescriptor is the top-level capability descriptor returned by
// GET_DESCRIPTOR (gud_display_descriptor_req), 35 bytes on the wire.
type DisplayDescriptor struct {
	Magic         uint32
	Version       uint8
	Flags         uint32
	Compression   uint8
	MaxBufferSize uint32
	MinWidth      uint32
	MaxWidth      uint32
	MinHeight     uint32
	MaxHeight     uint32
}

// DisplayMagic is the fixed magic value identifying a GUD display
// descriptor: the USB VID/PID pair 1d50:614d in one word, sent as the
// bytes 4d 61 50 1d.
const DisplayMagic uint32 = 0x1d50614d

// DisplayProtocolVersion is the protocol version written by GET_DESCRIPTOR.
const DisplayProtocolVersion uint8 = 1

// Bytes encodes the descriptor in wire format.
func (d DisplayDescriptor) Bytes() []byte {
	b := make([]byte, DisplayDescriptorSize)
	binary.LittleEndian.PutUint32(b[0:4], d.Magic)
	b[4] = d.Version
	binary.LittleEndian.PutUint32(b[5:9], d.Flags)
	b[9] = d.Compression
	binary.LittleEndian.PutUint32(b[10:14], d.MaxBufferSize)
	binary.LittleEndian.PutUint32(b[14:18], d.MinWidth)
	binary.LittleEndian.PutUint32(b[18:22], d.MaxWidth)
	binary.LittleEndian.PutUint32(b[22:26], d.MinHeight)
	binary.LittleEndian.PutUint32(b[26:30], d.MaxHeight)
	// b[30:35] reserved, left zero
	return b
}

// ConnectorDescriptor describes the device's single connector
// (gud_connector_descriptor_req), 5 bytes on the wire.
type ConnectorDescriptor struct {
	ConnectorType uint8
	Flags         uint32
}

// Connector types (GUD_CONNECTOR_TYPE_*).
const (
	ConnectorPanel       uint8 = 0
	ConnectorVGA         uint8 = 1
	ConnectorComposite   uint8 = 2
	ConnectorSVideo      uint8 = 3
	ConnectorComponent   uint8 = 4
	ConnectorDVI         uint8 = 5
	ConnectorDisplayPort uint8 = 6
	ConnectorHDMI        uint8 = 7
)

// ConnectorStatusConnected is the (only, per §4.2) connector status value
// this engine reports.
const ConnectorStatusConnected uint8 = 0x01

// Bytes encodes the descriptor in wire format.
func (c ConnectorDescriptor) Bytes() []byte {
	b := make([]byte, ConnectorDescriptorSize)
	b[0] = c.ConnectorType
	binary.LittleEndian.PutUint32(b[1:5], c.Flags)
	return b
}
