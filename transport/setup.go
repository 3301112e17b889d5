// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package transport adapts a gud.Engine to a real (or fake) USB device
// stack. It owns no hardware: it only classifies and shuttles bytes
// between a control/bulk endpoint abstraction and the engine (§4.8/C9).
package transport

import "encoding/binary"

// Format of Setup Data (p276, Table 9-2, USB2.0), mirrored from the
// teacher's soc/nxp/usb.SetupData.
type SetupData struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
}

const (
	requestTypeDirIn  = 1 << 7
	requestTypeMask   = 0x60
	requestTypeVendor = 0x40
)

// IsVendor reports whether this setup packet targets GUD's vendor
// request type, as opposed to a standard or class request.
func (s *SetupData) IsVendor() bool {
	return s.RequestType&requestTypeMask == requestTypeVendor
}

// IsDeviceToHost reports whether this is a control IN (GET) transfer.
func (s *SetupData) IsDeviceToHost() bool {
	return s.RequestType&requestTypeDirIn != 0
}

// DecodeSetupData parses the 8-byte USB setup packet, reading Value,
// Index and Length in their little-endian wire order. It reports false
// if b is not exactly 8 bytes long.
func DecodeSetupData(b []byte) (SetupData, bool) {
	if len(b) != 8 {
		return SetupData{}, false
	}

	return SetupData{
		RequestType: b[0],
		Request:     b[1],
		Value:       binary.LittleEndian.Uint16(b[2:4]),
		Index:       binary.LittleEndian.Uint16(b[4:6]),
		Length:      binary.LittleEndian.Uint16(b[6:8]),
	}, true
}
