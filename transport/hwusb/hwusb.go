// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

// Package hwusb wires a transport.Dispatcher into a real NXP USB device
// controller via tamago's soc/nxp/usb package (the teacher this module
// was built from). It is the one part of the tree that is genuinely
// hardware-bound and is never exercised by this module's tests.
package hwusb

import (
	"github.com/notro/gud/transport"
	"github.com/usbarmory/tamago/soc/nxp/usb"
)

// Attach installs d as the Setup hook of dev, translating between
// tamago's SetupData/register-backed endpoint zero and the Dispatcher's
// bus-agnostic shape. Bulk OUT delivery is left to the caller's endpoint
// Function loop (see soc/nxp/usb/endpoint_handler.go's startEndpoints):
// call d.NextChunkSize and d.HandleBulkOut from that callback with data
// read from the bulk OUT endpoint tamago allocated for the gadget.
func Attach(dev *usb.Device, d *transport.Dispatcher, ep0Read func(n int) ([]byte, error)) {
	dev.Setup = func(setup *usb.SetupData) (in []byte, ack bool, done bool, err error) {
		ts := &transport.SetupData{
			RequestType: setup.RequestType,
			Request:     setup.Request,
			Value:       setup.Value,
			Index:       setup.Index,
			Length:      setup.Length,
		}

		return d.HandleSetup(ts, transport.ReadOut(ep0Read))
	}
}
