// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

// Command gud-panel runs the 320x240 RGB565 panel profile on a real USB
// armory Mk II, wiring transport/hwusb's Attach onto the board's first USB
// controller (board/usbarmory/mk2.USB1). It never runs in this module's
// test suite: it is the one genuinely hardware-bound entry point, kept
// alongside example.RunDemo's host-independent equivalent.
package main

import (
	"log"

	"github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/soc/nxp/usb"

	"github.com/notro/gud/example"
	"github.com/notro/gud/gud"
	"github.com/notro/gud/transport"
	"github.com/notro/gud/transport/hwusb"
)

func main() {
	panel := example.NewPanel(320, 240)

	engine, err := gud.New(example.NewProfile(panel))
	if err != nil {
		log.Fatalf("gud-panel: %v", err)
	}

	d := transport.NewDispatcher(engine)

	hw := mk2.USB1
	dev := &usb.Device{}

	hwusb.Attach(dev, d, func(n int) ([]byte, error) {
		return nil, nil
	})

	// TODO: wire dev's bulk OUT endpoint Function to d.NextChunkSize and
	// d.HandleBulkOut once the panel's configuration/endpoint descriptors
	// are assembled; ep0Read above also needs a real control OUT data
	// stage reader instead of the empty stub.

	hw.Init()
	hw.DeviceMode()
	hw.Reset()

	// Never returns. No bulk OUT endpoint Function is wired to d above, so
	// only control requests reach the dispatcher.
	hw.Start(dev)
}
