// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package transport

import (
	"fmt"
	"sync"

	"github.com/notro/gud/gud"
)

// DefaultMaxChunk is the bulk OUT read size used when a Dispatcher isn't
// given a more specific one, matching the modest transfer size the
// reference TinyUSB driver chunks buffers into (GUD_EDPT_XFER_MAX_SIZE).
const DefaultMaxChunk = 4096

// Dispatcher routes USB control and bulk OUT traffic to a gud.Engine. It
// embeds a Mutex the same way the teacher's USB struct does
// (soc/nxp/usb/bus.go), serializing control and bulk handling even though
// nothing in this package spawns goroutines itself — callers that do
// drive it from more than one goroutine get the same safety for free.
type Dispatcher struct {
	sync.Mutex

	Engine   *gud.Engine
	MaxChunk int

	xfer struct {
		active     bool
		want       int
		compressed bool
		buf        []byte
	}
}

// NewDispatcher returns a Dispatcher bound to engine.
func NewDispatcher(engine *gud.Engine) *Dispatcher {
	return &Dispatcher{Engine: engine, MaxChunk: DefaultMaxChunk}
}

// ReadOut is supplied by the caller to fetch the control OUT data stage:
// n bytes to be read from endpoint zero before the dispatcher can act on
// a SET request that carries a payload.
type ReadOut func(n int) ([]byte, error)

// HandleSetup processes one control transfer's setup stage. It returns
// the same four-value shape as the teacher's SetupFunction hook
// (in []byte, ack bool, done bool, err error): in is a non-nil response
// for a control IN stage, ack requests a zero-length status-stage ack,
// and done reports whether this was a GUD vendor request at all — a
// caller sees done == false for standard/class requests and falls
// through to its own handling, exactly as hw.handleSetup does when
// Device.Setup returns no result.
func (d *Dispatcher) HandleSetup(setup *SetupData, readOut ReadOut) (in []byte, ack bool, done bool, err error) {
	d.Lock()
	defer d.Unlock()

	if !setup.IsVendor() {
		return nil, false, false, nil
	}

	if setup.IsDeviceToHost() {
		buf := make([]byte, setup.Length)
		n, err := d.Engine.Get(setup.Request, setup.Index, buf)
		if err != nil {
			return nil, false, true, err
		}
		return buf[:n], false, true, nil
	}

	var payload []byte
	if setup.Length > 0 {
		if readOut == nil {
			return nil, false, true, fmt.Errorf("transport: control OUT request needs %d bytes but no reader was supplied", setup.Length)
		}
		payload, err = readOut(int(setup.Length))
		if err != nil {
			return nil, false, true, err
		}
	}

	if err := d.Engine.Set(setup.Request, setup.Value, payload); err != nil {
		return nil, false, true, err
	}

	if setup.Request == gud.ReqSetBuffer {
		if err := d.armBulkTransfer(); err != nil {
			return nil, false, true, err
		}
	}

	return nil, true, true, nil
}

// armBulkTransfer primes the dispatcher to receive the bulk OUT payload
// a just-accepted SET_BUFFER describes (gud_driver_control_complete's
// SET_BUFFER branch in gud-pico's driver.c).
func (d *Dispatcher) armBulkTransfer() error {
	if err := d.Engine.BeginBulkTransfer(); err != nil {
		return err
	}

	want := int(d.Engine.ArmedLength())
	d.xfer.active = true
	d.xfer.want = want
	d.xfer.buf = make([]byte, 0, want)

	return nil
}

// NextChunkSize returns how many bytes the caller should read from the
// bulk OUT endpoint next, or 0 if no transfer is armed or it is already
// complete.
func (d *Dispatcher) NextChunkSize() int {
	d.Lock()
	defer d.Unlock()

	if !d.xfer.active {
		return 0
	}

	remaining := d.xfer.want - len(d.xfer.buf)
	if remaining <= 0 {
		return 0
	}

	maxChunk := d.MaxChunk
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunk
	}
	if remaining < maxChunk {
		return remaining
	}
	return maxChunk
}

// HandleBulkOut feeds one chunk of bulk OUT data to the dispatcher,
// grounded on gud_driver_xfer_cb: it accumulates chunks until the armed
// length is reached, then decompresses (if needed) and delivers the
// rectangle through the engine. It reports done == true once the
// transfer has been delivered to the engine (successfully or not).
func (d *Dispatcher) HandleBulkOut(chunk []byte) (done bool, err error) {
	d.Lock()
	defer d.Unlock()

	if !d.xfer.active {
		return false, fmt.Errorf("transport: bulk OUT data with no transfer armed: %w", gud.StatusProtocolError)
	}

	d.xfer.buf = append(d.xfer.buf, chunk...)
	if len(d.xfer.buf) < d.xfer.want {
		return false, nil
	}

	payload := d.xfer.buf
	d.xfer = struct {
		active     bool
		want       int
		compressed bool
		buf        []byte
	}{}

	return true, d.Engine.EndBulkTransfer(payload)
}
