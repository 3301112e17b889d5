// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import "fmt"

// Status is a GUD wire status/errno code (GUD_STATUS_*). It implements
// error so handlers can return it (or wrap it with fmt.Errorf's %w)
// directly as the negative result §7 describes.
type Status uint8

// Status codes, p1 Table "Status values" of the GUD protocol.
const (
	StatusOK Status = iota
	StatusBusy
	StatusRequestNotSupported
	StatusProtocolError
	StatusInvalidParameter
	StatusError
)

func (s Status) Error() string {
	switch s {
	case StatusOK:
		return "gud: ok"
	case StatusBusy:
		return "gud: busy"
	case StatusRequestNotSupported:
		return "gud: request not supported"
	case StatusProtocolError:
		return "gud: protocol error"
	case StatusInvalidParameter:
		return "gud: invalid parameter"
	case StatusError:
		return "gud: error"
	default:
		return fmt.Sprintf("gud: unknown status %#x", uint8(s))
	}
}

// StatusOf unwraps err down to its Status code. A nil error maps to
// StatusOK; any error that isn't (or doesn't wrap) a Status maps to
// StatusError, matching the reference's generic fallback.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var s Status
	if ok := asStatus(err, &s); ok {
		return s
	}

	return StatusError
}

func asStatus(err error, target *Status) bool {
	for err != nil {
		if s, ok := err.(Status); ok {
			*target = s
			return true
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}

		err = u.Unwrap()
	}

	return false
}

// StatusCell is the two-field {pending, errno} status cell described in
// §4.7/C8. It is single-writer (the dispatcher) and single-reader (the
// host, via GET_STATUS), and is not safe for concurrent use — the same
// single-threaded-callback-context guarantee the rest of the engine
// relies on (§5).
type StatusCell struct {
	pending bool
	errno   Status
}

// Clear resets the cell to {pending: false, errno: OK}. Called at the
// start of every non-GET_STATUS request (P5).
func (c *StatusCell) Clear() {
	c.pending = false
	c.errno = StatusOK
}

// SetPending marks the cell as awaiting an asynchronous result.
func (c *StatusCell) SetPending() {
	c.pending = true
}

// Latch records the outcome of a request. A nil error clears pending with
// errno OK; any other error clears pending and records its Status.
func (c *StatusCell) Latch(err error) {
	c.pending = false
	c.errno = StatusOf(err)
}

// Pending reports whether a result is still outstanding.
func (c *StatusCell) Pending() bool {
	return c.pending
}

// Errno returns the last latched status code.
func (c *StatusCell) Errno() Status {
	return c.errno
}

// Bytes encodes the cell as the two bytes returned by GET_STATUS: a
// flags byte (bit 0 = pending) followed by the errno byte.
func (c *StatusCell) Bytes() []byte {
	var flags uint8
	if c.pending {
		flags = 1
	}

	return []byte{flags, uint8(c.errno)}
}
