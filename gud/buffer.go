// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Rect is a pixel rectangle within the committed display mode (§3/C7).
type Rect struct {
	X, Y, Width, Height uint32
}

// Contains reports whether r fits entirely within a width x height frame
// (P3's invariant, checked by setBuffer before any bytes are accepted).
func (r Rect) Contains(width, height uint32) bool {
	if r.Width == 0 || r.Height == 0 {
		return false
	}
	return r.X+r.Width <= width && r.Y+r.Height <= height
}

// Decompressor turns a compressed buffer payload into its decompressed
// form. The zero value of Engine uses lz4Decompressor; tests and
// alternative transports can substitute their own.
type Decompressor interface {
	Decompress(dst, src []byte) (int, error)
}

// lz4Decompressor is the default Decompressor, backed by the real LZ4
// block codec (github.com/pierrec/lz4/v4), matching the reference
// implementation's use of LZ4_decompress_safe (gud-pico driver.c).
type lz4Decompressor struct{}

func (lz4Decompressor) Decompress(dst, src []byte) (int, error) {
	return lz4.UncompressBlock(src, dst)
}

// pendingBuffer is the single-slot "accepted SET_BUFFER, awaiting its
// bulk OUT payload" state (§3/C7). At most one rectangle may be
// in flight at a time (P7).
type pendingBuffer struct {
	armed      bool
	rect       Rect
	compressed bool
	length     uint32 // expected decompressed length
	wireLength uint32 // expected bytes over the wire (== length unless compressed)
	inFlight   bool
}

// setBuffer validates a SET_BUFFER request against the committed state
// and, if accepted, arms the engine to receive the matching bulk OUT
// transfer (§4.4). It must follow a successful SET_STATE_COMMIT.
func (e *Engine) setBuffer(req SetBufferReq) error {
	if !e.committed {
		return fmt.Errorf("gud: set_buffer before any state has been committed: %w", StatusProtocolError)
	}

	if e.buffer.inFlight {
		return fmt.Errorf("gud: a buffer transfer is already in flight: %w", StatusBusy)
	}

	rect := Rect{X: uint32(req.X), Y: uint32(req.Y), Width: uint32(req.Width), Height: uint32(req.Height)}
	if !rect.Contains(e.profile.Width, e.profile.Height) {
		return fmt.Errorf("gud: rect %+v does not fit in %dx%d: %w", rect, e.profile.Width, e.profile.Height, StatusInvalidParameter)
	}

	want := BufferLength(e.format, rect.Width, rect.Height)
	if want == 0 || req.Length != want {
		return fmt.Errorf("gud: buffer length %d does not match expected %d for rect %+v: %w",
			req.Length, want, rect, StatusInvalidParameter)
	}

	compressed := req.Compression != 0
	if compressed && e.profile.Compression&CompressionLZ4 == 0 {
		return fmt.Errorf("gud: compression requested but not supported by this profile: %w", StatusInvalidParameter)
	}

	wireLength := req.Length
	if compressed {
		if req.CompressedLength == 0 || req.CompressedLength > req.Length {
			return fmt.Errorf("gud: compressed length %d invalid for %d byte rect: %w",
				req.CompressedLength, req.Length, StatusInvalidParameter)
		}
		wireLength = req.CompressedLength
	}

	if err := e.profile.hooks().SetBuffer(rect); err != nil {
		return err
	}

	e.buffer = pendingBuffer{
		armed:      true,
		rect:       rect,
		compressed: compressed,
		length:     req.Length,
		wireLength: wireLength,
	}

	return nil
}

// beginTransfer marks the armed rectangle as in flight. Callers (the
// transport layer) must call it before reading any bulk OUT data and
// endTransfer once the payload has been consumed, so at most one
// transfer is ever in flight (P7).
func (e *Engine) beginTransfer() error {
	if !e.buffer.armed {
		return fmt.Errorf("gud: no buffer armed for transfer: %w", StatusProtocolError)
	}
	if e.buffer.inFlight {
		return fmt.Errorf("gud: a buffer transfer is already in flight: %w", StatusBusy)
	}

	e.buffer.inFlight = true

	return nil
}

// endTransfer decompresses (if needed) and delivers payload to the
// device's WriteBuffer hook, then clears the in-flight and armed state.
// payload is the raw bulk OUT bytes: compressed, if the armed buffer said
// so, otherwise already the final pixel data.
func (e *Engine) endTransfer(payload []byte) (err error) {
	rect := e.buffer.rect

	defer func() {
		e.buffer = pendingBuffer{}
		// A failed transfer leaves the engine disarmed: the host must
		// resynchronize with a fresh SET_BUFFER rather than have this
		// rect silently re-armed out from under it (§4.4 step 6, §8
		// scenario 6).
		if err == nil && e.profile.HasFlag(FlagFullUpdate) {
			e.ArmAfterCommit()
		}
	}()

	if !e.buffer.compressed {
		if uint32(len(payload)) != e.buffer.length {
			return fmt.Errorf("gud: payload is %d bytes, expected %d: %w", len(payload), e.buffer.length, StatusProtocolError)
		}
		e.profile.hooks().WriteBuffer(rect, payload)
		return nil
	}

	dst := make([]byte, e.buffer.length)
	n, decErr := e.decompressor().Decompress(dst, payload)
	if decErr != nil {
		return fmt.Errorf("gud: lz4 decompress: %v: %w", decErr, StatusError)
	}
	if uint32(n) != e.buffer.length {
		return fmt.Errorf("gud: decompressed %d bytes, expected %d: %w", n, e.buffer.length, StatusError)
	}

	e.profile.hooks().WriteBuffer(rect, dst)

	return nil
}

func (e *Engine) decompressor() Decompressor {
	if e.Decompressor != nil {
		return e.Decompressor
	}
	return lz4Decompressor{}
}

// ArmAfterCommit rearms the engine with a full-frame rectangle covering
// the committed mode, so the next bulk transfer, with no further
// SET_BUFFER at all, is understood to cover the entire display. A
// SET_BUFFER that arrives first replaces this rectangle with its own.
// Devices that advertise
// FlagFullUpdate call this implicitly after every commit and after every
// completed transfer; it is exported so a transport can also call it
// explicitly after recovering from a failed transfer (§ supplemented
// features, grounded on gud-pico driver.c's rearm-on-FULL_UPDATE path).
func (e *Engine) ArmAfterCommit() {
	if !e.committed {
		return
	}

	length := BufferLength(e.format, e.profile.Width, e.profile.Height)

	e.buffer = pendingBuffer{
		armed:      true,
		rect:       Rect{X: 0, Y: 0, Width: e.profile.Width, Height: e.profile.Height},
		length:     length,
		wireLength: length,
	}
}

// PlanChunks splits a total length into a sequence of chunk sizes no
// larger than maxChunk, the pure arithmetic a transport's bulk OUT loop
// needs to size each read (grounded on gud-pico driver.c's
// GUD_EDPT_XFER_MAX_SIZE chunking of gud_driver_bulk_xfer). It never
// allocates a buffer itself; it only tells the caller how many bytes to
// read next.
func PlanChunks(total, maxChunk int) []int {
	if total <= 0 || maxChunk <= 0 {
		return nil
	}

	var chunks []int
	for remaining := total; remaining > 0; {
		n := maxChunk
		if n > remaining {
			n = remaining
		}
		chunks = append(chunks, n)
		remaining -= n
	}

	return chunks
}
