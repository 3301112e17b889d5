// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gud

import "fmt"

// pendingState is the single-slot "checked but not yet committed" state
// described by §3/C6. SET_STATE_CHECK populates it; SET_STATE_COMMIT
// applies it and leaves it in place. A fresh Engine starts with checked == false, so COMMIT
// without a prior successful CHECK is rejected (P4).
type pendingState struct {
	checked bool
	req     StateReq
}

// checkState validates req against the profile and, if it passes, latches
// it as the pending state (§4.5). Validation order matches the reference
// implementation: structural decode already happened in DecodeStateReq,
// so this only checks semantic constraints.
func (e *Engine) checkState(req StateReq) error {
	// A CHECK that fails partway must leave the pending state unusable
	// (§3 invariant, P4): invalidate it up front, and only mark it good
	// again once every validation below has passed.
	e.pending.checked = false

	// §4.5's check order: size/count, mode, connector, format, properties.
	if len(req.Properties) > MaxProperties {
		return fmt.Errorf("gud: %d properties exceeds capacity: %w", len(req.Properties), StatusInvalidParameter)
	}

	if req.Mode.HDisplay != uint16(e.profile.Width) || req.Mode.VDisplay != uint16(e.profile.Height) {
		return fmt.Errorf("gud: mode %dx%d does not match display %dx%d: %w",
			req.Mode.HDisplay, req.Mode.VDisplay, e.profile.Width, e.profile.Height, StatusInvalidParameter)
	}

	if req.Connector != 0 {
		return fmt.Errorf("gud: connector %d out of range: %w", req.Connector, StatusInvalidParameter)
	}

	if !e.profile.SupportsFormat(req.Format) {
		return fmt.Errorf("gud: format %#x not supported: %w", req.Format, StatusInvalidParameter)
	}

	for _, p := range req.Properties {
		// Unknown property ids are tolerated (§9 resolved open question):
		// the reference driver ignores properties it doesn't recognize
		// rather than failing the whole CHECK.
		if p.ID == PropertyBacklightBrightness && p.Value > 100 {
			return fmt.Errorf("gud: backlight brightness %d out of range [0,100]: %w", p.Value, StatusInvalidParameter)
		}
	}

	e.pending.checked = true
	e.pending.req = req
	e.format = req.Format

	return nil
}

// commitState applies the pending state, invokes the device's commit
// hook, and (when FlagFullUpdate is set) arms a whole-frame rectangle so
// the very next bulk transfer covers the entire display without a
// SET_BUFFER (§ supplemented features, grounded on gud_pico driver.c's re-arm after
// SET_STATE_COMMIT for FULL_UPDATE devices).
func (e *Engine) commitState() error {
	if !e.pending.checked {
		return fmt.Errorf("gud: commit without a prior successful check: %w", StatusInvalidParameter)
	}

	req := e.pending.req

	// Recompute derived geometry before invoking the commit hook (§4.5).
	e.pitch = e.profile.Width * BytesPerPixel(req.Format)

	// CHECK_OK is deliberately left set on success (§4.5): repeat commits
	// of the same checked state are permitted and idempotent until the
	// next CHECK overwrites or invalidates it.
	if err := e.profile.hooks().StateCommit(req, len(req.Properties)); err != nil {
		return err
	}

	e.committed = true

	if e.profile.HasFlag(FlagFullUpdate) {
		e.ArmAfterCommit()
	}

	return nil
}
