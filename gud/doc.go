// https://github.com/notro/gud
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package gud implements the device-side protocol engine for GUD, the
// "Generic USB Display" gadget protocol. It speaks for a single,
// self-contained display device: a USB host enumerates the device over a
// vendor-specific interface, queries its capabilities (geometry, pixel
// formats, connector, properties, EDID), configures a mode, and then
// streams framebuffer rectangles as bulk OUT transfers, optionally
// LZ4-compressed.
//
// This package is the protocol engine only. It has no notion of USB
// endpoints, interrupts, or hardware registers — those are external
// collaborators consumed through the Hooks interface and through the
// caller-supplied buffers passed to Engine.Get and Engine.Set. See package
// transport for a thin adapter that drives an Engine from a real (or
// fake) USB device stack.
package gud
