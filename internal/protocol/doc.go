// Package protocol implements the DeathAdder V2 vendor HID report protocol.
//
// This package handles construction, validation, and decoding of the binary
// report frames used by the Razer DeathAdder V2 mouse. The protocol is
// undocumented; every constant here was reverse-engineered from captured USB
// control-transfer traffic and cross-checked against the openrazer driver.
//
// # Frame Format
//
// Every request and response is a fixed 90-byte frame:
//   - Status byte: 0x00 on write, command status on read
//   - Transaction id: fixed sentinel 0x1f
//   - Remaining packets: 2 bytes (big-endian), 0 for single-frame commands
//   - Protocol type: 0x00
//   - Data size: meaningful bytes in the argument region
//   - Command class + command id: 1 byte each
//   - Arguments: 80 bytes, zero-padded beyond data size
//   - Checksum: XOR of bytes 2..87 inclusive
//   - Reserved: 0x00
//
// A frame whose checksum misses the exact 2..87 range is ignored or
// misapplied by the device. Certain wheel/logo color pairs produce colliding
// checksums and behave identically on real hardware; that is a property of
// the protocol, not a defect in this encoder.
//
// # Command Catalog
//
// The Setting type enumerates the writable settings (static color, DPI
// stage, poll rate, per-zone brightness) as a closed set of variants, each
// mapped to its (command class, command id, argument layout,
// response-expected) tuple. Query builders cover the read-back commands
// (DPI, poll rate, brightness, serial number).
//
// # Usage Example
//
//	frame, entry, err := protocol.EncodeFrame(protocol.Color{
//	    Logo:  protocol.RGB{R: 0xff, G: 0xff, B: 0xff},
//	    Wheel: protocol.RGB{R: 0xff, G: 0xff, B: 0xff},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = session.Apply(frame, entry.ExpectsResponse)
//
// # Thread Safety
//
// All construction and decoding functions are stateless and safe for
// concurrent use. Encoding the same Setting twice yields byte-identical
// frames.
package protocol
