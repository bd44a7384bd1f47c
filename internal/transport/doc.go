// Package transport owns the open USB device handle and performs ordered
// control-transfer I/O against the DeathAdder V2.
//
// A Session wraps one exclusively-owned libusb device handle (via
// github.com/google/gousb). Writes are HID SET_REPORT control transfers
// (bmRequestType 0x21, bRequest 0x09, wValue 0x0300, wIndex 0, 90 bytes);
// reads are the matching GET_REPORT transfers (0xA1/0x01). Every write is
// followed by a short receiver wait, without which the device fails
// subsequent reads.
//
// Operations on one session execute strictly one at a time, in the order
// issued; the session never starts a second transfer before the prior one
// completes. There is no automatic retry and no mid-transfer cancellation: a
// timeout surfaces as a transfer error and retry policy belongs to the
// caller.
//
// Acquisition is scoped. Open the session, run the operation sequence, and
// Close on every exit path so the interface claim is never leaked:
//
//	session, err := transport.Open()
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
package transport
