package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"github.com/gpoulios/deathadderv2/internal/logging"
	"github.com/gpoulios/deathadderv2/internal/protocol"
)

// USB identifiers of the one supported device.
const (
	VendorID  = 0x1532 // Razer
	ProductID = 0x0084 // DeathAdder V2
)

// Control transfer parameters. These are bit-exact requirements; the device
// ignores transfers that do not match.
const (
	reqSetReport = 0x09 // HID SET_REPORT
	reqGetReport = 0x01 // HID GET_REPORT

	// wValue: report type (0x03 = feature) in the high byte, report id 0 in
	// the low byte.
	reportValue = 0x0300

	// wIndex: the control interface number on this device.
	controlInterface = 0x0000
)

const (
	// transferTimeout bounds a single control transfer.
	transferTimeout = 1 * time.Second

	// receiverWait is the pause after every SET_REPORT. Sending a
	// GET_REPORT sooner makes the device fail the read; 10ms is the
	// shortest reliable interval found (1ms gave varying results).
	receiverWait = 10 * time.Millisecond
)

var (
	// ErrDeviceNotFound means no device with the supported VID/PID is
	// present. Fatal; surfaced to the caller.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrPermissionDenied means the device is present but its control
	// interface could not be opened or claimed. Usually a host
	// configuration issue (udev rules on Linux, missing WinUSB/libusb
	// driver on Windows), not something this package can remediate.
	ErrPermissionDenied = errors.New("cannot claim device interface")

	// ErrTransferFailed means a single control transfer did not complete.
	// The caller decides whether to retry the whole operation; the session
	// never retries on its own.
	ErrTransferFailed = errors.New("control transfer failed")

	// ErrChecksumMismatch means a response frame failed checksum
	// verification. The write side already went through, so the setting is
	// treated as applied; this is a data-integrity warning.
	ErrChecksumMismatch = errors.New("response checksum mismatch")
)

// TransferError wraps a failed control transfer with the operation that
// issued it. It matches ErrTransferFailed under errors.Is.
type TransferError struct {
	Op  string // "set report" or "get report"
	Err error  // underlying libusb status
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrTransferFailed }

// controlDevice is the slice of *gousb.Device the session needs. Tests
// substitute a scripted fake.
type controlDevice interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	Close() error
}

// Session owns the open control interface of one physical device. At most
// one live session exists at a time; transfers on a session are strictly
// serialized, in the order issued. A session does not outlive the sequence
// of operations that requested it: acquire with Open, release with Close on
// every exit path.
type Session struct {
	mu     sync.Mutex
	dev    controlDevice
	ctx    *gousb.Context
	log    *zap.Logger
	closed bool
}

// Open locates the device by its fixed vendor/product identifiers and opens
// its control interface. Returns ErrDeviceNotFound if absent and
// ErrPermissionDenied if the interface cannot be opened or claimed.
func Open() (*Session, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(VendorID), gousb.ID(ProductID))
	if err != nil {
		_ = ctx.Close()
		if errors.Is(err, gousb.ErrorAccess) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("open device %04x:%04x: %w", VendorID, ProductID, err)
	}
	if dev == nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("%w (%04x:%04x)", ErrDeviceNotFound, VendorID, ProductID)
	}

	dev.ControlTimeout = transferTimeout

	// On Linux the kernel HID driver owns the interface; let libusb detach
	// and reattach it around our transfers. Platforms without detach
	// support report ErrorNotSupported, which is fine there.
	if err := dev.SetAutoDetach(true); err != nil && !errors.Is(err, gousb.ErrorNotSupported) {
		_ = dev.Close()
		_ = ctx.Close()
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	logging.Debug("Device opened",
		zap.String("vid_pid", fmt.Sprintf("%04x:%04x", VendorID, ProductID)),
	)

	return &Session{dev: dev, ctx: ctx, log: logging.GetLogger()}, nil
}

// newSession wraps an already-open control device. Used by tests.
func newSession(dev controlDevice) *Session {
	return &Session{dev: dev, log: logging.GetLogger()}
}

// Close releases the device handle and the USB context. Safe to call more
// than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.dev.Close()
	if s.ctx != nil {
		if cerr := s.ctx.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Write issues a single SET_REPORT control transfer carrying the frame.
func (s *Session) Write(r *protocol.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(r)
}

func (s *Session) writeLocked(r *protocol.Report) error {
	buf := r.Pack()
	logging.LogControlTransfer("set report", reqSetReport, reportValue, controlInterface, buf)

	n, err := s.dev.Control(
		gousb.ControlOut|gousb.ControlClass|gousb.ControlInterface,
		reqSetReport, reportValue, controlInterface, buf)
	if err != nil {
		return &TransferError{Op: "set report", Err: err}
	}
	if n != protocol.ReportSize {
		return &TransferError{
			Op:  "set report",
			Err: fmt.Errorf("short write (%d of %d bytes)", n, protocol.ReportSize),
		}
	}

	time.Sleep(receiverWait)
	return nil
}

// Read issues a GET_REPORT control transfer and decodes the response,
// verifying its checksum.
func (s *Session) Read() (*protocol.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *Session) readLocked() (*protocol.Report, error) {
	buf := make([]byte, protocol.ReportSize)

	n, err := s.dev.Control(
		gousb.ControlIn|gousb.ControlClass|gousb.ControlInterface,
		reqGetReport, reportValue, controlInterface, buf)
	if err != nil {
		return nil, &TransferError{Op: "get report", Err: err}
	}
	if n != protocol.ReportSize {
		return nil, &TransferError{
			Op:  "get report",
			Err: fmt.Errorf("short read (%d of %d bytes)", n, protocol.ReportSize),
		}
	}

	logging.LogControlTransfer("get report", reqGetReport, reportValue, controlInterface, buf)

	if !protocol.Verify(buf) {
		return nil, fmt.Errorf("%w: stored 0x%02x, computed 0x%02x",
			ErrChecksumMismatch, buf[88], protocol.Checksum(buf))
	}
	return protocol.Unpack(buf)
}

// Apply writes the frame and, when a response is expected, follows with a
// read whose result is discarded. Absence of a transport error is success;
// full response validation beyond the checksum is the caller's business.
// Both transfers happen under one lock so no other operation interleaves.
func (s *Session) Apply(r *protocol.Report, expectsResponse bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(r); err != nil {
		return err
	}
	if !expectsResponse {
		return nil
	}

	resp, err := s.readLocked()
	if err != nil {
		return err
	}
	logging.Debug("Response discarded", zap.String("frame", resp.String()))
	return nil
}

// Roundtrip writes a query frame and returns the decoded response. Used by
// the read-back commands (DPI, poll rate, brightness, serial).
func (s *Session) Roundtrip(r *protocol.Report) (*protocol.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(r); err != nil {
		return nil, err
	}
	return s.readLocked()
}
