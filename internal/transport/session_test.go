package transport

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/gpoulios/deathadderv2/internal/protocol"
)

// fakeDevice is a scripted control-transfer endpoint standing in for
// *gousb.Device.
type fakeDevice struct {
	// Recorded OUT transfers
	writes     [][]byte
	writeTypes []uint8
	writeReqs  []uint8
	writeVals  []uint16
	writeIdxs  []uint16

	// Scripted behavior
	writeErr error
	writeN   int // bytes "written" per OUT transfer; -1 means len(data)
	readResp []byte
	readErr  error
	reads    int

	closes int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{writeN: -1}
}

func (f *fakeDevice) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	const dirIn = 0x80

	if rType&dirIn == 0 {
		f.writes = append(f.writes, append([]byte(nil), data...))
		f.writeTypes = append(f.writeTypes, rType)
		f.writeReqs = append(f.writeReqs, request)
		f.writeVals = append(f.writeVals, val)
		f.writeIdxs = append(f.writeIdxs, idx)

		if f.writeErr != nil {
			return 0, f.writeErr
		}
		if f.writeN >= 0 {
			return f.writeN, nil
		}
		return len(data), nil
	}

	f.reads++
	if f.readErr != nil {
		return 0, f.readErr
	}
	n := copy(data, f.readResp)
	return n, nil
}

func (f *fakeDevice) Close() error {
	f.closes++
	return nil
}

// validResponse builds a response frame with a correct checksum.
func validResponse(t *testing.T, class, id byte, args []byte) []byte {
	t.Helper()
	r, err := protocol.Build(class, id, args)
	if err != nil {
		t.Fatalf("building response frame: %v", err)
	}
	r.Status = 0x02 // device "successful" status; excluded from the checksum
	return r.Pack()
}

func TestWriteTransferParameters(t *testing.T) {
	dev := newFakeDevice()
	s := newSession(dev)

	frame, _, err := protocol.EncodeFrame(protocol.PollRate{Hz: 1000})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	if err := s.Write(frame); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if len(dev.writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(dev.writes))
	}
	// Host-to-device, class, interface: 0x21; SET_REPORT; feature report 0;
	// control interface 0; full 90-byte frame. Bit-exact or the device
	// ignores the transfer.
	if dev.writeTypes[0] != 0x21 {
		t.Errorf("bmRequestType = 0x%02x, want 0x21", dev.writeTypes[0])
	}
	if dev.writeReqs[0] != 0x09 {
		t.Errorf("bRequest = 0x%02x, want 0x09", dev.writeReqs[0])
	}
	if dev.writeVals[0] != 0x0300 {
		t.Errorf("wValue = 0x%04x, want 0x0300", dev.writeVals[0])
	}
	if dev.writeIdxs[0] != 0x0000 {
		t.Errorf("wIndex = 0x%04x, want 0x0000", dev.writeIdxs[0])
	}
	if !bytes.Equal(dev.writes[0], frame.Pack()) {
		t.Errorf("payload differs from frame bytes")
	}
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeDevice)
	}{
		{
			name:  "transfer error",
			setup: func(d *fakeDevice) { d.writeErr = errors.New("pipe stall") },
		},
		{
			name:  "short write",
			setup: func(d *fakeDevice) { d.writeN = 30 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			tt.setup(dev)
			s := newSession(dev)

			frame, _, _ := protocol.EncodeFrame(protocol.PollRate{Hz: 500})
			err := s.Write(frame)
			if !errors.Is(err, ErrTransferFailed) {
				t.Errorf("error = %v, want ErrTransferFailed", err)
			}
		})
	}
}

func TestReadVerifiesChecksum(t *testing.T) {
	resp := validResponse(t, 0x00, 0x85, []byte{0x02})

	dev := newFakeDevice()
	dev.readResp = resp
	s := newSession(dev)

	r, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if r.Arguments[0] != 0x02 {
		t.Errorf("arguments[0] = 0x%02x, want 0x02", r.Arguments[0])
	}

	// Corrupt one checksummed byte: the stored checksum no longer matches.
	bad := append([]byte(nil), resp...)
	bad[10] ^= 0xff
	dev = newFakeDevice()
	dev.readResp = bad
	s = newSession(dev)

	if _, err := s.Read(); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("error = %v, want ErrChecksumMismatch", err)
	}
}

func TestReadErrors(t *testing.T) {
	dev := newFakeDevice()
	dev.readErr = errors.New("timeout")
	s := newSession(dev)

	if _, err := s.Read(); !errors.Is(err, ErrTransferFailed) {
		t.Errorf("error = %v, want ErrTransferFailed", err)
	}

	// Short read
	dev = newFakeDevice()
	dev.readResp = make([]byte, 10)
	s = newSession(dev)

	if _, err := s.Read(); !errors.Is(err, ErrTransferFailed) {
		t.Errorf("error = %v, want ErrTransferFailed", err)
	}
}

func TestApply(t *testing.T) {
	t.Run("without response", func(t *testing.T) {
		dev := newFakeDevice()
		s := newSession(dev)

		frame, entry, _ := protocol.EncodeFrame(protocol.Color{})
		if err := s.Apply(frame, entry.ExpectsResponse); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}

		if len(dev.writes) != 1 {
			t.Errorf("got %d writes, want 1", len(dev.writes))
		}
		if dev.reads != 0 {
			t.Errorf("got %d reads, want 0 (color expects no response)", dev.reads)
		}
	})

	t.Run("with response", func(t *testing.T) {
		dev := newFakeDevice()
		dev.readResp = validResponse(t, 0x00, 0x05, []byte{0x02})
		s := newSession(dev)

		frame, entry, _ := protocol.EncodeFrame(protocol.PollRate{Hz: 500})
		if err := s.Apply(frame, entry.ExpectsResponse); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}

		if len(dev.writes) != 1 || dev.reads != 1 {
			t.Errorf("got %d writes / %d reads, want 1 / 1", len(dev.writes), dev.reads)
		}
	})

	t.Run("write failure skips read", func(t *testing.T) {
		dev := newFakeDevice()
		dev.writeErr = fmt.Errorf("no device")
		s := newSession(dev)

		frame, _, _ := protocol.EncodeFrame(protocol.PollRate{Hz: 500})
		if err := s.Apply(frame, true); !errors.Is(err, ErrTransferFailed) {
			t.Fatalf("error = %v, want ErrTransferFailed", err)
		}
		if dev.reads != 0 {
			t.Errorf("read issued after failed write")
		}
	})
}

func TestRoundtrip(t *testing.T) {
	dev := newFakeDevice()
	dev.readResp = validResponse(t, 0x04, 0x85, []byte{0x00, 0x06, 0x40, 0x03, 0x20})
	s := newSession(dev)

	req, err := protocol.QueryDpi()
	if err != nil {
		t.Fatalf("QueryDpi() error = %v", err)
	}

	resp, err := s.Roundtrip(req)
	if err != nil {
		t.Fatalf("Roundtrip() error = %v", err)
	}
	if resp.Arguments[1] != 0x06 || resp.Arguments[2] != 0x40 {
		t.Errorf("response arguments = % x, want 00 06 40 03 20", resp.Arguments[:5])
	}
	if len(dev.writes) != 1 || dev.reads != 1 {
		t.Errorf("got %d writes / %d reads, want 1 / 1", len(dev.writes), dev.reads)
	}
}

func TestCloseIdempotent(t *testing.T) {
	dev := newFakeDevice()
	s := newSession(dev)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if dev.closes != 1 {
		t.Errorf("device closed %d times, want 1", dev.closes)
	}
}
