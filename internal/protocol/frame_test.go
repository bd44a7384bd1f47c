package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// refWhiteFrame is the captured 90-byte frame for logo=white, wheel=white.
// Preamble, the opaque argument prefix, and the 0x06 checksum at offset 88
// are all documented protocol invariants; the encoder must reproduce this
// byte sequence exactly.
func refWhiteFrame() []byte {
	frame := make([]byte, ReportSize)
	copy(frame, []byte{
		0x00, 0x1f, 0x00, 0x00, 0x00, 0x0b, 0x0f, 0x03, // header
		0x00, 0x00, 0x00, 0x00, 0x01, // static color prefix
		0xff, 0xff, 0xff, // wheel RGB
		0xff, 0xff, 0xff, // logo RGB
	})
	frame[88] = 0x06
	return frame
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		class   byte
		id      byte
		args    []byte
		wantErr bool
		verify  func(t *testing.T, r *Report)
	}{
		{
			name:  "empty arguments",
			class: 0x00,
			id:    0x05,
			args:  nil,
			verify: func(t *testing.T, r *Report) {
				if r.DataSize != 0 {
					t.Errorf("data_size = %d, want 0", r.DataSize)
				}
				if r.TransactionID != TransactionID {
					t.Errorf("transaction_id = 0x%02x, want 0x%02x", r.TransactionID, TransactionID)
				}
				if r.RemainingPackets != 0 {
					t.Errorf("remaining_packets = %d, want 0", r.RemainingPackets)
				}
			},
		},
		{
			name:  "arguments copied and zero padded",
			class: 0x0f,
			id:    0x04,
			args:  []byte{0x04, 0xff},
			verify: func(t *testing.T, r *Report) {
				if r.DataSize != 2 {
					t.Errorf("data_size = %d, want 2", r.DataSize)
				}
				if r.Arguments[0] != 0x04 || r.Arguments[1] != 0xff {
					t.Errorf("arguments = % x, want 04 ff", r.Arguments[:2])
				}
				// Trailing bytes must stay zero: nonzero tails are what
				// makes some frames behave unpredictably on the device.
				for i := 2; i < MaxArguments; i++ {
					if r.Arguments[i] != 0 {
						t.Fatalf("arguments[%d] = 0x%02x, want 0x00", i, r.Arguments[i])
					}
				}
			},
		},
		{
			name:  "maximum argument size",
			class: 0x0f,
			id:    0x03,
			args:  make([]byte, MaxArguments),
			verify: func(t *testing.T, r *Report) {
				if r.DataSize != MaxArguments {
					t.Errorf("data_size = %d, want %d", r.DataSize, MaxArguments)
				}
			},
		},
		{
			name:    "arguments too long",
			class:   0x0f,
			id:      0x03,
			args:    make([]byte, MaxArguments+1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Build(tt.class, tt.id, tt.args)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrArgumentsTooLong) {
					t.Fatalf("error = %v, want ErrArgumentsTooLong", err)
				}
				return
			}

			if len(r.Pack()) != ReportSize {
				t.Errorf("packed size = %d, want %d", len(r.Pack()), ReportSize)
			}
			if tt.verify != nil {
				tt.verify(t, r)
			}
		})
	}
}

// Build followed by verification succeeds for any argument payload up to
// the region size.
func TestBuildChecksumAlwaysVerifies(t *testing.T) {
	for size := 0; size <= MaxArguments; size++ {
		args := make([]byte, size)
		for i := range args {
			args[i] = byte(i*7 + size) // arbitrary nonzero pattern
		}

		r, err := Build(0x04, 0x05, args)
		if err != nil {
			t.Fatalf("Build() with %d args: %v", size, err)
		}
		if !Verify(r.Pack()) {
			t.Fatalf("frame with %d args failed checksum verification", size)
		}
	}
}

func TestChecksumRange(t *testing.T) {
	// Checksum is the XOR of bytes 2..87 inclusive. Bytes 0, 1, 88, and 89
	// must not contribute.
	frame := refWhiteFrame()
	want := Checksum(frame)

	mutated := append([]byte(nil), frame...)
	mutated[0] = 0xaa
	mutated[1] = 0xbb
	mutated[88] = 0xcc
	mutated[89] = 0xdd
	if got := Checksum(mutated); got != want {
		t.Errorf("checksum changed when excluded bytes changed: got 0x%02x, want 0x%02x", got, want)
	}

	// Every byte inside the range must contribute.
	for i := 2; i < 88; i++ {
		mutated := append([]byte(nil), frame...)
		mutated[i] ^= 0x5a
		if got := Checksum(mutated); got == want {
			t.Errorf("checksum did not change when byte %d changed", i)
		}
	}
}

func TestVerify(t *testing.T) {
	frame := refWhiteFrame()
	if !Verify(frame) {
		t.Fatal("reference frame failed verification")
	}

	bad := append([]byte(nil), frame...)
	bad[88] ^= 0x01
	if Verify(bad) {
		t.Error("corrupted checksum passed verification")
	}

	if Verify(frame[:89]) {
		t.Error("short buffer passed verification")
	}
}

func TestUnpack(t *testing.T) {
	frame := refWhiteFrame()

	r, err := Unpack(frame)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	if r.TransactionID != 0x1f {
		t.Errorf("transaction_id = 0x%02x, want 0x1f", r.TransactionID)
	}
	if r.CommandClass != ClassLed || r.CommandID != CmdStaticColor {
		t.Errorf("cmd = 0x%02x/0x%02x, want 0x0f/0x03", r.CommandClass, r.CommandID)
	}
	if r.DataSize != 0x0b {
		t.Errorf("data_size = %d, want 11", r.DataSize)
	}
	if r.Checksum != 0x06 {
		t.Errorf("checksum = 0x%02x, want 0x06", r.Checksum)
	}

	// Round trip back to bytes
	if !bytes.Equal(r.Pack(), frame) {
		t.Errorf("Pack() after Unpack() differs:\ngot  % x\nwant % x", r.Pack(), frame)
	}

	if _, err := Unpack(frame[:50]); err == nil {
		t.Error("Unpack() accepted a short buffer")
	}
}
