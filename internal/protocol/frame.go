package protocol

import (
	"encoding/binary"
	"fmt"
)

// Report frame constants (from captured SET_REPORT traffic)
const (
	// ReportSize is the fixed size of every request and response frame.
	ReportSize = 90

	// MaxArguments is the size of the argument region (offsets 8-87).
	MaxArguments = 80

	// TransactionID is the request tag at offset 1. The device accepts this
	// fixed sentinel for every command this codec issues; it is echoed back
	// in responses and excluded from the checksum.
	TransactionID = 0x1f

	// ProtocolType at offset 4. Always zero in every observed frame.
	ProtocolType = 0x00

	// Checksum range: bytes 2..87 inclusive. Offsets 0-1 (status and
	// transaction id) and 88-89 (checksum and reserved) are excluded.
	// Getting this range wrong is silently rejected or, worse, misapplied
	// by the device.
	checksumFrom = 2
	checksumTo   = 88
)

// ErrArgumentsTooLong is returned by Build when a caller supplies more than
// MaxArguments bytes. A defined Setting never encodes to more than 22 bytes,
// so seeing this error means a catalog encoder is broken.
var ErrArgumentsTooLong = fmt.Errorf("arguments exceed %d bytes", MaxArguments)

// Report is the 90-byte frame exchanged with the device.
//
// Wire layout (offsets in bytes):
//
//	[0]     status             0x00 on write; command status on read
//	[1]     transaction_id     0x1f (TransactionID)
//	[2-3]   remaining_packets  big-endian, 0 for single-frame commands
//	[4]     protocol_type      0x00
//	[5]     data_size          meaningful bytes in the argument region
//	[6]     command_class      functional group (LED, DPI, poll rate, ...)
//	[7]     command_id         operation within the class
//	[8-87]  arguments          zero-padded beyond data_size
//	[88]    checksum           XOR of bytes 2..87
//	[89]    reserved           0x00
type Report struct {
	Status           byte
	TransactionID    byte
	RemainingPackets uint16
	ProtocolType     byte
	DataSize         byte
	CommandClass     byte
	CommandID        byte
	Arguments        [MaxArguments]byte
	Checksum         byte
	Reserved         byte
}

// Build constructs a request frame for the given command with the checksum
// already computed. Arguments beyond len(args) stay zero; nonzero trailing
// bytes are part of what makes some color pairs behave unpredictably on the
// real device, so the buffer is always zero-filled first.
func Build(commandClass, commandID byte, args []byte) (*Report, error) {
	if len(args) > MaxArguments {
		return nil, fmt.Errorf("command %02x/%02x: %w (got %d)",
			commandClass, commandID, ErrArgumentsTooLong, len(args))
	}

	r := &Report{
		TransactionID: TransactionID,
		ProtocolType:  ProtocolType,
		DataSize:      byte(len(args)),
		CommandClass:  commandClass,
		CommandID:     commandID,
	}
	copy(r.Arguments[:], args)
	r.Checksum = Checksum(r.Pack())
	return r, nil
}

// Pack serializes the frame to its 90-byte wire form. remaining_packets is
// written big-endian; the stored checksum byte is emitted as-is (Build keeps
// it current, callers mutating fields directly must recompute it).
func (r *Report) Pack() []byte {
	buf := make([]byte, ReportSize)
	buf[0] = r.Status
	buf[1] = r.TransactionID
	binary.BigEndian.PutUint16(buf[2:4], r.RemainingPackets)
	buf[4] = r.ProtocolType
	buf[5] = r.DataSize
	buf[6] = r.CommandClass
	buf[7] = r.CommandID
	copy(buf[8:88], r.Arguments[:])
	buf[88] = r.Checksum
	buf[89] = r.Reserved
	return buf
}

// Unpack decodes a 90-byte buffer into a Report. It does not verify the
// checksum; response handling decides whether a mismatch is fatal.
func Unpack(buf []byte) (*Report, error) {
	if len(buf) != ReportSize {
		return nil, fmt.Errorf("frame size %d, want %d", len(buf), ReportSize)
	}

	r := &Report{
		Status:           buf[0],
		TransactionID:    buf[1],
		RemainingPackets: binary.BigEndian.Uint16(buf[2:4]),
		ProtocolType:     buf[4],
		DataSize:         buf[5],
		CommandClass:     buf[6],
		CommandID:        buf[7],
		Checksum:         buf[88],
		Reserved:         buf[89],
	}
	copy(r.Arguments[:], buf[8:88])
	return r, nil
}

// Checksum XOR-reduces bytes 2..87 inclusive of a packed frame. Pure
// function; buffers shorter than the range contribute only the bytes they
// have (callers always pass full 90-byte frames in practice).
func Checksum(buf []byte) byte {
	end := checksumTo
	if len(buf) < end {
		end = len(buf)
	}
	if end < checksumFrom {
		return 0
	}

	var sum byte
	for _, b := range buf[checksumFrom:end] {
		sum ^= b
	}
	return sum
}

// Verify recomputes the checksum of a packed frame and compares it against
// the stored byte at offset 88. Used when decoding device responses.
func Verify(buf []byte) bool {
	if len(buf) != ReportSize {
		return false
	}
	return Checksum(buf) == buf[88]
}

// String returns a debug representation of the frame header.
func (r *Report) String() string {
	return fmt.Sprintf("Report{status=0x%02x, cmd=0x%02x/0x%02x, data_size=%d, checksum=0x%02x}",
		r.Status, r.CommandClass, r.CommandID, r.DataSize, r.Checksum)
}
