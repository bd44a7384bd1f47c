// Package dispatch translates high-level Settings into report frames and
// drives them through a transport session. It is the only entry point the
// CLI layer uses to talk to the device.
//
// The dispatcher is stateless: it retains nothing between calls beyond the
// session it is given, and encoding the same Setting twice produces
// byte-identical frames.
package dispatch

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"github.com/gpoulios/deathadderv2/internal/logging"
	"github.com/gpoulios/deathadderv2/internal/protocol"
)

// Session is the transport surface the dispatcher needs. Satisfied by
// *transport.Session; tests substitute a scripted fake.
type Session interface {
	// Write issues a single SET_REPORT transfer.
	Write(r *protocol.Report) error

	// Apply writes the frame and, when expectsResponse is set, follows with
	// a read whose result is discarded after checksum verification.
	Apply(r *protocol.Report, expectsResponse bool) error

	// Roundtrip writes a query frame and returns the decoded response.
	Roundtrip(r *protocol.Report) (*protocol.Report, error)
}

// Apply encodes one Setting and drives it through the session. The first
// error aborts; nothing is retried here (retry policy belongs to the
// caller).
func Apply(s Session, setting protocol.Setting) error {
	frame, entry, err := protocol.EncodeFrame(setting)
	if err != nil {
		return err
	}

	logging.Debug("Applying setting",
		zap.String("setting", fmt.Sprintf("%T", setting)),
		zap.String("frame", frame.String()),
	)

	return s.Apply(frame, entry.ExpectsResponse)
}

// Fade emulates a fade towards a color by issuing the identical color frame
// `steps` times in immediate succession, with no intervening reads. The
// frames repeat verbatim: remaining_packets stays 0 on every one, matching
// how the device is driven during interactive color previews. A failed
// write aborts the remaining frames.
func Fade(s Session, color protocol.Color, steps int) error {
	if steps < 1 {
		steps = 1
	}

	frame, _, err := protocol.EncodeFrame(color)
	if err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if err := s.Write(frame); err != nil {
			return fmt.Errorf("fade write %d of %d: %w", i+1, steps, err)
		}
	}
	return nil
}

// CurrentDpi reads back the active DPI stage.
func CurrentDpi(s Session) (x, y uint16, err error) {
	req, err := protocol.QueryDpi()
	if err != nil {
		return 0, 0, err
	}

	resp, err := s.Roundtrip(req)
	if err != nil {
		return 0, 0, err
	}

	// Response mirrors the set layout: [0] stage index, [1:3] X, [3:5] Y.
	x = binary.BigEndian.Uint16(resp.Arguments[1:3])
	y = binary.BigEndian.Uint16(resp.Arguments[3:5])
	return x, y, nil
}

// CurrentPollRate reads back the poll rate in Hz.
func CurrentPollRate(s Session) (uint16, error) {
	req, err := protocol.QueryPollRate()
	if err != nil {
		return 0, err
	}

	resp, err := s.Roundtrip(req)
	if err != nil {
		return 0, err
	}

	hz, ok := protocol.PollRateFromCode(resp.Arguments[0])
	if !ok {
		return 0, fmt.Errorf("unrecognized poll rate code 0x%02x", resp.Arguments[0])
	}
	return hz, nil
}

// CurrentBrightness reads back the LED level (0-255) of one zone.
func CurrentBrightness(s Session, zone protocol.Zone) (uint8, error) {
	req, err := protocol.QueryBrightness(zone)
	if err != nil {
		return 0, err
	}

	resp, err := s.Roundtrip(req)
	if err != nil {
		return 0, err
	}
	return resp.Arguments[1], nil
}

// Serial reads back the device serial number.
func Serial(s Session) (string, error) {
	req, err := protocol.QuerySerial()
	if err != nil {
		return "", err
	}

	resp, err := s.Roundtrip(req)
	if err != nil {
		return "", err
	}
	return protocol.SerialFromResponse(resp), nil
}
