package protocol

import (
	"encoding/binary"
	"fmt"
)

// Command classes and ids (from captured traffic and the openrazer driver)
const (
	ClassMisc = 0x00 // poll rate, serial number
	ClassDpi  = 0x04 // sensitivity
	ClassLed  = 0x0f // extended matrix LED control

	CmdSetPollRate = 0x05
	CmdGetPollRate = 0x85
	CmdGetSerial   = 0x82

	CmdSetDpi = 0x05
	CmdGetDpi = 0x85

	CmdStaticColor   = 0x03
	CmdSetBrightness = 0x04
	CmdGetBrightness = 0x84
)

// DPI bounds enforced by the encoder. The sensor rejects values outside this
// range.
const (
	DpiMin = 100
	DpiMax = 30000
)

// Poll rate wire codes
const (
	pollCode1000 = 0x01
	pollCode500  = 0x02
	pollCode125  = 0x08
)

// staticColorPrefix is the 5-byte run preceding the RGB pair in a static
// color frame. The bytes are opaque protocol invariants copied verbatim from
// observed traffic; only the final 0x01 has a known meaning (static effect
// selector). Do not clean these up.
var staticColorPrefix = [5]byte{0x00, 0x00, 0x00, 0x00, 0x01}

// serialLen is the NUL-padded serial string length in a GetSerial response.
const serialLen = 22

// ErrUnsupportedSetting is returned when a Setting has no catalog entry for
// this device model. The catalog is total over the variants defined below
// and is deliberately not extended for other mice.
var ErrUnsupportedSetting = fmt.Errorf("setting not supported by this device")

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Zone selects an LED zone on the mouse.
type Zone byte

const (
	ZoneScrollWheel Zone = 0x01
	ZoneLogo        Zone = 0x04
)

func (z Zone) String() string {
	switch z {
	case ZoneScrollWheel:
		return "scroll wheel"
	case ZoneLogo:
		return "logo"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(z))
	}
}

// Setting is the closed set of writable device settings. The device's
// command space is fixed and enumerable; new command classes mean new
// variants plus catalog entries, not subclassing.
type Setting interface {
	setting()
}

// Color sets both LED zones to static colors in a single frame.
type Color struct {
	Logo  RGB
	Wheel RGB
}

// DpiStage sets the sensitivity of one stored stage. Index 0 is the active
// stage.
type DpiStage struct {
	Index uint8
	X, Y  uint16
}

// PollRate sets the report rate in Hz. Only 125, 500 and 1000 have catalog
// mappings.
type PollRate struct {
	Hz uint16
}

// Brightness sets the LED level (0-255) of one zone.
type Brightness struct {
	Target Zone
	Level  uint8
}

func (Color) setting()      {}
func (DpiStage) setting()   {}
func (PollRate) setting()   {}
func (Brightness) setting() {}

// Entry describes how one Setting variant goes on the wire.
type Entry struct {
	Class byte
	ID    byte

	// ExpectsResponse is false only for Color: the device gives no useful
	// acknowledgement for static color frames.
	ExpectsResponse bool

	encode func(Setting) []byte
}

// Lookup returns the catalog entry for a Setting, or ErrUnsupportedSetting
// if the variant (or a poll rate outside the enumerated set) has no mapping.
func Lookup(s Setting) (Entry, error) {
	switch v := s.(type) {
	case Color:
		return Entry{
			Class:           ClassLed,
			ID:              CmdStaticColor,
			ExpectsResponse: false,
			encode:          encodeColor,
		}, nil

	case DpiStage:
		return Entry{
			Class:           ClassDpi,
			ID:              CmdSetDpi,
			ExpectsResponse: true,
			encode:          encodeDpiStage,
		}, nil

	case PollRate:
		if _, ok := pollRateCode(v.Hz); !ok {
			return Entry{}, fmt.Errorf("%w: poll rate %d Hz", ErrUnsupportedSetting, v.Hz)
		}
		return Entry{
			Class:           ClassMisc,
			ID:              CmdSetPollRate,
			ExpectsResponse: true,
			encode:          encodePollRate,
		}, nil

	case Brightness:
		return Entry{
			Class:           ClassLed,
			ID:              CmdSetBrightness,
			ExpectsResponse: true,
			encode:          encodeBrightness,
		}, nil

	default:
		return Entry{}, fmt.Errorf("%w: %T", ErrUnsupportedSetting, s)
	}
}

// EncodeFrame looks up a Setting and builds its request frame. Encoding is
// a pure function of the Setting value: the same Setting always yields a
// byte-identical frame.
func EncodeFrame(s Setting) (*Report, Entry, error) {
	entry, err := Lookup(s)
	if err != nil {
		return nil, Entry{}, err
	}

	frame, err := Build(entry.Class, entry.ID, entry.encode(s))
	if err != nil {
		return nil, Entry{}, err
	}
	return frame, entry, nil
}

// encodeColor emits the static color payload: the opaque 5-byte prefix, the
// scroll wheel RGB, then the logo RGB. Wheel comes FIRST; swapping the pair
// sends each color to the wrong zone.
func encodeColor(s Setting) []byte {
	c := s.(Color)
	args := make([]byte, 0, len(staticColorPrefix)+6)
	args = append(args, staticColorPrefix[:]...)
	args = append(args, c.Wheel.R, c.Wheel.G, c.Wheel.B)
	args = append(args, c.Logo.R, c.Logo.G, c.Logo.B)
	return args
}

func encodeDpiStage(s Setting) []byte {
	d := s.(DpiStage)
	args := make([]byte, 5)
	args[0] = d.Index
	binary.BigEndian.PutUint16(args[1:3], clampDpi(d.X))
	binary.BigEndian.PutUint16(args[3:5], clampDpi(d.Y))
	return args
}

func encodePollRate(s Setting) []byte {
	code, _ := pollRateCode(s.(PollRate).Hz)
	return []byte{code}
}

func encodeBrightness(s Setting) []byte {
	b := s.(Brightness)
	return []byte{byte(b.Target), b.Level}
}

func clampDpi(v uint16) uint16 {
	if v < DpiMin {
		return DpiMin
	}
	if v > DpiMax {
		return DpiMax
	}
	return v
}

func pollRateCode(hz uint16) (byte, bool) {
	switch hz {
	case 1000:
		return pollCode1000, true
	case 500:
		return pollCode500, true
	case 125:
		return pollCode125, true
	default:
		return 0, false
	}
}

// PollRateFromCode maps a wire code from a GetPollRate response back to Hz.
func PollRateFromCode(code byte) (uint16, bool) {
	switch code {
	case pollCode1000:
		return 1000, true
	case pollCode500:
		return 500, true
	case pollCode125:
		return 125, true
	default:
		return 0, false
	}
}

// Query frames for the read-back commands. These carry zeroed arguments
// sized to the response layout; the device fills them in the GET_REPORT
// reply.

// QueryDpi builds a request for the active DPI stage. The response mirrors
// the DpiStage layout: arguments[1:3] X and [3:5] Y, big-endian.
func QueryDpi() (*Report, error) {
	return Build(ClassDpi, CmdGetDpi, make([]byte, 5))
}

// QueryPollRate builds a request for the current poll rate code
// (arguments[0] of the response).
func QueryPollRate() (*Report, error) {
	return Build(ClassMisc, CmdGetPollRate, make([]byte, 1))
}

// QueryBrightness builds a request for one zone's LED level (arguments[1]
// of the response).
func QueryBrightness(zone Zone) (*Report, error) {
	return Build(ClassLed, CmdGetBrightness, []byte{byte(zone), 0x00})
}

// QuerySerial builds a request for the device serial number. The response
// arguments hold a NUL-padded ASCII string.
func QuerySerial() (*Report, error) {
	return Build(ClassMisc, CmdGetSerial, make([]byte, serialLen))
}

// SerialFromResponse extracts the serial string from a GetSerial response.
func SerialFromResponse(r *Report) string {
	raw := r.Arguments[:serialLen]
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}
