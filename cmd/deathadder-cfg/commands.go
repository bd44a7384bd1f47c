package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gpoulios/deathadderv2/internal/config"
	"github.com/gpoulios/deathadderv2/internal/discovery"
	"github.com/gpoulios/deathadderv2/internal/dispatch"
	"github.com/gpoulios/deathadderv2/internal/protocol"
	"github.com/gpoulios/deathadderv2/internal/transport"
)

// Command flags
var (
	fadeSteps int
	dpiStage  uint8
	briZone   string
	noSave    bool
	scanAll   bool
)

func init() {
	rootCmd.AddCommand(colorCmd)
	rootCmd.AddCommand(dpiCmd)
	rootCmd.AddCommand(pollRateCmd)
	rootCmd.AddCommand(brightnessCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scanCmd)

	colorCmd.Flags().IntVar(&fadeSteps, "fade", 1, "Repeat the color frame N times (fade emulation)")
	colorCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not persist the applied colors")
	dpiCmd.Flags().Uint8Var(&dpiStage, "stage", 0, "DPI stage index (0 = active stage)")
	brightnessCmd.Flags().StringVar(&briZone, "zone", "logo", "LED zone (logo, wheel)")
}

// withSession opens the device session, runs fn, and releases the session on
// every exit path so the interface claim is never leaked.
func withSession(fn func(*transport.Session) error) error {
	session, err := transport.Open()
	if err != nil {
		return decorateOpenError(err)
	}
	defer func() { _ = session.Close() }()

	return fn(session)
}

// decorateOpenError adds a remediation hint for host configuration issues.
func decorateOpenError(err error) error {
	if errors.Is(err, transport.ErrPermissionDenied) {
		return fmt.Errorf("%w\n\nThe device is present but could not be claimed."+
			"\nOn Linux, add a udev rule for 1532:0084 or run as root."+
			"\nOn Windows, install a WinUSB/libusb driver for the control interface (e.g. via Zadig)", err)
	}
	return err
}

// colorCmd sets the static logo/wheel colors
var colorCmd = &cobra.Command{
	Use:   "color <logo> [wheel]",
	Short: "Set static LED colors",
	Long: `Set the static color of the logo and scroll wheel LEDs.

Colors are hex strings in the form [0x/#]RGB[h] or [0x/#]RRGGBB[h]. With a
single argument both zones get the same color. The applied colors are saved
and re-applied when the tool runs without arguments.

Note: the device does not retain these colors across power loss, and some
wheel/logo color pairs produce identical frames under the protocol checksum
and therefore look the same. That is a property of the hardware protocol.`,
	Example: `  # Both zones white
  deathadder-cfg color ffffff

  # Red logo, blue wheel
  deathadder-cfg color "#ff0000" 0x0000ff

  # Short form, with a 10-frame fade
  deathadder-cfg color f0f --fade 10`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runColor,
}

func runColor(cmd *cobra.Command, args []string) error {
	logo, err := parseHexColor(args[0])
	if err != nil {
		return fmt.Errorf("logo color: %w", err)
	}

	wheel := logo
	sameColor := true
	if len(args) == 2 {
		sameColor = false
		if wheel, err = parseHexColor(args[1]); err != nil {
			return fmt.Errorf("wheel color: %w", err)
		}
	}

	setting := protocol.Color{Logo: logo, Wheel: wheel}
	err = withSession(func(s *transport.Session) error {
		if fadeSteps > 1 {
			return dispatch.Fade(s, setting, fadeSteps)
		}
		return dispatch.Apply(s, setting)
	})
	if err != nil {
		return err
	}

	fmt.Printf("Applied logo=%s wheel=%s\n", logo, wheel)

	if !noSave {
		if err := saveColors(logo, wheel, sameColor); err != nil {
			// The device change went through; a persistence failure is
			// only worth a warning.
			fmt.Printf("Warning: failed to save colors: %v\n", err)
		}
	}
	return nil
}

// dpiCmd sets a DPI stage
var dpiCmd = &cobra.Command{
	Use:   "dpi <x> [y]",
	Short: "Set DPI",
	Long: `Set the DPI of one stage (default: the active stage).

With a single argument the X and Y axes get the same value. Valid range is
100-30000; values outside it are clamped. The device acknowledges the change
and the response is verified at the transport level.`,
	Example: `  # 1600 DPI on both axes
  deathadder-cfg dpi 1600

  # Asymmetric axes
  deathadder-cfg dpi 1600 800

  # Program stored stage 2
  deathadder-cfg dpi 3200 --stage 2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDpi,
}

func runDpi(cmd *cobra.Command, args []string) error {
	x, err := parseUint16(args[0])
	if err != nil {
		return fmt.Errorf("dpi x: %w", err)
	}

	y := x
	if len(args) == 2 {
		if y, err = parseUint16(args[1]); err != nil {
			return fmt.Errorf("dpi y: %w", err)
		}
	}

	err = withSession(func(s *transport.Session) error {
		return dispatch.Apply(s, protocol.DpiStage{Index: dpiStage, X: x, Y: y})
	})
	if err != nil {
		return err
	}

	fmt.Printf("Applied DPI %dx%d (stage %d)\n", x, y, dpiStage)
	return nil
}

// pollRateCmd sets the polling rate
var pollRateCmd = &cobra.Command{
	Use:     "pollrate <125|500|1000>",
	Short:   "Set the polling rate",
	Long:    `Set the USB polling rate in Hz. The device supports 125, 500, and 1000.`,
	Example: `  deathadder-cfg pollrate 1000`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPollRate,
}

func runPollRate(cmd *cobra.Command, args []string) error {
	hz, err := parseUint16(args[0])
	if err != nil {
		return fmt.Errorf("poll rate: %w", err)
	}

	err = withSession(func(s *transport.Session) error {
		return dispatch.Apply(s, protocol.PollRate{Hz: hz})
	})
	if err != nil {
		return err
	}

	fmt.Printf("Applied polling rate %d Hz\n", hz)
	return nil
}

// brightnessCmd sets per-zone LED brightness
var brightnessCmd = &cobra.Command{
	Use:   "brightness <0-255>",
	Short: "Set LED brightness",
	Long:  `Set the LED brightness (0-255) of one zone.`,
	Example: `  # Full logo brightness
  deathadder-cfg brightness 255

  # Dim the scroll wheel
  deathadder-cfg brightness 64 --zone wheel`,
	Args: cobra.ExactArgs(1),
	RunE: runBrightness,
}

func runBrightness(cmd *cobra.Command, args []string) error {
	level, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return fmt.Errorf("brightness level: %w", err)
	}

	zone, err := parseZone(briZone)
	if err != nil {
		return err
	}

	err = withSession(func(s *transport.Session) error {
		return dispatch.Apply(s, protocol.Brightness{Target: zone, Level: uint8(level)})
	})
	if err != nil {
		return err
	}

	fmt.Printf("Applied %s brightness %d\n", zone, level)
	return nil
}

// statusCmd reads back the current device state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current device state",
	Long: `Read back serial number, DPI, polling rate, and per-zone brightness
from the device.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withSession(func(s *transport.Session) error {
		serial, err := dispatch.Serial(s)
		if err != nil {
			return fmt.Errorf("read serial: %w", err)
		}

		x, y, err := dispatch.CurrentDpi(s)
		if err != nil {
			return fmt.Errorf("read dpi: %w", err)
		}

		hz, err := dispatch.CurrentPollRate(s)
		if err != nil {
			return fmt.Errorf("read poll rate: %w", err)
		}

		logoBri, err := dispatch.CurrentBrightness(s, protocol.ZoneLogo)
		if err != nil {
			return fmt.Errorf("read logo brightness: %w", err)
		}

		wheelBri, err := dispatch.CurrentBrightness(s, protocol.ZoneScrollWheel)
		if err != nil {
			return fmt.Errorf("read wheel brightness: %w", err)
		}

		fmt.Printf("DeathAdder V2 (serial %s)\n", serial)
		fmt.Printf("  DPI:              %dx%d\n", x, y)
		fmt.Printf("  Polling rate:     %d Hz\n", hz)
		fmt.Printf("  Logo brightness:  %d\n", logoBri)
		fmt.Printf("  Wheel brightness: %d\n", wheelBri)
		return nil
	})
}

// scanCmd lists attached USB devices
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List attached Razer USB devices",
	Long: `Enumerate USB devices and list Razer peripherals, marking the one
model this tool supports. Enumeration only reads descriptors; nothing is
opened or claimed.`,
	Example: `  # Razer devices only
  deathadder-cfg scan

  # Everything on the bus
  deathadder-cfg scan --all`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "List all USB devices, not just Razer")
}

func runScan(cmd *cobra.Command, args []string) error {
	vendor := uint16(discovery.VendorRazer)
	if scanAll {
		vendor = 0
	}

	devices, err := discovery.ScanForDevices(vendor)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No matching devices found.")
		return nil
	}

	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device)
	}
	return nil
}

// applySavedColors loads the persisted colors and applies them. This is the
// default action when the tool runs without a subcommand.
func applySavedColors() error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load saved settings: %w", err)
	}

	logo, err := parseHexColor(settings.LogoColor)
	if err != nil {
		return fmt.Errorf("saved logo color: %w", err)
	}

	wheel := logo
	if !settings.SameColor {
		if wheel, err = parseHexColor(settings.WheelColor); err != nil {
			return fmt.Errorf("saved wheel color: %w", err)
		}
	}

	err = withSession(func(s *transport.Session) error {
		return dispatch.Apply(s, protocol.Color{Logo: logo, Wheel: wheel})
	})
	if err != nil {
		return err
	}

	fmt.Printf("Re-applied saved colors: logo=%s wheel=%s\n", logo, wheel)
	return nil
}

func saveColors(logo, wheel protocol.RGB, sameColor bool) error {
	settings, err := config.Load()
	if err != nil {
		settings = config.NewSettings()
	}
	settings.SameColor = sameColor
	settings.LogoColor = logo.String()
	settings.WheelColor = wheel.String()
	return settings.Save()
}

// parseHexColor parses "[0x/#]RGB[h]" and "[0x/#]RRGGBB[h]" color strings.
func parseHexColor(input string) (protocol.RGB, error) {
	s := strings.TrimPrefix(input, "0x")
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimSuffix(s, "h")

	switch len(s) {
	case 3:
		// Short form: each digit doubles ("f0f" -> "ff00ff")
		var b strings.Builder
		for _, c := range s {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		s = b.String()
	case 6:
		// Full form
	default:
		return protocol.RGB{}, fmt.Errorf("excluding pre/suffixes, color %q must be 3 or 6 hex digits", input)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return protocol.RGB{}, fmt.Errorf("invalid hex color %q: %w", input, err)
	}

	return protocol.RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

func parseZone(name string) (protocol.Zone, error) {
	switch strings.ToLower(name) {
	case "logo":
		return protocol.ZoneLogo, nil
	case "wheel", "scroll", "scrollwheel":
		return protocol.ZoneScrollWheel, nil
	default:
		return 0, fmt.Errorf("unknown zone %q (valid: logo, wheel)", name)
	}
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
