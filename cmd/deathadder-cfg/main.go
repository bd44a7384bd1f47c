// Deathadder-cfg is a control utility for the Razer DeathAdder V2 mouse.
//
// It sets static LED colors, DPI stages, polling rate, and per-zone
// brightness by speaking the mouse's reverse-engineered vendor HID protocol
// over USB control transfers. No vendor software is required, only a usable
// libusb backend (udev access on Linux, a WinUSB/libusb driver on Windows).
//
// Usage:
//
//	deathadder-cfg [command] [flags]
//
// Running without arguments re-applies the last saved colors.
// See 'deathadder-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gpoulios/deathadderv2/internal/logging"
	"github.com/gpoulios/deathadderv2/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deathadder-cfg",
	Short: "Razer DeathAdder V2 control utility",
	Long: `A standalone utility for the Razer DeathAdder V2 mouse.

Sets static LED colors, DPI, polling rate, and per-zone brightness over USB,
and persists the last applied colors so they survive the mouse losing power.

If no command is specified, the last saved colors are re-applied.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: re-apply persisted colors when no subcommand
		// is provided
		return applySavedColors()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("deathadder-cfg %s\n", version.Full())
	},
}
