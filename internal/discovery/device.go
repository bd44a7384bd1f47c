package discovery

import (
	"fmt"
)

// Device represents a USB device seen during enumeration.
type Device struct {
	// Vendor is the 16-bit USB vendor id (0x1532 for Razer)
	Vendor uint16

	// Product is the 16-bit USB product id (0x0084 for the DeathAdder V2)
	Product uint16

	// Bus and Address locate the device on the host
	Bus     int
	Address int

	// Description is a human-readable vendor/product description resolved
	// from the USB ID database (may be empty for unknown ids)
	Description string

	// Supported is true when this is the one model the codec drives
	Supported bool
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	note := ""
	if d.Supported {
		note = " [supported]"
	}
	return fmt.Sprintf("%04x:%04x (bus %d, addr %d) %s%s",
		d.Vendor, d.Product, d.Bus, d.Address, d.Description, note)
}
