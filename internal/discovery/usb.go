package discovery

import (
	"fmt"

	"github.com/google/gousb"
	"github.com/google/gousb/usbid"
	"go.uber.org/zap"

	"github.com/gpoulios/deathadderv2/internal/logging"
)

// VendorRazer is the USB vendor id all Razer peripherals enumerate under.
const VendorRazer = 0x1532

// ProductDeathAdderV2 is the product id of the one supported model.
const ProductDeathAdderV2 = 0x0084

// ScanForDevices enumerates USB devices of the given vendor without opening
// any of them. Pass 0 to list every device on the host.
func ScanForDevices(vendor uint16) ([]*Device, error) {
	ctx := gousb.NewContext()
	defer func() { _ = ctx.Close() }()

	var found []*Device

	// The filter visits every connected device; returning false means no
	// device is actually opened, we only read descriptors.
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if vendor != 0 && uint16(desc.Vendor) != vendor {
			return false
		}

		dev := &Device{
			Vendor:      uint16(desc.Vendor),
			Product:     uint16(desc.Product),
			Bus:         desc.Bus,
			Address:     desc.Address,
			Description: usbid.Describe(desc),
			Supported: uint16(desc.Vendor) == VendorRazer &&
				uint16(desc.Product) == ProductDeathAdderV2,
		}
		found = append(found, dev)

		logging.Debug("Enumerated device",
			zap.String("vid_pid", fmt.Sprintf("%04x:%04x", dev.Vendor, dev.Product)),
			zap.Int("bus", dev.Bus),
			zap.Int("address", dev.Address),
		)
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("enumeration failed: %w", err)
	}

	return found, nil
}
