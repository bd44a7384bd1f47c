package discovery

import (
	"strings"
	"testing"
)

func TestDeviceString(t *testing.T) {
	d := &Device{
		Vendor:      VendorRazer,
		Product:     ProductDeathAdderV2,
		Bus:         1,
		Address:     7,
		Description: "Razer USA, Ltd DeathAdder V2",
		Supported:   true,
	}

	s := d.String()
	if !strings.Contains(s, "1532:0084") {
		t.Errorf("String() = %q, want vid:pid in output", s)
	}
	if !strings.Contains(s, "[supported]") {
		t.Errorf("String() = %q, want supported marker", s)
	}

	other := &Device{Vendor: 0x046d, Product: 0xc52b}
	if strings.Contains(other.String(), "[supported]") {
		t.Error("unsupported device marked as supported")
	}
}
