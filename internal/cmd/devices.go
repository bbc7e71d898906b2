package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/karalabe/hid"

	"github.com/Originalimoc/compatctl/legiongo"
)

// Devices enumerates the HID devices visible to the process. Useful to check
// whether the controller's vendor interface is present at all before blaming
// the translator.
type Devices struct {
	All bool `help:"List every HID device, not just recognized ones" default:"false"`
}

func (d *Devices) Run(logger *slog.Logger) error {
	if !hid.Supported() {
		return errors.New("HID enumeration is not supported on this platform/build")
	}

	infos := hid.Enumerate(0, 0)
	if len(infos) == 0 {
		return errors.New("no HID devices visible (missing permissions?)")
	}

	matched := 0
	for _, info := range infos {
		layout, known := legiongo.VariantFor(info.VendorID, info.ProductID)
		if known {
			matched++
		} else if !d.All {
			continue
		}

		line := fmt.Sprintf("%04x:%04x %s %s", info.VendorID, info.ProductID, info.Manufacturer, info.Product)
		if known {
			fmt.Printf("%s  [variant: %s]\n", line, layout.Name)
		} else {
			fmt.Println(line)
		}
	}

	if matched == 0 {
		logger.Warn("no recognized controller interface found", "variants", legiongo.VariantNames())
		if !d.All {
			fmt.Println("no recognized devices; rerun with --all to list everything")
		}
	}
	return nil
}
