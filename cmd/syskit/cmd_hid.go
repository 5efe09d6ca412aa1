package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"syskit/internal/hid"
)

var (
	hidVendor    string
	hidProduct   string
	hidName      string
	hidHandler   string
	hidEventNode bool
)

// hidCmd lists and matches input devices.
var hidCmd = &cobra.Command{
	Use:   "hid",
	Short: "List input devices from /proc/bus/input/devices, with matching",
	Long: `Parses the kernel input device listing and prints devices matching
the given criteria. Without criteria every device is printed.

Examples:
  syskit hid                           # list everything
  syskit hid --vendor 046d --name receiver
  syskit hid --handler mouse --event-node`,
	RunE: runHid,
}

func init() {
	hidCmd.Flags().StringVar(&hidVendor, "vendor", "", "Vendor ID (hex)")
	hidCmd.Flags().StringVar(&hidProduct, "product", "", "Product ID (hex)")
	hidCmd.Flags().StringVar(&hidName, "name", "", "Case-insensitive name substring")
	hidCmd.Flags().StringVar(&hidHandler, "handler", "", "Handler prefix (mouse, kbd, event, js)")
	hidCmd.Flags().BoolVar(&hidEventNode, "event-node", false, "Print only the first match's /dev/input/eventN path")
}

func runHid(cmd *cobra.Command, args []string) error {
	var filter hid.Filter
	if hidVendor != "" {
		v, err := strconv.ParseUint(hidVendor, 16, 16)
		if err != nil {
			return fmt.Errorf("bad --vendor %q: %w", hidVendor, err)
		}
		filter.SetVendor(uint16(v))
	}
	if hidProduct != "" {
		p, err := strconv.ParseUint(hidProduct, 16, 16)
		if err != nil {
			return fmt.Errorf("bad --product %q: %w", hidProduct, err)
		}
		filter.SetProduct(uint16(p))
	}
	filter.Name = hidName
	filter.Handler = hidHandler

	devices, err := hid.List()
	if err != nil {
		return err
	}

	matches := hid.Select(devices, &filter)
	if len(matches) == 0 {
		return fmt.Errorf("no matching input devices")
	}

	if hidEventNode {
		node := matches[0].EventNode()
		if node == "" {
			return fmt.Errorf("first match %q has no event handler", matches[0].Name)
		}
		fmt.Println(node)
		return nil
	}

	for i := range matches {
		fmt.Println(matches[i].String())
	}
	return nil
}
