package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syskit/internal/devnode"
)

var (
	devnodeDriver string
	devnodeCount  int
)

// devnodeCmd creates missing device nodes for a loaded driver.
var devnodeCmd = &cobra.Command{
	Use:   "devnode",
	Short: "Create device nodes for a driver registered in /proc/devices",
	Long: `Looks up the driver's character-device major number in /proc/devices
and creates /dev/<driver>0../dev/<driver>N-1 plus the control node
(/dev/<driver>ctl, minor 255). Nodes that already exist are skipped.

Requires root. The default driver is nvidia, whose kernel module does not
create its own nodes on headless systems.

Example:
  syskit devnode --driver nvidia --count 2`,
	RunE: runDevnode,
}

func init() {
	devnodeCmd.Flags().StringVar(&devnodeDriver, "driver", "", "Driver name in /proc/devices (default from config)")
	devnodeCmd.Flags().IntVar(&devnodeCount, "count", 0, "Number of per-device nodes to create (default from config)")
}

func runDevnode(cmd *cobra.Command, args []string) error {
	driver := devnodeDriver
	if driver == "" {
		driver = cfg.Devnode.Driver
	}
	count := devnodeCount
	if count == 0 {
		count = cfg.Devnode.Count
	}

	res, err := devnode.Apply(devnode.Plan{Driver: driver, Count: count})
	if err != nil {
		return err
	}

	for _, path := range res.Created {
		fmt.Printf("created %s\n", path)
	}
	for _, path := range res.Skipped {
		fmt.Printf("exists  %s\n", path)
	}
	return nil
}
