package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syskit/internal/kernels"
	"syskit/internal/sysexec"
)

var (
	kernelsKeep    int
	kernelsDryRun  bool
	kernelsBootDir string
)

// kernelsCmd purges old kernel packages.
var kernelsCmd = &cobra.Command{
	Use:   "kernels",
	Short: "Remove old kernel packages, keeping the running and newest ones",
	Long: `Enumerates installed kernels from /boot, keeps the running kernel and
the newest --keep versions, and purges the rest through the system package
manager (apt-get or dnf).

The running kernel is never removed, whatever its age.

Examples:
  syskit kernels --dry-run
  syskit kernels --keep 3`,
	RunE: runKernels,
}

func init() {
	kernelsCmd.Flags().IntVar(&kernelsKeep, "keep", 0, "Newest kernels to retain (default from config)")
	kernelsCmd.Flags().BoolVar(&kernelsDryRun, "dry-run", false, "Print the plan without removing anything")
	kernelsCmd.Flags().StringVar(&kernelsBootDir, "boot-dir", "/boot", "Directory holding vmlinuz images")
}

func runKernels(cmd *cobra.Command, args []string) error {
	keep := kernelsKeep
	if keep == 0 {
		keep = cfg.Kernels.Keep
	}

	ctx, stop := signalContext()
	defer stop()

	cleaner := &kernels.Cleaner{
		Runner:  &sysexec.Runner{DryRun: kernelsDryRun},
		BootDir: kernelsBootDir,
		Keep:    keep,
	}
	plan, err := cleaner.Clean(ctx)
	if err != nil {
		return err
	}
	if kernelsDryRun {
		fmt.Print(plan.Describe())
	}
	return nil
}
