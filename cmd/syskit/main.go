package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"syskit/internal/config"
	"syskit/internal/logging"
)

var (
	// Global flags
	verbose bool
	cfgPath string
	logFile string

	// Loaded configuration, available to every subcommand.
	cfg *config.Config
)

// rootCmd is the syskit entry point.
var rootCmd = &cobra.Command{
	Use:   "syskit",
	Short: "syskit - a small toolbox of system administration commands",
	Long: `syskit bundles a handful of administrative chores into one binary:

  mirror     watch directory trees and keep backup mirrors current
  devnode    create missing device nodes for a loaded driver
  hid        list and match input devices
  kernels    purge old kernel packages
  winid      look up X11 window IDs
  continent  map country codes to continents
  csv2db     import CSV files into SQLite
  yamlfix    normalize YAML (CloudFormation tags included)
  jsonfix    repair and normalize malformed JSON
  posixday   convert POSIX day counts to ISO dates
  inspect    introspect structured data

Each command is independent; they share only configuration and logging.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		if cfg.Logging.Verbose {
			verbose = true
		}
		if logFile == "" {
			logFile = cfg.Logging.File
		}
		if err := logging.Init(logging.Options{Verbose: verbose, LogFile: logFile}); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}
		logging.Get(logging.CategoryBoot).Debugf("config loaded, verbose=%v", verbose)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also append JSON logs to this file")

	rootCmd.AddCommand(mirrorCmd)
	rootCmd.AddCommand(devnodeCmd)
	rootCmd.AddCommand(hidCmd)
	rootCmd.AddCommand(kernelsCmd)
	rootCmd.AddCommand(winidCmd)
	rootCmd.AddCommand(continentCmd)
	rootCmd.AddCommand(csv2dbCmd)
	rootCmd.AddCommand(yamlfixCmd)
	rootCmd.AddCommand(jsonfixCmd)
	rootCmd.AddCommand(posixdayCmd)
	rootCmd.AddCommand(inspectCmd)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
// Long-running commands stop cleanly on the first signal.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
