package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syskit/internal/sysexec"
	"syskit/internal/x11"
)

var (
	winidTitle string
	winidClass string
	winidFirst bool
	winidHex   bool
)

// winidCmd prints X11 window IDs matching a title or class.
var winidCmd = &cobra.Command{
	Use:   "winid",
	Short: "Look up X11 window IDs by title or class",
	Long: `Searches the X server for windows matching a title regular expression
or a window class and prints their IDs, one per line.

Examples:
  syskit winid --title 'Mozilla Firefox'
  syskit winid --class mpv --first --hex`,
	RunE: runWinid,
}

func init() {
	winidCmd.Flags().StringVar(&winidTitle, "title", "", "Match window titles against this regexp")
	winidCmd.Flags().StringVar(&winidClass, "class", "", "Match this window class")
	winidCmd.Flags().BoolVar(&winidFirst, "first", false, "Print only the first match")
	winidCmd.Flags().BoolVar(&winidHex, "hex", false, "Print IDs in hexadecimal")
}

func runWinid(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	ids, err := x11.Lookup(ctx, &sysexec.Runner{}, x11.Query{
		Title: winidTitle,
		Class: winidClass,
	})
	if err != nil {
		return err
	}
	if winidFirst {
		ids = ids[:1]
	}
	for _, id := range ids {
		fmt.Println(x11.Format(id, winidHex))
	}
	return nil
}
