package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"syskit/internal/posixday"
)

var (
	posixdayInPlace bool
	posixdayMin     int
	posixdayMax     int
)

// posixdayCmd converts POSIX day counts to ISO dates.
var posixdayCmd = &cobra.Command{
	Use:   "posixday N...",
	Short: "Convert POSIX day counts to ISO dates",
	Long: `Converts days-since-epoch counts to yyyy-mm-dd dates. Arguments that
look like dates are converted the other way.

Examples:
  syskit posixday 19800
  syskit posixday 1976-09-26
  syskit posixday rewrite schedule.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPosixday,
}

// posixdayRewriteCmd bulk-rewrites day literals inside files.
var posixdayRewriteCmd = &cobra.Command{
	Use:   "rewrite FILE...",
	Short: "Replace day-count literals in files with quoted ISO dates",
	Long: `Replaces every standalone integer within the configured day range by
its double-quoted ISO date. Output goes to FILE_converted.ext unless
--in-place is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPosixdayRewrite,
}

func init() {
	posixdayRewriteCmd.Flags().BoolVarP(&posixdayInPlace, "in-place", "i", false, "Rewrite files in place")
	posixdayRewriteCmd.Flags().IntVar(&posixdayMin, "min", 0, "Smallest integer treated as a day count (default from config)")
	posixdayRewriteCmd.Flags().IntVar(&posixdayMax, "max", 0, "Largest integer treated as a day count (default from config)")
	posixdayCmd.AddCommand(posixdayRewriteCmd)
}

func runPosixday(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			fmt.Printf("%d\t%s\n", n, posixday.ToISO(n))
			continue
		}
		day, err := posixday.FromISO(arg)
		if err != nil {
			return fmt.Errorf("%q is neither a day count nor a yyyy-mm-dd date", arg)
		}
		fmt.Printf("%s\t%d\n", arg, day)
	}
	return nil
}

func runPosixdayRewrite(cmd *cobra.Command, args []string) error {
	r := &posixday.Rewriter{Min: posixdayMin, Max: posixdayMax}
	if r.Min == 0 {
		r.Min = cfg.Convert.PosixDayMin
	}
	if r.Max == 0 {
		r.Max = cfg.Convert.PosixDayMax
	}

	for _, path := range args {
		out, err := r.RewriteFile(path, posixdayInPlace)
		if err != nil {
			return err
		}
		fmt.Println(out)
	}
	return nil
}
