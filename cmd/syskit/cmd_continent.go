package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"syskit/internal/geo"
)

var continentList bool

// continentCmd maps country codes to continents.
var continentCmd = &cobra.Command{
	Use:   "continent [CODE...]",
	Short: "Map ISO-3166 alpha-2 country codes to continents",
	Long: `Prints the continent for each given country code. Codes are
case-insensitive. Unknown codes are reported on stderr and the command
exits nonzero after processing every argument.

Examples:
  syskit continent de jp br
  syskit continent --list`,
	RunE: runContinent,
}

func init() {
	continentCmd.Flags().BoolVar(&continentList, "list", false, "List every known code with its continent")
}

func runContinent(cmd *cobra.Command, args []string) error {
	if continentList {
		for _, code := range geo.Codes() {
			cont, _ := geo.ContinentOf(code)
			fmt.Printf("%s\t%s\n", code, cont)
		}
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("no country codes given (or use --list)")
	}

	failed := 0
	for _, code := range args {
		cont, err := geo.ContinentOf(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed++
			continue
		}
		fmt.Printf("%s\t%s\n", code, cont)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d codes not recognized", failed, len(args))
	}
	return nil
}
