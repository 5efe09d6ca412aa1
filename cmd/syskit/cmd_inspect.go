package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"syskit/internal/inspect"
)

var (
	inspectFind   string
	inspectSchema bool
)

// inspectCmd introspects structured data.
var inspectCmd = &cobra.Command{
	Use:   "inspect [FILE]",
	Short: "Introspect a YAML/JSON document or the active configuration",
	Long: `With a file argument, parses the document and prints an inferred
schema for it; --find walks the parsed tree and prints the dot path of
every node equal to the given value. Without arguments the active
configuration is reported instead.

Examples:
  syskit inspect data.yaml
  syskit inspect --find 19800 data.yaml
  syskit inspect`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFind, "find", "", "Print paths of nodes equal to this value")
	inspectCmd.Flags().BoolVar(&inspectSchema, "schema", false, "Print the inferred schema even when searching")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Print(inspect.NewReport(cfg).Format())
		return nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	if inspectFind != "" {
		// The flag arrives as a string, so values compare by string form.
		matches := inspect.DeepSearch(doc, inspectFind, inspect.SearchOptions{
			StringifyTarget: true,
		})
		if len(matches) == 0 {
			return fmt.Errorf("no node equals %q", inspectFind)
		}
		for _, m := range matches {
			fmt.Printf("%s\t%v\n", m.Path, m.Value)
		}
		if !inspectSchema {
			return nil
		}
	}

	out, err := yaml.Marshal(inspect.Schema(doc))
	if err != nil {
		return fmt.Errorf("render schema: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
