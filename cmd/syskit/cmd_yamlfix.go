package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"syskit/internal/yamlutil"
)

var (
	yamlfixInPlace  bool
	yamlfixOut      string
	yamlfixLongForm bool
	yamlfixIndent   int
)

// yamlfixCmd reformats YAML, normalizing CloudFormation intrinsics.
var yamlfixCmd = &cobra.Command{
	Use:   "yamlfix FILE",
	Short: "Parse and rewrite a YAML file, normalizing CloudFormation tags",
	Long: `Round-trips a YAML file through a full parse. CloudFormation short
tags (!Ref, !GetAtt, !Sub, ...) survive the round trip; --long-form
rewrites them as their Fn::* map equivalents instead.

Output goes to stdout unless --in-place or --out is given.

Examples:
  syskit yamlfix template.yaml
  syskit yamlfix --long-form --out template.long.yaml template.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runYamlfix,
}

func init() {
	yamlfixCmd.Flags().BoolVarP(&yamlfixInPlace, "in-place", "i", false, "Rewrite the input file")
	yamlfixCmd.Flags().StringVar(&yamlfixOut, "out", "", "Write output to this path")
	yamlfixCmd.Flags().BoolVar(&yamlfixLongForm, "long-form", false, "Expand short tags to Fn::* maps")
	yamlfixCmd.Flags().IntVar(&yamlfixIndent, "indent", 0, "Indent width (default 2)")
}

func runYamlfix(cmd *cobra.Command, args []string) error {
	if yamlfixInPlace && yamlfixOut != "" {
		return fmt.Errorf("--in-place and --out are mutually exclusive")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := yamlutil.Clean(data, yamlutil.Options{
		LongForm: yamlfixLongForm,
		Indent:   yamlfixIndent,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	switch {
	case yamlfixInPlace:
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, out, info.Mode().Perm())
	case yamlfixOut != "":
		return os.WriteFile(yamlfixOut, out, 0o644)
	default:
		_, err := os.Stdout.Write(out)
		return err
	}
}
