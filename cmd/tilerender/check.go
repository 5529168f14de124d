package main

import (
	"fmt"
	"slices"

	"github.com/npillmayer/vtile/mapcss"
	"github.com/spf13/cobra"
)

var listProperties bool

func init() {
	checkCmd.Flags().BoolVar(&listProperties, "properties", false, "List the known properties and their defaults")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [stylesheet...]",
	Short: "Parse stylesheets and print their rules",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listProperties {
			for _, name := range mapcss.KnownProperties() {
				fmt.Printf("%-20s %s\n", name, mapcss.DefaultValue(name))
			}
		}
		if len(args) == 0 {
			if listProperties {
				return nil
			}
			return fmt.Errorf("no stylesheet given")
		}
		ss := mapcss.NewStylesheet()
		for _, path := range args {
			if err := ss.LoadFile(path); err != nil {
				return err
			}
		}
		fmt.Printf("%d rules\n", ss.Len())
		fmt.Print(ss.Tree().String())
		for _, w := range lint(ss.Rules()) {
			fmt.Println("warning:", w)
		}
		return nil
	},
}

// lint reports declarations of properties the renderer does not know
// and rules repeating the selector of an earlier rule.
func lint(rules []*mapcss.Rule) []string {
	known := mapcss.KnownProperties()
	var warnings []string
	for i, r := range rules {
		for _, d := range r.Declarations {
			if _, found := slices.BinarySearch(known, d.Property); !found {
				warnings = append(warnings, fmt.Sprintf("rule #%d: unknown property '%s'", r.Source, d.Property))
			}
		}
		for _, earlier := range rules[:i] {
			if r.Selector.Equals(&earlier.Selector) {
				warnings = append(warnings, fmt.Sprintf("rule #%d: same selector as rule #%d: %s",
					r.Source, earlier.Source, r.Selector.String()))
				break
			}
		}
	}
	return warnings
}
