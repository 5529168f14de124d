/*
Command tilerender renders Mapbox vector tiles with MapCSS stylesheets.

	tilerender render -z 14 -s 512 -o tile.png style.mapcss 14_8803_5374.mvt
	tilerender info 14_8803_5374.mvt
	tilerender check style.mapcss

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/cobra"
)

var traceLevel string

var rootCmd = &cobra.Command{
	Use:           "tilerender",
	Short:         "Render vector tiles with MapCSS stylesheets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// all keys share one Go logger on stderr
		tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
		tracing.Select("vtile").SetTraceLevel(tracing.TraceLevelFromString(traceLevel))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&traceLevel, "trace", "t", "error", "Trace level: error, info or debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
