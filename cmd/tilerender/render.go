package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/npillmayer/vtile/mapcss"
	"github.com/npillmayer/vtile/render"
	"github.com/npillmayer/vtile/tile"
	"github.com/spf13/cobra"
)

var (
	zoom     int
	size     int
	output   string
	bgColor  string
	stepSize int
)

func init() {
	renderCmd.Flags().IntVarP(&zoom, "zoom", "z", 14, "Zoom level used for selector matching")
	renderCmd.Flags().IntVarP(&size, "size", "s", render.DefaultTileSize, "Size of the output image in pixels")
	renderCmd.Flags().StringVarP(&output, "output", "o", "tile.png", "Output PNG file")
	renderCmd.Flags().StringVar(&bgColor, "background", "", "Background color, painted below the canvas rule")
	renderCmd.Flags().IntVar(&stepSize, "step", render.DefaultStep, "Features per render step")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [stylesheet] [tile.mvt]",
	Short: "Render a tile to a PNG image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ss := mapcss.NewStylesheet()
		if err := ss.LoadFile(args[0]); err != nil {
			return err
		}
		t, err := tile.OpenMVT(args[1])
		if err != nil {
			return err
		}
		r := render.New(
			render.WithTileSize(size),
			render.WithZoomLevel(zoom),
			render.WithStepFeatures(stepSize),
			render.WithDiagnostics(func(err error) {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}),
		)
		surface := r.NewSurface()
		defer func() { _ = surface.Close() }()
		if bgColor != "" {
			c, err := mapcss.ParseColor(bgColor)
			if err != nil {
				return fmt.Errorf("background: %w", err)
			}
			surface.Clear(c)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		res := r.Render(ctx, surface, t, ss, render.ConfiguredZoom)
		var cause error
		switch m := res.Match(); m {
		case m.Cancelled():
			return fmt.Errorf("interrupted after %d features", res.Stats.Features)
		case m.Failure(&cause):
			return fmt.Errorf("rendering %s: %w", args[1], cause)
		}
		if err := surface.SavePNG(output); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Printf("%s: %dpx at zoom %d, %d layers, %d features, %d draws, %d skipped, %d unstyled\n",
			output, r.TileSize(), r.ZoomLevel(), res.Stats.Layers, res.Stats.Features,
			res.Stats.Draws, res.Stats.Skipped, res.Stats.Unstyled)
		return nil
	},
}
