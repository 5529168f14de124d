package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/npillmayer/vtile/tile"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
)

var showTags bool

func init() {
	infoCmd.Flags().BoolVar(&showTags, "tags", false, "List the tags of every feature")
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info [tile.mvt]",
	Short: "List the layers and features of a tile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tile.OpenMVT(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d layers\n", args[0], t.LayerCount())
		tree, err := describe(t, showTags)
		fmt.Print(tree.String())
		return err
	},
}

// describe builds a tree of layers and features. Malformed features are
// listed with their error; a fatal error ends the tree and is returned.
func describe(t tile.Tile, tags bool) (treeprint.Tree, error) {
	tree := treeprint.New()
	for layer, err := range t.Layers() {
		if err != nil {
			tree.AddMetaNode("error", err.Error())
			return tree, err
		}
		meta := fmt.Sprintf("extent %d", layer.Extent())
		if v, ok := layer.(interface{ Version() int }); ok {
			meta = fmt.Sprintf("v%d, %s", v.Version(), meta)
		}
		branch := tree.AddMetaBranch(meta, layer.Name())
		for f, err := range layer.Features() {
			if err != nil {
				branch.AddMetaNode("skipped", err.Error())
				continue
			}
			meta := fmt.Sprintf("%s/%d", f.Type, f.Points())
			if !tags || len(f.Tags) == 0 {
				branch.AddMetaNode(meta, f.ID)
				continue
			}
			fb := branch.AddMetaBranch(meta, f.ID)
			for _, k := range slices.Sorted(maps.Keys(f.Tags)) {
				fb.AddNode(k + "=" + strings.TrimSpace(f.Tags[k]))
			}
		}
	}
	return tree, nil
}
