package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/pagetree/internal/modules/pages/tree"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the page tree",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		forest, err := a.Services.Tree.Forest(cmd.Context(), nil, treeDepth)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		tree.Walk(forest, func(b *tree.Branch, depth int) {
			n := b.Node
			fmt.Fprintf(out, "%s%s  %q  [%s, %s]  %s\n", strings.Repeat("  ", depth), n.Slug, n.Title, n.VariantType, n.Status, n.ID)
		})
		return nil
	},
}

func init() {
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "levels to print (0 for all)")
}
