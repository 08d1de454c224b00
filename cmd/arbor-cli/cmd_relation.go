package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newRelationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relation <a> <b>",
		Short: "Show every order predicate between two nodes",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rel, err := apiClient.Tree.Relation(context.Background(), args[0], args[1])
			if err != nil {
				fatal("relation", err)
			}
			if flagFmt == "table" {
				formatTable(
					[]string{"PREDICATE", "HOLDS"},
					[][]string{
						{"ancestor_of", fmt.Sprintf("%t", rel.AncestorOf)},
						{"descendant_of", fmt.Sprintf("%t", rel.DescendantOf)},
						{"supertree_of", fmt.Sprintf("%t", rel.SupertreeOf)},
						{"subtree_of", fmt.Sprintf("%t", rel.SubtreeOf)},
						{"child_of", fmt.Sprintf("%t", rel.ChildOf)},
						{"parent_of", fmt.Sprintf("%t", rel.ParentOf)},
						{"sibling_of", fmt.Sprintf("%t", rel.SiblingOf)},
						{"root_of", fmt.Sprintf("%t", rel.RootOf)},
					},
				)
				return
			}
			output(rel, "")
		},
	}
}
