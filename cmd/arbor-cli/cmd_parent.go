package main

import (
	"context"
	"fmt"
	"os"

	"github.com/arborhq/arbor/client"
	"github.com/spf13/cobra"
)

func newParentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parent",
		Short: "Manage parent links",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(parentSetCmd())
	cmd.AddCommand(parentRemoveCmd())
	cmd.AddCommand(parentValidateCmd())
	return cmd
}

func parentSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <parent-id>",
		Short: "Move a node under a new parent",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			parent := args[1]
			node, err := apiClient.Tree.SetParent(context.Background(), args[0], &parent)
			if err != nil {
				if client.IsCycle(err) {
					fmt.Fprintf(os.Stderr, "Error: refused: %s is in the subtree of %s\n", parent, args[0])
					os.Exit(1)
				}
				fatal("set parent", err)
			}
			output(node, node.ID)
		},
	}
}

func parentRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Detach a node, making it a root",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			node, err := apiClient.Tree.RemoveParent(context.Background(), args[0])
			if err != nil {
				fatal("remove parent", err)
			}
			output(node, node.ID)
		},
	}
}

func parentValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <id> [parent-id]",
		Short: "Check whether a parent assignment would be legal",
		Long:  "Checks a candidate parent assignment without applying it. Omit parent-id to check detaching the node.",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			var parent *string
			if len(args) == 2 {
				parent = &args[1]
			}
			result, err := apiClient.Tree.ValidateParent(context.Background(), args[0], parent)
			if err != nil {
				fatal("validate parent", err)
			}
			if flagFmt == "quiet" {
				fmt.Println(result.Valid)
				return
			}
			formatJSON(result)
		},
	}
}
