package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Walk the hierarchy around a node",
		// Unknown subcommands must fail, not print help and exit 0.
		Args: cobra.NoArgs,
	}
	cmd.AddCommand(treeWalkCmd("ancestors", "Parent chain from nearest to root",
		apiClientAncestors))
	cmd.AddCommand(treeWalkCmd("supertrees", "Node followed by its ancestors",
		apiClientSupertrees))
	cmd.AddCommand(treeWalkCmd("path", "Root-to-node path",
		apiClientPath))
	cmd.AddCommand(treeWalkCmd("parent-path", "Root-to-parent path",
		apiClientParentPath))
	cmd.AddCommand(treeWalkCmd("children", "Direct children",
		apiClientChildren))
	cmd.AddCommand(treeOrderedCmd("descendants", "Strict descendants in the given order",
		func(ctx context.Context, id, order string) ([]string, error) {
			return apiClient.Tree.Descendants(ctx, id, order)
		}))
	cmd.AddCommand(treeOrderedCmd("subtrees", "Node plus its descendants in the given order",
		func(ctx context.Context, id, order string) ([]string, error) {
			return apiClient.Tree.Subtrees(ctx, id, order)
		}))
	cmd.AddCommand(treeRootCmd())
	return cmd
}

// Indirections so the command table can be built before apiClient exists.
func apiClientAncestors(ctx context.Context, id string) ([]string, error) {
	return apiClient.Tree.Ancestors(ctx, id)
}

func apiClientSupertrees(ctx context.Context, id string) ([]string, error) {
	return apiClient.Tree.Supertrees(ctx, id)
}

func apiClientPath(ctx context.Context, id string) ([]string, error) {
	return apiClient.Tree.Path(ctx, id)
}

func apiClientParentPath(ctx context.Context, id string) ([]string, error) {
	return apiClient.Tree.ParentPath(ctx, id)
}

func apiClientChildren(ctx context.Context, id string) ([]string, error) {
	return apiClient.Tree.Children(ctx, id)
}

func treeWalkCmd(name, short string, walk func(context.Context, string) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ids, err := walk(context.Background(), args[0])
			if err != nil {
				fatal(name, err)
			}
			formatIDList(name, ids)
		},
	}
}

func treeOrderedCmd(name, short string, walk func(context.Context, string, string) ([]string, error)) *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ids, err := walk(context.Background(), args[0], order)
			if err != nil {
				fatal(name, err)
			}
			formatIDList(name, ids)
		},
	}
	cmd.Flags().StringVar(&order, "order", "pre", "Traversal order: pre|bfs|post")
	return cmd
}

func treeRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "root <id>",
		Short: "Root of the node's tree",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			root, err := apiClient.Tree.Root(context.Background(), args[0])
			if err != nil {
				fatal("root", err)
			}
			if flagFmt == "quiet" {
				fmt.Println(root)
				return
			}
			formatJSON(map[string]string{"id": args[0], "root": root})
		},
	}
}
