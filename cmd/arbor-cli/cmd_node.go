package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/arborhq/arbor/client"
	"github.com/spf13/cobra"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage nodes",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(nodeCreateCmd())
	cmd.AddCommand(nodeGetCmd())
	cmd.AddCommand(nodeUpdateCmd())
	cmd.AddCommand(nodeDeleteCmd())
	cmd.AddCommand(nodeListCmd())
	cmd.AddCommand(nodeInfoCmd())
	return cmd
}

func nodeCreateCmd() *cobra.Command {
	var nodeID, kind, parent, propsJSON string
	var position int
	cmd := &cobra.Command{
		Use:   "create <label>",
		Short: "Create a node",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.CreateNodeRequest{
				ID:       nodeID,
				Label:    args[0],
				Kind:     kind,
				Position: position,
			}
			if parent != "" {
				req.ParentID = &parent
			}
			if propsJSON != "" {
				if err := json.Unmarshal([]byte(propsJSON), &req.Properties); err != nil {
					fatal("parse props", err)
				}
			}
			node, err := apiClient.Nodes.Create(context.Background(), req)
			if err != nil {
				fatal("create node", err)
			}
			output(node, node.ID)
		},
	}
	cmd.Flags().StringVar(&nodeID, "id", "", "Node ID (server assigns one if empty)")
	cmd.Flags().StringVar(&kind, "kind", "", "Node kind")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent node ID (omit to create a root)")
	cmd.Flags().StringVar(&propsJSON, "props", "", "Properties as JSON")
	cmd.Flags().IntVar(&position, "position", 0, "Sibling position")
	return cmd
}

func nodeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a node by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			node, err := apiClient.Nodes.Get(context.Background(), args[0])
			if err != nil {
				fatal("get node", err)
			}
			output(node, node.ID)
		},
	}
}

func nodeUpdateCmd() *cobra.Command {
	var label, kind, propsJSON string
	var position int
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a node",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.UpdateNodeRequest{}
			if label != "" {
				req.Label = &label
			}
			if kind != "" {
				req.Kind = &kind
			}
			if cmd.Flags().Changed("position") {
				req.Position = &position
			}
			if propsJSON != "" {
				if err := json.Unmarshal([]byte(propsJSON), &req.Properties); err != nil {
					fatal("parse props", err)
				}
			}
			node, err := apiClient.Nodes.Update(context.Background(), args[0], req)
			if err != nil {
				fatal("update node", err)
			}
			output(node, node.ID)
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Node label")
	cmd.Flags().StringVar(&kind, "kind", "", "Node kind")
	cmd.Flags().StringVar(&propsJSON, "props", "", "Properties as JSON")
	cmd.Flags().IntVar(&position, "position", 0, "Sibling position")
	return cmd
}

func nodeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node (its children become roots)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Nodes.Delete(context.Background(), args[0]); err != nil {
				fatal("delete node", err)
			}
			fmt.Println("deleted")
		},
	}
}

func nodeListCmd() *cobra.Command {
	var kind string
	var rootsOnly bool
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes",
		Run: func(cmd *cobra.Command, args []string) {
			if limit < 0 {
				fmt.Fprintf(os.Stderr, "Error: --limit must be non-negative\n")
				os.Exit(1)
			}
			if offset < 0 {
				fmt.Fprintf(os.Stderr, "Error: --offset must be non-negative\n")
				os.Exit(1)
			}
			opts := &client.NodeListOptions{
				Kind:      kind,
				RootsOnly: rootsOnly,
				Limit:     limit,
				Offset:    offset,
			}
			nodes, _, err := apiClient.Nodes.List(context.Background(), opts)
			if err != nil {
				fatal("list nodes", err)
			}
			if flagFmt == "table" {
				headers := []string{"ID", "KIND", "LABEL", "PARENT"}
				var rows [][]string
				for _, n := range nodes {
					parent := ""
					if n.ParentID != nil {
						parent = *n.ParentID
					}
					rows = append(rows, []string{n.ID, n.Kind, n.Label, parent})
				}
				formatTable(headers, rows)
				return
			}
			if flagFmt == "quiet" {
				for _, n := range nodes {
					fmt.Println(n.ID)
				}
				return
			}
			formatJSON(nodes)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind")
	cmd.Flags().BoolVar(&rootsOnly, "roots", false, "Only list root nodes")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}

func nodeInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <id>",
		Short: "Show a node's depth, root, and role flags",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			info, err := apiClient.Tree.Info(context.Background(), args[0])
			if err != nil {
				fatal("node info", err)
			}
			output(info, info.RootID)
		},
	}
}
