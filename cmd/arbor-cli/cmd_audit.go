package main

import (
	"context"
	"fmt"
	"time"

	"github.com/arborhq/arbor/client"
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var nodeID, action, since string
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query audit logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &client.AuditQueryOptions{
				NodeID: nodeID,
				Action: action,
				Limit:  limit,
			}
			if since != "" {
				t, err := time.Parse(time.RFC3339, since)
				if err != nil {
					return fmt.Errorf("--since must be RFC 3339 (e.g. 2026-08-01T00:00:00Z): %w", err)
				}
				opts.Since = &t
			}
			entries, _, err := apiClient.Audit.Query(context.Background(), opts)
			if err != nil {
				fatal("audit query", err)
			}
			if flagFmt == "table" {
				headers := []string{"ID", "ACTION", "NODE_ID", "ACTOR", "CREATED_AT"}
				var rows [][]string
				for _, e := range entries {
					rows = append(rows, []string{
						fmt.Sprintf("%d", e.ID), e.Action, e.NodeID, e.Actor,
						e.CreatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				formatTable(headers, rows)
				return nil
			}
			output(entries, "")
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeID, "node", "", "Filter by node ID")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action")
	cmd.Flags().StringVar(&since, "since", "", "Only entries after this RFC 3339 timestamp")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	return cmd
}
