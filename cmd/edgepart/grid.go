package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/edgepart"
)

func newGridCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "grid <parts>",
		Short: "Print the grid layout for a partition count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid parts %q: %w", args[0], err)
			}

			g, err := edgepart.Geometry(parts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(g)
			}

			fmt.Fprintf(out, "parts:             %d\n", g.NumParts)
			fmt.Fprintf(out, "cols:              %d\n", g.Cols)
			fmt.Fprintf(out, "rows:              %d\n", g.Rows)
			fmt.Fprintf(out, "last column rows:  %d\n", g.LastColRows)
			fmt.Fprintf(out, "perfect square:    %t\n", g.PerfectSquare)
			fmt.Fprintf(out, "replication bound: %d\n", g.ReplicationBound())

			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")

	return cmd
}
