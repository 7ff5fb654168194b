package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/edgepart"
)

func newAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <src> <dst> <parts>",
		Short: "Print the partition of one edge",
		Long: "Print the partition index of the edge (src, dst) among parts partitions.\n" +
			"Put -- before negative vertex IDs: edgepart assign -- -5 3 10",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid src %q: %w", args[0], err)
			}
			dst, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid dst %q: %w", args[1], err)
			}
			parts, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid parts %q: %w", args[2], err)
			}

			idx, err := edgepart.Assign(src, dst, parts)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), idx)

			return nil
		},
	}
}
