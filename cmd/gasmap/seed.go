package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gasmap/internal/editor"
	"gasmap/internal/persistence"
	"gasmap/internal/topology"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Write the development network to a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "dev.mj5"
			if len(args) == 1 {
				path = args[0]
			}
			reg := topology.New()
			if err := editor.Seed(reg); err != nil {
				return err
			}
			if err := files.Save(cmd.Context(), path, persistence.Snapshot(reg)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", Good.Sprint("seeded"), path)
			return nil
		},
	}
}
