package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gasmap/internal/persistence"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a network document between .mj5 and .yaml",
		Long: "Convert reads a document, resolves its pipes and writes it in the format\n" +
			"named by the output extension. Legacy 1.0.0 documents are upgraded.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := readNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc := persistence.Snapshot(reg)
			if err := files.Save(cmd.Context(), args[1], doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (%d node(s), %d pipe(s))\n",
				Good.Sprint("converted"), args[0], args[1], len(doc.Nodes), len(doc.Pipes))
			return nil
		},
	}
}
