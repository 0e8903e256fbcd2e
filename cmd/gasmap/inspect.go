package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gasmap/internal/domain"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the nodes and pipes of a network document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := readNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDocument(cmd, args[0], doc)
			return nil
		},
	}
}

func printDocument(cmd *cobra.Command, name string, doc *domain.Document) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s\n\n", Brand.Sprint(name), Subtle.Sprintf("version %s, %d node(s), %d pipe(s)", doc.Version, len(doc.Nodes), len(doc.Pipes)))

	Info.Fprintln(w, "Nodes")
	var rows [][]string
	for i, n := range doc.Nodes {
		rows = append(rows, []string{
			strconv.Itoa(i), n.ID, n.Category,
			optNum(n.X), optNum(n.Y), optNum(n.Current), optNum(n.ErrorP),
		})
	}
	table(w, []string{"#", "ID", "CATEGORY", "X", "Y", "CURRENT", "ERRORP"}, rows)
	fmt.Fprintln(w)

	Info.Fprintln(w, "Pipes")
	rows = nil
	for i, p := range doc.Pipes {
		shape := p.Shape
		if shape == "" {
			shape = "curve"
		}
		rows = append(rows, []string{
			strconv.Itoa(i), fmt.Sprintf("%d-%d", p.BindIDs[0], p.BindIDs[1]),
			optNum(p.Distance), optNum(p.ErrorP), optNum(p.Price), shape,
		})
	}
	table(w, []string{"#", "PORTS", "DISTANCE", "ERRORP", "PRICE", "SHAPE"}, rows)
}
