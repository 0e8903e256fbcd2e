package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gasmap/internal/persistence"
	"gasmap/internal/repository/sqlite"
)

func dbCmd(loadConfig configLoader) *cobra.Command {
	var dbPath string

	open := func() (*sqlite.Repository, error) {
		path := dbPath
		if path == "" {
			cfg, _, err := loadConfig()
			if err != nil {
				return nil, err
			}
			path = cfg.Storage.Database
		}
		return sqlite.New(path)
	}

	db := &cobra.Command{
		Use:   "db",
		Short: "Manage the network library database",
	}
	db.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: storage.database)")

	save := &cobra.Command{
		Use:   "save <name> <file>",
		Short: "Store a document in the library under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := readNetwork(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.SaveNetwork(cmd.Context(), args[0], persistence.Snapshot(reg)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s from %s\n", Good.Sprint("saved"), args[0], args[1])
			return nil
		},
	}

	load := &cobra.Command{
		Use:   "load <name> <file>",
		Short: "Write a library network to a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			doc, err := repo.LoadNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := files.Save(cmd.Context(), args[1], doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s to %s\n", Good.Sprint("wrote"), args[0], args[1])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List library networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			infos, err := repo.ListNetworks(cmd.Context())
			if err != nil {
				return err
			}
			var rows [][]string
			for _, info := range infos {
				rows = append(rows, []string{
					info.Name, info.Version,
					strconv.Itoa(info.Nodes), strconv.Itoa(info.Pipes),
					info.UpdatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			table(cmd.OutOrStdout(), []string{"NAME", "VERSION", "NODES", "PIPES", "UPDATED"}, rows)
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a network from the library",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.DeleteNetwork(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", Warn.Sprint("deleted"), args[0])
			return nil
		},
	}

	db.AddCommand(save, load, list, del)
	return db
}
