package main

import (
	"github.com/spf13/cobra"

	"gasmap/internal/config"
)

var version = "0.3.0"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "gasmap",
		Short:        "gasmap: edit gas supply networks",
		Long:         Brand.Sprint("gasmap") + " edits gas supply networks of sources, consumers and pipes\n" + Subtle.Sprint("Serve the editor over HTTP or work with .mj5 documents from the shell"),
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate("gasmap {{ .Version }}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search $GASMAP_CONFIG, ./gasmap.yaml, XDG dirs)")

	loadConfig := func() (*config.Config, string, error) {
		if configPath != "" {
			return config.LoadFromPath(configPath)
		}
		return config.Load()
	}

	root.AddCommand(
		serveCmd(loadConfig),
		inspectCmd(),
		convertCmd(),
		seedCmd(),
		dbCmd(loadConfig),
		configCmd(loadConfig),
	)
	return root
}

// configLoader returns the effective config and the file it came from, ""
// when only defaults apply.
type configLoader func() (*config.Config, string, error)
