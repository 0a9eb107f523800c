// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package main

import (
	"github.com/spf13/cobra"

	"github.com/godchecker/godchecker/src/storage"
)

var cmdExport = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the stored feed to a JSON file",
	Long: `
The "export" command reads the stored feed and writes it as a JSON document,
to the configured export path or to the path given as the argument. It never
scrapes; run "godchecker scrape" first to refresh the data.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.Feed.ExportPath
		if len(args) == 1 {
			path = args[0]
		}

		db, err := storage.NewPool(cfg.Database.Driver, cfg.Database.Source,
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Init(); err != nil {
			return err
		}

		items, err := db.LoadItems(cmd.Context())
		if err != nil {
			return err
		}
		return exportFeed(items, path)
	},
}

func init() {
	cmdRoot.AddCommand(cmdExport)
}
