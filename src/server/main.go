// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/godchecker/godchecker/src/config"
	"github.com/godchecker/godchecker/src/logger"
)

var version = "1.0.0"

// cmdRoot is the base command when no other command has been specified.
var cmdRoot = &cobra.Command{
	Use:   "godchecker",
	Short: "Publish traffic restriction notices around official movements",
	Long: `
godchecker collects announced schedules and traffic restrictions from public
government pages, merges them into a single feed and serves it alongside an
installable web app with a versioned offline shell cache.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(0)
	},
}

var configPath string

func init() {
	cmdRoot.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
}

// loadConfig resolves the effective configuration for a subcommand and
// prepares logging from it.
func loadConfig() (config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger.Setup(cfg.Log.Level, cfg.Log.Format), nil
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
