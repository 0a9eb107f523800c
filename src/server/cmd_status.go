// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/godchecker/godchecker/src/tui"
)

var cmdStatus = &cobra.Command{
	Use:   "status [url]",
	Short: "Open an interactive status monitor for a running server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		url := listenURL(cfg.Server.Listen)
		if len(args) == 1 {
			url = args[0]
		}
		return tui.Run(url)
	},
}

func init() {
	cmdRoot.AddCommand(cmdStatus)
}

// listenURL derives a local base URL from a listen address like ":8080".
func listenURL(listen string) string {
	host, port, ok := strings.Cut(listen, ":")
	if !ok {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}
