package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-path",
		Short: "Get the path of the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(paths.configFile)
			return nil
		},
	}
}
