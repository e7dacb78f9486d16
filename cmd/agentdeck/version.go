package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentdeckhq/agentdeck/pkg/presenter"
	"github.com/agentdeckhq/agentdeck/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			out, err := info.JSON()
			if err != nil {
				presenter.Error(err, "Failed to encode version information")
				os.Exit(1)
			}
			fmt.Println(out)
			return
		}
		fmt.Println(info.String())
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Print version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
