package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/agentdeckhq/agentdeck/pkg/presenter"
	"github.com/agentdeckhq/agentdeck/pkg/project"
	"github.com/agentdeckhq/agentdeck/pkg/store"
)

type ScanConfig struct {
	JSON bool
	Save bool
}

func NewScanConfig() *ScanConfig {
	return &ScanConfig{}
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a project directory and print its detected profile",
	Long: `Scan walks the project directory, detects languages, frameworks,
project type, and tooling signals, and prints the resulting profile.

With --save, the profile is stored for the registered project at that
path (registering it first if needed) so suggestion surfaces pick it up.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getScanConfigFromFlags(cmd)

		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		ctx := cmd.Context()
		runScan(ctx, dir, config)
	},
}

func init() {
	defaults := NewScanConfig()
	scanCmd.Flags().Bool("json", defaults.JSON, "Print the profile as JSON")
	scanCmd.Flags().Bool("save", defaults.Save, "Store the profile for the project registered at this path")
	rootCmd.AddCommand(scanCmd)
}

func getScanConfigFromFlags(cmd *cobra.Command) *ScanConfig {
	config := NewScanConfig()
	if jsonOut, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = jsonOut
	}
	if save, err := cmd.Flags().GetBool("save"); err == nil {
		config.Save = save
	}
	return config
}

func runScan(ctx context.Context, dir string, config *ScanConfig) {
	scanner, err := project.NewScanner()
	if err != nil {
		presenter.Error(err, "Failed to create scanner")
		os.Exit(1)
	}

	profile, err := scanner.Scan(ctx, dir)
	if err != nil {
		presenter.Error(err, "Scan failed")
		os.Exit(1)
	}

	if config.Save {
		if err := saveProfile(ctx, dir, profile); err != nil {
			presenter.Error(err, "Failed to save profile")
			os.Exit(1)
		}
		presenter.Success("Profile saved")
	}

	if config.JSON {
		encoded, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode profile")
			os.Exit(1)
		}
		fmt.Println(string(encoded))
		return
	}

	printProfile(profile)
}

func saveProfile(ctx context.Context, dir string, profile *project.Profile) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	proj, err := st.GetProjectByPath(ctx, dir)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		proj, err = st.CreateProject(ctx, dir, dir)
		if err != nil {
			return err
		}
	}
	return st.SaveProfile(ctx, proj.ID, profile)
}

func printProfile(profile *project.Profile) {
	presenter.Section("Project profile")
	presenter.Info(fmt.Sprintf("Path:       %s", profile.Path))
	presenter.Info(fmt.Sprintf("Type:       %s", profile.Type))
	presenter.Info(fmt.Sprintf("Languages:  %s", orNone(profile.Languages)))
	presenter.Info(fmt.Sprintf("Frameworks: %s", orNone(profile.Frameworks)))
	presenter.Info(fmt.Sprintf("Tooling:    %s", orNone(profile.Tooling)))
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "(none detected)"
	}
	return strings.Join(values, ", ")
}
