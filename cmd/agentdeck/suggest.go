package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/presenter"
	"github.com/agentdeckhq/agentdeck/pkg/project"
	"github.com/agentdeckhq/agentdeck/pkg/ranker"
	"github.com/agentdeckhq/agentdeck/pkg/store"
	"github.com/agentdeckhq/agentdeck/pkg/suggest"
)

type SuggestConfig struct {
	Kind   string
	Top    int
	All    bool
	JSON   bool
	NoScan bool
}

func NewSuggestConfig() *SuggestConfig {
	return &SuggestConfig{
		Top: suggest.DefaultLimit,
	}
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [dir]",
	Short: "Rank the catalog against a project and print the top suggestions",
	Long: `Suggest scans the project directory (or reuses the stored profile with
--no-scan), ranks every catalog item against the detected profile, and
prints the top recommendations. Items already added to the registered
project at that path are excluded.

Examples:
  agentdeck suggest
  agentdeck suggest ~/code/webshop --kind agent --top 3
  agentdeck suggest --all --json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getSuggestConfigFromFlags(cmd)

		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		runSuggest(cmd.Context(), dir, config)
	},
}

func init() {
	defaults := NewSuggestConfig()
	suggestCmd.Flags().StringP("kind", "k", defaults.Kind, "Restrict to one kind (agent, skill, team)")
	suggestCmd.Flags().IntP("top", "n", defaults.Top, "Number of suggestions to show")
	suggestCmd.Flags().Bool("all", defaults.All, "Show the full ranked catalog, including items below the recommendation gate")
	suggestCmd.Flags().Bool("json", defaults.JSON, "Print results as JSON")
	suggestCmd.Flags().Bool("no-scan", defaults.NoScan, "Reuse the stored profile instead of re-scanning")
	rootCmd.AddCommand(suggestCmd)
}

func getSuggestConfigFromFlags(cmd *cobra.Command) *SuggestConfig {
	config := NewSuggestConfig()
	if kind, err := cmd.Flags().GetString("kind"); err == nil {
		config.Kind = kind
	}
	if top, err := cmd.Flags().GetInt("top"); err == nil {
		config.Top = top
	}
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	if jsonOut, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = jsonOut
	}
	if noScan, err := cmd.Flags().GetBool("no-scan"); err == nil {
		config.NoScan = noScan
	}
	return config
}

func runSuggest(ctx context.Context, dir string, config *SuggestConfig) {
	cat, err := loadCatalog(ctx)
	if err != nil {
		presenter.Error(err, "Failed to load catalog")
		os.Exit(1)
	}

	profile, existing := resolveProject(ctx, dir, config.NoScan)

	req := suggest.Request{
		Kind:                 catalog.Kind(config.Kind),
		ExistingNames:        existing,
		Limit:                config.Top,
		IncludeUnrecommended: config.All,
	}
	if config.All && config.Top == suggest.DefaultLimit {
		req.Limit = -1
	}

	results := suggest.Filter(ranker.Rank(cat.Items(), profile), req)

	if config.JSON {
		encoded, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode suggestions")
			os.Exit(1)
		}
		fmt.Println(string(encoded))
		return
	}

	printSuggestions(results, profile)
}

// resolveProject produces the profile and exclusion list for dir. A
// missing store or unregistered project degrades to no exclusions; a
// failed scan degrades to a nil profile (neutral ranking).
func resolveProject(ctx context.Context, dir string, noScan bool) (*project.Profile, []string) {
	var profile *project.Profile
	var existing []string

	st, err := openStore(ctx)
	if err == nil {
		defer st.Close()
		if proj, err := st.GetProjectByPath(ctx, dir); err == nil {
			if names, err := st.ItemNames(ctx, proj.ID); err == nil {
				existing = names
			}
			if noScan {
				if stored, err := proj.Profile(); err == nil {
					profile = stored
				}
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			presenter.Warning(fmt.Sprintf("Could not look up project: %v", err))
		}
	} else {
		presenter.Warning(fmt.Sprintf("Could not open project store: %v", err))
	}

	if profile == nil && !noScan {
		scanner, err := project.NewScanner()
		if err != nil {
			presenter.Error(err, "Failed to create scanner")
			os.Exit(1)
		}
		profile, err = scanner.Scan(ctx, dir)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Scan failed, ranking without a profile: %v", err))
			profile = nil
		}
	}

	return profile, existing
}

func printSuggestions(results []ranker.ScoredItem, profile *project.Profile) {
	if profile == nil {
		presenter.Warning("No project profile available; showing baseline ordering with no recommendations")
	}

	if len(results) == 0 {
		presenter.Info("No suggestions. Try --all to browse the full catalog.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tNAME\tKIND\tTIER\tMATCHED\tFIT")
	for _, entry := range results {
		fit := ""
		switch {
		case entry.GreatMatch:
			fit = "great match"
		case entry.Recommended:
			fit = "recommended"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			entry.Score,
			entry.Item.Name,
			entry.Item.Kind,
			entry.Item.Tier,
			formatSignals(entry.Matched),
			fit,
		)
	}
	tw.Flush()
}

func formatSignals(signals []ranker.Signal) string {
	if len(signals) == 0 {
		return "-"
	}
	parts := make([]string, len(signals))
	for i, s := range signals {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
