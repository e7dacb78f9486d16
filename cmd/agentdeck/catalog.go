package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/presenter"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the agent, skill, and team catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		cat, err := loadCatalog(ctx)
		if err != nil {
			presenter.Error(err, "Failed to load catalog")
			os.Exit(1)
		}

		kind, _ := cmd.Flags().GetString("kind")
		items := cat.Items()
		if kind != "" {
			items = cat.ItemsOfKind(catalog.Kind(kind))
		}

		if len(items) == 0 {
			presenter.Info("No catalog items found")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tNAME\tKIND\tTIER\tSOURCE")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				item.Slug, item.Name, item.Kind, item.Tier, item.Source)
		}
		tw.Flush()
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a catalog item in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cat, err := loadCatalog(ctx)
		if err != nil {
			presenter.Error(err, "Failed to load catalog")
			os.Exit(1)
		}

		item, ok := cat.Get(args[0])
		if !ok {
			presenter.Error(fmt.Errorf("no catalog item with slug %q", args[0]), "")
			os.Exit(1)
		}

		presenter.Section(item.Name)
		presenter.Info(fmt.Sprintf("Slug:        %s", item.Slug))
		presenter.Info(fmt.Sprintf("Kind:        %s", item.Kind))
		presenter.Info(fmt.Sprintf("Tier:        %s", item.Tier))
		if item.Category != "" {
			presenter.Info(fmt.Sprintf("Category:    %s", item.Category))
		}
		if item.Description != "" {
			presenter.Info(fmt.Sprintf("Description: %s", item.Description))
		}
		presenter.Info(fmt.Sprintf("Languages:   %s", orNone(item.Applicability.Languages)))
		presenter.Info(fmt.Sprintf("Frameworks:  %s", orNone(item.Applicability.Frameworks)))
		presenter.Info(fmt.Sprintf("Types:       %s", orNone(item.Applicability.ProjectTypes)))
		presenter.Info(fmt.Sprintf("Tooling:     %s", orNone(item.Applicability.Tooling)))
		if item.Body != "" {
			presenter.Separator()
			fmt.Println(item.Body)
		}
	},
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	Run: func(_ *cobra.Command, _ []string) {
		cats, err := catalog.Categories()
		if err != nil {
			presenter.Error(err, "Failed to load categories")
			os.Exit(1)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
		for _, c := range cats {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Description)
		}
		tw.Flush()
	},
}

func init() {
	catalogListCmd.Flags().StringP("kind", "k", "", "Restrict to one kind (agent, skill, team)")
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogCategoriesCmd)
	rootCmd.AddCommand(catalogCmd)
}
