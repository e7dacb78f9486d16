package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentdeckhq/agentdeck/pkg/presenter"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage registered projects and their active item sets",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <dir>",
	Short: "Register a project directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		path, err := filepath.Abs(args[0])
		if err != nil {
			presenter.Error(err, "Invalid project path")
			os.Exit(1)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = filepath.Base(path)
		}

		st, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open project store")
			os.Exit(1)
		}
		defer st.Close()

		proj, err := st.CreateProject(ctx, name, path)
		if err != nil {
			presenter.Error(err, "Failed to register project")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Registered project %s (%s)", proj.Name, proj.ID))
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open project store")
			os.Exit(1)
		}
		defer st.Close()

		projects, err := st.ListProjects(ctx)
		if err != nil {
			presenter.Error(err, "Failed to list projects")
			os.Exit(1)
		}

		if len(projects) == 0 {
			presenter.Info("No projects registered. Use 'agentdeck project add <dir>' to register one.")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPATH\tSCANNED")
		for _, p := range projects {
			scanned := "never"
			if p.ScannedAt.Valid {
				scanned = p.ScannedAt.Time.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Path, scanned)
		}
		tw.Flush()
	},
}

var projectItemsCmd = &cobra.Command{
	Use:   "items <project-id>",
	Short: "List a project's active item set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open project store")
			os.Exit(1)
		}
		defer st.Close()

		items, err := st.ListItems(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Failed to list items")
			os.Exit(1)
		}

		if len(items) == 0 {
			presenter.Info("No items added to this project yet")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tNAME\tKIND\tADDED")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				it.Slug, it.Name, it.Kind, it.AddedAt.Format("2006-01-02 15:04"))
		}
		tw.Flush()
	},
}

var projectAddItemCmd = &cobra.Command{
	Use:   "add-item <project-id> <slug>",
	Short: "Add a catalog item to a project's active set",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cat, err := loadCatalog(ctx)
		if err != nil {
			presenter.Error(err, "Failed to load catalog")
			os.Exit(1)
		}

		item, ok := cat.Get(args[1])
		if !ok {
			presenter.Error(fmt.Errorf("no catalog item with slug %q", args[1]), "")
			os.Exit(1)
		}

		st, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open project store")
			os.Exit(1)
		}
		defer st.Close()

		if err := st.AddItem(ctx, args[0], item); err != nil {
			presenter.Error(err, "Failed to add item")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Added %s to project", item.Name))
	},
}

var projectRemoveItemCmd = &cobra.Command{
	Use:   "remove-item <project-id> <slug>",
	Short: "Remove an item from a project's active set",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open project store")
			os.Exit(1)
		}
		defer st.Close()

		if err := st.RemoveItem(ctx, args[0], args[1]); err != nil {
			presenter.Error(err, "Failed to remove item")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Removed %s from project", args[1]))
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent project activity",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open project store")
			os.Exit(1)
		}
		defer st.Close()

		entries, err := st.RecentActivity(ctx, limit)
		if err != nil {
			presenter.Error(err, "Failed to list activity")
			os.Exit(1)
		}

		if len(entries) == 0 {
			presenter.Info("No activity yet")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tEVENT\tDETAIL\tPROJECT")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Event, e.Detail, e.ProjectID)
		}
		tw.Flush()
	},
}

func init() {
	projectAddCmd.Flags().String("name", "", "Display name for the project (defaults to the directory name)")
	activityCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectItemsCmd)
	projectCmd.AddCommand(projectAddItemCmd)
	projectCmd.AddCommand(projectRemoveItemCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(activityCmd)
}
